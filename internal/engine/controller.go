// internal/engine/controller.go
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/attach"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/classify"
	appErrors "github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/errors"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/model"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/planner"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/progress"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/smtpconn"
)

// Controller orchestrates one campaign run: plans the assignment,
// starts one worker per active account, aggregates progress and builds
// the final report. One Controller per run.
type Controller struct {
	id          string
	cfg         Config
	conns       *smtpconn.Manager
	attachments attach.Provider // nil means no attachments
	log         zerolog.Logger

	errors *classify.Tracker

	mu        sync.Mutex
	progress  *progress.Aggregator
	cancelFn  context.CancelFunc
	cancelled bool
}

// New builds a controller for a single run. attachments may be nil.
func New(cfg Config, conns *smtpconn.Manager, attachments attach.Provider, log zerolog.Logger) *Controller {
	cfg.applyDefaults()
	id := uuid.NewString()
	return &Controller{
		id:          id,
		cfg:         cfg,
		conns:       conns,
		attachments: attachments,
		log:         log.With().Str("run", id).Logger(),
		errors:      classify.NewTracker(),
	}
}

// ID returns the run identifier.
func (c *Controller) ID() string { return c.id }

// Snapshot returns the current progress. Safe from any goroutine, also
// before Run has started or after it returned.
func (c *Controller) Snapshot() progress.Snapshot {
	c.mu.Lock()
	agg := c.progress
	c.mu.Unlock()
	if agg == nil {
		return progress.Snapshot{Accounts: map[string]progress.AccountProgress{}}
	}
	return agg.Snapshot()
}

// Cancel requests cooperative cancellation: in-flight sends finish,
// untouched recipients are marked cancelled, no new work starts. Safe
// to call from any goroutine at any time, including before Run.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.cancelled = true
	cancel := c.cancelFn
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Errors exposes the run's classified failure history.
func (c *Controller) Errors() *classify.Tracker { return c.errors }

// Run executes the campaign and blocks until every worker reaches a
// terminal status or cancellation completes. All sessions are released
// before it returns.
func (c *Controller) Run(ctx context.Context, accounts []model.Account, recipients []string) (*Report, error) {
	if len(accounts) == 0 {
		return nil, appErrors.NewNoUsableAccounts()
	}

	startedAt := time.Now()

	asn, err := planner.Plan(accounts, recipients, c.cfg.Mode, c.cfg.PerAccountCap)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int, len(accounts))
	for _, acct := range accounts {
		totals[acct.Key()] = len(asn.Share(acct))
	}

	var runCtx context.Context
	var cancel context.CancelFunc
	if c.cfg.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	agg := progress.New(totals)
	c.mu.Lock()
	c.progress = agg
	c.cancelFn = cancel
	if c.cancelled {
		cancel()
	}
	c.mu.Unlock()

	c.log.Info().
		Int("accounts", len(accounts)).
		Int("recipients", len(recipients)).
		Str("mode", string(c.cfg.Mode)).
		Int("unassigned", asn.Unassigned).
		Msg("campaign run started")

	var wg sync.WaitGroup
	for _, acct := range accounts {
		share := asn.Share(acct)
		if len(share) == 0 {
			// nothing assigned, terminal immediately
			agg.Finish(acct.Key(), progress.StatusCompleted)
			continue
		}
		wg.Add(1)
		go func(acct model.Account, share []string) {
			defer wg.Done()
			c.worker(runCtx, acct, share)
		}(acct, share)
	}
	wg.Wait()

	c.conns.ReleaseAll()

	report := buildReport(c.id, agg.Snapshot(), c.errors, asn.Unassigned, startedAt)
	c.log.Info().
		Int("sent", report.Totals.Sent).
		Int("failed", report.Totals.Failed).
		Int("skipped", report.Totals.Skipped).
		Dur("duration", report.Duration).
		Msg("campaign run finished")
	return report, nil
}
