// internal/engine/worker.go
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/classify"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/content"
	appErrors "github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/errors"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/model"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/progress"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/smtpconn"
)

// worker drains one account's assignment in order. Session affinity
// means exactly one worker per account, so everything here is
// single-goroutine except the shared aggregator and tracker.
func (c *Controller) worker(ctx context.Context, acct model.Account, share []string) {
	key := acct.Key()
	log := c.log.With().Str("account", acct.Email).Logger()

	// index of the recipient being processed, for the recover path
	idx := 0
	defer func() {
		if r := recover(); r != nil {
			err := appErrors.NewWorkerError(acct.Email, fmt.Errorf("%v", r))
			c.errors.Record(key, err)
			// the in-flight recipient failed, the rest are never attempted
			c.progress.Failed(key)
			c.progress.Skipped(key, len(share)-idx-1)
			c.progress.Finish(key, progress.StatusFailed)
			c.conns.Release(acct)
			log.Error().Interface("panic", r).Msg("worker aborted on internal error")
		}
	}()

	c.progress.Begin(key)

	// pacing is measured between send starts, so the realized rate is
	// bounded regardless of protocol latency
	limiter := rate.NewLimiter(rate.Every(c.cfg.SendDelay), 1)
	rng := rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(acct.ID)<<20))

	for i, rcpt := range share {
		idx = i
		if ctx.Err() != nil {
			c.cancelRemainder(key, len(share)-i)
			log.Info().Int("remaining", len(share)-i).Msg("worker cancelled")
			return
		}
		if err := limiter.Wait(ctx); err != nil {
			c.cancelRemainder(key, len(share)-i)
			log.Info().Int("remaining", len(share)-i).Msg("worker cancelled")
			return
		}

		msg, err := c.buildMessage(ctx, acct, rcpt, rng)
		if err != nil {
			// attachment trouble is confined to this recipient
			kind, _ := c.errors.Record(key, err)
			c.progress.Failed(key)
			log.Warn().Str("recipient", rcpt).Str("kind", string(kind)).Err(err).Msg("message build failed")
			continue
		}

		c.progress.Attempt(key)
		err = c.deliver(ctx, acct, key, msg)
		if err == nil {
			c.progress.Sent(key)
			log.Debug().Str("recipient", rcpt).Msg("sent")
			continue
		}

		kind, policy := c.errors.Record(key, err)
		c.progress.Failed(key)
		log.Warn().
			Str("recipient", rcpt).
			Str("kind", string(kind)).
			Str("policy", string(policy)).
			Err(err).
			Msg("send failed")

		if policy == classify.AbortAccount {
			c.progress.Skipped(key, len(share)-i-1)
			c.progress.Finish(key, progress.StatusFailed)
			c.conns.Release(acct)
			log.Error().Str("kind", string(kind)).Int("skipped", len(share)-i-1).Msg("account aborted")
			return
		}
	}

	c.progress.Finish(key, progress.StatusCompleted)
	log.Info().Int("total", len(share)).Msg("account completed")
}

func (c *Controller) cancelRemainder(key string, remaining int) {
	c.progress.Skipped(key, remaining)
	c.progress.Finish(key, progress.StatusCancelled)
}

// buildMessage assembles the personalized message for one recipient.
func (c *Controller) buildMessage(ctx context.Context, acct model.Account, rcpt string, rng *rand.Rand) (*model.Message, error) {
	data := map[string]string{"email": rcpt, "recipient": rcpt}
	msg := &model.Message{
		From:     acct.Email,
		FromName: content.GenerateSenderName(rng, c.cfg.SenderNameType),
		To:       rcpt,
		Subject:  c.cfg.Pool.PickSubject(rng),
		Body:     content.Render(c.cfg.Pool.PickBody(rng), data),
	}
	if c.attachments != nil {
		name, data, err := c.attachments.Build(ctx, rcpt)
		if err != nil {
			return nil, err
		}
		msg.Attachment = &model.Attachment{Filename: name, Data: data}
	}
	return msg, nil
}

// deliver sends one message, applying the classifier's retry policy on
// top of the connection manager's transport-level reopen budget.
// Intermediate failures are recorded; the final one surfaces to the
// worker.
func (c *Controller) deliver(ctx context.Context, acct model.Account, key string, msg *model.Message) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = c.conns.Send(ctx, acct, msg)
		if err == nil || attempt >= c.cfg.ResendMax {
			return err
		}
		_, policy := classify.Classify(err)
		switch policy {
		case classify.RetrySameSession:
			// pacing violation only; the session stays up
		case classify.ReopenAndRetry:
			c.conns.Reset(acct)
		default:
			return err
		}
		c.errors.Record(key, err)
		if ctxErr := waitRetry(ctx, smtpconn.Backoff(attempt+1)); ctxErr != nil {
			return err
		}
	}
}

func waitRetry(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
