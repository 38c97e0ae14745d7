// internal/engine/report.go
package engine

import (
	"sort"
	"time"

	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/classify"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/progress"
)

// KindCount is one row of an account's error histogram, with the static
// recovery hint for that kind.
type KindCount struct {
	Kind  classify.Kind `json:"kind"`
	Count int           `json:"count"`
	Hint  string        `json:"hint"`
}

// AccountReport is the final, frozen view of one account's run.
type AccountReport struct {
	progress.AccountProgress
	Errors    []classify.ErrorRecord `json:"errors,omitempty"`
	Histogram []KindCount            `json:"histogram,omitempty"`
}

// Report combines the final progress snapshot with every account's
// error history. Built only from terminal, frozen data.
type Report struct {
	RunID      string                   `json:"run_id"`
	Accounts   map[string]AccountReport `json:"accounts"`
	Totals     progress.Totals          `json:"totals"`
	Unassigned int                      `json:"unassigned"`
	StartedAt  time.Time                `json:"started_at"`
	Duration   time.Duration            `json:"duration"`
}

func buildReport(runID string, snap progress.Snapshot, tracker *classify.Tracker, unassigned int, startedAt time.Time) *Report {
	r := &Report{
		RunID:      runID,
		Accounts:   make(map[string]AccountReport, len(snap.Accounts)),
		Totals:     snap.Totals,
		Unassigned: unassigned,
		StartedAt:  startedAt,
		Duration:   time.Since(startedAt),
	}
	for key, p := range snap.Accounts {
		ar := AccountReport{AccountProgress: p, Errors: tracker.History(key)}
		hist := tracker.Histogram(key)
		for kind, count := range hist {
			ar.Histogram = append(ar.Histogram, KindCount{
				Kind:  kind,
				Count: count,
				Hint:  classify.HintFor(kind),
			})
		}
		sort.Slice(ar.Histogram, func(i, j int) bool {
			return ar.Histogram[i].Kind < ar.Histogram[j].Kind
		})
		r.Accounts[key] = ar
	}
	return r
}
