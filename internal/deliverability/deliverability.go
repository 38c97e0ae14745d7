// internal/deliverability/deliverability.go
package deliverability

import (
	"context"
	"sort"

	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/model"
)

// Tester scores an account's deliverability. The scorer itself is an
// external service; the engine only consumes scores to pre-select the
// account list before a run.
type Tester interface {
	Score(ctx context.Context, acct model.Account) (float64, error)
}

// SelectTop returns up to n accounts scoring at or above minScore,
// best first. Accounts the tester cannot score are excluded. Ties keep
// input order, so selection stays deterministic.
func SelectTop(ctx context.Context, t Tester, accounts []model.Account, minScore float64, n int) []model.Account {
	type scored struct {
		acct  model.Account
		score float64
		pos   int
	}
	var kept []scored
	for i, acct := range accounts {
		s, err := t.Score(ctx, acct)
		if err != nil || s < minScore {
			continue
		}
		kept = append(kept, scored{acct: acct, score: s, pos: i})
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].pos < kept[j].pos
	})
	if n > 0 && len(kept) > n {
		kept = kept[:n]
	}
	out := make([]model.Account, len(kept))
	for i, s := range kept {
		out[i] = s.acct
	}
	return out
}
