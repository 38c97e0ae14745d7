// internal/planner/planner.go
package planner

import (
	appErrors "github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/errors"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/model"
)

// Mode picks how recipients are spread across accounts.
type Mode string

const (
	// ModeDistribute partitions recipients across accounts without
	// repetition.
	ModeDistribute Mode = "distribute"
	// ModeBroadcast sends the full recipient list from every account.
	ModeBroadcast Mode = "broadcast"
)

// Assignment is the recipient plan for one run. Built once, read-only
// afterwards.
type Assignment struct {
	// Shares maps account key to its ordered recipient list.
	Shares map[string][]string
	// Unassigned counts recipients dropped by the per-account cap.
	// They are reported, never silently lost.
	Unassigned int
}

// Share returns the recipient list for an account.
func (a *Assignment) Share(acct model.Account) []string {
	return a.Shares[acct.Key()]
}

// Active counts accounts with a non-empty share; this is also the
// worker-pool size for the run.
func (a *Assignment) Active() int {
	n := 0
	for _, s := range a.Shares {
		if len(s) > 0 {
			n++
		}
	}
	return n
}

// Plan computes the recipient-to-account assignment. perAccountCap <= 0
// means uncapped. Identical inputs always produce identical output.
//
// Distribute mode: base share = len(recipients)/len(accounts); the first
// len(recipients)%len(accounts) accounts in input order each take one
// extra; the cap then truncates each share and the truncated remainder
// is dropped from the run, counted in Unassigned. Broadcast mode hands
// the full list, in order, to every account and ignores the cap.
func Plan(accounts []model.Account, recipients []string, mode Mode, perAccountCap int) (*Assignment, error) {
	if len(accounts) == 0 {
		return nil, appErrors.NewNoUsableAccounts()
	}

	asn := &Assignment{Shares: make(map[string][]string, len(accounts))}

	if mode == ModeBroadcast {
		for _, acct := range accounts {
			share := make([]string, len(recipients))
			copy(share, recipients)
			asn.Shares[acct.Key()] = share
		}
		return asn, nil
	}

	base := len(recipients) / len(accounts)
	remainder := len(recipients) % len(accounts)

	start := 0
	for i, acct := range accounts {
		count := base
		if i < remainder {
			count++
		}
		if perAccountCap > 0 && count > perAccountCap {
			asn.Unassigned += count - perAccountCap
			count = perAccountCap
		}
		share := make([]string, count)
		copy(share, recipients[start:start+count])
		asn.Shares[acct.Key()] = share
		// cap leftovers are skipped, not reassigned
		start += base
		if i < remainder {
			start++
		}
	}
	return asn, nil
}
