// internal/progress/progress.go
package progress

import (
	"sync"
	"time"
)

// Status is the per-account state machine. Transitions only advance:
// pending -> sending -> {completed | failed | cancelled}. A terminal
// status is never revisited.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSending   Status = "sending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether s is a final status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// rank orders statuses so updates can only move forward.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusSending:
		return 1
	default:
		return 2
	}
}

// AccountProgress is the counter set for one account. Counts never
// decrease.
type AccountProgress struct {
	Total     int    `json:"total"`
	Attempted int    `json:"attempted"`
	Sent      int    `json:"sent"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
	Status    Status `json:"status"`
}

// accountState pairs the counters with their own lock so updating one
// account never blocks another.
type accountState struct {
	mu sync.Mutex
	p  AccountProgress
}

// Aggregator collects per-account progress for one run. The account set
// is fixed at construction; after that the map itself is read-only and
// all mutation happens under per-account locks.
type Aggregator struct {
	accounts map[string]*accountState
	started  time.Time
}

// New builds an aggregator with every account pending. totals maps
// account key to its assigned recipient count.
func New(totals map[string]int) *Aggregator {
	a := &Aggregator{
		accounts: make(map[string]*accountState, len(totals)),
		started:  time.Now(),
	}
	for key, total := range totals {
		a.accounts[key] = &accountState{p: AccountProgress{Total: total, Status: StatusPending}}
	}
	return a
}

func (a *Aggregator) state(account string) *accountState {
	return a.accounts[account]
}

// Begin moves an account from pending to sending.
func (a *Aggregator) Begin(account string) {
	a.advance(account, StatusSending)
}

// Attempt records the start of one delivery attempt.
func (a *Aggregator) Attempt(account string) {
	if s := a.state(account); s != nil {
		s.mu.Lock()
		s.p.Attempted++
		s.mu.Unlock()
	}
}

// Sent records one successful delivery.
func (a *Aggregator) Sent(account string) {
	if s := a.state(account); s != nil {
		s.mu.Lock()
		s.p.Sent++
		s.mu.Unlock()
	}
}

// Failed records one failed delivery.
func (a *Aggregator) Failed(account string) {
	if s := a.state(account); s != nil {
		s.mu.Lock()
		s.p.Failed++
		s.mu.Unlock()
	}
}

// Skipped records n recipients that will never be attempted for this
// account (abort-account remainder or cancellation).
func (a *Aggregator) Skipped(account string, n int) {
	if n <= 0 {
		return
	}
	if s := a.state(account); s != nil {
		s.mu.Lock()
		s.p.Skipped += n
		s.mu.Unlock()
	}
}

// Finish moves an account to a terminal status. Late calls against an
// already-terminal account are ignored.
func (a *Aggregator) Finish(account string, st Status) {
	a.advance(account, st)
}

func (a *Aggregator) advance(account string, st Status) {
	s := a.state(account)
	if s == nil {
		return
	}
	s.mu.Lock()
	if !s.p.Status.Terminal() && st.rank() > s.p.Status.rank() {
		s.p.Status = st
	}
	s.mu.Unlock()
}

// Totals is the campaign-level counter summary, derived by summation.
type Totals struct {
	Accounts  int `json:"accounts"`
	Total     int `json:"total"`
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Snapshot is an immutable copy of the run's progress, safe to hand to
// any goroutine.
type Snapshot struct {
	Accounts map[string]AccountProgress `json:"accounts"`
	Totals   Totals                     `json:"totals"`
	Elapsed  time.Duration              `json:"elapsed"`
}

// Done reports whether every account reached a terminal status.
func (s Snapshot) Done() bool {
	for _, p := range s.Accounts {
		if !p.Status.Terminal() {
			return false
		}
	}
	return true
}

// Snapshot copies all counters without blocking senders beyond one
// account's lock at a time.
func (a *Aggregator) Snapshot() Snapshot {
	snap := Snapshot{
		Accounts: make(map[string]AccountProgress, len(a.accounts)),
		Elapsed:  time.Since(a.started),
	}
	for key, s := range a.accounts {
		s.mu.Lock()
		p := s.p
		s.mu.Unlock()
		snap.Accounts[key] = p
		snap.Totals.Accounts++
		snap.Totals.Total += p.Total
		snap.Totals.Attempted += p.Attempted
		snap.Totals.Sent += p.Sent
		snap.Totals.Failed += p.Failed
		snap.Totals.Skipped += p.Skipped
	}
	return snap
}
