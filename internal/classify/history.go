// internal/classify/history.go
package classify

import (
	"sync"
	"time"
)

// ErrorRecord is one classified failure for one account. Immutable once
// appended.
type ErrorRecord struct {
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Account   string    `json:"account"`
}

// accountHistory holds one account's failures behind its own lock so
// recording for one account never contends with another.
type accountHistory struct {
	mu      sync.Mutex
	records []ErrorRecord
}

// Tracker keeps an append-only, per-account failure history. Handles are
// passed explicitly; there is no package-level registry.
type Tracker struct {
	mu       sync.Mutex
	accounts map[string]*accountHistory
}

func NewTracker() *Tracker {
	return &Tracker{accounts: make(map[string]*accountHistory)}
}

func (t *Tracker) historyFor(account string) *accountHistory {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.accounts[account]
	if !ok {
		h = &accountHistory{}
		t.accounts[account] = h
	}
	return h
}

// Record classifies err and appends it to the account's history,
// returning the kind and policy for the caller to act on.
func (t *Tracker) Record(account string, err error) (Kind, Policy) {
	kind, policy := Classify(err)
	h := t.historyFor(account)
	h.mu.Lock()
	h.records = append(h.records, ErrorRecord{
		Kind:      kind,
		Message:   err.Error(),
		Timestamp: time.Now(),
		Account:   account,
	})
	h.mu.Unlock()
	return kind, policy
}

// History returns a copy of the account's failure records in append
// order.
func (t *Tracker) History(account string) []ErrorRecord {
	h := t.historyFor(account)
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ErrorRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Histogram returns occurrence counts per kind for one account.
func (t *Tracker) Histogram(account string) map[Kind]int {
	h := t.historyFor(account)
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[Kind]int)
	for _, r := range h.records {
		out[r.Kind]++
	}
	return out
}
