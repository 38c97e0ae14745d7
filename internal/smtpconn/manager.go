// internal/smtpconn/manager.go
package smtpconn

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	appErrors "github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/errors"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/model"
)

// CredentialStore resolves send credentials. Implemented by the Postgres
// account repository and the accounts-file store; consumed once per
// session open.
type CredentialStore interface {
	Resolve(ctx context.Context, acct model.Account) (model.Credential, error)
}

// DefaultReopenMax bounds how many times one delivery tears down and
// reopens a dropped connection before surfacing the failure.
const DefaultReopenMax = 3

// Backoff is the pause before reopen attempt n (1-based):
// n * 500ms. Pure so the schedule is unit-testable.
func Backoff(attempt int) time.Duration {
	return time.Duration(attempt) * 500 * time.Millisecond
}

// Session is one live connection bound to one account.
type Session struct {
	conn     Conn
	OpenedAt time.Time
	LastUsed time.Time
	Failures int
	closed   bool
}

// entry serializes all connection work for one account. Work on two
// different accounts never shares a lock.
type entry struct {
	mu   sync.Mutex
	sess *Session
}

// Manager owns at most one live session per account: opens, probes,
// reopens and guarantees every session it opened is closed exactly once.
type Manager struct {
	dialer    Dialer
	creds     CredentialStore
	log       zerolog.Logger
	reopenMax int

	opens atomic.Int64

	mu      sync.Mutex
	entries map[string]*entry
}

func NewManager(dialer Dialer, creds CredentialStore, log zerolog.Logger) *Manager {
	return &Manager{
		dialer:    dialer,
		creds:     creds,
		log:       log,
		reopenMax: DefaultReopenMax,
		entries:   make(map[string]*entry),
	}
}

func (m *Manager) entryFor(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	return e
}

// Opens reports how many underlying sessions have been opened. Session
// reuse keeps this far below the send count on a healthy account.
func (m *Manager) Opens() int64 { return m.opens.Load() }

// OpenSessions counts currently live sessions.
func (m *Manager) OpenSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		e.mu.Lock()
		if e.sess != nil {
			n++
		}
		e.mu.Unlock()
	}
	return n
}

// Acquire returns a live session for the account, reusing the existing
// one when the NOOP probe succeeds and reopening otherwise. Acquiring
// for two different accounts runs fully in parallel; for the same
// account it is serialized.
func (m *Manager) Acquire(ctx context.Context, acct model.Account) (*Session, error) {
	e := m.entryFor(acct.Key())
	e.mu.Lock()
	defer e.mu.Unlock()
	return m.ensureLocked(ctx, e, acct)
}

// ensureLocked validates or (re)opens the entry's session. Caller holds
// e.mu.
func (m *Manager) ensureLocked(ctx context.Context, e *entry, acct model.Account) (*Session, error) {
	if e.sess != nil {
		if err := e.sess.conn.Noop(); err == nil {
			return e.sess, nil
		}
		m.log.Debug().Str("account", acct.Email).Msg("session probe failed, reopening")
		m.closeLocked(e, acct)
	}

	cred, err := m.creds.Resolve(ctx, acct)
	if err != nil {
		var credErr *appErrors.CredentialUnavailableError
		if !errors.As(err, &credErr) {
			err = appErrors.NewCredentialUnavailable(acct.Email, err)
		}
		return nil, err
	}

	conn, err := m.dialer.Dial(acct, cred)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	e.sess = &Session{conn: conn, OpenedAt: now, LastUsed: now}
	m.opens.Add(1)
	m.log.Info().Str("account", acct.Email).Msg("transport session opened")
	return e.sess, nil
}

// Send performs one delivery for the account, reusing its persistent
// session. Transport-level drops (reset, timeout, EOF) tear the session
// down and retry on a fresh one with growing backoff, up to the reopen
// budget; protocol-level rejections surface to the caller unretried.
func (m *Manager) Send(ctx context.Context, acct model.Account, msg *model.Message) error {
	raw, err := BuildMIME(msg)
	if err != nil {
		return err
	}

	e := m.entryFor(acct.Key())
	e.mu.Lock()
	defer e.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt <= m.reopenMax; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, Backoff(attempt)); err != nil {
				return lastErr
			}
			m.log.Debug().
				Str("account", acct.Email).
				Int("attempt", attempt+1).
				Msg("reopening connection after transport failure")
		}

		sess, err := m.ensureLocked(ctx, e, acct)
		if err != nil {
			if !transportFailure(err) {
				return err
			}
			lastErr = err
			continue
		}

		err = sess.conn.Send(acct.Email, msg.To, raw)
		if err == nil {
			sess.LastUsed = time.Now()
			sess.Failures = 0
			return nil
		}
		if !transportFailure(err) {
			return err
		}
		sess.Failures++
		m.closeLocked(e, acct)
		lastErr = err
	}
	return lastErr
}

// Reset drops the account's session so the next send dials fresh. Used
// when the classifier asks for reopen-and-retry.
func (m *Manager) Reset(acct model.Account) {
	e := m.entryFor(acct.Key())
	e.mu.Lock()
	m.closeLocked(e, acct)
	e.mu.Unlock()
}

// Release closes the account's session if one is open.
func (m *Manager) Release(acct model.Account) {
	m.Reset(acct)
}

// ReleaseAll closes every live session. Called at campaign shutdown;
// safe to call more than once.
func (m *Manager) ReleaseAll() {
	m.mu.Lock()
	entries := make(map[string]*entry, len(m.entries))
	for k, e := range m.entries {
		entries[k] = e
	}
	m.mu.Unlock()

	for key, e := range entries {
		e.mu.Lock()
		if e.sess != nil && !e.sess.closed {
			e.sess.closed = true
			_ = e.sess.conn.Close()
			m.log.Debug().Str("session", key).Msg("session released")
		}
		e.sess = nil
		e.mu.Unlock()
	}
}

// closeLocked closes the entry's session exactly once. Caller holds
// e.mu.
func (m *Manager) closeLocked(e *entry, acct model.Account) {
	if e.sess == nil {
		return
	}
	if !e.sess.closed {
		e.sess.closed = true
		if err := e.sess.conn.Close(); err != nil {
			m.log.Debug().Err(err).Str("account", acct.Email).Msg("session close failed")
		}
	}
	e.sess = nil
}

// transportFailure reports whether err is a dropped-connection class
// failure worth a teardown-and-reopen, as opposed to a protocol reply.
func transportFailure(err error) bool {
	if err == nil {
		return false
	}
	var credErr *appErrors.CredentialUnavailableError
	if errors.As(err, &credErr) {
		return false
	}
	var provErr *appErrors.UnsupportedProviderError
	if errors.As(err, &provErr) {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "use of closed")
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
