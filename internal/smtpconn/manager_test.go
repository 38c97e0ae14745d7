package smtpconn_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/emersion/go-smtp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	appErrors "github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/errors"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/model"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/smtpconn"
)

// fakeConn scripts per-send outcomes for one dialed connection.
type fakeConn struct {
	mu       sync.Mutex
	sendErrs []error
	noopErr  error
	sent     int
	closed   int
}

func (c *fakeConn) Noop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.noopErr
}

func (c *fakeConn) Send(from, to string, raw []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if len(c.sendErrs) > 0 {
		err = c.sendErrs[0]
		c.sendErrs = c.sendErrs[1:]
	}
	if err == nil {
		c.sent++
	}
	return err
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
	errs  []error
	dials int
}

func (d *fakeDialer) Dial(acct model.Account, cred model.Credential) (smtpconn.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if len(d.errs) > 0 {
		err := d.errs[0]
		d.errs = d.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	c := &fakeConn{}
	d.conns = append(d.conns, c)
	return c, nil
}

type staticCreds struct{}

func (staticCreds) Resolve(ctx context.Context, acct model.Account) (model.Credential, error) {
	return model.Credential{Email: acct.Email, Password: "pw"}, nil
}

type emptyCreds struct{}

func (emptyCreds) Resolve(ctx context.Context, acct model.Account) (model.Credential, error) {
	return model.Credential{}, appErrors.NewCredentialUnavailable(acct.Email, errors.New("not seeded"))
}

var testAccount = model.Account{ID: 1, Email: "sender@gmail.com", Protocol: model.ProtocolSMTP}

func testMessage(to string) *model.Message {
	return &model.Message{
		From:    testAccount.Email,
		To:      to,
		Subject: "Notice",
		Body:    "Hello",
	}
}

func TestSendReusesSingleSession(t *testing.T) {
	dialer := &fakeDialer{}
	m := smtpconn.NewManager(dialer, staticCreds{}, zerolog.Nop())

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Send(context.Background(), testAccount, testMessage("lead@test.com")))
	}

	// five sends, exactly one session opened
	require.EqualValues(t, 1, m.Opens())
	require.Equal(t, 1, dialer.dials)
	require.Equal(t, 5, dialer.conns[0].sent)
}

func TestFailedProbeReopens(t *testing.T) {
	dialer := &fakeDialer{}
	m := smtpconn.NewManager(dialer, staticCreds{}, zerolog.Nop())

	require.NoError(t, m.Send(context.Background(), testAccount, testMessage("a@test.com")))
	dialer.conns[0].noopErr = errors.New("connection reset by peer")

	require.NoError(t, m.Send(context.Background(), testAccount, testMessage("b@test.com")))
	require.EqualValues(t, 2, m.Opens())
	require.Equal(t, 1, dialer.conns[0].closed)
	require.Equal(t, 1, dialer.conns[1].sent)
}

func TestTransportFailureRetriesOnFreshSession(t *testing.T) {
	dialer := &fakeDialer{}
	m := smtpconn.NewManager(dialer, staticCreds{}, zerolog.Nop())

	// prime the first session, then script a mid-send connection drop
	require.NoError(t, m.Send(context.Background(), testAccount, testMessage("a@test.com")))
	dialer.conns[0].mu.Lock()
	dialer.conns[0].sendErrs = []error{errors.New("write: broken pipe")}
	dialer.conns[0].mu.Unlock()

	require.NoError(t, m.Send(context.Background(), testAccount, testMessage("b@test.com")))
	require.EqualValues(t, 2, m.Opens())
	require.Equal(t, 1, dialer.conns[0].closed)
	require.Equal(t, 1, dialer.conns[1].sent)
}

func TestProtocolRejectionSurfacesUnretried(t *testing.T) {
	dialer := &fakeDialer{}
	m := smtpconn.NewManager(dialer, staticCreds{}, zerolog.Nop())

	require.NoError(t, m.Send(context.Background(), testAccount, testMessage("a@test.com")))
	rejection := &smtp.SMTPError{Code: 550, Message: "No such user"}
	dialer.conns[0].mu.Lock()
	dialer.conns[0].sendErrs = []error{rejection}
	dialer.conns[0].mu.Unlock()

	err := m.Send(context.Background(), testAccount, testMessage("b@test.com"))
	var smtpErr *smtp.SMTPError
	require.ErrorAs(t, err, &smtpErr)
	require.Equal(t, 550, smtpErr.Code)

	// the session survives a protocol rejection
	require.EqualValues(t, 1, m.Opens())
	require.Equal(t, 0, dialer.conns[0].closed)
}

func TestCredentialUnavailableSurfacesWithoutDialing(t *testing.T) {
	dialer := &fakeDialer{}
	m := smtpconn.NewManager(dialer, emptyCreds{}, zerolog.Nop())

	err := m.Send(context.Background(), testAccount, testMessage("a@test.com"))
	var credErr *appErrors.CredentialUnavailableError
	require.ErrorAs(t, err, &credErr)
	require.Equal(t, 0, dialer.dials)
}

func TestAuthFailureSurfacesFromDial(t *testing.T) {
	dialer := &fakeDialer{errs: []error{&smtp.SMTPError{Code: 535, Message: "Username and Password not accepted"}}}
	m := smtpconn.NewManager(dialer, staticCreds{}, zerolog.Nop())

	err := m.Send(context.Background(), testAccount, testMessage("a@test.com"))
	var smtpErr *smtp.SMTPError
	require.ErrorAs(t, err, &smtpErr)
	require.Equal(t, 535, smtpErr.Code)
	require.EqualValues(t, 0, m.Opens())
}

func TestReleaseAllClosesEachSessionOnce(t *testing.T) {
	dialer := &fakeDialer{}
	m := smtpconn.NewManager(dialer, staticCreds{}, zerolog.Nop())

	other := model.Account{ID: 2, Email: "second@yahoo.com", Protocol: model.ProtocolSMTP}
	require.NoError(t, m.Send(context.Background(), testAccount, testMessage("a@test.com")))
	require.NoError(t, m.Send(context.Background(), other, testMessage("b@test.com")))
	require.Equal(t, 2, m.OpenSessions())

	m.ReleaseAll()
	m.ReleaseAll()

	require.Equal(t, 0, m.OpenSessions())
	for _, c := range dialer.conns {
		require.Equal(t, 1, c.closed)
	}
}

func TestAcquireSerializedPerAccount(t *testing.T) {
	dialer := &fakeDialer{}
	m := smtpconn.NewManager(dialer, staticCreds{}, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Acquire(context.Background(), testAccount)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	// concurrent acquires on one account still open a single session
	require.EqualValues(t, 1, m.Opens())
}

func TestEndpointUnsupportedProvider(t *testing.T) {
	_, err := smtpconn.Endpoint(model.Account{Email: "user@example.org"})
	var provErr *appErrors.UnsupportedProviderError
	require.ErrorAs(t, err, &provErr)
	require.Equal(t, "example.org", provErr.Domain)
}

func TestBackoffSchedule(t *testing.T) {
	require.Equal(t, "500ms", smtpconn.Backoff(1).String())
	require.Equal(t, "1s", smtpconn.Backoff(2).String())
	require.Equal(t, "1.5s", smtpconn.Backoff(3).String())
}
