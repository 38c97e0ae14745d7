// internal/smtpconn/transport.go
package smtpconn

import (
	"crypto/tls"
	"fmt"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	appErrors "github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/errors"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/model"
)

// provider endpoints, STARTTLS on the submission port
var smtpEndpoints = map[string]string{
	"gmail.com":   "smtp.gmail.com:587",
	"yahoo.com":   "smtp.mail.yahoo.com:587",
	"hotmail.com": "smtp-mail.outlook.com:587",
	"outlook.com": "smtp-mail.outlook.com:587",
	"aol.com":     "smtp.aol.com:587",
}

// Endpoint returns the SMTP submission address for an account, or an
// UnsupportedProviderError for unknown domains.
func Endpoint(acct model.Account) (string, error) {
	addr, ok := smtpEndpoints[acct.Domain()]
	if !ok {
		return "", appErrors.NewUnsupportedProvider(acct.Domain())
	}
	return addr, nil
}

// Conn is one live transport connection. The manager owns every Conn it
// opens and closes each exactly once.
type Conn interface {
	// Noop is the cheap liveness probe used before reusing a session.
	Noop() error
	// Send performs one protocol-level delivery.
	Send(from, to string, raw []byte) error
	Close() error
}

// Dialer opens a transport connection for an account. Swapped for a
// fake in tests.
type Dialer interface {
	Dial(acct model.Account, cred model.Credential) (Conn, error)
}

// SMTPDialer dials the account's provider with STARTTLS and
// authenticates with the resolved credential.
type SMTPDialer struct{}

func (SMTPDialer) Dial(acct model.Account, cred model.Credential) (Conn, error) {
	addr, err := Endpoint(acct)
	if err != nil {
		return nil, err
	}
	host := addr[:len(addr)-len(":587")]
	c, err := smtp.DialStartTLS(addr, &tls.Config{ServerName: host})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if err := c.Auth(sasl.NewPlainClient("", cred.Email, cred.Password)); err != nil {
		_ = c.Close()
		return nil, err
	}
	return &smtpClientConn{c: c}, nil
}

type smtpClientConn struct {
	c *smtp.Client
}

func (s *smtpClientConn) Noop() error { return s.c.Noop() }

func (s *smtpClientConn) Send(from, to string, raw []byte) error {
	if err := s.c.Mail(from, nil); err != nil {
		return err
	}
	if err := s.c.Rcpt(to, nil); err != nil {
		return err
	}
	w, err := s.c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (s *smtpClientConn) Close() error { return s.c.Quit() }
