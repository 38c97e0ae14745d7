// internal/model/account.go
package model

import "strings"

// Protocol is the transport an account sends through.
type Protocol string

const (
	ProtocolSMTP Protocol = "smtp"
)

// Account is one sending identity. Identity (email + protocol) is fixed
// for the lifetime of a run; connection state lives in the connection
// manager, keyed by Key().
type Account struct {
	ID       int      `db:"id" json:"id"`
	Email    string   `db:"email" json:"email"`
	Protocol Protocol `db:"protocol" json:"protocol"`
}

// Key returns the stable identity used to key sessions, progress and
// error history for this account.
func (a Account) Key() string {
	return string(a.Protocol) + ":" + a.Email
}

// Domain returns the mail provider domain of the account address.
func (a Account) Domain() string {
	i := strings.LastIndex(a.Email, "@")
	if i < 0 {
		return ""
	}
	return strings.ToLower(a.Email[i+1:])
}

// Credential is a resolved send credential. Resolution is delegated to
// a CredentialStore implementation (Postgres repository or accounts
// file); the engine never persists these.
type Credential struct {
	Email    string `json:"email"`
	Password string `json:"-"`
}
