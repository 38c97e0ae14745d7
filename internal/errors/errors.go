// internal/errors/errors.go
package appErrors

import "fmt"

// ErrNoUsableAccounts is a sentinel error: a run was requested with an
// empty account list. This is a run-level fatal, not a per-account error.
type ErrNoUsableAccounts struct{}

func (e *ErrNoUsableAccounts) Error() string {
	return "no usable accounts for this run"
}

// Helper constructor
func NewNoUsableAccounts() error {
	return &ErrNoUsableAccounts{}
}

// CredentialUnavailableError signals that the credential store could not
// resolve a credential for an account.
type CredentialUnavailableError struct {
	Email string
	Err   error
}

func (e *CredentialUnavailableError) Error() string {
	return fmt.Sprintf("credential unavailable for %s: %v", e.Email, e.Err)
}

func (e *CredentialUnavailableError) Unwrap() error { return e.Err }

func NewCredentialUnavailable(email string, err error) error {
	return &CredentialUnavailableError{Email: email, Err: err}
}

// UnsupportedProviderError signals that no SMTP endpoint is known for the
// account's mail provider.
type UnsupportedProviderError struct {
	Domain string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported email provider: %s", e.Domain)
}

func NewUnsupportedProvider(domain string) error {
	return &UnsupportedProviderError{Domain: domain}
}

// AttachmentError signals that the attachment provider failed to build a
// payload for a recipient. TooLarge distinguishes size rejections from
// other causes.
type AttachmentError struct {
	Filename string
	TooLarge bool
	Err      error
}

func (e *AttachmentError) Error() string {
	if e.TooLarge {
		return fmt.Sprintf("attachment %s exceeds size limit: %v", e.Filename, e.Err)
	}
	return fmt.Sprintf("attachment %s: %v", e.Filename, e.Err)
}

func (e *AttachmentError) Unwrap() error { return e.Err }

// WorkerError wraps an unexpected internal failure inside a send worker,
// typically a recovered panic.
type WorkerError struct {
	Account string
	Err     error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker error for %s: %v", e.Account, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }

func NewWorkerError(account string, err error) error {
	return &WorkerError{Account: account, Err: err}
}
