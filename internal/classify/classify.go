// internal/classify/classify.go
package classify

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/emersion/go-smtp"

	appErrors "github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/errors"
)

// Kind is one member of the closed failure taxonomy.
type Kind string

const (
	KindAuthFailed            Kind = "authentication-failed"
	KindRateLimited           Kind = "rate-limited"
	KindQuotaExceeded         Kind = "quota-exceeded"
	KindAccountSuspended      Kind = "account-suspended"
	KindConnectionTimeout     Kind = "connection-timeout"
	KindInvalidRecipient      Kind = "invalid-recipient"
	KindProtocolRejected      Kind = "protocol-rejected"
	KindAttachmentTooLarge    Kind = "attachment-too-large"
	KindCredentialUnavailable Kind = "credential-unavailable"
	KindUnknownTransient      Kind = "unknown-transient"
	KindUnknownFatal          Kind = "unknown-fatal"
	KindWorkerInternal        Kind = "worker-internal-error"
)

// Policy tells the worker what to do after a failure of a given kind.
type Policy string

const (
	RetrySameSession Policy = "retry-same-session"
	ReopenAndRetry   Policy = "reopen-and-retry"
	SkipRecipient    Policy = "skip-recipient-continue"
	AbortAccount     Policy = "abort-account"
)

// kindPolicies is the single source of truth for retry behavior. Every
// kind maps to exactly one policy.
var kindPolicies = map[Kind]Policy{
	KindAuthFailed:            AbortAccount,
	KindRateLimited:           RetrySameSession,
	KindQuotaExceeded:         AbortAccount,
	KindAccountSuspended:      AbortAccount,
	KindConnectionTimeout:     ReopenAndRetry,
	KindInvalidRecipient:      SkipRecipient,
	KindProtocolRejected:      SkipRecipient,
	KindAttachmentTooLarge:    SkipRecipient,
	KindCredentialUnavailable: AbortAccount,
	KindUnknownTransient:      ReopenAndRetry,
	KindUnknownFatal:          AbortAccount,
	KindWorkerInternal:        AbortAccount,
}

// hints are static, human-readable recovery suggestions surfaced in the
// final report. Looked up per kind, never computed at failure time.
var hints = map[Kind]string{
	KindAuthFailed:            "Check the account password or app password and re-authenticate the account.",
	KindRateLimited:           "Provider is throttling this account; increase the inter-send delay or pause the account.",
	KindQuotaExceeded:         "Daily sending quota reached; resume this account after the quota window resets.",
	KindAccountSuspended:      "The provider suspended this account; resolve the suspension before reusing it.",
	KindConnectionTimeout:     "Network path to the SMTP server is unstable; verify connectivity and retry later.",
	KindInvalidRecipient:      "Recipient address was rejected; remove it from the lead list.",
	KindProtocolRejected:      "The server rejected the message; inspect the raw response for the rejection reason.",
	KindAttachmentTooLarge:    "Attachment exceeds the provider size limit; use a smaller file.",
	KindCredentialUnavailable: "No stored credential for this account; seed it into the credential store.",
	KindUnknownTransient:      "Temporary failure; usually resolves on its own after a retry.",
	KindUnknownFatal:          "Unrecoverable failure; review the raw error and the account configuration.",
	KindWorkerInternal:        "Internal dispatch fault; check the service logs for the underlying panic or bug.",
}

// PolicyFor returns the retry policy for a kind.
func PolicyFor(k Kind) Policy {
	if p, ok := kindPolicies[k]; ok {
		return p
	}
	return AbortAccount
}

// HintFor returns the static recovery hint for a kind.
func HintFor(k Kind) string {
	return hints[k]
}

// Classify maps a raw failure to its kind and policy. Pure and
// deterministic: no I/O, no state, same input always yields the same
// answer.
func Classify(err error) (Kind, Policy) {
	kind := classifyKind(err)
	return kind, PolicyFor(kind)
}

func classifyKind(err error) Kind {
	if err == nil {
		return KindUnknownFatal
	}

	var credErr *appErrors.CredentialUnavailableError
	if errors.As(err, &credErr) {
		return KindCredentialUnavailable
	}
	var provErr *appErrors.UnsupportedProviderError
	if errors.As(err, &provErr) {
		return KindUnknownFatal
	}
	var attErr *appErrors.AttachmentError
	if errors.As(err, &attErr) {
		if attErr.TooLarge {
			return KindAttachmentTooLarge
		}
		return KindUnknownTransient
	}
	var workerErr *appErrors.WorkerError
	if errors.As(err, &workerErr) {
		return KindWorkerInternal
	}

	var smtpErr *smtp.SMTPError
	if errors.As(err, &smtpErr) {
		return classifySMTP(smtpErr)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindConnectionTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindConnectionTimeout
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindConnectionTimeout
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection refused") {
		return KindConnectionTimeout
	}

	return KindUnknownTransient
}

// classifySMTP maps a protocol reply to a kind. Providers are loose
// with reply codes, so a few well-known phrases disambiguate the
// overloaded ones.
func classifySMTP(e *smtp.SMTPError) Kind {
	msg := strings.ToLower(e.Message)

	switch e.Code {
	case 530, 534, 535:
		return KindAuthFailed
	case 550:
		switch {
		case strings.Contains(msg, "suspend"), strings.Contains(msg, "disabled"), strings.Contains(msg, "blocked"):
			return KindAccountSuspended
		case strings.Contains(msg, "quota"):
			return KindQuotaExceeded
		default:
			return KindInvalidRecipient
		}
	case 551, 553:
		return KindInvalidRecipient
	case 552:
		if strings.Contains(msg, "size") || strings.Contains(msg, "too large") {
			return KindAttachmentTooLarge
		}
		return KindQuotaExceeded
	case 452:
		return KindQuotaExceeded
	case 421, 450, 454:
		if strings.Contains(msg, "rate") || strings.Contains(msg, "too many") || strings.Contains(msg, "try again") {
			return KindRateLimited
		}
		return KindUnknownTransient
	}

	if e.Code >= 400 && e.Code < 500 {
		return KindUnknownTransient
	}
	return KindProtocolRejected
}
