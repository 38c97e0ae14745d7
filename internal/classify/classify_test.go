package classify_test

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/require"

	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/classify"
	appErrors "github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/errors"
)

func smtpErr(code int, msg string) error {
	return &smtp.SMTPError{Code: code, Message: msg}
}

func TestClassifyKinds(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		kind   classify.Kind
		policy classify.Policy
	}{
		{"auth 535", smtpErr(535, "Username and Password not accepted"), classify.KindAuthFailed, classify.AbortAccount},
		{"auth 530", smtpErr(530, "Authentication Required"), classify.KindAuthFailed, classify.AbortAccount},
		{"suspended", smtpErr(550, "Account suspended due to unusual activity"), classify.KindAccountSuspended, classify.AbortAccount},
		{"quota 550", smtpErr(550, "Daily user sending quota exceeded"), classify.KindQuotaExceeded, classify.AbortAccount},
		{"invalid recipient", smtpErr(550, "No such user here"), classify.KindInvalidRecipient, classify.SkipRecipient},
		{"invalid recipient 553", smtpErr(553, "mailbox name not allowed"), classify.KindInvalidRecipient, classify.SkipRecipient},
		{"message too big", smtpErr(552, "message size exceeds fixed maximum"), classify.KindAttachmentTooLarge, classify.SkipRecipient},
		{"storage quota 452", smtpErr(452, "insufficient system storage"), classify.KindQuotaExceeded, classify.AbortAccount},
		{"rate limited", smtpErr(421, "Too many messages, rate limited. Try again later"), classify.KindRateLimited, classify.RetrySameSession},
		{"transient 451", smtpErr(451, "local error in processing"), classify.KindUnknownTransient, classify.ReopenAndRetry},
		{"protocol rejected", smtpErr(554, "transaction failed"), classify.KindProtocolRejected, classify.SkipRecipient},
		{"eof", io.EOF, classify.KindConnectionTimeout, classify.ReopenAndRetry},
		{"reset", errors.New("read tcp: connection reset by peer"), classify.KindConnectionTimeout, classify.ReopenAndRetry},
		{"credential", appErrors.NewCredentialUnavailable("a@gmail.com", errors.New("no rows")), classify.KindCredentialUnavailable, classify.AbortAccount},
		{"provider", appErrors.NewUnsupportedProvider("example.org"), classify.KindUnknownFatal, classify.AbortAccount},
		{"attachment too large", &appErrors.AttachmentError{Filename: "a.pdf", TooLarge: true, Err: errors.New("30MB")}, classify.KindAttachmentTooLarge, classify.SkipRecipient},
		{"attachment other", &appErrors.AttachmentError{Filename: "a.pdf", Err: errors.New("read failed")}, classify.KindUnknownTransient, classify.ReopenAndRetry},
		{"worker", appErrors.NewWorkerError("a@gmail.com", errors.New("boom")), classify.KindWorkerInternal, classify.AbortAccount},
		{"unknown", errors.New("something odd"), classify.KindUnknownTransient, classify.ReopenAndRetry},
	}
	for _, tc := range cases {
		kind, policy := classify.Classify(tc.err)
		require.Equal(t, tc.kind, kind, tc.name)
		require.Equal(t, tc.policy, policy, tc.name)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	errs := []error{
		smtpErr(535, "bad credentials"),
		io.EOF,
		errors.New("whatever"),
		appErrors.NewWorkerError("x@gmail.com", errors.New("panic")),
	}
	for _, err := range errs {
		k1, p1 := classify.Classify(err)
		for i := 0; i < 5; i++ {
			k2, p2 := classify.Classify(err)
			require.Equal(t, k1, k2)
			require.Equal(t, p1, p2)
		}
	}
}

func TestEveryKindHasPolicyAndHint(t *testing.T) {
	kinds := []classify.Kind{
		classify.KindAuthFailed, classify.KindRateLimited,
		classify.KindQuotaExceeded, classify.KindAccountSuspended,
		classify.KindConnectionTimeout, classify.KindInvalidRecipient,
		classify.KindProtocolRejected, classify.KindAttachmentTooLarge,
		classify.KindCredentialUnavailable, classify.KindUnknownTransient,
		classify.KindUnknownFatal, classify.KindWorkerInternal,
	}
	require.Len(t, kinds, 12)
	for _, k := range kinds {
		require.NotEmpty(t, classify.PolicyFor(k), k)
		require.NotEmpty(t, classify.HintFor(k), k)
	}
}

func TestTrackerHistoryAppendOnly(t *testing.T) {
	tr := classify.NewTracker()

	tr.Record("smtp:a@gmail.com", smtpErr(535, "nope"))
	tr.Record("smtp:a@gmail.com", smtpErr(550, "no such user"))
	tr.Record("smtp:b@gmail.com", io.EOF)

	a := tr.History("smtp:a@gmail.com")
	require.Len(t, a, 2)
	require.Equal(t, classify.KindAuthFailed, a[0].Kind)
	require.Equal(t, classify.KindInvalidRecipient, a[1].Kind)

	require.Len(t, tr.History("smtp:b@gmail.com"), 1)
	require.Empty(t, tr.History("smtp:c@gmail.com"))

	// mutating the returned copy must not reach the tracker
	a[0].Kind = classify.KindUnknownFatal
	require.Equal(t, classify.KindAuthFailed, tr.History("smtp:a@gmail.com")[0].Kind)
}

func TestTrackerHistogram(t *testing.T) {
	tr := classify.NewTracker()
	for i := 0; i < 3; i++ {
		tr.Record("smtp:a@gmail.com", smtpErr(421, "rate limited, try again"))
	}
	tr.Record("smtp:a@gmail.com", smtpErr(535, "denied"))

	hist := tr.Histogram("smtp:a@gmail.com")
	require.Equal(t, 3, hist[classify.KindRateLimited])
	require.Equal(t, 1, hist[classify.KindAuthFailed])
	require.Len(t, hist, 2)
}

func TestTrackerConcurrentRecords(t *testing.T) {
	tr := classify.NewTracker()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			account := fmt.Sprintf("smtp:worker%d@gmail.com", w%4)
			for i := 0; i < 50; i++ {
				tr.Record(account, io.EOF)
			}
		}(w)
	}
	wg.Wait()

	total := 0
	for w := 0; w < 4; w++ {
		total += len(tr.History(fmt.Sprintf("smtp:worker%d@gmail.com", w)))
	}
	require.Equal(t, 400, total)
}
