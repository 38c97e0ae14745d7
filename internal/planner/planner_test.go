package planner_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	appErrors "github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/errors"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/model"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/planner"
)

func makeAccounts(n int) []model.Account {
	accounts := make([]model.Account, n)
	for i := range accounts {
		accounts[i] = model.Account{
			ID:       i + 1,
			Email:    fmt.Sprintf("sender%d@gmail.com", i+1),
			Protocol: model.ProtocolSMTP,
		}
	}
	return accounts
}

func makeRecipients(n int) []string {
	recipients := make([]string, n)
	for i := range recipients {
		recipients[i] = fmt.Sprintf("lead%d@test.com", i+1)
	}
	return recipients
}

func TestPlanDistributeRemainderFirst(t *testing.T) {
	// 3 accounts, 10 recipients: shares must be [4,3,3] in input order
	accounts := makeAccounts(3)
	recipients := makeRecipients(10)

	asn, err := planner.Plan(accounts, recipients, planner.ModeDistribute, 0)
	require.NoError(t, err)

	require.Len(t, asn.Share(accounts[0]), 4)
	require.Len(t, asn.Share(accounts[1]), 3)
	require.Len(t, asn.Share(accounts[2]), 3)
	require.Equal(t, 0, asn.Unassigned)

	seen := map[string]bool{}
	for _, acct := range accounts {
		for _, rcpt := range asn.Share(acct) {
			require.False(t, seen[rcpt], "recipient %s assigned twice", rcpt)
			seen[rcpt] = true
		}
	}
	require.Len(t, seen, 10)
}

func TestPlanDistributeUnionCoversAll(t *testing.T) {
	cases := []struct {
		recipients int
		accounts   int
	}{
		{12, 12},
		{15, 12},
		{100, 5},
		{7, 3},
	}
	for _, tc := range cases {
		accounts := makeAccounts(tc.accounts)
		recipients := makeRecipients(tc.recipients)

		asn, err := planner.Plan(accounts, recipients, planner.ModeDistribute, 0)
		require.NoError(t, err)

		total := 0
		seen := map[string]bool{}
		for _, acct := range accounts {
			share := asn.Share(acct)
			total += len(share)
			for _, rcpt := range share {
				require.False(t, seen[rcpt])
				seen[rcpt] = true
			}
		}
		require.Equal(t, tc.recipients, total, "%d recipients over %d accounts", tc.recipients, tc.accounts)
	}
}

func TestPlanDistributeCapDropsLeftovers(t *testing.T) {
	accounts := makeAccounts(5)
	recipients := makeRecipients(1000)

	asn, err := planner.Plan(accounts, recipients, planner.ModeDistribute, 15)
	require.NoError(t, err)

	assigned := 0
	for _, acct := range accounts {
		require.Len(t, asn.Share(acct), 15)
		assigned += 15
	}
	// cap leftovers are dropped, never reassigned
	require.Equal(t, 1000-assigned, asn.Unassigned)
}

func TestPlanDistributeZeroRecipients(t *testing.T) {
	accounts := makeAccounts(4)

	asn, err := planner.Plan(accounts, nil, planner.ModeDistribute, 0)
	require.NoError(t, err)

	for _, acct := range accounts {
		require.Empty(t, asn.Share(acct))
	}
	require.Equal(t, 0, asn.Active())
}

func TestPlanZeroAccountsFatal(t *testing.T) {
	_, err := planner.Plan(nil, makeRecipients(5), planner.ModeDistribute, 0)
	require.Error(t, err)
	var fatal *appErrors.ErrNoUsableAccounts
	require.ErrorAs(t, err, &fatal)
}

func TestPlanBroadcastFullListEveryAccount(t *testing.T) {
	accounts := makeAccounts(3)
	recipients := makeRecipients(7)

	asn, err := planner.Plan(accounts, recipients, planner.ModeBroadcast, 2)
	require.NoError(t, err)

	for _, acct := range accounts {
		require.Equal(t, recipients, asn.Share(acct))
	}
	require.Equal(t, 0, asn.Unassigned)
}

func TestPlanDeterministic(t *testing.T) {
	accounts := makeAccounts(4)
	recipients := makeRecipients(11)

	first, err := planner.Plan(accounts, recipients, planner.ModeDistribute, 3)
	require.NoError(t, err)
	second, err := planner.Plan(accounts, recipients, planner.ModeDistribute, 3)
	require.NoError(t, err)

	require.Equal(t, first.Shares, second.Shares)
	require.Equal(t, first.Unassigned, second.Unassigned)
}
