package deliverability_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/deliverability"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/model"
)

type mapTester map[string]float64

func (m mapTester) Score(ctx context.Context, acct model.Account) (float64, error) {
	s, ok := m[acct.Email]
	if !ok {
		return 0, errors.New("scorer unavailable")
	}
	return s, nil
}

func accountList(emails ...string) []model.Account {
	out := make([]model.Account, len(emails))
	for i, e := range emails {
		out[i] = model.Account{ID: i + 1, Email: e, Protocol: model.ProtocolSMTP}
	}
	return out
}

func TestSelectTopOrdersByScore(t *testing.T) {
	accounts := accountList("a@gmail.com", "b@gmail.com", "c@gmail.com")
	tester := mapTester{"a@gmail.com": 0.4, "b@gmail.com": 0.9, "c@gmail.com": 0.7}

	got := deliverability.SelectTop(context.Background(), tester, accounts, 0.5, 0)
	require.Len(t, got, 2)
	require.Equal(t, "b@gmail.com", got[0].Email)
	require.Equal(t, "c@gmail.com", got[1].Email)
}

func TestSelectTopLimitsAndSkipsUnscored(t *testing.T) {
	accounts := accountList("a@gmail.com", "b@gmail.com", "c@gmail.com")
	tester := mapTester{"a@gmail.com": 0.8, "c@gmail.com": 0.8}

	got := deliverability.SelectTop(context.Background(), tester, accounts, 0, 1)
	// equal scores keep input order
	require.Len(t, got, 1)
	require.Equal(t, "a@gmail.com", got[0].Email)
}
