// internal/repository/account_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	appErrors "github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/errors"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/model"
)

type AccountRepositoryInterface interface {
	List(limit int) ([]model.Account, error)
	Upsert(email, password string, protocol model.Protocol) error
	Resolve(ctx context.Context, acct model.Account) (model.Credential, error)
}

// AccountRepository persists sending accounts and their credentials in
// Postgres. It is the production CredentialStore: the dispatch engine
// resolves a credential through it once per session open.
type AccountRepository struct {
	DB *sql.DB
}

// List returns accounts in insertion order. limit <= 0 returns all.
func (r *AccountRepository) List(limit int) ([]model.Account, error) {
	query := `SELECT id, email, protocol FROM accounts ORDER BY id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Email, &a.Protocol); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Upsert inserts or refreshes one account credential.
func (r *AccountRepository) Upsert(email, password string, protocol model.Protocol) error {
	query := `
        INSERT INTO accounts (email, password, protocol)
        VALUES ($1, $2, $3)
        ON CONFLICT (email) DO UPDATE SET password = EXCLUDED.password, protocol = EXCLUDED.protocol
    `
	_, err := r.DB.Exec(query, email, password, protocol)
	return err
}

// Resolve implements smtpconn.CredentialStore.
func (r *AccountRepository) Resolve(ctx context.Context, acct model.Account) (model.Credential, error) {
	var password string
	query := `SELECT password FROM accounts WHERE email = $1`
	err := r.DB.QueryRowContext(ctx, query, acct.Email).Scan(&password)
	if err == sql.ErrNoRows {
		return model.Credential{}, appErrors.NewCredentialUnavailable(acct.Email, err)
	}
	if err != nil {
		return model.Credential{}, appErrors.NewCredentialUnavailable(acct.Email, err)
	}
	return model.Credential{Email: acct.Email, Password: password}, nil
}
