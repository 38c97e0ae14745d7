// internal/credfile/credfile.go
package credfile

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	appErrors "github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/errors"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/model"
)

// FileStore is the file-backed credential source: one "email,password"
// line per account. It doubles as a CredentialStore for runs without a
// database.
type FileStore struct {
	accounts []model.Account
	creds    map[string]model.Credential
}

// ParseAccounts reads "email,password" lines. Every line needs a comma,
// non-empty fields and an @ in the address.
func ParseAccounts(r io.Reader) (*FileStore, error) {
	fs := &FileStore{creds: make(map[string]model.Credential)}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.Contains(line, ",") {
			return nil, fmt.Errorf("line %d: invalid format (missing comma)", lineNo)
		}
		parts := strings.SplitN(line, ",", 2)
		email := strings.TrimSpace(parts[0])
		password := strings.TrimSpace(parts[1])
		if email == "" || password == "" {
			return nil, fmt.Errorf("line %d: empty email or password", lineNo)
		}
		if !strings.Contains(email, "@") {
			return nil, fmt.Errorf("line %d: invalid email format", lineNo)
		}
		fs.accounts = append(fs.accounts, model.Account{
			ID:       len(fs.accounts) + 1,
			Email:    email,
			Protocol: model.ProtocolSMTP,
		})
		fs.creds[email] = model.Credential{Email: email, Password: password}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(fs.accounts) == 0 {
		return nil, fmt.Errorf("no accounts found")
	}
	return fs, nil
}

// LoadAccounts reads an accounts file from disk.
func LoadAccounts(path string) (*FileStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fs, err := ParseAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fs, nil
}

// Accounts returns the parsed accounts in file order.
func (fs *FileStore) Accounts() []model.Account {
	out := make([]model.Account, len(fs.accounts))
	copy(out, fs.accounts)
	return out
}

// Resolve implements smtpconn.CredentialStore.
func (fs *FileStore) Resolve(ctx context.Context, acct model.Account) (model.Credential, error) {
	cred, ok := fs.creds[acct.Email]
	if !ok {
		return model.Credential{}, appErrors.NewCredentialUnavailable(acct.Email, fmt.Errorf("not in accounts file"))
	}
	return cred, nil
}

// ParseLeads reads one recipient address per line, skipping blanks.
func ParseLeads(r io.Reader) ([]string, error) {
	var leads []string
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		email := strings.TrimSpace(scanner.Text())
		if email == "" {
			continue
		}
		if !strings.Contains(email, "@") {
			return nil, fmt.Errorf("line %d: invalid email format", lineNo)
		}
		leads = append(leads, email)
	}
	return leads, scanner.Err()
}

// LoadLeads reads a leads file from disk.
func LoadLeads(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	leads, err := ParseLeads(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return leads, nil
}
