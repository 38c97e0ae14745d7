// cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/credfile"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/db"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/model"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/repository"
)

// Seeds the accounts table from an "email,password" file so the API and
// worker can resolve credentials from Postgres.
func main() {
	accountsPath := flag.String("accounts", "accounts.txt", "path to the email,password accounts file")
	flag.Parse()

	_ = godotenv.Load()

	conn, err := db.Connect()
	if err != nil {
		fmt.Fprintln(os.Stderr, "database connect failed:", err)
		os.Exit(1)
	}
	defer conn.Close()

	store, err := credfile.LoadAccounts(*accountsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "accounts file invalid:", err)
		os.Exit(1)
	}

	repo := &repository.AccountRepository{DB: conn}
	ctx := context.Background()
	seeded := 0
	for _, acct := range store.Accounts() {
		cred, err := store.Resolve(ctx, acct)
		if err != nil {
			continue
		}
		if err := repo.Upsert(acct.Email, cred.Password, model.ProtocolSMTP); err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed %s: %v\n", acct.Email, err)
			continue
		}
		seeded++
	}

	fmt.Printf("Seeded: %d accounts\n", seeded)
}
