// cmd/server/main.go
package main

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/attach"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/db"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/handler"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/queue"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/repository"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/smtpconn"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, relying on OS environment variables")
	}

	conn, err := db.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer conn.Close()
	log.Info().Msg("connected to database")

	accountRepo := &repository.AccountRepository{DB: conn}

	var publisher queue.Publisher
	if url := os.Getenv("AMQP_URL"); url != "" {
		mq, err := amqp.Dial(url)
		if err != nil {
			log.Fatal().Err(err).Msg("rabbitmq connect failed")
		}
		defer mq.Close()
		pub, err := queue.NewAMQPPublisher(mq)
		if err != nil {
			log.Fatal().Err(err).Msg("queue setup failed")
		}
		defer pub.Close()
		publisher = pub
		log.Info().Msg("connected to rabbitmq")
	}

	var attachments attach.Provider
	if dir := os.Getenv("ATTACHMENT_DIR"); dir != "" {
		attachments = attach.NewDirProvider(dir, "*.pdf", "*.png", "*.jpg")
	}

	campaignHandler := &handler.CampaignHandler{
		Accounts:    accountRepo,
		Creds:       accountRepo,
		Dialer:      smtpconn.SMTPDialer{},
		Attachments: attachments,
		Publisher:   publisher,
		Runs:        handler.NewRunRegistry(),
		Log:         log,
	}

	r := chi.NewRouter()
	campaignHandler.Routes(r)

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Info().Str("addr", addr).Msg("server running")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
