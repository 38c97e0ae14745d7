// internal/handler/campaign_handler.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/attach"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/content"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/engine"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/model"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/planner"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/queue"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/smtpconn"
)

// AccountSource lists the sending accounts available for a run.
type AccountSource interface {
	List(limit int) ([]model.Account, error)
}

// CampaignHandler exposes the dispatch engine over HTTP.
type CampaignHandler struct {
	Accounts    AccountSource
	Creds       smtpconn.CredentialStore
	Dialer      smtpconn.Dialer
	Attachments attach.Provider
	Publisher   queue.Publisher
	Runs        *RunRegistry
	Log         zerolog.Logger
}

// campaignRequest is the JSON body for starting or enqueueing a run.
type campaignRequest struct {
	Recipients       []string `json:"recipients"`
	AccountLimit     int      `json:"account_limit"`
	Mode             string   `json:"mode"`
	PerAccountCap    int      `json:"per_account_cap"`
	SendDelaySeconds float64  `json:"send_delay_seconds"`
	SenderNameType   string   `json:"sender_name_type"`
	Subjects         []string `json:"subjects"`
	Bodies           []string `json:"bodies"`
	TimeoutSeconds   float64  `json:"timeout_seconds"`
}

func (req *campaignRequest) engineConfig() engine.Config {
	cfg := engine.Config{
		Mode:           planner.Mode(req.Mode),
		PerAccountCap:  req.PerAccountCap,
		SenderNameType: content.NameType(req.SenderNameType),
		Pool:           content.Pool{Subjects: req.Subjects, Bodies: req.Bodies},
	}
	if req.SendDelaySeconds > 0 {
		cfg.SendDelay = time.Duration(req.SendDelaySeconds * float64(time.Second))
	} else {
		cfg.SendDelay = content.DefaultSendDelay
	}
	if req.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(req.TimeoutSeconds * float64(time.Second))
	}
	return cfg
}

// StartCampaign launches a run in-process and returns its ID.
func (h *CampaignHandler) StartCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if len(req.Recipients) == 0 {
		http.Error(w, "no recipients", http.StatusBadRequest)
		return
	}

	accounts, err := h.Accounts.List(req.AccountLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(accounts) == 0 {
		http.Error(w, "no usable accounts", http.StatusConflict)
		return
	}

	conns := smtpconn.NewManager(h.Dialer, h.Creds, h.Log)
	ctl := engine.New(req.engineConfig(), conns, h.Attachments, h.Log)
	run := h.Runs.Add(ctl)

	go func() {
		report, err := ctl.Run(context.Background(), accounts, req.Recipients)
		if err != nil {
			h.Log.Error().Err(err).Str("run", ctl.ID()).Msg("campaign run failed")
		}
		run.Complete(report, err)
	}()

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id":     ctl.ID(),
		"accounts":   len(accounts),
		"recipients": len(req.Recipients),
		"status":     "running",
	})
}

// EnqueueCampaign publishes the run request to the broker for the
// worker fleet instead of running it in-process.
func (h *CampaignHandler) EnqueueCampaign(w http.ResponseWriter, r *http.Request) {
	if h.Publisher == nil {
		http.Error(w, "queue not configured", http.StatusServiceUnavailable)
		return
	}
	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if len(req.Recipients) == 0 {
		http.Error(w, "no recipients", http.StatusBadRequest)
		return
	}

	job := queue.RunJob{
		AccountLimit:     req.AccountLimit,
		Recipients:       req.Recipients,
		Mode:             req.Mode,
		PerAccountCap:    req.PerAccountCap,
		SendDelaySeconds: req.SendDelaySeconds,
		SenderNameType:   req.SenderNameType,
		Subjects:         req.Subjects,
		Bodies:           req.Bodies,
	}
	if err := h.Publisher.PublishRun(job); err != nil {
		http.Error(w, "failed to enqueue run", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"recipients": len(req.Recipients),
		"status":     "queued",
	})
}

// GetProgress returns a live progress snapshot for a run.
func (h *CampaignHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	run, ok := h.Runs.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(run.Controller.Snapshot())
}

// CancelCampaign requests cooperative cancellation of a run.
func (h *CampaignHandler) CancelCampaign(w http.ResponseWriter, r *http.Request) {
	run, ok := h.Runs.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	run.Controller.Cancel()
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id": run.Controller.ID(),
		"status": "cancelling",
	})
}

// GetReport returns the final report once every worker is terminal.
func (h *CampaignHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	run, ok := h.Runs.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	report, done, err := run.Result()
	if !done {
		http.Error(w, "run still in progress", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(report)
}

// Routes mounts the campaign API on a chi router.
func (h *CampaignHandler) Routes(r chi.Router) {
	r.Post("/campaigns", h.StartCampaign)
	r.Post("/campaigns/enqueue", h.EnqueueCampaign)
	r.Get("/campaigns/{id}/progress", h.GetProgress)
	r.Post("/campaigns/{id}/cancel", h.CancelCampaign)
	r.Get("/campaigns/{id}/report", h.GetReport)
}
