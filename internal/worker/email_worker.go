package worker

// email_worker.go
// Sends ingest report emails queued on QueueEmail.

import (
	"context"
	"encoding/json"

	"landedcost/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EmailWorker delivers queued emails through the SMTP mailer.
type EmailWorker struct {
	mailer *infra.Mailer
}

func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: bad payload")
		return
	}

	if err := w.mailer.SendReport(payload.To, payload.Subject, payload.Body); err != nil {
		log.Error().Err(err).Str("to", payload.To).Msg("email_worker: send failed")
		return
	}
	log.Info().Str("to", payload.To).Str("subject", payload.Subject).Msg("email_worker: sent")
}
