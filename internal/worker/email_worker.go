package worker

// email_worker.go
// Delivers PDF receipts from QueueEmail through the SMTP circuit breaker.

import (
	"context"
	"encoding/json"
	"path/filepath"

	"lubripos/internal/infra"
	"lubripos/internal/model"
	"lubripos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail. PDFPath is relative
// to the PDF storage directory.
type EmailJobPayload struct {
	ComprobanteID string `json:"comprobante_id,omitempty"`
	ToEmail       string `json:"to_email"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	PDFPath       string `json:"pdf_path"`
}

type EmailWorker struct {
	sender       infra.Sender
	cb           *infra.CircuitBreaker
	comprobantes repository.ComprobanteRepository
	storagePath  string
}

func NewEmailWorker(sender infra.Sender, cb *infra.CircuitBreaker, comprobantes repository.ComprobanteRepository, storagePath string) *EmailWorker {
	return &EmailWorker{sender: sender, cb: cb, comprobantes: comprobantes, storagePath: storagePath}
}

// Process returns the send error so the pool retries; an open breaker counts
// as a failed attempt.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	adjunto := ""
	if payload.PDFPath != "" {
		adjunto = filepath.Join(w.storagePath, filepath.Clean("/"+payload.PDFPath))
	}
	err := w.cb.Execute(func() error {
		return w.sender.SendComprobante(payload.ToEmail, payload.Subject, payload.Body, adjunto)
	})
	if err != nil {
		return err
	}

	log.Info().Str("to", payload.ToEmail).Msg("email_worker: comprobante enviado")
	w.marcar(ctx, payload.ComprobanteID, model.ComprobanteEnviado, nil)
	return nil
}

// GiveUp records the last delivery error on the receipt.
func (w *EmailWorker) GiveUp(ctx context.Context, raw json.RawMessage, cause error) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}
	msg := cause.Error()
	w.marcar(ctx, payload.ComprobanteID, model.ComprobanteError, &msg)
}

func (w *EmailWorker) marcar(ctx context.Context, rawID, estado string, lastError *string) {
	if rawID == "" || w.comprobantes == nil {
		return
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return
	}
	if err := w.comprobantes.UpdateEstado(ctx, id, estado, lastError); err != nil {
		log.Warn().Err(err).Str("comprobante_id", rawID).Msg("email_worker: failed to update comprobante")
	}
}
