package worker

// extract_worker.go
// Processes document-extraction jobs from QueueExtract: calls the extraction
// sidecar through the circuit breaker, feeds the extracted payload into the
// ingestion engine, and records the outcome on the SourceDocument row.
// Failed extractions are rescheduled with exponential backoff (max 3
// attempts) before landing in the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"landedcost/internal/dto"
	"landedcost/internal/infra"
	"landedcost/internal/model"
	"landedcost/internal/repository"
	"landedcost/internal/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxExtractAttempts = 3

// ExtractJobPayload is the job envelope sent to QueueExtract.
type ExtractJobPayload struct {
	DocumentID string `json:"document_id"`
}

// ExtractWorker wires the extraction sidecar to the ingestion engine.
type ExtractWorker struct {
	extractor   *infra.ExtractorClient
	cb          *infra.CircuitBreaker
	docRepo     repository.DocumentRepository
	ingest      service.IngestService
	dispatcher  *Dispatcher
	rdb         *redis.Client
	reportEmail string
}

func NewExtractWorker(
	extractor *infra.ExtractorClient,
	cb *infra.CircuitBreaker,
	docRepo repository.DocumentRepository,
	ingest service.IngestService,
	dispatcher *Dispatcher,
	rdb *redis.Client,
	reportEmail string,
) *ExtractWorker {
	return &ExtractWorker{
		extractor:   extractor,
		cb:          cb,
		docRepo:     docRepo,
		ingest:      ingest,
		dispatcher:  dispatcher,
		rdb:         rdb,
		reportEmail: reportEmail,
	}
}

// Process handles a single extraction job:
//  1. Parse ExtractJobPayload from the job envelope
//  2. Fetch the SourceDocument from DB
//  3. Call the extraction sidecar through the circuit breaker
//  4. Run the ingestion engine on the extracted payload
//  5. Update the document (status / invoice id / retry fields)
//  6. Optionally enqueue an ingest report email
func (w *ExtractWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ExtractJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("extract_worker: bad payload")
		return
	}
	docID, err := uuid.Parse(payload.DocumentID)
	if err != nil {
		log.Error().Str("document_id", payload.DocumentID).Msg("extract_worker: invalid document id")
		return
	}

	doc, err := w.docRepo.FindByID(ctx, docID)
	if err != nil {
		log.Error().Err(err).Str("document_id", payload.DocumentID).Msg("extract_worker: document not found")
		return
	}
	if doc.Status == model.DocumentStatusIngested {
		// Re-delivered job for an already processed document — nothing to do.
		return
	}

	var extracted *dto.IngestInvoiceRequest
	err = w.cb.Execute(func() error {
		var exErr error
		extracted, exErr = w.extractor.Extract(ctx, doc.StoragePath)
		return exErr
	})
	if err != nil {
		w.reschedule(ctx, doc, raw, fmt.Sprintf("extraction failed: %v", err))
		return
	}

	resp, err := w.ingest.Ingest(ctx, *extracted)
	if err != nil {
		w.reschedule(ctx, doc, raw, fmt.Sprintf("ingest failed: %v", err))
		return
	}

	invID, _ := uuid.Parse(resp.InvoiceID)
	doc.Status = model.DocumentStatusIngested
	doc.InvoiceID = &invID
	doc.NextRetryAt = nil
	doc.LastError = nil
	if err := w.docRepo.Update(ctx, doc); err != nil {
		log.Error().Err(err).Str("document_id", doc.ID.String()).Msg("extract_worker: failed to update document")
		return
	}

	log.Info().
		Str("document_id", doc.ID.String()).
		Str("invoice_id", resp.InvoiceID).
		Bool("duplicate", resp.Duplicate).
		Msg("extract_worker: document ingested")

	if w.reportEmail != "" {
		body := fmt.Sprintf("Document %s (%s) was ingested as invoice %s.",
			doc.ID, doc.Filename, resp.InvoiceID)
		job := EmailJobPayload{
			To:      w.reportEmail,
			Subject: "Invoice ingested: " + extracted.InvoiceNo,
			Body:    body,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, job); err != nil {
			log.Error().Err(err).Msg("extract_worker: failed to enqueue report email")
		}
	}
}

// reschedule records the failure and either plans the next attempt
// (exponential backoff: 1m, 2m, 4m) or moves the job to the DLQ.
func (w *ExtractWorker) reschedule(ctx context.Context, doc *model.SourceDocument, raw json.RawMessage, reason string) {
	doc.RetryCount++
	doc.LastError = &reason

	if doc.RetryCount >= maxExtractAttempts {
		doc.Status = model.DocumentStatusFailed
		doc.NextRetryAt = nil
		SendToDLQ(ctx, w.rdb, QueueExtract, "extract", doc.ID.String(), raw, reason, doc.RetryCount)
	} else {
		backoff := time.Duration(1<<(doc.RetryCount-1)) * time.Minute
		next := time.Now().Add(backoff)
		doc.NextRetryAt = &next
	}

	if err := w.docRepo.Update(ctx, doc); err != nil {
		log.Error().Err(err).Str("document_id", doc.ID.String()).Msg("extract_worker: failed to record retry state")
		return
	}
	log.Warn().
		Str("document_id", doc.ID.String()).
		Int("attempt", doc.RetryCount).
		Str("reason", reason).
		Msg("extract_worker: extraction attempt failed")
}
