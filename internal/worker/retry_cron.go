package worker

// retry_cron.go
// Background goroutine that periodically re-enqueues extraction jobs for
// documents stuck in status='pending' with a next_retry_at in the past.
// Uses the Circuit Breaker to avoid hammering a downed sidecar.

import (
	"context"
	"time"

	"landedcost/internal/infra"
	"landedcost/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	DocumentRepo repository.DocumentRepository
	Dispatcher   *Dispatcher
	CB           *infra.CircuitBreaker
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries retryable documents, and re-enqueues their extraction jobs.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed sidecar
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	docs, err := cfg.DocumentRepo.ListPendingRetries(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(docs) == 0 {
		return
	}

	for i := range docs {
		doc := docs[i]
		job := ExtractJobPayload{DocumentID: doc.ID.String()}
		if err := cfg.Dispatcher.EnqueueExtract(ctx, job); err != nil {
			log.Error().Err(err).Str("document_id", doc.ID.String()).
				Msg("retry_cron: failed to re-enqueue extraction")
			continue
		}
		// Clear the schedule so the next tick doesn't enqueue it again;
		// the worker re-sets it if the attempt fails.
		doc.NextRetryAt = nil
		if err := cfg.DocumentRepo.Update(ctx, &doc); err != nil {
			log.Error().Err(err).Str("document_id", doc.ID.String()).
				Msg("retry_cron: failed to clear retry schedule")
		}
		log.Info().Str("document_id", doc.ID.String()).Int("attempt", doc.RetryCount+1).
			Msg("retry_cron: extraction re-enqueued")
	}
}
