package worker

// Dead-letter queue for jobs that exhausted their retries. One Redis list per
// source queue (dlq:{queue}); entries carry the document id so an operator
// draining the list can re-drive or inspect the stuck document directly.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry is the envelope stored on the dead-letter list.
type DLQEntry struct {
	Queue      string          `json:"queue"`
	JobType    string          `json:"job_type"`
	DocumentID string          `json:"document_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	Reason     string          `json:"reason"`
	FailedAt   time.Time       `json:"failed_at"`
	Attempts   int             `json:"attempts"`
}

// SendToDLQ parks a job that exceeded its retry limit. Failures here are
// logged, not returned — the caller has already recorded the document as
// failed and must not abort on DLQ bookkeeping.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType, documentID string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		Queue:      queue,
		JobType:    jobType,
		DocumentID: documentID,
		Payload:    payload,
		Reason:     reason,
		FailedAt:   time.Now().UTC(),
		Attempts:   attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal entry")
		return
	}
	if err := rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: push entry")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("document_id", documentID).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job parked after exhausting retries")
}

// DLQLength reports the number of parked jobs on a queue's dead-letter list.
// Surfaced by the health endpoint for monitoring.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
