package model

import (
	"time"

	"github.com/google/uuid"
)

// Source document pipeline states.
const (
	DocumentStatusPending  = "pending"
	DocumentStatusIngested = "ingested"
	DocumentStatusFailed   = "failed"
)

// SourceDocument tracks an uploaded invoice document through the extraction
// pipeline: stored → extraction job queued → payload extracted and ingested.
// Retry fields are used by the retry cron to re-attempt failed extractions.
type SourceDocument struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Filename    string     `gorm:"not null"`
	StoragePath string     `gorm:"not null"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'"`
	InvoiceID   *uuid.UUID `gorm:"type:uuid;index"`
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
