package repository

import (
	"context"
	"time"

	"landedcost/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(ctx context.Context, d *model.SourceDocument) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SourceDocument, error)
	Update(ctx context.Context, d *model.SourceDocument) error

	// ListPendingRetries returns failed-but-retryable documents whose
	// next_retry_at has passed, oldest first, capped at limit.
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.SourceDocument, error)
}

type documentRepo struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) DocumentRepository { return &documentRepo{db: db} }

func (r *documentRepo) Create(ctx context.Context, d *model.SourceDocument) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *documentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SourceDocument, error) {
	var d model.SourceDocument
	err := r.db.WithContext(ctx).First(&d, id).Error
	return &d, err
}

func (r *documentRepo) Update(ctx context.Context, d *model.SourceDocument) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *documentRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.SourceDocument, error) {
	var docs []model.SourceDocument
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.DocumentStatusPending, now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&docs).Error
	return docs, err
}
