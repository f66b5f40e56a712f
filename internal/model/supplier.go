package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is identified by its exact name as printed on the invoice.
// Created on first sight during ingestion, never updated or deleted by the
// ingestion engine itself.
type Supplier struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Products []Product `gorm:"foreignKey:SupplierID"`
}
