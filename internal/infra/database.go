package infra

import (
	"fmt"

	"landedcost/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// GORM cannot express (partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Driver errors are translated into gorm.Err* sentinels so the
		// repositories can detect uniqueness conflicts portably.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates the schema. Also used by seeding CLIs.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Supplier{},
		&model.Product{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.PriceHistory{},
		&model.SourceDocument{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate
// cannot fully handle on its own. Each statement uses IF NOT EXISTS semantics
// so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// partial index for the extraction retry cron query
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_source_documents_pending_retry') THEN
		    CREATE INDEX idx_source_documents_pending_retry
		        ON source_documents (next_retry_at)
		        WHERE status = 'pending' AND next_retry_at IS NOT NULL;
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
