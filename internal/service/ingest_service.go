package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"landedcost/internal/allocation"
	"landedcost/internal/config"
	"landedcost/internal/dto"
	"landedcost/internal/model"
	"landedcost/internal/repository"
	"landedcost/internal/uom"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IngestService is the invoice ingestion orchestrator: it turns a raw
// supplier invoice payload into durable supplier/product/invoice records and
// triggers finalization (surcharge allocation + price history) as one unit of
// work.
type IngestService interface {
	Ingest(ctx context.Context, req dto.IngestInvoiceRequest) (*dto.IngestInvoiceResponse, error)
}

type ingestService struct {
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
	invoiceRepo  repository.InvoiceRepository
	pricing      PricingService
	cfg          *config.Config
}

func NewIngestService(
	supplierRepo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	pricing PricingService,
	cfg *config.Config,
) IngestService {
	return &ingestService{
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		invoiceRepo:  invoiceRepo,
		pricing:      pricing,
		cfg:          cfg,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Ingest ───────────────────────────────────────────────────────────────────
// Steps, each a precondition for the next:
//  1. Validate the payload — nothing is written for a malformed request.
//  2. Upsert the supplier by exact name.
//  3. Idempotency check on (supplier_id, invoice_no): a re-sent invoice
//     returns the existing id instead of inserting a duplicate.
//  4. Create the invoice header (currency defaults from config).
//  5. Per line, in payload order: resolve/create the product, persist the
//     line item.
//  6. Finalize: allocate surcharges and update product costs + history.
//
// Any failure rolls the transaction back; if a step fails after the invoice
// header exists, a compensating cascade delete additionally removes the
// partial invoice so stores without transactional scope never expose it.

func (s *ingestService) Ingest(ctx context.Context, req dto.IngestInvoiceRequest) (*dto.IngestInvoiceResponse, error) {
	invoiceDate, mode, autoCreate, currency, verr := s.resolvePolicy(req)
	if verr != nil {
		return nil, verr
	}

	var resp *dto.IngestInvoiceResponse
	err := runTx(ctx, s.invoiceRepo.DB(), func(tx *gorm.DB) error {
		supplier, err := s.supplierRepo.UpsertByNameTx(tx, req.Supplier)
		if err != nil {
			if repository.IsUniqueViolation(err) {
				return &StoreConflictError{Err: err}
			}
			return err
		}

		if existing, err := s.invoiceRepo.FindBySupplierAndNumberTx(tx, supplier.ID, req.InvoiceNo); err == nil {
			log.Info().
				Str("supplier", req.Supplier).
				Str("invoice_no", req.InvoiceNo).
				Str("invoice_id", existing.ID.String()).
				Msg("ingest: duplicate business key, returning existing invoice")
			resp = &dto.IngestInvoiceResponse{Status: "ok", InvoiceID: existing.ID.String(), Duplicate: true}
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		inv := &model.Invoice{
			SupplierID:  supplier.ID,
			InvoiceNo:   req.InvoiceNo,
			InvoiceDate: invoiceDate,
			Currency:    currency,
		}
		if err := s.invoiceRepo.CreateTx(tx, inv); err != nil {
			if repository.IsUniqueViolation(err) {
				return &StoreConflictError{Err: err}
			}
			return err
		}

		if err := s.ingestLines(tx, supplier, inv, req.Items, mode, autoCreate); err != nil {
			// Compensating cleanup — redundant under a real transaction,
			// required when the store cannot roll the ingestion back.
			if derr := s.invoiceRepo.DeleteCascadeTx(tx, inv.ID); derr != nil {
				log.Error().Err(derr).Str("invoice_id", inv.ID.String()).
					Msg("ingest: compensating cleanup failed")
			}
			return err
		}

		resp = &dto.IngestInvoiceResponse{Status: "ok", InvoiceID: inv.ID.String()}
		return nil
	})
	if err != nil {
		return nil, asDomainError(err)
	}

	log.Info().
		Str("supplier", req.Supplier).
		Str("invoice_no", req.InvoiceNo).
		Str("invoice_id", resp.InvoiceID).
		Bool("duplicate", resp.Duplicate).
		Str("mode", string(mode)).
		Msg("ingest: invoice processed")
	return resp, nil
}

func (s *ingestService) ingestLines(
	tx *gorm.DB,
	supplier *model.Supplier,
	inv *model.Invoice,
	items []dto.IngestItemInput,
	mode allocation.Mode,
	autoCreate bool,
) error {
	lines := make([]ResolvedLine, 0, len(items))
	for i, in := range items {
		product, err := s.resolveProduct(tx, supplier, in, autoCreate)
		if err != nil {
			return err
		}

		item := model.InvoiceItem{
			InvoiceID:      inv.ID,
			LineType:       in.LineType,
			Qty:            in.Qty,
			UOM:            in.UOM,
			UnitPriceNet:   in.UnitPriceNet,
			TaxRatePercent: in.TaxRatePercent,
			DiscountAbs:    decimal.Zero,
			Position:       i,
		}
		if in.DiscountAbs != nil {
			item.DiscountAbs = *in.DiscountAbs
		}
		if product != nil {
			item.ProductID = &product.ID
		}
		if err := s.invoiceRepo.CreateItemTx(tx, &item); err != nil {
			return err
		}
		lines = append(lines, ResolvedLine{Item: item, Product: product})
	}

	return s.pricing.FinalizeInvoiceTx(tx, inv, lines, mode)
}

// resolveProduct implements the product resolver: shipping lines (and any
// line without a SKU) carry no product; known SKUs win as-is, their stored
// base-unit metadata being authoritative; unknown SKUs are either a hard
// failure or, with auto-creation enabled, derived from the line's unit code.
func (s *ingestService) resolveProduct(
	tx *gorm.DB,
	supplier *model.Supplier,
	in dto.IngestItemInput,
	autoCreate bool,
) (*model.Product, error) {
	if in.LineType == model.LineTypeShipping || in.ProductSKU == nil || *in.ProductSKU == "" {
		return nil, nil
	}
	sku := *in.ProductSKU

	p, err := s.productRepo.FindBySKUTx(tx, sku)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if !autoCreate {
		return nil, &UnknownProductError{SKU: sku}
	}

	name := sku
	if in.ProductName != nil && *in.ProductName != "" {
		name = *in.ProductName
	}
	np := &model.Product{
		SKU:        sku,
		Name:       name,
		BaseUOM:    string(uom.Piece),
		SupplierID: &supplier.ID,
		Active:     true,
	}
	switch {
	case uom.IsTransportUnit(in.UOM):
		factor := s.cfg.DefaultPiecesPerTransportUnit
		np.PiecesPerTransportUnit = &factor
	case uom.IsKilogram(in.UOM):
		np.BaseUOM = string(uom.Kg)
	}

	if err := s.productRepo.CreateTx(tx, np); err != nil {
		// Concurrent ingestion created the same SKU first — adopt its row.
		if repository.IsUniqueViolation(err) {
			if existing, err2 := s.productRepo.FindBySKUTx(tx, sku); err2 == nil {
				return existing, nil
			}
			return nil, &StoreConflictError{Err: err}
		}
		return nil, err
	}

	log.Info().Str("sku", sku).Str("base_uom", np.BaseUOM).Msg("ingest: auto-created product")
	return np, nil
}

// resolvePolicy validates the payload and settles per-call policy (allocation
// mode, auto-creation, currency). All failures here are ValidationErrors and
// happen before any write.
func (s *ingestService) resolvePolicy(req dto.IngestInvoiceRequest) (time.Time, allocation.Mode, bool, string, error) {
	// The HTTP handler already enforces these via validator tags, but the
	// extract worker feeds sidecar payloads in directly, so required fields
	// are re-checked on every entry path.
	if req.Supplier == "" {
		return time.Time{}, "", false, "", &ValidationError{Msg: "supplier is required"}
	}
	if req.InvoiceNo == "" {
		return time.Time{}, "", false, "", &ValidationError{Msg: "invoice_no is required"}
	}
	if len(req.Items) == 0 {
		return time.Time{}, "", false, "", &ValidationError{Msg: "items must contain at least one line"}
	}

	invoiceDate, err := time.Parse("2006-01-02", req.InvoiceDate)
	if err != nil {
		return time.Time{}, "", false, "", &ValidationError{Msg: "invoice_date must be an ISO-8601 date: " + req.InvoiceDate}
	}

	mode := allocation.Mode(s.cfg.DefaultAllocationMode)
	autoCreate := false
	if req.Options != nil {
		if req.Options.AllocateSurcharges != nil {
			mode = allocation.Mode(*req.Options.AllocateSurcharges)
		}
		if req.Options.AutoCreateProducts != nil {
			autoCreate = *req.Options.AutoCreateProducts
		}
	}
	if !mode.Valid() {
		return time.Time{}, "", false, "", &ValidationError{Msg: "unsupported allocation mode " + string(mode)}
	}

	currency := s.cfg.DefaultCurrency
	if req.Currency != nil && *req.Currency != "" {
		currency = *req.Currency
	}

	for i, in := range req.Items {
		switch in.LineType {
		case model.LineTypeProduct, model.LineTypeSurcharge, model.LineTypeShipping:
		default:
			return time.Time{}, "", false, "", &ValidationError{Msg: fmt.Sprintf("item %d: unsupported line_type %q", i, in.LineType)}
		}
		if !in.Qty.IsPositive() {
			return time.Time{}, "", false, "", &ValidationError{Msg: fmt.Sprintf("item %d: qty must be positive", i)}
		}
		if in.LineType == model.LineTypeProduct && (in.ProductSKU == nil || *in.ProductSKU == "") {
			return time.Time{}, "", false, "", &ValidationError{Msg: fmt.Sprintf("item %d: product lines require product_sku", i)}
		}
	}

	return invoiceDate, mode, autoCreate, currency, nil
}

// asDomainError keeps tagged engine errors as-is and wraps everything else as
// a store failure.
func asDomainError(err error) error {
	var (
		unknown  *UnknownProductError
		invalid  *ValidationError
		conflict *StoreConflictError
	)
	if errors.As(err, &unknown) || errors.As(err, &invalid) || errors.As(err, &conflict) ||
		errors.Is(err, ErrEmptyAllocationBucket) {
		return err
	}
	var unavailable *StoreUnavailableError
	if errors.As(err, &unavailable) {
		return err
	}
	return &StoreUnavailableError{Err: err}
}
