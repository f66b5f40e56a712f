package service

import (
	"context"

	"landedcost/internal/allocation"
	"landedcost/internal/dto"
	"landedcost/internal/model"
	"landedcost/internal/repository"
	"landedcost/internal/uom"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ResolvedLine pairs a persisted invoice line with its resolved product.
// Product is nil for shipping lines and for surcharge lines without a SKU.
type ResolvedLine struct {
	Item    model.InvoiceItem
	Product *model.Product
}

// PricingService applies the surcharge allocator to an ingested invoice and
// folds the result into product landed costs and price history. It also
// serves the standalone allocation preview.
type PricingService interface {
	// FinalizeInvoiceTx runs inside the ingestion transaction, after all
	// line items are persisted.
	FinalizeInvoiceTx(tx *gorm.DB, inv *model.Invoice, lines []ResolvedLine, mode allocation.Mode) error
	Preview(ctx context.Context, req dto.AllocationPreviewRequest) (*dto.AllocationPreviewResponse, error)
	// AdjustCost manually overrides a product's landed cost, recorded in
	// price history with the manual reason.
	AdjustCost(ctx context.Context, productID uuid.UUID, newCost decimal.Decimal) error
}

type pricingService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	historyRepo repository.PriceHistoryRepository
	// emptyBucketPolicy: "ignore" leaves an unallocatable surcharge as-is,
	// "error" aborts the ingestion.
	emptyBucketPolicy string
}

func NewPricingService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	historyRepo repository.PriceHistoryRepository,
	emptyBucketPolicy string,
) PricingService {
	return &pricingService{
		db:                db,
		productRepo:       productRepo,
		historyRepo:       historyRepo,
		emptyBucketPolicy: emptyBucketPolicy,
	}
}

// ── Finalization ─────────────────────────────────────────────────────────────

func (s *pricingService) FinalizeInvoiceTx(tx *gorm.DB, inv *model.Invoice, lines []ResolvedLine, mode allocation.Mode) error {
	// Non-product lines fund the surcharge pool; product lines receive it.
	totalSurcharge := decimal.Zero
	var productLines []ResolvedLine
	for _, l := range lines {
		if l.Item.LineType == model.LineTypeProduct && l.Product != nil {
			productLines = append(productLines, l)
			continue
		}
		totalSurcharge = totalSurcharge.Add(l.Item.NetTotal())
	}

	items := make([]allocation.Item, len(productLines))
	for i, l := range productLines {
		base, qtyBase := uom.Normalize(l.Item.UOM, l.Item.Qty, l.Product.PiecesPerTransportUnit)
		items[i] = allocation.Item{
			ID:           l.Item.ID,
			BaseUOM:      base,
			QtyBase:      qtyBase,
			UnitPriceNet: l.Item.UnitPriceNet,
		}
	}

	if s.emptyBucketPolicy == "error" &&
		mode != allocation.ModeNone &&
		totalSurcharge.IsPositive() &&
		allocation.BucketQty(items, mode).IsZero() {
		return ErrEmptyAllocationBucket
	}

	allocated := allocation.Allocate(items, totalSurcharge, mode)

	// One invoice can list the same SKU on several lines; track the running
	// cost so each history row records the true before/after pair.
	currentCost := make(map[uuid.UUID]decimal.Decimal, len(productLines))
	for _, l := range productLines {
		if _, ok := currentCost[l.Product.ID]; !ok {
			currentCost[l.Product.ID] = l.Product.CostNet
		}
	}

	for i, l := range productLines {
		qtyBase := allocated[i].QtyBase
		if !qtyBase.IsPositive() {
			continue
		}
		costAfter := l.Item.NetTotal().Div(qtyBase).Add(allocated[i].SurchargePerUnit)
		costBefore := currentCost[l.Product.ID]

		if err := s.productRepo.UpdateCostTx(tx, l.Product.ID, costAfter); err != nil {
			return err
		}
		h := &model.PriceHistory{
			ProductID:        l.Product.ID,
			SupplierID:       &inv.SupplierID,
			InvoiceID:        &inv.ID,
			CostBefore:       costBefore,
			CostAfter:        costAfter,
			SurchargePerUnit: allocated[i].SurchargePerUnit,
			Reason:           model.PriceReasonInvoiceIngest,
		}
		if err := s.historyRepo.CreateTx(tx, h); err != nil {
			return err
		}
		currentCost[l.Product.ID] = costAfter
	}

	return nil
}

// ── Manual adjustment ────────────────────────────────────────────────────────

// AdjustCost sets a product's landed cost by hand (PATCH /v1/products/:id/cost).
// Cost update and history row commit together.
func (s *pricingService) AdjustCost(ctx context.Context, productID uuid.UUID, newCost decimal.Decimal) error {
	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	return runTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.productRepo.UpdateCostTx(tx, productID, newCost); err != nil {
			return err
		}
		return s.historyRepo.CreateTx(tx, &model.PriceHistory{
			ProductID:        productID,
			CostBefore:       p.CostNet,
			CostAfter:        newCost,
			SurchargePerUnit: decimal.Zero,
			Reason:           model.PriceReasonManual,
		})
	})
}

// ── Preview ──────────────────────────────────────────────────────────────────

// Preview runs the allocator without touching the store (POST /v1/allocation/preview).
func (s *pricingService) Preview(_ context.Context, req dto.AllocationPreviewRequest) (*dto.AllocationPreviewResponse, error) {
	mode := allocation.Mode(req.Mode)
	if !mode.Valid() {
		return nil, &ValidationError{Msg: "unsupported allocation mode " + req.Mode}
	}

	items := make([]allocation.Item, len(req.Items))
	for i, it := range req.Items {
		var id uuid.UUID
		if it.ID != "" {
			parsed, err := uuid.Parse(it.ID)
			if err != nil {
				return nil, &ValidationError{Msg: "invalid item id " + it.ID}
			}
			id = parsed
		}
		items[i] = allocation.Item{
			ID:           id,
			BaseUOM:      uom.Base(it.BaseUOM),
			QtyBase:      it.QtyBase,
			UnitPriceNet: it.UnitPriceNet,
		}
	}

	allocated := allocation.Allocate(items, req.TotalSurchargeNet, mode)

	resp := &dto.AllocationPreviewResponse{
		Mode:           req.Mode,
		BucketQty:      allocation.BucketQty(items, mode),
		TotalAllocated: decimal.Zero,
		Items:          make([]dto.AllocationPreviewLine, len(allocated)),
	}
	for i, a := range allocated {
		resp.TotalAllocated = resp.TotalAllocated.Add(a.SurchargePerUnit.Mul(a.QtyBase))
		line := dto.AllocationPreviewLine{
			BaseUOM:          string(a.BaseUOM),
			QtyBase:          a.QtyBase,
			UnitPriceNet:     a.UnitPriceNet,
			SurchargePerUnit: a.SurchargePerUnit,
			LandedUnitCost:   a.UnitPriceNet.Add(a.SurchargePerUnit),
		}
		if req.Items[i].ID != "" {
			line.ID = req.Items[i].ID
		}
		resp.Items[i] = line
	}
	return resp, nil
}
