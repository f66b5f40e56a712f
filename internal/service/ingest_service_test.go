package service_test

import (
	"context"
	"testing"

	"landedcost/internal/config"
	"landedcost/internal/dto"
	"landedcost/internal/model"
	"landedcost/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory repository stubs ───────────────────────────────────────────────
// DB() returns nil, so the orchestrator runs without a transaction and every
// write goes straight to the stub maps.

type stubSupplierRepo struct {
	suppliers map[uuid.UUID]*model.Supplier
}

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{suppliers: make(map[uuid.UUID]*model.Supplier)}
}

func (r *stubSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.suppliers[s.ID] = s
	return nil
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSupplierRepo) FindByName(_ context.Context, name string) (*model.Supplier, error) {
	for _, s := range r.suppliers {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSupplierRepo) List(_ context.Context) ([]model.Supplier, error) {
	result := make([]model.Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		result = append(result, *s)
	}
	return result, nil
}

func (r *stubSupplierRepo) UpsertByNameTx(_ *gorm.DB, name string) (*model.Supplier, error) {
	for _, s := range r.suppliers {
		if s.Name == name {
			return s, nil
		}
	}
	s := &model.Supplier{ID: uuid.New(), Name: name, Active: true}
	r.suppliers[s.ID] = s
	return s, nil
}

type stubProductRepo struct {
	products map[string]*model.Product // keyed by SKU
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[string]*model.Product)}
}

func (r *stubProductRepo) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.SKU] = p
	return p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.add(p)
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	return r.FindBySKUTx(nil, sku)
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	result := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

func (r *stubProductRepo) FindBySKUTx(_ *gorm.DB, sku string) (*model.Product, error) {
	p, ok := r.products[sku]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	if _, ok := r.products[p.SKU]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.add(p)
	return nil
}

func (r *stubProductRepo) UpdateCostTx(_ *gorm.DB, id uuid.UUID, cost decimal.Decimal) error {
	for _, p := range r.products {
		if p.ID == id {
			p.CostNet = cost
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type stubInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
	items    map[uuid.UUID][]*model.InvoiceItem // by invoice id
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{
		invoices: make(map[uuid.UUID]*model.Invoice),
		items:    make(map[uuid.UUID][]*model.InvoiceItem),
	}
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (r *stubInvoiceRepo) List(_ context.Context, _ dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	result := make([]model.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		result = append(result, *inv)
	}
	return result, int64(len(result)), nil
}

func (r *stubInvoiceRepo) FindBySupplierAndNumberTx(_ *gorm.DB, supplierID uuid.UUID, invoiceNo string) (*model.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.SupplierID == supplierID && inv.InvoiceNo == invoiceNo {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubInvoiceRepo) CreateTx(_ *gorm.DB, inv *model.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubInvoiceRepo) CreateItemTx(_ *gorm.DB, item *model.InvoiceItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items[item.InvoiceID] = append(r.items[item.InvoiceID], item)
	return nil
}

func (r *stubInvoiceRepo) DeleteCascadeTx(_ *gorm.DB, invoiceID uuid.UUID) error {
	delete(r.invoices, invoiceID)
	delete(r.items, invoiceID)
	return nil
}

func (r *stubInvoiceRepo) DB() *gorm.DB { return nil }

type stubHistoryRepo struct {
	rows []*model.PriceHistory
}

func (r *stubHistoryRepo) ListByProduct(_ context.Context, productID uuid.UUID, _, _ int) ([]model.PriceHistory, int64, error) {
	var result []model.PriceHistory
	for _, h := range r.rows {
		if h.ProductID == productID {
			result = append(result, *h)
		}
	}
	return result, int64(len(result)), nil
}

func (r *stubHistoryRepo) CreateTx(_ *gorm.DB, h *model.PriceHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	r.rows = append(r.rows, h)
	return nil
}

// ── Test fixture ─────────────────────────────────────────────────────────────

type fixture struct {
	suppliers *stubSupplierRepo
	products  *stubProductRepo
	invoices  *stubInvoiceRepo
	history   *stubHistoryRepo
	cfg       *config.Config
	ingest    service.IngestService
}

func newFixture(overrides func(cfg *config.Config)) *fixture {
	f := &fixture{
		suppliers: newStubSupplierRepo(),
		products:  newStubProductRepo(),
		invoices:  newStubInvoiceRepo(),
		history:   &stubHistoryRepo{},
		cfg: &config.Config{
			DefaultCurrency:               "EUR",
			DefaultAllocationMode:         "per_kg",
			EmptyBucketPolicy:             "ignore",
			DefaultPiecesPerTransportUnit: 100,
		},
	}
	if overrides != nil {
		overrides(f.cfg)
	}
	pricing := service.NewPricingService(nil, f.products, f.history, f.cfg.EmptyBucketPolicy)
	f.ingest = service.NewIngestService(f.suppliers, f.products, f.invoices, pricing, f.cfg)
	return f
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ── Ingest ───────────────────────────────────────────────────────────────────

func TestIngest_AllocatesFreightAcrossKgLines(t *testing.T) {
	f := newFixture(nil)
	beans := f.products.add(&model.Product{SKU: "BEAN-BRA", Name: "Brazil beans", BaseUOM: "kg", CostNet: dec("7.50")})
	blend := f.products.add(&model.Product{SKU: "BEAN-ETH", Name: "Ethiopia beans", BaseUOM: "kg", CostNet: dec("9.20")})

	resp, err := f.ingest.Ingest(context.Background(), dto.IngestInvoiceRequest{
		Supplier:    "Demo Roastery GmbH",
		InvoiceNo:   "RE-2026-001",
		InvoiceDate: "2026-08-01",
		Items: []dto.IngestItemInput{
			{LineType: "product", ProductSKU: strPtr("BEAN-BRA"), Qty: dec("50"), UOM: "KG", UnitPriceNet: dec("8.00")},
			{LineType: "product", ProductSKU: strPtr("BEAN-ETH"), Qty: dec("30"), UOM: "KG", UnitPriceNet: dec("6.00")},
			{LineType: "shipping", Qty: dec("1"), UOM: "piece", UnitPriceNet: dec("80.00")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Duplicate)

	// 80.00 freight over 80 kg → 1.00/kg
	// BEAN-BRA: 400/50 + 1.00 = 9.00, BEAN-ETH: 180/30 + 1.00 = 7.00
	assert.True(t, beans.CostNet.Equal(dec("9.00")), "got %s", beans.CostNet)
	assert.True(t, blend.CostNet.Equal(dec("7.00")), "got %s", blend.CostNet)

	require.Len(t, f.history.rows, 2)
	assert.True(t, f.history.rows[0].CostBefore.Equal(dec("7.50")))
	assert.True(t, f.history.rows[0].SurchargePerUnit.Equal(dec("1.00")))
	assert.Equal(t, model.PriceReasonInvoiceIngest, f.history.rows[0].Reason)

	// Shipping line persisted without product association
	invID := uuid.MustParse(resp.InvoiceID)
	items := f.invoices.items[invID]
	require.Len(t, items, 3)
	assert.Nil(t, items[2].ProductID)
	assert.Equal(t, 2, items[2].Position)
}

func TestIngest_UnknownSKUAbortsWithoutTrace(t *testing.T) {
	f := newFixture(nil)
	f.products.add(&model.Product{SKU: "BEAN-BRA", Name: "Brazil beans", BaseUOM: "kg", CostNet: dec("7.50")})

	_, err := f.ingest.Ingest(context.Background(), dto.IngestInvoiceRequest{
		Supplier:    "Demo Roastery GmbH",
		InvoiceNo:   "RE-2026-002",
		InvoiceDate: "2026-08-02",
		Items: []dto.IngestItemInput{
			{LineType: "product", ProductSKU: strPtr("BEAN-BRA"), Qty: dec("10"), UOM: "KG", UnitPriceNet: dec("8.00")},
			{LineType: "product", ProductSKU: strPtr("GHOST-1"), Qty: dec("5"), UOM: "KG", UnitPriceNet: dec("3.00")},
		},
	})

	var unknown *service.UnknownProductError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "GHOST-1", unknown.SKU)

	// The aborted ingestion leaves no invoice behind and no cost change.
	assert.Empty(t, f.invoices.invoices)
	assert.Empty(t, f.invoices.items)
	assert.Empty(t, f.history.rows)
	assert.True(t, f.products.products["BEAN-BRA"].CostNet.Equal(dec("7.50")))
}

func TestIngest_AutoCreateDerivesBaseUnitFromLineUOM(t *testing.T) {
	f := newFixture(nil)

	resp, err := f.ingest.Ingest(context.Background(), dto.IngestInvoiceRequest{
		Supplier:    "Pack Supplies AG",
		InvoiceNo:   "PS-77",
		InvoiceDate: "2026-08-03",
		Options: &dto.IngestOptions{
			AllocateSurcharges: strPtr("per_piece"),
			AutoCreateProducts: boolPtr(true),
		},
		Items: []dto.IngestItemInput{
			{LineType: "product", ProductSKU: strPtr("CUP-0250"), ProductName: strPtr("Paper cup 250ml"), Qty: dec("2"), UOM: "TU", UnitPriceNet: dec("16.00")},
			{LineType: "product", ProductSKU: strPtr("BEAN-NEW"), Qty: dec("25"), UOM: "kg", UnitPriceNet: dec("7.00")},
			{LineType: "surcharge", Qty: dec("1"), UOM: "piece", UnitPriceNet: dec("50.00")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Status)

	cup := f.products.products["CUP-0250"]
	require.NotNil(t, cup)
	assert.Equal(t, "piece", cup.BaseUOM)
	require.NotNil(t, cup.PiecesPerTransportUnit)
	assert.Equal(t, 100, *cup.PiecesPerTransportUnit)
	assert.Equal(t, "Paper cup 250ml", cup.Name)

	bean := f.products.products["BEAN-NEW"]
	require.NotNil(t, bean)
	assert.Equal(t, "kg", bean.BaseUOM)
	assert.Nil(t, bean.PiecesPerTransportUnit)
	assert.Equal(t, "BEAN-NEW", bean.Name) // no name supplied, SKU used

	// per_piece bucket = 2 TU × 100 = 200 pieces; 50.00 / 200 = 0.25/piece
	// CUP-0250 cost: 32.00 / 200 + 0.25 = 0.41
	assert.True(t, cup.CostNet.Equal(dec("0.41")), "got %s", cup.CostNet)
	// kg line is outside the per_piece bucket: plain unit cost 175/25 = 7.00
	assert.True(t, bean.CostNet.Equal(dec("7.00")), "got %s", bean.CostNet)
}

// racingProductRepo simulates losing the product-creation race: the create
// always hits the unique index, and when winnerLands is set the concurrent
// winner's row becomes visible to the retry lookup.
type racingProductRepo struct {
	*stubProductRepo
	winner      *model.Product
	winnerLands bool
}

func (r *racingProductRepo) CreateTx(_ *gorm.DB, _ *model.Product) error {
	if r.winnerLands {
		r.stubProductRepo.add(r.winner)
	}
	return gorm.ErrDuplicatedKey
}

func newRacingFixture(products *racingProductRepo) *fixture {
	f := &fixture{
		suppliers: newStubSupplierRepo(),
		products:  products.stubProductRepo,
		invoices:  newStubInvoiceRepo(),
		history:   &stubHistoryRepo{},
		cfg: &config.Config{
			DefaultCurrency:               "EUR",
			DefaultAllocationMode:         "per_kg",
			EmptyBucketPolicy:             "ignore",
			DefaultPiecesPerTransportUnit: 100,
		},
	}
	pricing := service.NewPricingService(nil, products, f.history, f.cfg.EmptyBucketPolicy)
	f.ingest = service.NewIngestService(f.suppliers, products, f.invoices, pricing, f.cfg)
	return f
}

func TestIngest_AdoptsConcurrentlyCreatedProduct(t *testing.T) {
	winner := &model.Product{ID: uuid.New(), SKU: "CUP-0250", Name: "Paper cup 250ml", BaseUOM: "piece", CostNet: dec("0.10")}
	products := &racingProductRepo{stubProductRepo: newStubProductRepo(), winner: winner, winnerLands: true}
	f := newRacingFixture(products)

	resp, err := f.ingest.Ingest(context.Background(), dto.IngestInvoiceRequest{
		Supplier:    "Pack Supplies AG",
		InvoiceNo:   "PS-90",
		InvoiceDate: "2026-08-10",
		Options:     &dto.IngestOptions{AutoCreateProducts: boolPtr(true)},
		Items: []dto.IngestItemInput{
			{LineType: "product", ProductSKU: strPtr("CUP-0250"), Qty: dec("500"), UOM: "piece", UnitPriceNet: dec("0.08")},
		},
	})
	require.NoError(t, err, "losing the creation race must retry the lookup, not fail")
	require.Equal(t, "ok", resp.Status)

	// The winner's row is adopted, not a second one created
	items := f.invoices.items[uuid.MustParse(resp.InvoiceID)]
	require.Len(t, items, 1)
	require.NotNil(t, items[0].ProductID)
	assert.Equal(t, winner.ID, *items[0].ProductID)
	require.Len(t, f.history.rows, 1)
	assert.Equal(t, winner.ID, f.history.rows[0].ProductID)
}

func TestIngest_ConflictWithoutWinnerRowIsStoreConflict(t *testing.T) {
	products := &racingProductRepo{stubProductRepo: newStubProductRepo(), winnerLands: false}
	f := newRacingFixture(products)

	_, err := f.ingest.Ingest(context.Background(), dto.IngestInvoiceRequest{
		Supplier:    "Pack Supplies AG",
		InvoiceNo:   "PS-91",
		InvoiceDate: "2026-08-10",
		Options:     &dto.IngestOptions{AutoCreateProducts: boolPtr(true)},
		Items: []dto.IngestItemInput{
			{LineType: "product", ProductSKU: strPtr("CUP-0250"), Qty: dec("500"), UOM: "piece", UnitPriceNet: dec("0.08")},
		},
	})

	var conflict *service.StoreConflictError
	require.ErrorAs(t, err, &conflict)
	// Compensating cleanup removed the partial invoice
	assert.Empty(t, f.invoices.invoices)
	assert.Empty(t, f.invoices.items)
}

func TestIngest_SameBusinessKeyIsIdempotent(t *testing.T) {
	f := newFixture(nil)
	f.products.add(&model.Product{SKU: "BEAN-BRA", Name: "Brazil beans", BaseUOM: "kg", CostNet: dec("7.50")})

	req := dto.IngestInvoiceRequest{
		Supplier:    "Demo Roastery GmbH",
		InvoiceNo:   "RE-2026-001",
		InvoiceDate: "2026-08-01",
		Items: []dto.IngestItemInput{
			{LineType: "product", ProductSKU: strPtr("BEAN-BRA"), Qty: dec("50"), UOM: "KG", UnitPriceNet: dec("8.00")},
		},
	}

	first, err := f.ingest.Ingest(context.Background(), req)
	require.NoError(t, err)
	second, err := f.ingest.Ingest(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.InvoiceID, second.InvoiceID)
	assert.False(t, first.Duplicate)
	assert.True(t, second.Duplicate)
	assert.Len(t, f.invoices.invoices, 1)
	// Finalization ran exactly once
	assert.Len(t, f.history.rows, 1)
}

func TestIngest_DefaultsCurrencyFromConfig(t *testing.T) {
	f := newFixture(nil)
	f.products.add(&model.Product{SKU: "BEAN-BRA", BaseUOM: "kg"})

	resp, err := f.ingest.Ingest(context.Background(), dto.IngestInvoiceRequest{
		Supplier:    "Demo Roastery GmbH",
		InvoiceNo:   "RE-9",
		InvoiceDate: "2026-08-05",
		Items: []dto.IngestItemInput{
			{LineType: "product", ProductSKU: strPtr("BEAN-BRA"), Qty: dec("1"), UOM: "KG", UnitPriceNet: dec("5.00")},
		},
	})
	require.NoError(t, err)

	inv := f.invoices.invoices[uuid.MustParse(resp.InvoiceID)]
	require.NotNil(t, inv)
	assert.Equal(t, "EUR", inv.Currency)
}

func TestIngest_ValidationRejectsBeforeAnyWrite(t *testing.T) {
	cases := []struct {
		name string
		req  dto.IngestInvoiceRequest
	}{
		{
			// required-field checks must hold even when the payload skips
			// the HTTP layer (extraction worker path)
			name: "missing supplier",
			req: dto.IngestInvoiceRequest{
				InvoiceNo: "1", InvoiceDate: "2026-08-01",
				Items: []dto.IngestItemInput{{LineType: "product", ProductSKU: strPtr("X"), Qty: dec("1"), UOM: "KG"}},
			},
		},
		{
			name: "missing invoice number",
			req: dto.IngestInvoiceRequest{
				Supplier: "S", InvoiceDate: "2026-08-01",
				Items: []dto.IngestItemInput{{LineType: "product", ProductSKU: strPtr("X"), Qty: dec("1"), UOM: "KG"}},
			},
		},
		{
			name: "no items",
			req: dto.IngestInvoiceRequest{
				Supplier: "S", InvoiceNo: "1", InvoiceDate: "2026-08-01",
			},
		},
		{
			name: "bad date",
			req: dto.IngestInvoiceRequest{
				Supplier: "S", InvoiceNo: "1", InvoiceDate: "01.08.2026",
				Items: []dto.IngestItemInput{{LineType: "product", ProductSKU: strPtr("X"), Qty: dec("1"), UOM: "KG"}},
			},
		},
		{
			name: "bad allocation mode",
			req: dto.IngestInvoiceRequest{
				Supplier: "S", InvoiceNo: "1", InvoiceDate: "2026-08-01",
				Options: &dto.IngestOptions{AllocateSurcharges: strPtr("per_carton")},
				Items:   []dto.IngestItemInput{{LineType: "product", ProductSKU: strPtr("X"), Qty: dec("1"), UOM: "KG"}},
			},
		},
		{
			name: "unsupported line type",
			req: dto.IngestInvoiceRequest{
				Supplier: "S", InvoiceNo: "1", InvoiceDate: "2026-08-01",
				Items: []dto.IngestItemInput{{LineType: "rebate", Qty: dec("1"), UOM: "KG"}},
			},
		},
		{
			name: "non-positive qty",
			req: dto.IngestInvoiceRequest{
				Supplier: "S", InvoiceNo: "1", InvoiceDate: "2026-08-01",
				Items: []dto.IngestItemInput{{LineType: "product", ProductSKU: strPtr("X"), Qty: dec("0"), UOM: "KG"}},
			},
		},
		{
			name: "product line without sku",
			req: dto.IngestInvoiceRequest{
				Supplier: "S", InvoiceNo: "1", InvoiceDate: "2026-08-01",
				Items: []dto.IngestItemInput{{LineType: "product", Qty: dec("1"), UOM: "KG"}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(nil)
			_, err := f.ingest.Ingest(context.Background(), tc.req)

			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Empty(t, f.invoices.invoices)
			assert.Empty(t, f.suppliers.suppliers)
		})
	}
}

func TestIngest_EmptyBucketPolicyError(t *testing.T) {
	f := newFixture(func(cfg *config.Config) {
		cfg.EmptyBucketPolicy = "error"
	})
	f.products.add(&model.Product{SKU: "CUP-1", BaseUOM: "piece", CostNet: dec("0.10")})

	// per_kg mode, but the only product line is piece-based: empty bucket.
	_, err := f.ingest.Ingest(context.Background(), dto.IngestInvoiceRequest{
		Supplier:    "Pack Supplies AG",
		InvoiceNo:   "PS-80",
		InvoiceDate: "2026-08-06",
		Items: []dto.IngestItemInput{
			{LineType: "product", ProductSKU: strPtr("CUP-1"), Qty: dec("500"), UOM: "piece", UnitPriceNet: dec("0.08")},
			{LineType: "surcharge", Qty: dec("1"), UOM: "piece", UnitPriceNet: dec("25.00")},
		},
	})

	require.ErrorIs(t, err, service.ErrEmptyAllocationBucket)
	assert.Empty(t, f.invoices.invoices, "rejected ingestion must not leave an invoice behind")
	assert.True(t, f.products.products["CUP-1"].CostNet.Equal(dec("0.10")))
}

func TestIngest_EmptyBucketPolicyIgnoreLeavesSurchargeUnallocated(t *testing.T) {
	f := newFixture(nil) // default policy: ignore
	cup := f.products.add(&model.Product{SKU: "CUP-1", BaseUOM: "piece", CostNet: dec("0.10")})

	_, err := f.ingest.Ingest(context.Background(), dto.IngestInvoiceRequest{
		Supplier:    "Pack Supplies AG",
		InvoiceNo:   "PS-81",
		InvoiceDate: "2026-08-06",
		Items: []dto.IngestItemInput{
			{LineType: "product", ProductSKU: strPtr("CUP-1"), Qty: dec("500"), UOM: "piece", UnitPriceNet: dec("0.08")},
			{LineType: "surcharge", Qty: dec("1"), UOM: "piece", UnitPriceNet: dec("25.00")},
		},
	})
	require.NoError(t, err)

	// Cost updated from the line itself, zero surcharge share.
	assert.True(t, cup.CostNet.Equal(dec("0.08")), "got %s", cup.CostNet)
	require.Len(t, f.history.rows, 1)
	assert.True(t, f.history.rows[0].SurchargePerUnit.IsZero())
}

func TestIngest_RepeatedSKUTracksRunningCost(t *testing.T) {
	f := newFixture(nil)
	f.products.add(&model.Product{SKU: "BEAN-BRA", BaseUOM: "kg", CostNet: dec("7.50")})

	_, err := f.ingest.Ingest(context.Background(), dto.IngestInvoiceRequest{
		Supplier:    "Demo Roastery GmbH",
		InvoiceNo:   "RE-2026-010",
		InvoiceDate: "2026-08-07",
		Items: []dto.IngestItemInput{
			{LineType: "product", ProductSKU: strPtr("BEAN-BRA"), Qty: dec("10"), UOM: "KG", UnitPriceNet: dec("8.00")},
			{LineType: "product", ProductSKU: strPtr("BEAN-BRA"), Qty: dec("10"), UOM: "KG", UnitPriceNet: dec("9.00")},
		},
	})
	require.NoError(t, err)

	require.Len(t, f.history.rows, 2)
	// First line: 7.50 → 8.00; second line: 8.00 → 9.00 (chained, not both from 7.50)
	assert.True(t, f.history.rows[0].CostBefore.Equal(dec("7.50")))
	assert.True(t, f.history.rows[0].CostAfter.Equal(dec("8.00")))
	assert.True(t, f.history.rows[1].CostBefore.Equal(dec("8.00")))
	assert.True(t, f.history.rows[1].CostAfter.Equal(dec("9.00")))
	assert.True(t, f.products.products["BEAN-BRA"].CostNet.Equal(dec("9.00")))
}

func TestIngest_DiscountReducesLineNet(t *testing.T) {
	f := newFixture(nil)
	beans := f.products.add(&model.Product{SKU: "BEAN-BRA", BaseUOM: "kg", CostNet: dec("7.50")})

	_, err := f.ingest.Ingest(context.Background(), dto.IngestInvoiceRequest{
		Supplier:    "Demo Roastery GmbH",
		InvoiceNo:   "RE-2026-011",
		InvoiceDate: "2026-08-08",
		Items: []dto.IngestItemInput{
			// 20 kg × 8.00 − 10.00 discount = 150.00 → 7.50/kg
			{LineType: "product", ProductSKU: strPtr("BEAN-BRA"), Qty: dec("20"), UOM: "KG", UnitPriceNet: dec("8.00"), DiscountAbs: decPtr("10.00")},
		},
	})
	require.NoError(t, err)
	assert.True(t, beans.CostNet.Equal(dec("7.50")), "got %s", beans.CostNet)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
