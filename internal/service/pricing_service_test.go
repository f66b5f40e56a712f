package service_test

import (
	"context"
	"testing"

	"landedcost/internal/dto"
	"landedcost/internal/model"
	"landedcost/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPreview_PerKgSpreadsEvenly(t *testing.T) {
	pricing := service.NewPricingService(nil, newStubProductRepo(), &stubHistoryRepo{}, "ignore")

	resp, err := pricing.Preview(context.Background(), dto.AllocationPreviewRequest{
		Mode:              "per_kg",
		TotalSurchargeNet: dec("80.00"),
		Items: []dto.AllocationPreviewItem{
			{BaseUOM: "kg", QtyBase: dec("50"), UnitPriceNet: dec("8.00")},
			{BaseUOM: "kg", QtyBase: dec("30"), UnitPriceNet: dec("6.00")},
			{BaseUOM: "piece", QtyBase: dec("500"), UnitPriceNet: dec("0.08")},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.BucketQty.Equal(dec("80")), "got %s", resp.BucketQty)
	require.Len(t, resp.Items, 3)
	assert.True(t, resp.Items[0].SurchargePerUnit.Equal(dec("1.00")))
	assert.True(t, resp.Items[0].LandedUnitCost.Equal(dec("9.00")))
	assert.True(t, resp.Items[1].SurchargePerUnit.Equal(dec("1.00")))
	// piece line is outside the per_kg bucket
	assert.True(t, resp.Items[2].SurchargePerUnit.IsZero())
	assert.True(t, resp.TotalAllocated.Equal(dec("80.00")), "got %s", resp.TotalAllocated)
}

func TestPreview_ModeNoneAllocatesNothing(t *testing.T) {
	pricing := service.NewPricingService(nil, newStubProductRepo(), &stubHistoryRepo{}, "ignore")

	resp, err := pricing.Preview(context.Background(), dto.AllocationPreviewRequest{
		Mode:              "none",
		TotalSurchargeNet: dec("42.00"),
		Items: []dto.AllocationPreviewItem{
			{BaseUOM: "kg", QtyBase: dec("10"), UnitPriceNet: dec("5.00")},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.TotalAllocated.IsZero())
	assert.True(t, resp.Items[0].SurchargePerUnit.IsZero())
	assert.True(t, resp.Items[0].LandedUnitCost.Equal(dec("5.00")))
}

func TestAdjustCost_RecordsManualHistory(t *testing.T) {
	products := newStubProductRepo()
	history := &stubHistoryRepo{}
	p := products.add(&model.Product{SKU: "BEAN-BRA", BaseUOM: "kg", CostNet: dec("7.50")})
	pricing := service.NewPricingService(nil, products, history, "ignore")

	require.NoError(t, pricing.AdjustCost(context.Background(), p.ID, dec("8.25")))

	assert.True(t, p.CostNet.Equal(dec("8.25")), "got %s", p.CostNet)
	require.Len(t, history.rows, 1)
	assert.Equal(t, model.PriceReasonManual, history.rows[0].Reason)
	assert.True(t, history.rows[0].CostBefore.Equal(dec("7.50")))
	assert.True(t, history.rows[0].CostAfter.Equal(dec("8.25")))
	assert.True(t, history.rows[0].SurchargePerUnit.IsZero())
	assert.Nil(t, history.rows[0].InvoiceID)
}

func TestAdjustCost_UnknownProduct(t *testing.T) {
	pricing := service.NewPricingService(nil, newStubProductRepo(), &stubHistoryRepo{}, "ignore")

	err := pricing.AdjustCost(context.Background(), uuid.New(), dec("1.00"))
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPreview_RejectsUnknownMode(t *testing.T) {
	pricing := service.NewPricingService(nil, newStubProductRepo(), &stubHistoryRepo{}, "ignore")

	_, err := pricing.Preview(context.Background(), dto.AllocationPreviewRequest{
		Mode:              "per_carton",
		TotalSurchargeNet: dec("1.00"),
		Items: []dto.AllocationPreviewItem{
			{BaseUOM: "kg", QtyBase: dec("1"), UnitPriceNet: dec("1.00")},
		},
	})

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
}
