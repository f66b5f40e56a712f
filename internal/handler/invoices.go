package handler

import (
	"errors"
	"net/http"

	"landedcost/internal/apierror"
	"landedcost/internal/dto"
	"landedcost/internal/model"
	"landedcost/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceHandler struct {
	repo repository.InvoiceRepository
}

func NewInvoiceHandler(repo repository.InvoiceRepository) *InvoiceHandler {
	return &InvoiceHandler{repo: repo}
}

// List godoc
// @Summary  List ingested invoices
// @Tags     invoices
// @Param    supplier_id query string false "Filter by supplier"
// @Param    invoice_no  query string false "Filter by invoice number"
// @Param    page        query int    false "Page (default 1)"
// @Param    limit       query int    false "Page size (default 20, max 100)"
// @Success  200 {object} dto.InvoiceListResponse
// @Router   /v1/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter dto.InvoiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query parameters"))
		return
	}
	if err := validate.Struct(&filter); err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("invalid filter: "+err.Error()))
		return
	}

	invoices, total, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}

	resp := dto.InvoiceListResponse{
		Data:  make([]dto.InvoiceResponse, 0, len(invoices)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range invoices {
		resp.Data = append(resp.Data, toInvoiceResponse(&invoices[i], false))
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary  Get one invoice with its line items
// @Tags     invoices
// @Param    id path string true "Invoice id"
// @Success  200 {object} dto.InvoiceResponse
// @Failure  404 {object} apierror.APIError
// @Router   /v1/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid invoice id"))
		return
	}

	inv, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("invoice not found"))
			return
		}
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, toInvoiceResponse(inv, true))
}

func toInvoiceResponse(inv *model.Invoice, withItems bool) dto.InvoiceResponse {
	resp := dto.InvoiceResponse{
		ID:          inv.ID.String(),
		SupplierID:  inv.SupplierID.String(),
		InvoiceNo:   inv.InvoiceNo,
		InvoiceDate: inv.InvoiceDate.Format("2006-01-02"),
		Currency:    inv.Currency,
		CreatedAt:   inv.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if inv.Supplier != nil {
		resp.SupplierName = inv.Supplier.Name
	}
	if !withItems {
		return resp
	}
	resp.Items = make([]dto.InvoiceItemResponse, 0, len(inv.Items))
	for i := range inv.Items {
		item := &inv.Items[i]
		out := dto.InvoiceItemResponse{
			ID:             item.ID.String(),
			LineType:       item.LineType,
			Qty:            item.Qty,
			UOM:            item.UOM,
			UnitPriceNet:   item.UnitPriceNet,
			TaxRatePercent: item.TaxRatePercent,
			DiscountAbs:    item.DiscountAbs,
			NetTotal:       item.NetTotal(),
		}
		if item.ProductID != nil {
			pid := item.ProductID.String()
			out.ProductID = &pid
		}
		if item.Product != nil {
			sku := item.Product.SKU
			out.ProductSKU = &sku
		}
		resp.Items = append(resp.Items, out)
	}
	return resp
}
