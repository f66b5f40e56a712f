package handler

import (
	"errors"
	"net/http"
	"strconv"

	"landedcost/internal/apierror"
	"landedcost/internal/dto"
	"landedcost/internal/model"
	"landedcost/internal/repository"
	"landedcost/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductHandler struct {
	repo    repository.ProductRepository
	history repository.PriceHistoryRepository
	pricing service.PricingService
}

func NewProductHandler(repo repository.ProductRepository, history repository.PriceHistoryRepository, pricing service.PricingService) *ProductHandler {
	return &ProductHandler{repo: repo, history: history, pricing: pricing}
}

// List godoc
// @Summary  List products
// @Tags     products
// @Param    sku         query string false "Exact SKU"
// @Param    name        query string false "Name substring, case-insensitive"
// @Param    supplier_id query string false "Filter by supplier"
// @Success  200 {object} dto.ProductListResponse
// @Router   /v1/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query parameters"))
		return
	}
	if err := validate.Struct(&filter); err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("invalid filter: "+err.Error()))
		return
	}

	products, total, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}

	resp := dto.ProductListResponse{
		Data:  make([]dto.ProductResponse, 0, len(products)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range products {
		resp.Data = append(resp.Data, toProductResponse(&products[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary  Get one product
// @Tags     products
// @Param    id path string true "Product id"
// @Success  200 {object} dto.ProductResponse
// @Failure  404 {object} apierror.APIError
// @Router   /v1/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}

	p, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("product not found"))
			return
		}
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

// PriceHistory godoc
// @Summary  Landed-cost change history of a product, newest first
// @Tags     products
// @Param    id    path  string true  "Product id"
// @Param    page  query int    false "Page (default 1)"
// @Param    limit query int    false "Page size (default 50, max 200)"
// @Success  200 {object} dto.PriceHistoryListResponse
// @Router   /v1/products/{id}/price-history [get]
func (h *ProductHandler) PriceHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	rows, total, err := h.history.ListByProduct(c.Request.Context(), id, page, limit)
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}

	resp := dto.PriceHistoryListResponse{
		Data:  make([]dto.PriceHistoryItem, 0, len(rows)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i := range rows {
		resp.Data = append(resp.Data, toPriceHistoryItem(&rows[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// AdjustCost godoc
// @Summary  Manually override a product's landed cost
// @Description  Sets the cost directly and appends a manual price-history record. For corrections outside the invoice flow.
// @Tags     products
// @Accept   json
// @Param    id      path string                true "Product id"
// @Param    payload body dto.AdjustCostRequest true "New cost per base unit"
// @Success  200 {object} dto.ProductResponse
// @Failure  404 {object} apierror.APIError
// @Failure  422 {object} apierror.APIError
// @Router   /v1/products/{id}/cost [patch]
func (h *ProductHandler) AdjustCost(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	var req dto.AdjustCostRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.pricing.AdjustCost(c.Request.Context(), id, req.CostNet); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("product not found"))
			return
		}
		c.Error(err) //nolint:errcheck
		return
	}

	p, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:                     p.ID.String(),
		SKU:                    p.SKU,
		Name:                   p.Name,
		BaseUOM:                p.BaseUOM,
		PiecesPerTransportUnit: p.PiecesPerTransportUnit,
		CostNet:                p.CostNet,
		Active:                 p.Active,
	}
	if p.SupplierID != nil {
		sid := p.SupplierID.String()
		resp.SupplierID = &sid
	}
	return resp
}

func toPriceHistoryItem(h *model.PriceHistory) dto.PriceHistoryItem {
	item := dto.PriceHistoryItem{
		ID:               h.ID.String(),
		ProductID:        h.ProductID.String(),
		CostBefore:       h.CostBefore,
		CostAfter:        h.CostAfter,
		SurchargePerUnit: h.SurchargePerUnit,
		Reason:           h.Reason,
		CreatedAt:        h.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if h.SupplierID != nil {
		sid := h.SupplierID.String()
		item.SupplierID = &sid
	}
	if h.Supplier != nil {
		name := h.Supplier.Name
		item.SupplierName = &name
	}
	if h.InvoiceID != nil {
		iid := h.InvoiceID.String()
		item.InvoiceID = &iid
	}
	return item
}
