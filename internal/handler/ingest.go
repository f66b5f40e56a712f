package handler

import (
	"errors"
	"net/http"

	"landedcost/internal/apierror"
	"landedcost/internal/dto"
	"landedcost/internal/service"

	"github.com/gin-gonic/gin"
)

// IngestHandler exposes the invoice ingestion engine over HTTP.
type IngestHandler struct {
	ingest service.IngestService
}

func NewIngestHandler(ingest service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

// Ingest godoc
// @Summary      Ingest a supplier purchase invoice
// @Description  Persists the invoice with idempotent (supplier, invoice_no) semantics, resolves or auto-creates products, allocates surcharge/shipping costs across product lines and updates landed costs.
// @Tags         invoices
// @Accept       json
// @Param        payload body dto.IngestInvoiceRequest true "Raw invoice payload"
// @Success      200 {object} dto.IngestInvoiceResponse
// @Failure      400 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Failure      422 {object} apierror.APIError
// @Failure      502 {object} apierror.APIError
// @Router       /v1/invoices/ingest [post]
func (h *IngestHandler) Ingest(c *gin.Context) {
	var req dto.IngestInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.ingest.Ingest(c.Request.Context(), req)
	if err != nil {
		writeIngestError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// writeIngestError maps engine errors onto HTTP statuses. Anything not
// recognized is a store failure and must not leak internals.
func writeIngestError(c *gin.Context, err error) {
	var (
		unknown  *service.UnknownProductError
		invalid  *service.ValidationError
		conflict *service.StoreConflictError
	)
	switch {
	case errors.As(err, &unknown):
		c.JSON(http.StatusNotFound, apierror.New(unknown.Error()))
	case errors.As(err, &invalid):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(invalid.Error()))
	case errors.Is(err, service.ErrEmptyAllocationBucket):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, apierror.New("concurrent ingestion conflict, retry the request"))
	default:
		c.JSON(http.StatusBadGateway, apierror.New("store unavailable"))
	}
}
