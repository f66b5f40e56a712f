package handler

import (
	"errors"
	"net/http"

	"landedcost/internal/apierror"
	"landedcost/internal/dto"
	"landedcost/internal/service"

	"github.com/gin-gonic/gin"
)

// AllocationHandler serves standalone surcharge allocation previews.
type AllocationHandler struct {
	pricing service.PricingService
}

func NewAllocationHandler(pricing service.PricingService) *AllocationHandler {
	return &AllocationHandler{pricing: pricing}
}

// Preview godoc
// @Summary      Preview a surcharge allocation
// @Description  Runs the allocator on ad-hoc line items without touching the store. Useful for pricing what-ifs.
// @Tags         allocation
// @Accept       json
// @Param        payload body dto.AllocationPreviewRequest true "Items, surcharge total and mode"
// @Success      200 {object} dto.AllocationPreviewResponse
// @Failure      400 {object} apierror.APIError
// @Failure      422 {object} apierror.APIError
// @Router       /v1/allocation/preview [post]
func (h *AllocationHandler) Preview(c *gin.Context) {
	var req dto.AllocationPreviewRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.pricing.Preview(c.Request.Context(), req)
	if err != nil {
		var invalid *service.ValidationError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusUnprocessableEntity, apierror.New(invalid.Error()))
			return
		}
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, resp)
}
