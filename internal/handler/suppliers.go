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

type SupplierHandler struct {
	repo repository.SupplierRepository
}

func NewSupplierHandler(repo repository.SupplierRepository) *SupplierHandler {
	return &SupplierHandler{repo: repo}
}

// Create godoc
// @Summary  Register a supplier ahead of its first invoice
// @Tags     suppliers
// @Accept   json
// @Param    payload body dto.CreateSupplierRequest true "Supplier"
// @Success  201 {object} dto.SupplierResponse
// @Failure  409 {object} apierror.APIError
// @Router   /v1/suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if !bindAndValidate(c, &req) {
		return
	}

	s := model.Supplier{Name: req.Name, Active: true}
	if err := h.repo.Create(c.Request.Context(), &s); err != nil {
		if repository.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, apierror.New("supplier already exists"))
			return
		}
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusCreated, toSupplierResponse(&s))
}

// List godoc
// @Summary  List active suppliers
// @Tags     suppliers
// @Success  200 {array} dto.SupplierResponse
// @Router   /v1/suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	suppliers, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	resp := make([]dto.SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		resp = append(resp, toSupplierResponse(&suppliers[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary  Get one supplier
// @Tags     suppliers
// @Param    id path string true "Supplier id"
// @Success  200 {object} dto.SupplierResponse
// @Failure  404 {object} apierror.APIError
// @Router   /v1/suppliers/{id} [get]
func (h *SupplierHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid supplier id"))
		return
	}

	s, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("supplier not found"))
			return
		}
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, toSupplierResponse(s))
}

func toSupplierResponse(s *model.Supplier) dto.SupplierResponse {
	return dto.SupplierResponse{ID: s.ID.String(), Name: s.Name, Active: s.Active}
}
