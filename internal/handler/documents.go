package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"landedcost/internal/apierror"
	"landedcost/internal/dto"
	"landedcost/internal/model"
	"landedcost/internal/repository"
	"landedcost/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentHandler accepts invoice documents for async extraction and exposes
// their pipeline status.
type DocumentHandler struct {
	repo        repository.DocumentRepository
	dispatcher  *worker.Dispatcher
	storagePath string
}

func NewDocumentHandler(repo repository.DocumentRepository, dispatcher *worker.Dispatcher, storagePath string) *DocumentHandler {
	return &DocumentHandler{repo: repo, dispatcher: dispatcher, storagePath: storagePath}
}

// Upload godoc
// @Summary  Upload an invoice document for async extraction and ingestion
// @Tags     documents
// @Accept   multipart/form-data
// @Param    file formData file true "Invoice document (PDF or image)"
// @Success  202 {object} dto.DocumentResponse
// @Failure  400 {object} apierror.APIError
// @Router   /v1/documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("missing multipart field 'file'"))
		return
	}

	doc := model.SourceDocument{
		ID:       uuid.New(),
		Filename: filepath.Base(file.Filename),
		Status:   model.DocumentStatusPending,
	}
	// Store under a generated name so colliding uploads never overwrite
	doc.StoragePath = filepath.Join(h.storagePath, doc.ID.String()+filepath.Ext(doc.Filename))

	if err := os.MkdirAll(h.storagePath, 0o755); err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	if err := c.SaveUploadedFile(file, doc.StoragePath); err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	if err := h.repo.Create(c.Request.Context(), &doc); err != nil {
		c.Error(err) //nolint:errcheck
		return
	}

	payload := worker.ExtractJobPayload{DocumentID: doc.ID.String()}
	if err := h.dispatcher.EnqueueExtract(c.Request.Context(), payload); err != nil {
		// Document row is persisted; the retry cron will pick it up later.
		now := time.Now()
		doc.NextRetryAt = &now
		_ = h.repo.Update(c.Request.Context(), &doc)
	}

	c.JSON(http.StatusAccepted, toDocumentResponse(&doc))
}

// Get godoc
// @Summary  Get extraction status of an uploaded document
// @Tags     documents
// @Param    id path string true "Document id"
// @Success  200 {object} dto.DocumentResponse
// @Failure  404 {object} apierror.APIError
// @Router   /v1/documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid document id"))
		return
	}

	doc, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("document not found"))
			return
		}
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, toDocumentResponse(doc))
}

func toDocumentResponse(d *model.SourceDocument) dto.DocumentResponse {
	resp := dto.DocumentResponse{
		ID:         d.ID.String(),
		Filename:   d.Filename,
		Status:     d.Status,
		RetryCount: d.RetryCount,
		LastError:  d.LastError,
		CreatedAt:  d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if d.InvoiceID != nil {
		iid := d.InvoiceID.String()
		resp.InvoiceID = &iid
	}
	return resp
}
