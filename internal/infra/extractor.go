package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"landedcost/internal/dto"
)

// ExtractorClient delegates PDF/OCR text extraction to a sidecar service.
// Extraction is heavyweight and library-bound, so it runs out of process;
// the engine only consumes the structured payload the sidecar returns.
type ExtractorClient struct {
	sidecarURL string
	httpClient *http.Client
}

func NewExtractorClient(sidecarURL string) *ExtractorClient {
	return &ExtractorClient{
		sidecarURL: sidecarURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Extract uploads a stored document to the sidecar and returns the structured
// invoice payload parsed from it.
func (c *ExtractorClient) Extract(ctx context.Context, documentPath string) (*dto.IngestInvoiceRequest, error) {
	f, err := os.Open(documentPath)
	if err != nil {
		return nil, fmt.Errorf("extractor: open document: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(documentPath))
	if err != nil {
		return nil, fmt.Errorf("extractor: create form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("extractor: read document: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("extractor: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sidecarURL+"/extract", &body)
	if err != nil {
		return nil, fmt.Errorf("extractor: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extractor: sidecar unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extractor: sidecar returned %d", resp.StatusCode)
	}

	var payload dto.IngestInvoiceRequest
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("extractor: decode response: %w", err)
	}
	return &payload, nil
}
