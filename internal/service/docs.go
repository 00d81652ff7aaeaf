package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"training-portal/internal/config"
)

// DocTemplate names a document the rendering service knows how to build.
type DocTemplate string

const (
	DocOffer    DocTemplate = "offer"
	DocProforma DocTemplate = "proforma"
	DocReceipt  DocTemplate = "receipt"
)

// DocsRenderer turns structured document data into PDF bytes.
type DocsRenderer interface {
	Render(template DocTemplate, data map[string]interface{}) ([]byte, error)
}

// DocsService calls the internal template-rendering service. Requests
// carry a shared-secret header; the call is bounded by a timeout.
type DocsService struct {
	baseURL string
	secret  string
	client  *http.Client
}

// NewDocsService reads the renderer endpoint from config.
func NewDocsService() *DocsService {
	cfg := config.Get()
	return &DocsService{
		baseURL: cfg.Docs.BaseURL,
		secret:  cfg.Docs.Secret,
		client:  &http.Client{Timeout: time.Duration(cfg.Docs.TimeoutSeconds) * time.Second},
	}
}

// Render posts document data to the rendering service and returns the
// PDF bytes.
func (s *DocsService) Render(template DocTemplate, data map[string]interface{}) ([]byte, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("document service is not configured")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/render/%s", s.baseURL, template)
	req, err := http.NewRequest("POST", url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Docs-Secret", s.secret)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("document service returned %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
