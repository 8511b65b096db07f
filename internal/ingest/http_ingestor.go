// Package ingest provides the downstream ingestor implementations invoked on
// auto-approval and reprocess.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"parsegate/internal/config"
	"parsegate/internal/domain"
	"parsegate/internal/port"
)

type httpIngestor struct {
	client   *http.Client
	endpoint string
}

// NewHTTPIngestor creates an Ingestor that posts approved documents to the
// configured downstream endpoint.
func NewHTTPIngestor(cfg config.IngestConfig) (port.Ingestor, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("ingest: http provider requires an endpoint")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpIngestor{
		client:   &http.Client{Timeout: timeout},
		endpoint: cfg.Endpoint,
	}, nil
}

type ingestRequest struct {
	DocumentID uuid.UUID `json:"document_id,omitempty"`
	Filename   string    `json:"filename"`
	Format     string    `json:"format"`
	ParseCase  string    `json:"parse_case"`
	StorageKey string    `json:"storage_key,omitempty"`
	Content    []byte    `json:"content,omitempty"`
}

type ingestResponse struct {
	DocumentID uuid.UUID `json:"document_id"`
}

func (i *httpIngestor) Ingest(ctx context.Context, doc *domain.Document, finalParseCase string) (uuid.UUID, error) {
	body, err := json.Marshal(ingestRequest{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Format:     string(doc.Format),
		ParseCase:  finalParseCase,
		StorageKey: doc.StorageKey,
		Content:    doc.Content,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("ingest: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.endpoint, bytes.NewReader(body))
	if err != nil {
		return uuid.Nil, fmt.Errorf("ingest: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ingest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return uuid.Nil, fmt.Errorf("ingest: downstream returned %d: %s", resp.StatusCode, snippet)
	}

	var out ingestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return uuid.Nil, fmt.Errorf("ingest: decoding response: %w", err)
	}
	if out.DocumentID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("ingest: downstream returned no document id")
	}
	return out.DocumentID, nil
}
