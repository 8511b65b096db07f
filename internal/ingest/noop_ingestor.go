package ingest

import (
	"context"
	"log"

	"github.com/google/uuid"

	"parsegate/internal/domain"
	"parsegate/internal/port"
)

type noopIngestor struct{}

// NewNoopIngestor creates an Ingestor that assigns a fresh document id and
// logs the handoff. Used in development when no downstream is configured.
func NewNoopIngestor() port.Ingestor {
	return &noopIngestor{}
}

func (i *noopIngestor) Ingest(_ context.Context, doc *domain.Document, finalParseCase string) (uuid.UUID, error) {
	id := uuid.New()
	log.Printf("[NOOP INGEST] %s as %s -> %s", doc.Filename, finalParseCase, id)
	return id, nil
}
