package port

import (
	"context"

	"github.com/google/uuid"

	"parsegate/internal/domain"
)

// Ingestor is the single downstream collaborator contract. It is invoked
// immediately on auto-approval or from reprocess on an APPROVED item.
// A failure maps to domain.ErrIngestionFailed and must not corrupt the
// caller's record or queue state; retry policy belongs to the implementor.
type Ingestor interface {
	Ingest(ctx context.Context, doc *domain.Document, finalParseCase string) (uuid.UUID, error)
}
