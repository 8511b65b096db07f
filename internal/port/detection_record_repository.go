package port

import (
	"context"

	"github.com/google/uuid"

	"parsegate/internal/domain"
)

// DetectionRecordRepository persists the append-only detection audit log.
// Records are immutable once written; there is no update or delete.
type DetectionRecordRepository interface {
	Create(ctx context.Context, record *domain.DetectionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DetectionRecord, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.DetectionRecord, error)
	ListByQueueItem(ctx context.Context, queueItemID uuid.UUID) ([]domain.DetectionRecord, error)
	// ListLowConfidence returns successful records below the threshold,
	// ascending by confidence (most uncertain first).
	ListLowConfidence(ctx context.Context, threshold float64, limit int) ([]domain.DetectionRecord, error)
	// AggregateStats returns per-parse-case counts and averages for drift
	// monitoring. Only records with outcome ok or fallback contribute.
	AggregateStats(ctx context.Context) ([]domain.ParseCaseDetectionStats, error)
	ListRecent(ctx context.Context, offset, limit int) ([]domain.DetectionRecord, int, error)
}
