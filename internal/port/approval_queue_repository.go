package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"parsegate/internal/domain"
)

// QueueListFilter narrows approval queue listings.
type QueueListFilter struct {
	Status        *domain.QueueStatus
	MinConfidence *float64
	MaxConfidence *float64
	Limit         int
}

// ReviewUpdate carries the fields written by a review transition.
type ReviewUpdate struct {
	Status            domain.QueueStatus
	ReviewedBy        uuid.UUID
	ReviewedAt        time.Time
	Notes             string
	ParseCaseOverride *string
}

// ApprovalQueueRepository persists approval queue items.
//
// TransitionFromPending must be an atomic conditional update keyed on the
// current PENDING status: of two concurrent reviewers exactly one wins and
// the loser observes ErrAlreadyReviewed. Callers may be independent request
// handlers, so the race is resolved in the store, not with application locks.
type ApprovalQueueRepository interface {
	Create(ctx context.Context, item *domain.ApprovalQueueItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ApprovalQueueItem, error)
	// List orders PENDING results ascending by confidence and resolved
	// results descending by review time.
	List(ctx context.Context, filter QueueListFilter) ([]domain.ApprovalQueueItem, error)
	TransitionFromPending(ctx context.Context, id uuid.UUID, update ReviewUpdate) (*domain.ApprovalQueueItem, error)
	// SetIngestedDocument records the downstream document id produced by the
	// first successful reprocess; it is written at most once.
	SetIngestedDocument(ctx context.Context, id uuid.UUID, documentID uuid.UUID) error
	// Delete removes a resolved item; deleting a PENDING item fails with
	// ErrPendingDelete so unreviewed work cannot vanish.
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, approvalThreshold float64) (*domain.QueueStats, error)
}
