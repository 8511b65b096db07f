package port

import (
	"context"

	"github.com/google/uuid"

	"parsegate/internal/domain"
)

// ReviewerRepository persists reviewer accounts for the review surface.
type ReviewerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reviewer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Reviewer, error)
}
