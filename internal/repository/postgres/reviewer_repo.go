package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"parsegate/internal/domain"
	"parsegate/internal/port"
)

type reviewerRepo struct {
	db *sqlx.DB
}

// NewReviewerRepo creates a new PostgreSQL-backed ReviewerRepository.
func NewReviewerRepo(db *sqlx.DB) port.ReviewerRepository {
	return &reviewerRepo{db: db}
}

func (r *reviewerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reviewer, error) {
	var rev domain.Reviewer
	err := r.db.GetContext(ctx, &rev,
		"SELECT * FROM reviewers WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("reviewerRepo.GetByID: %w", err)
	}
	return &rev, nil
}

func (r *reviewerRepo) GetByEmail(ctx context.Context, email string) (*domain.Reviewer, error) {
	var rev domain.Reviewer
	err := r.db.GetContext(ctx, &rev,
		"SELECT * FROM reviewers WHERE email = $1", email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("reviewerRepo.GetByEmail: %w", err)
	}
	return &rev, nil
}
