package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"parsegate/internal/domain"
	"parsegate/internal/port"
)

type parseCaseRepo struct {
	db *sqlx.DB
}

// NewParseCaseRepo creates a new PostgreSQL-backed ParseCaseRepository.
func NewParseCaseRepo(db *sqlx.DB) port.ParseCaseRepository {
	return &parseCaseRepo{db: db}
}

func (r *parseCaseRepo) ListWithAttributes(ctx context.Context) ([]domain.ParseCase, error) {
	var cases []domain.ParseCase
	err := r.db.SelectContext(ctx, &cases,
		"SELECT * FROM parse_cases ORDER BY detection_priority, name")
	if err != nil {
		return nil, fmt.Errorf("parseCaseRepo.ListWithAttributes cases: %w", err)
	}

	var attrs []domain.AttributeDefinition
	err = r.db.SelectContext(ctx, &attrs,
		"SELECT * FROM attribute_definitions ORDER BY parse_case_id, position")
	if err != nil {
		return nil, fmt.Errorf("parseCaseRepo.ListWithAttributes attributes: %w", err)
	}

	byCase := make(map[uuid.UUID][]domain.AttributeDefinition, len(cases))
	for _, a := range attrs {
		byCase[a.ParseCaseID] = append(byCase[a.ParseCaseID], a)
	}
	for i := range cases {
		cases[i].Attributes = byCase[cases[i].ID]
	}
	return cases, nil
}
