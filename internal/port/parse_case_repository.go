package port

import (
	"context"

	"parsegate/internal/domain"
)

// ParseCaseRepository loads the seeded parse case definitions that back the
// attribute catalog. The catalog is built once at startup; this repository
// has no write path at runtime.
type ParseCaseRepository interface {
	// ListWithAttributes returns every parse case with its attribute
	// definitions populated, active or not.
	ListWithAttributes(ctx context.Context) ([]domain.ParseCase, error)
}
