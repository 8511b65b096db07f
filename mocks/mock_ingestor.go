package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"parsegate/internal/domain"
)

// MockIngestor is a mock implementation of port.Ingestor.
type MockIngestor struct {
	mock.Mock
}

func (m *MockIngestor) Ingest(ctx context.Context, doc *domain.Document, finalParseCase string) (uuid.UUID, error) {
	args := m.Called(ctx, doc, finalParseCase)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
