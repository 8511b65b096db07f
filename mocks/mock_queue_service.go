package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"parsegate/internal/domain"
	"parsegate/internal/port"
	"parsegate/internal/service"
)

// MockQueueService is a mock implementation of service.QueueService.
type MockQueueService struct {
	mock.Mock
}

func (m *MockQueueService) List(ctx context.Context, filter port.QueueListFilter) ([]domain.ApprovalQueueItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApprovalQueueItem), args.Error(1)
}

func (m *MockQueueService) Get(ctx context.Context, id uuid.UUID) (*domain.ApprovalQueueItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalQueueItem), args.Error(1)
}

func (m *MockQueueService) Review(ctx context.Context, id uuid.UUID, input service.ReviewInput) (*domain.ApprovalQueueItem, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalQueueItem), args.Error(1)
}

func (m *MockQueueService) BatchReview(ctx context.Context, ids []uuid.UUID, input service.ReviewInput) (*domain.BatchReviewReport, error) {
	args := m.Called(ctx, ids, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchReviewReport), args.Error(1)
}

func (m *MockQueueService) Reprocess(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockQueueService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQueueService) Stats(ctx context.Context) (*domain.QueueStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueueStats), args.Error(1)
}
