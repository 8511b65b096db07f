package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"parsegate/internal/domain"
	"parsegate/internal/port"
)

// MockApprovalQueueRepo is a mock implementation of port.ApprovalQueueRepository.
type MockApprovalQueueRepo struct {
	mock.Mock
}

func (m *MockApprovalQueueRepo) Create(ctx context.Context, item *domain.ApprovalQueueItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockApprovalQueueRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ApprovalQueueItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalQueueItem), args.Error(1)
}

func (m *MockApprovalQueueRepo) List(ctx context.Context, filter port.QueueListFilter) ([]domain.ApprovalQueueItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApprovalQueueItem), args.Error(1)
}

func (m *MockApprovalQueueRepo) TransitionFromPending(ctx context.Context, id uuid.UUID, update port.ReviewUpdate) (*domain.ApprovalQueueItem, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalQueueItem), args.Error(1)
}

func (m *MockApprovalQueueRepo) SetIngestedDocument(ctx context.Context, id uuid.UUID, documentID uuid.UUID) error {
	args := m.Called(ctx, id, documentID)
	return args.Error(0)
}

func (m *MockApprovalQueueRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockApprovalQueueRepo) Stats(ctx context.Context, approvalThreshold float64) (*domain.QueueStats, error) {
	args := m.Called(ctx, approvalThreshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueueStats), args.Error(1)
}
