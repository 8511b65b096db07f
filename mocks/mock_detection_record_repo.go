package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"parsegate/internal/domain"
)

// MockDetectionRecordRepo is a mock implementation of port.DetectionRecordRepository.
type MockDetectionRecordRepo struct {
	mock.Mock
}

func (m *MockDetectionRecordRepo) Create(ctx context.Context, record *domain.DetectionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDetectionRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DetectionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DetectionRecord), args.Error(1)
}

func (m *MockDetectionRecordRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.DetectionRecord, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DetectionRecord), args.Error(1)
}

func (m *MockDetectionRecordRepo) ListByQueueItem(ctx context.Context, queueItemID uuid.UUID) ([]domain.DetectionRecord, error) {
	args := m.Called(ctx, queueItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DetectionRecord), args.Error(1)
}

func (m *MockDetectionRecordRepo) ListLowConfidence(ctx context.Context, threshold float64, limit int) ([]domain.DetectionRecord, error) {
	args := m.Called(ctx, threshold, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DetectionRecord), args.Error(1)
}

func (m *MockDetectionRecordRepo) AggregateStats(ctx context.Context) ([]domain.ParseCaseDetectionStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ParseCaseDetectionStats), args.Error(1)
}

func (m *MockDetectionRecordRepo) ListRecent(ctx context.Context, offset, limit int) ([]domain.DetectionRecord, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.DetectionRecord), args.Int(1), args.Error(2)
}
