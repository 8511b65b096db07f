package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"parsegate/internal/domain"
)

// MockRecordService is a mock implementation of service.RecordService.
type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) Get(ctx context.Context, id uuid.UUID) (*domain.DetectionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DetectionRecord), args.Error(1)
}

func (m *MockRecordService) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.DetectionRecord, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DetectionRecord), args.Error(1)
}

func (m *MockRecordService) ListByQueueItem(ctx context.Context, queueItemID uuid.UUID) ([]domain.DetectionRecord, error) {
	args := m.Called(ctx, queueItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DetectionRecord), args.Error(1)
}

func (m *MockRecordService) ListLowConfidence(ctx context.Context, threshold float64, limit int) ([]domain.DetectionRecord, error) {
	args := m.Called(ctx, threshold, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DetectionRecord), args.Error(1)
}

func (m *MockRecordService) ListRecent(ctx context.Context, offset, limit int) ([]domain.DetectionRecord, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.DetectionRecord), args.Int(1), args.Error(2)
}

func (m *MockRecordService) Stats(ctx context.Context) ([]domain.ParseCaseDetectionStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ParseCaseDetectionStats), args.Error(1)
}

func (m *MockRecordService) ExportCSV(ctx context.Context, w io.Writer, limit int) error {
	args := m.Called(ctx, w, limit)
	return args.Error(0)
}
