package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"parsegate/internal/csvexport"
	"parsegate/internal/domain"
	"parsegate/internal/port"
)

// RecordService exposes the detection audit log.
type RecordService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.DetectionRecord, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.DetectionRecord, error)
	ListByQueueItem(ctx context.Context, queueItemID uuid.UUID) ([]domain.DetectionRecord, error)
	ListLowConfidence(ctx context.Context, threshold float64, limit int) ([]domain.DetectionRecord, error)
	ListRecent(ctx context.Context, offset, limit int) ([]domain.DetectionRecord, int, error)
	Stats(ctx context.Context) ([]domain.ParseCaseDetectionStats, error)
	// ExportCSV streams recent records as a BOM-prefixed CSV.
	ExportCSV(ctx context.Context, w io.Writer, limit int) error
}

type recordService struct {
	recordRepo port.DetectionRecordRepository
}

// NewRecordService creates a new RecordService implementation.
func NewRecordService(recordRepo port.DetectionRecordRepository) RecordService {
	return &recordService{recordRepo: recordRepo}
}

func (s *recordService) Get(ctx context.Context, id uuid.UUID) (*domain.DetectionRecord, error) {
	return s.recordRepo.GetByID(ctx, id)
}

func (s *recordService) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.DetectionRecord, error) {
	return s.recordRepo.ListByDocument(ctx, documentID)
}

func (s *recordService) ListByQueueItem(ctx context.Context, queueItemID uuid.UUID) ([]domain.DetectionRecord, error) {
	return s.recordRepo.ListByQueueItem(ctx, queueItemID)
}

func (s *recordService) ListLowConfidence(ctx context.Context, threshold float64, limit int) ([]domain.DetectionRecord, error) {
	return s.recordRepo.ListLowConfidence(ctx, threshold, limit)
}

func (s *recordService) ListRecent(ctx context.Context, offset, limit int) ([]domain.DetectionRecord, int, error) {
	return s.recordRepo.ListRecent(ctx, offset, limit)
}

func (s *recordService) Stats(ctx context.Context) ([]domain.ParseCaseDetectionStats, error) {
	return s.recordRepo.AggregateStats(ctx)
}

func (s *recordService) ExportCSV(ctx context.Context, w io.Writer, limit int) error {
	records, _, err := s.recordRepo.ListRecent(ctx, 0, limit)
	if err != nil {
		return err
	}

	if _, err := w.Write(csvexport.BOM); err != nil {
		return fmt.Errorf("recordService.ExportCSV: %w", err)
	}
	cw := csvexport.NewWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return fmt.Errorf("recordService.ExportCSV: %w", err)
	}
	if err := cw.WriteRecords(records); err != nil {
		return fmt.Errorf("recordService.ExportCSV: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
