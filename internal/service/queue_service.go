package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"parsegate/internal/catalog"
	"parsegate/internal/config"
	"parsegate/internal/domain"
	"parsegate/internal/port"
)

// ReviewInput carries one reviewer decision.
type ReviewInput struct {
	Action            domain.ReviewAction
	ReviewerID        uuid.UUID
	Notes             string
	ParseCaseOverride *string
}

// QueueService manages the approval queue review workflow.
type QueueService interface {
	List(ctx context.Context, filter port.QueueListFilter) ([]domain.ApprovalQueueItem, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.ApprovalQueueItem, error)
	// Review resolves a PENDING item. Concurrent reviews of the same item
	// race in the store; the loser gets ErrAlreadyReviewed.
	Review(ctx context.Context, id uuid.UUID, input ReviewInput) (*domain.ApprovalQueueItem, error)
	// BatchReview applies one decision to many items independently; a failed
	// item never rolls back the others.
	BatchReview(ctx context.Context, ids []uuid.UUID, input ReviewInput) (*domain.BatchReviewReport, error)
	// Reprocess hands an APPROVED item to the downstream ingestor. Repeated
	// calls return the document id stored by the first success.
	Reprocess(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*domain.QueueStats, error)
}

type queueService struct {
	queueRepo port.ApprovalQueueRepository
	ingestor  port.Ingestor
	storage   port.ObjectStorage
	catalog   *catalog.Catalog
	detCfg    config.DetectionConfig
	queueCfg  config.QueueConfig
	s3Cfg     config.S3Config
}

// NewQueueService creates a new QueueService implementation.
func NewQueueService(
	queueRepo port.ApprovalQueueRepository,
	ingestor port.Ingestor,
	storage port.ObjectStorage,
	cat *catalog.Catalog,
	detCfg config.DetectionConfig,
	queueCfg config.QueueConfig,
	s3Cfg config.S3Config,
) QueueService {
	return &queueService{
		queueRepo: queueRepo,
		ingestor:  ingestor,
		storage:   storage,
		catalog:   cat,
		detCfg:    detCfg,
		queueCfg:  queueCfg,
		s3Cfg:     s3Cfg,
	}
}

func (s *queueService) List(ctx context.Context, filter port.QueueListFilter) ([]domain.ApprovalQueueItem, error) {
	if filter.Limit <= 0 {
		filter.Limit = s.queueCfg.DefaultListLimit
	}
	if s.queueCfg.MaxListLimit > 0 && filter.Limit > s.queueCfg.MaxListLimit {
		filter.Limit = s.queueCfg.MaxListLimit
	}
	return s.queueRepo.List(ctx, filter)
}

func (s *queueService) Get(ctx context.Context, id uuid.UUID) (*domain.ApprovalQueueItem, error) {
	return s.queueRepo.GetByID(ctx, id)
}

func (s *queueService) Review(ctx context.Context, id uuid.UUID, input ReviewInput) (*domain.ApprovalQueueItem, error) {
	update, err := s.buildUpdate(input)
	if err != nil {
		return nil, err
	}
	item, err := s.queueRepo.TransitionFromPending(ctx, id, *update)
	if err != nil {
		return nil, err
	}
	log.Printf("queueService: item %s %s by %s", item.ID, item.Status, input.ReviewerID)
	return item, nil
}

func (s *queueService) BatchReview(ctx context.Context, ids []uuid.UUID, input ReviewInput) (*domain.BatchReviewReport, error) {
	update, err := s.buildUpdate(input)
	if err != nil {
		return nil, err
	}

	report := &domain.BatchReviewReport{Total: len(ids)}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry := domain.BatchReviewEntry{ItemID: id}
		if item, err := s.queueRepo.TransitionFromPending(ctx, id, *update); err != nil {
			entry.Error = err.Error()
			report.Failed++
		} else {
			entry.OK = true
			entry.Item = item
			report.Success++
		}
		report.Results = append(report.Results, entry)
	}
	return report, nil
}

// buildUpdate validates the decision and translates it to a store-level
// review transition. An override must name a catalog parse case: approving a
// document into a case the system cannot parse only moves the failure
// downstream.
func (s *queueService) buildUpdate(input ReviewInput) (*port.ReviewUpdate, error) {
	var status domain.QueueStatus
	switch input.Action {
	case domain.ActionApprove:
		status = domain.QueueStatusApproved
	case domain.ActionReject:
		status = domain.QueueStatusRejected
	default:
		return nil, fmt.Errorf("action %q: %w", input.Action, domain.ErrInvalidAction)
	}

	if input.ParseCaseOverride != nil && *input.ParseCaseOverride != "" {
		if !s.catalog.Validate(*input.ParseCaseOverride) {
			return nil, fmt.Errorf("override %q: %w", *input.ParseCaseOverride, domain.ErrUnknownParseCase)
		}
	}

	return &port.ReviewUpdate{
		Status:            status,
		ReviewedBy:        input.ReviewerID,
		ReviewedAt:        time.Now().UTC(),
		Notes:             input.Notes,
		ParseCaseOverride: input.ParseCaseOverride,
	}, nil
}

func (s *queueService) Reprocess(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	item, err := s.queueRepo.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if item.Status != domain.QueueStatusApproved {
		return uuid.Nil, fmt.Errorf("item %s is %s: %w", item.ID, item.Status, domain.ErrNotApproved)
	}
	if item.IngestedDocumentID != nil {
		return *item.IngestedDocumentID, nil
	}

	doc, err := s.documentFromItem(ctx, item)
	if err != nil {
		return uuid.Nil, err
	}

	documentID, err := s.ingestor.Ingest(ctx, doc, item.FinalParseCase())
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrIngestionFailed, err)
	}
	if err := s.queueRepo.SetIngestedDocument(ctx, item.ID, documentID); err != nil {
		// The ingest succeeded; losing the marker only costs idempotency.
		log.Printf("queueService: storing ingested document id for %s: %v", item.ID, err)
	}

	log.Printf("queueService: reprocessed %s as %s -> document %s", item.ID, item.FinalParseCase(), documentID)
	return documentID, nil
}

// documentFromItem rebuilds the document handle the ingestor needs from the
// queue item's stored fields.
func (s *queueService) documentFromItem(ctx context.Context, item *domain.ApprovalQueueItem) (*domain.Document, error) {
	doc := &domain.Document{
		Filename:   item.Filename,
		Format:     domain.FormatType(item.FileType),
		Size:       item.FileSize,
		StorageKey: item.StorageKey,
		UploadedAt: item.UploadedAt,
	}
	if item.DocumentID != nil {
		doc.ID = *item.DocumentID
	}
	if item.StorageKey != "" && s.storage != nil {
		content, err := s.storage.Download(ctx, s.s3Cfg.Bucket, item.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("%w: fetching %s: %v", domain.ErrDocumentUnreadable, item.StorageKey, err)
		}
		doc.Content = content
		doc.Size = int64(len(content))
	}
	return doc, nil
}

func (s *queueService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.queueRepo.Delete(ctx, id)
}

func (s *queueService) Stats(ctx context.Context) (*domain.QueueStats, error) {
	return s.queueRepo.Stats(ctx, s.detCfg.ApprovalThreshold)
}
