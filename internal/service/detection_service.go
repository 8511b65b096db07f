package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"parsegate/internal/config"
	"parsegate/internal/detect"
	"parsegate/internal/domain"
	"parsegate/internal/port"
)

// ProcessOutcome is what happened to a document after detection.
type ProcessOutcome struct {
	Record             *domain.DetectionRecord  `json:"record"`
	Result             *domain.DetectionResult  `json:"result,omitempty"`
	QueueItem          *domain.ApprovalQueueItem `json:"queue_item,omitempty"`
	AutoIngested       bool                     `json:"auto_ingested"`
	IngestedDocumentID uuid.UUID                `json:"ingested_document_id,omitempty"`
}

// DetectionService runs detection and routes documents by confidence.
type DetectionService interface {
	// Process detects, persists an audit record (also for failed runs),
	// and either auto-ingests or queues the document for review.
	Process(ctx context.Context, doc *domain.Document) (*ProcessOutcome, error)
	// Preview runs detection without persisting anything; used by the
	// ad-hoc detect endpoint.
	Preview(ctx context.Context, doc *domain.Document) (*domain.DetectionResult, error)
}

type detectionService struct {
	engine     *detect.Engine
	recordRepo port.DetectionRecordRepository
	queueRepo  port.ApprovalQueueRepository
	ingestor   port.Ingestor
	storage    port.ObjectStorage
	sender     port.EmailSender
	detCfg     config.DetectionConfig
	s3Cfg      config.S3Config
	emailCfg   config.EmailConfig
}

// NewDetectionService creates a new DetectionService implementation. The
// storage and sender collaborators may be nil; documents then must carry
// their content inline and queue notifications are skipped.
func NewDetectionService(
	engine *detect.Engine,
	recordRepo port.DetectionRecordRepository,
	queueRepo port.ApprovalQueueRepository,
	ingestor port.Ingestor,
	storage port.ObjectStorage,
	sender port.EmailSender,
	detCfg config.DetectionConfig,
	s3Cfg config.S3Config,
	emailCfg config.EmailConfig,
) DetectionService {
	return &detectionService{
		engine:     engine,
		recordRepo: recordRepo,
		queueRepo:  queueRepo,
		ingestor:   ingestor,
		storage:    storage,
		sender:     sender,
		detCfg:     detCfg,
		s3Cfg:      s3Cfg,
		emailCfg:   emailCfg,
	}
}

func (s *detectionService) Preview(ctx context.Context, doc *domain.Document) (*domain.DetectionResult, error) {
	if err := s.loadContent(ctx, doc); err != nil {
		return nil, err
	}
	return s.engine.Run(ctx, doc)
}

func (s *detectionService) Process(ctx context.Context, doc *domain.Document) (*ProcessOutcome, error) {
	if err := s.loadContent(ctx, doc); err != nil {
		return s.recordFailure(ctx, doc, err)
	}
	s.storeDocument(ctx, doc)

	result, runErr := s.engine.Run(ctx, doc)
	if runErr != nil {
		return s.recordFailure(ctx, doc, runErr)
	}

	if result.Confidence >= s.detCfg.ApprovalThreshold {
		return s.autoIngest(ctx, doc, result)
	}
	return s.queueForReview(ctx, doc, result)
}

// recordFailure enters a failed run into the audit log, whether the document
// could not be fetched or detection itself failed. A silently dropped failure
// would defeat the trail this service exists to keep.
func (s *detectionService) recordFailure(ctx context.Context, doc *domain.Document, runErr error) (*ProcessOutcome, error) {
	record := failureRecord(doc, runErr)
	if err := s.recordRepo.Create(ctx, record); err != nil {
		log.Printf("detectionService: recording failure for %s: %v", doc.Filename, err)
	}
	return &ProcessOutcome{Record: record}, runErr
}

// autoIngest hands the document straight to the downstream collaborator. An
// ingestion failure is noted on the record; no queue item ever existed, so
// there is nothing to clean up.
func (s *detectionService) autoIngest(ctx context.Context, doc *domain.Document, result *domain.DetectionResult) (*ProcessOutcome, error) {
	record := successRecord(doc, result, nil)

	ingestedID, ingErr := s.ingestor.Ingest(ctx, doc, result.ParseCase)
	if ingErr != nil {
		record.ErrorDetail = fmt.Sprintf("auto-ingest failed: %v", ingErr)
	}
	if err := s.recordRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("detectionService.Process record: %w", err)
	}
	if ingErr != nil {
		return &ProcessOutcome{Record: record, Result: result},
			fmt.Errorf("%w: %v", domain.ErrIngestionFailed, ingErr)
	}

	log.Printf("detectionService: auto-ingested %s as %s (confidence %.3f)",
		doc.Filename, result.ParseCase, result.Confidence)
	return &ProcessOutcome{
		Record:             record,
		Result:             result,
		AutoIngested:       true,
		IngestedDocumentID: ingestedID,
	}, nil
}

func (s *detectionService) queueForReview(ctx context.Context, doc *domain.Document, result *domain.DetectionResult) (*ProcessOutcome, error) {
	item := &domain.ApprovalQueueItem{
		Filename:          doc.Filename,
		DetectedParseCase: result.ParseCase,
		Confidence:        result.Confidence,
		FileType:          string(doc.Format),
		FileSize:          doc.Size,
		StorageKey:        doc.StorageKey,
		UploadedAt:        doc.UploadedAt,
		Status:            domain.QueueStatusPending,
	}
	if doc.ID != uuid.Nil {
		id := doc.ID
		item.DocumentID = &id
	}
	if err := s.queueRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("detectionService.Process queue item: %w", err)
	}

	record := successRecord(doc, result, &item.ID)
	if err := s.recordRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("detectionService.Process record: %w", err)
	}

	s.notifyReviewers(ctx, item)

	log.Printf("detectionService: queued %s for review as %s (confidence %.3f < %.3f)",
		doc.Filename, result.ParseCase, result.Confidence, s.detCfg.ApprovalThreshold)
	return &ProcessOutcome{Record: record, Result: result, QueueItem: item}, nil
}

func (s *detectionService) notifyReviewers(ctx context.Context, item *domain.ApprovalQueueItem) {
	if s.sender == nil {
		return
	}
	recipients := s.emailCfg.Recipients()
	if len(recipients) == 0 {
		return
	}
	if err := s.sender.SendQueueItemNotification(ctx, recipients, item); err != nil {
		log.Printf("detectionService: queue notification for %s: %v", item.ID, err)
	}
}

// storeDocument uploads inline content so queued items keep a storage key a
// later reprocess can fetch from. Best-effort; detection proceeds either way.
func (s *detectionService) storeDocument(ctx context.Context, doc *domain.Document) {
	if s.storage == nil || doc.StorageKey != "" || len(doc.Content) == 0 {
		return
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	key := fmt.Sprintf("documents/%s/%s", doc.ID, doc.Filename)
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3Cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(doc.Content),
		ContentType: contentTypeFor(doc.Format),
		Size:        int64(len(doc.Content)),
	})
	if err != nil {
		log.Printf("detectionService: storing %s: %v", doc.Filename, err)
		return
	}
	doc.StorageKey = key
}

func contentTypeFor(format domain.FormatType) string {
	switch format {
	case domain.FormatXML:
		return "application/xml"
	case domain.FormatJSON:
		return "application/json"
	case domain.FormatCSV:
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

// loadContent fetches document bytes from object storage for handles that
// arrive with only a storage key.
func (s *detectionService) loadContent(ctx context.Context, doc *domain.Document) error {
	if len(doc.Content) > 0 || doc.StorageKey == "" {
		return nil
	}
	if s.storage == nil {
		return fmt.Errorf("%w: no content and no storage configured for %s",
			domain.ErrDocumentUnreadable, doc.Filename)
	}
	content, err := s.storage.Download(ctx, s.s3Cfg.Bucket, doc.StorageKey)
	if err != nil {
		return fmt.Errorf("%w: fetching %s: %v", domain.ErrDocumentUnreadable, doc.StorageKey, err)
	}
	doc.Content = content
	doc.Size = int64(len(content))
	return nil
}

func successRecord(doc *domain.Document, result *domain.DetectionResult, queueItemID *uuid.UUID) *domain.DetectionRecord {
	outcome := domain.OutcomeOK
	if result.FallbackApplied {
		outcome = domain.OutcomeFallback
	}
	rec := &domain.DetectionRecord{
		QueueItemID:         queueItemID,
		Outcome:             outcome,
		ParseCase:           result.ParseCase,
		Confidence:          result.Confidence,
		RawConfidence:       result.RawConfidence,
		ExpectedAttributes:  result.ExpectedAttributes,
		DetectedAttributes:  result.DetectedAttributes,
		MissingAttributes:   result.MissingAttributes,
		MatchPercentage:     result.MatchPercentage,
		TotalExpected:       result.TotalExpected,
		TotalDetected:       result.TotalDetected,
		DetectorName:        result.DetectorName,
		DetectorVersion:     result.DetectorVersion,
		DetectionMethod:     result.DetectionMethod,
		ConfidenceBreakdown: result.ConfidenceBreakdown,
	}
	if doc.ID != uuid.Nil {
		id := doc.ID
		rec.DocumentID = &id
	}
	return rec
}

func failureRecord(doc *domain.Document, runErr error) *domain.DetectionRecord {
	outcome := domain.OutcomeDetectionFailed
	switch {
	case errors.Is(runErr, domain.ErrNoDetectorAvailable):
		outcome = domain.OutcomeNoDetector
	case errors.Is(runErr, domain.ErrDocumentUnreadable):
		outcome = domain.OutcomeUnreadable
	case errors.Is(runErr, domain.ErrUnknownParseCase):
		outcome = domain.OutcomeUnknownCase
	}
	rec := &domain.DetectionRecord{
		Outcome:     outcome,
		ErrorDetail: runErr.Error(),
	}
	if doc.ID != uuid.Nil {
		id := doc.ID
		rec.DocumentID = &id
	}
	return rec
}
