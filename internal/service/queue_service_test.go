package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"parsegate/internal/config"
	"parsegate/internal/domain"
	"parsegate/internal/port"
	"parsegate/internal/service"
	"parsegate/mocks"
)

func setupQueue(t *testing.T) (*mocks.MockApprovalQueueRepo, *mocks.MockIngestor, *mocks.MockObjectStorage, service.QueueService) {
	t.Helper()
	queueRepo := new(mocks.MockApprovalQueueRepo)
	ingestor := new(mocks.MockIngestor)
	storage := new(mocks.MockObjectStorage)

	svc := service.NewQueueService(
		queueRepo, ingestor, storage, serviceCatalog(t),
		config.DetectionConfig{RawWeight: 0.5, MatchWeight: 0.5, ApprovalThreshold: 0.75},
		config.QueueConfig{DefaultListLimit: 100, MaxListLimit: 1000},
		config.S3Config{Bucket: "docs-bucket"})
	return queueRepo, ingestor, storage, svc
}

func pendingItem() *domain.ApprovalQueueItem {
	return &domain.ApprovalQueueItem{
		ID:                uuid.New(),
		Filename:          "scan.xml",
		DetectedParseCase: "complete_attributes",
		Confidence:        0.6,
		FileType:          "xml",
		Status:            domain.QueueStatusPending,
		UploadedAt:        time.Now().UTC(),
	}
}

func TestReview_Approve(t *testing.T) {
	queueRepo, _, _, svc := setupQueue(t)

	item := pendingItem()
	reviewerID := uuid.New()
	approved := *item
	approved.Status = domain.QueueStatusApproved

	queueRepo.On("TransitionFromPending", mock.Anything, item.ID,
		mock.MatchedBy(func(u port.ReviewUpdate) bool {
			return u.Status == domain.QueueStatusApproved &&
				u.ReviewedBy == reviewerID &&
				u.Notes == "looks right" &&
				!u.ReviewedAt.IsZero()
		})).Return(&approved, nil)

	result, err := svc.Review(context.Background(), item.ID, service.ReviewInput{
		Action:     domain.ActionApprove,
		ReviewerID: reviewerID,
		Notes:      "looks right",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.QueueStatusApproved, result.Status)
	queueRepo.AssertExpectations(t)
}

func TestReview_InvalidAction(t *testing.T) {
	queueRepo, _, _, svc := setupQueue(t)

	_, err := svc.Review(context.Background(), uuid.New(), service.ReviewInput{
		Action:     "escalate",
		ReviewerID: uuid.New(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
	queueRepo.AssertNotCalled(t, "TransitionFromPending", mock.Anything, mock.Anything, mock.Anything)
}

func TestReview_UnknownOverrideRejected(t *testing.T) {
	queueRepo, _, _, svc := setupQueue(t)

	override := "not_in_catalog"
	_, err := svc.Review(context.Background(), uuid.New(), service.ReviewInput{
		Action:            domain.ActionApprove,
		ReviewerID:        uuid.New(),
		ParseCaseOverride: &override,
	})
	assert.ErrorIs(t, err, domain.ErrUnknownParseCase)
	queueRepo.AssertNotCalled(t, "TransitionFromPending", mock.Anything, mock.Anything, mock.Anything)
}

func TestReview_AlreadyReviewed(t *testing.T) {
	queueRepo, _, _, svc := setupQueue(t)

	id := uuid.New()
	queueRepo.On("TransitionFromPending", mock.Anything, id, mock.Anything).
		Return(nil, domain.ErrAlreadyReviewed)

	_, err := svc.Review(context.Background(), id, service.ReviewInput{
		Action:     domain.ActionReject,
		ReviewerID: uuid.New(),
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)
}

func TestBatchReview_PartialFailure(t *testing.T) {
	queueRepo, _, _, svc := setupQueue(t)

	okID, lostID, missingID := uuid.New(), uuid.New(), uuid.New()
	approved := pendingItem()
	approved.Status = domain.QueueStatusApproved

	queueRepo.On("TransitionFromPending", mock.Anything, okID, mock.Anything).Return(approved, nil)
	queueRepo.On("TransitionFromPending", mock.Anything, lostID, mock.Anything).Return(nil, domain.ErrAlreadyReviewed)
	queueRepo.On("TransitionFromPending", mock.Anything, missingID, mock.Anything).Return(nil, domain.ErrItemNotFound)

	report, err := svc.BatchReview(context.Background(), []uuid.UUID{okID, lostID, missingID}, service.ReviewInput{
		Action:     domain.ActionApprove,
		ReviewerID: uuid.New(),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Success)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Results, 3)
	assert.True(t, report.Results[0].OK)
	require.NotNil(t, report.Results[0].Item)
	assert.Equal(t, domain.QueueStatusApproved, report.Results[0].Item.Status)
	assert.False(t, report.Results[1].OK)
	assert.Nil(t, report.Results[1].Item)
	assert.NotEmpty(t, report.Results[1].Error)
	assert.False(t, report.Results[2].OK)
}

func TestBatchReview_InvalidActionFailsFast(t *testing.T) {
	queueRepo, _, _, svc := setupQueue(t)

	_, err := svc.BatchReview(context.Background(), []uuid.UUID{uuid.New()}, service.ReviewInput{
		Action:     "bless",
		ReviewerID: uuid.New(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
	queueRepo.AssertNotCalled(t, "TransitionFromPending", mock.Anything, mock.Anything, mock.Anything)
}

func TestReprocess_NotApproved(t *testing.T) {
	queueRepo, ingestor, _, svc := setupQueue(t)

	item := pendingItem()
	queueRepo.On("GetByID", mock.Anything, item.ID).Return(item, nil)

	_, err := svc.Reprocess(context.Background(), item.ID)
	assert.ErrorIs(t, err, domain.ErrNotApproved)
	ingestor.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything, mock.Anything)
}

func TestReprocess_IdempotentAfterSuccess(t *testing.T) {
	queueRepo, ingestor, _, svc := setupQueue(t)

	existing := uuid.New()
	item := pendingItem()
	item.Status = domain.QueueStatusApproved
	item.IngestedDocumentID = &existing
	queueRepo.On("GetByID", mock.Anything, item.ID).Return(item, nil)

	documentID, err := svc.Reprocess(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, existing, documentID)
	ingestor.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything, mock.Anything)
}

func TestReprocess_UsesOverrideAndStoresDocumentID(t *testing.T) {
	queueRepo, ingestor, storage, svc := setupQueue(t)

	item := pendingItem()
	item.Status = domain.QueueStatusApproved
	item.StorageKey = "documents/abc/scan.xml"
	override := "complete_attributes"
	item.ParseCaseOverride = &override
	item.DetectedParseCase = "something_else"

	ingestedID := uuid.New()
	queueRepo.On("GetByID", mock.Anything, item.ID).Return(item, nil)
	storage.On("Download", mock.Anything, "docs-bucket", item.StorageKey).
		Return([]byte("<LidcReadMessage/>"), nil)
	ingestor.On("Ingest", mock.Anything, mock.MatchedBy(func(doc *domain.Document) bool {
		return doc.Filename == "scan.xml" && len(doc.Content) > 0
	}), "complete_attributes").Return(ingestedID, nil)
	queueRepo.On("SetIngestedDocument", mock.Anything, item.ID, ingestedID).Return(nil)

	documentID, err := svc.Reprocess(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, ingestedID, documentID)

	queueRepo.AssertExpectations(t)
	ingestor.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestReprocess_IngestionFailure(t *testing.T) {
	queueRepo, ingestor, _, svc := setupQueue(t)

	item := pendingItem()
	item.Status = domain.QueueStatusApproved
	queueRepo.On("GetByID", mock.Anything, item.ID).Return(item, nil)
	ingestor.On("Ingest", mock.Anything, mock.Anything, mock.Anything).
		Return(uuid.Nil, assert.AnError)

	_, err := svc.Reprocess(context.Background(), item.ID)
	assert.ErrorIs(t, err, domain.ErrIngestionFailed)
	queueRepo.AssertNotCalled(t, "SetIngestedDocument", mock.Anything, mock.Anything, mock.Anything)
}

func TestList_LimitClamping(t *testing.T) {
	queueRepo, _, _, svc := setupQueue(t)

	queueRepo.On("List", mock.Anything, mock.MatchedBy(func(f port.QueueListFilter) bool {
		return f.Limit == 100
	})).Return([]domain.ApprovalQueueItem{}, nil).Once()
	_, err := svc.List(context.Background(), port.QueueListFilter{})
	require.NoError(t, err)

	queueRepo.On("List", mock.Anything, mock.MatchedBy(func(f port.QueueListFilter) bool {
		return f.Limit == 1000
	})).Return([]domain.ApprovalQueueItem{}, nil).Once()
	_, err = svc.List(context.Background(), port.QueueListFilter{Limit: 5000})
	require.NoError(t, err)

	queueRepo.AssertExpectations(t)
}

func TestStats_PassesThreshold(t *testing.T) {
	queueRepo, _, _, svc := setupQueue(t)

	queueRepo.On("Stats", mock.Anything, 0.75).Return(&domain.QueueStats{TotalPending: 3}, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalPending)
	queueRepo.AssertExpectations(t)
}

func TestDelete_Passthrough(t *testing.T) {
	queueRepo, _, _, svc := setupQueue(t)

	id := uuid.New()
	queueRepo.On("Delete", mock.Anything, id).Return(domain.ErrPendingDelete)

	err := svc.Delete(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrPendingDelete)
}
