package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"parsegate/internal/domain"
	"parsegate/internal/handler"
	"parsegate/internal/middleware"
	"parsegate/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func queueItem(status domain.QueueStatus) *domain.ApprovalQueueItem {
	return &domain.ApprovalQueueItem{
		ID:                uuid.New(),
		Filename:          "scan.xml",
		DetectedParseCase: "lidc_single_session",
		Confidence:        0.62,
		FileType:          "xml",
		Status:            status,
		UploadedAt:        time.Now().UTC(),
	}
}

func linkedRecord(itemID uuid.UUID) domain.DetectionRecord {
	return domain.DetectionRecord{
		ID:          uuid.New(),
		QueueItemID: &itemID,
		Outcome:     domain.OutcomeOK,
		ParseCase:   "lidc_single_session",
		Confidence:  0.62,
		ExpectedAttributes: []domain.AttributeDefinition{
			{Name: "study_uid", Required: true},
			{Name: "session_count", Required: true},
		},
		MissingAttributes: []domain.AttributeDefinition{
			{Name: "session_count", Required: true},
		},
		DetectedAt: time.Now().UTC(),
	}
}

// dataMap digs the data object out of the response envelope.
func dataMap(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.True(t, resp.Success)
	m, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is not an object")
	return m
}

func TestQueueHandler_Review_EmbedsDetectionRecords(t *testing.T) {
	queueSvc := new(mocks.MockQueueService)
	recordSvc := new(mocks.MockRecordService)
	h := handler.NewQueueHandler(queueSvc, recordSvc)

	item := queueItem(domain.QueueStatusApproved)
	rec := linkedRecord(item.ID)
	queueSvc.On("Review", mock.Anything, item.ID, mock.AnythingOfType("service.ReviewInput")).
		Return(item, nil)
	recordSvc.On("ListByQueueItem", mock.Anything, item.ID).
		Return([]domain.DetectionRecord{rec}, nil)

	body, _ := json.Marshal(map[string]string{"action": "approve", "notes": "ok"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/queue/"+item.ID.String()+"/review", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: item.ID.String()}}
	c.Set(middleware.ContextKeyReviewerID, uuid.New())

	h.Review(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, w.Body.Bytes())

	records, ok := data["detection_records"].([]interface{})
	require.True(t, ok, "review response missing detection_records")
	require.Len(t, records, 1)
	first := records[0].(map[string]interface{})
	assert.NotEmpty(t, first["expected_attributes"])
	assert.NotEmpty(t, first["missing_attributes"])

	queueSvc.AssertExpectations(t)
	recordSvc.AssertExpectations(t)
}

func TestQueueHandler_Get_EmbedsDetectionRecords(t *testing.T) {
	queueSvc := new(mocks.MockQueueService)
	recordSvc := new(mocks.MockRecordService)
	h := handler.NewQueueHandler(queueSvc, recordSvc)

	item := queueItem(domain.QueueStatusPending)
	queueSvc.On("Get", mock.Anything, item.ID).Return(item, nil)
	recordSvc.On("ListByQueueItem", mock.Anything, item.ID).
		Return([]domain.DetectionRecord{linkedRecord(item.ID)}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/queue/"+item.ID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: item.ID.String()}}

	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, w.Body.Bytes())
	assert.NotEmpty(t, data["item"])
	assert.NotEmpty(t, data["detection_records"])
}

func TestQueueHandler_List_EmbedsDetectionRecords(t *testing.T) {
	queueSvc := new(mocks.MockQueueService)
	recordSvc := new(mocks.MockRecordService)
	h := handler.NewQueueHandler(queueSvc, recordSvc)

	item := queueItem(domain.QueueStatusPending)
	queueSvc.On("List", mock.Anything, mock.AnythingOfType("port.QueueListFilter")).
		Return([]domain.ApprovalQueueItem{*item}, nil)
	recordSvc.On("ListByQueueItem", mock.Anything, item.ID).
		Return([]domain.DetectionRecord{linkedRecord(item.ID)}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/queue?status=pending", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	views, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, views, 1)
	view := views[0].(map[string]interface{})
	assert.NotEmpty(t, view["item"])
	assert.NotEmpty(t, view["detection_records"])
}

func TestQueueHandler_BatchReview_EmbedsReviewedItems(t *testing.T) {
	queueSvc := new(mocks.MockQueueService)
	recordSvc := new(mocks.MockRecordService)
	h := handler.NewQueueHandler(queueSvc, recordSvc)

	item := queueItem(domain.QueueStatusApproved)
	lostID := uuid.New()
	report := &domain.BatchReviewReport{
		Total:   2,
		Success: 1,
		Failed:  1,
		Results: []domain.BatchReviewEntry{
			{ItemID: item.ID, OK: true, Item: item},
			{ItemID: lostID, Error: domain.ErrAlreadyReviewed.Error()},
		},
	}
	queueSvc.On("BatchReview", mock.Anything, []uuid.UUID{item.ID, lostID}, mock.AnythingOfType("service.ReviewInput")).
		Return(report, nil)
	recordSvc.On("ListByQueueItem", mock.Anything, item.ID).
		Return([]domain.DetectionRecord{linkedRecord(item.ID)}, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"item_ids": []string{item.ID.String(), lostID.String()},
		"action":   "approve",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/queue/batch-review", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextKeyReviewerID, uuid.New())

	h.BatchReview(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, w.Body.Bytes())

	reportData, ok := data["report"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, reportData["total"])

	// Only the successfully reviewed item carries a breakdown.
	items, ok := data["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	view := items[0].(map[string]interface{})
	assert.NotEmpty(t, view["detection_records"])

	recordSvc.AssertExpectations(t)
}

func TestQueueHandler_Review_MissingReviewerContext(t *testing.T) {
	queueSvc := new(mocks.MockQueueService)
	recordSvc := new(mocks.MockRecordService)
	h := handler.NewQueueHandler(queueSvc, recordSvc)

	id := uuid.New()
	body, _ := json.Marshal(map[string]string{"action": "approve"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/queue/"+id.String()+"/review", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Review(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	queueSvc.AssertNotCalled(t, "Review", mock.Anything, mock.Anything, mock.Anything)
}
