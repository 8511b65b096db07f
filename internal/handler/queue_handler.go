package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"parsegate/internal/domain"
	"parsegate/internal/middleware"
	"parsegate/internal/port"
	"parsegate/internal/service"
)

// QueueHandler handles approval queue endpoints.
type QueueHandler struct {
	queueService  service.QueueService
	recordService service.RecordService
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(queueService service.QueueService, recordService service.RecordService) *QueueHandler {
	return &QueueHandler{queueService: queueService, recordService: recordService}
}

// reviewRequest is the JSON body for single and batch reviews.
type reviewRequest struct {
	Action            string  `json:"action" binding:"required"`
	Notes             string  `json:"notes"`
	ParseCaseOverride *string `json:"parse_case_override"`
}

// batchReviewRequest is the JSON body for POST /queue/batch-review.
type batchReviewRequest struct {
	ItemIDs           []uuid.UUID `json:"item_ids" binding:"required,min=1"`
	Action            string      `json:"action" binding:"required"`
	Notes             string      `json:"notes"`
	ParseCaseOverride *string     `json:"parse_case_override"`
}

// queueItemView pairs a queue item with its detection records so every queue
// response carries the expected/detected/missing breakdown the reviewer's
// decision rests on.
type queueItemView struct {
	Item             *domain.ApprovalQueueItem `json:"item"`
	DetectionRecords []domain.DetectionRecord  `json:"detection_records"`
}

func (h *QueueHandler) itemView(c *gin.Context, item *domain.ApprovalQueueItem) (*queueItemView, error) {
	records, err := h.recordService.ListByQueueItem(c.Request.Context(), item.ID)
	if err != nil {
		return nil, err
	}
	return &queueItemView{Item: item, DetectionRecords: records}, nil
}

// List handles GET /api/v1/queue
func (h *QueueHandler) List(c *gin.Context) {
	var filter port.QueueListFilter

	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.QueueStatus(statusStr)
		switch status {
		case domain.QueueStatusPending, domain.QueueStatusApproved, domain.QueueStatusRejected:
			filter.Status = &status
		default:
			RespondError(c, http.StatusBadRequest, "INVALID_STATUS", "status must be pending, approved, or rejected")
			return
		}
	}
	if v, ok := parseFloatQuery(c, "min_confidence"); ok {
		filter.MinConfidence = &v
	}
	if v, ok := parseFloatQuery(c, "max_confidence"); ok {
		filter.MaxConfidence = &v
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))

	items, err := h.queueService.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	views := make([]queueItemView, 0, len(items))
	for i := range items {
		view, err := h.itemView(c, &items[i])
		if err != nil {
			HandleError(c, err)
			return
		}
		views = append(views, *view)
	}

	RespondOK(c, views)
}

// Get handles GET /api/v1/queue/:id
func (h *QueueHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	item, err := h.queueService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	view, err := h.itemView(c, item)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// Review handles POST /api/v1/queue/:id/review
func (h *QueueHandler) Review(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	reviewerID, err := middleware.GetReviewerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing reviewer context")
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	item, err := h.queueService.Review(c.Request.Context(), id, service.ReviewInput{
		Action:            domain.ReviewAction(req.Action),
		ReviewerID:        reviewerID,
		Notes:             req.Notes,
		ParseCaseOverride: req.ParseCaseOverride,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	view, err := h.itemView(c, item)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// BatchReview handles POST /api/v1/queue/batch-review
func (h *QueueHandler) BatchReview(c *gin.Context) {
	reviewerID, err := middleware.GetReviewerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing reviewer context")
		return
	}

	var req batchReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	report, err := h.queueService.BatchReview(c.Request.Context(), req.ItemIDs, service.ReviewInput{
		Action:            domain.ReviewAction(req.Action),
		ReviewerID:        reviewerID,
		Notes:             req.Notes,
		ParseCaseOverride: req.ParseCaseOverride,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	views := make([]queueItemView, 0, report.Success)
	for _, entry := range report.Results {
		if entry.Item == nil {
			continue
		}
		view, err := h.itemView(c, entry.Item)
		if err != nil {
			HandleError(c, err)
			return
		}
		views = append(views, *view)
	}

	RespondOK(c, gin.H{"report": report, "items": views})
}

// Reprocess handles POST /api/v1/queue/:id/reprocess
func (h *QueueHandler) Reprocess(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	documentID, err := h.queueService.Reprocess(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"ingested_document_id": documentID})
}

// Delete handles DELETE /api/v1/queue/:id
func (h *QueueHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.queueService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"deleted": id})
}

// Stats handles GET /api/v1/queue/stats
func (h *QueueHandler) Stats(c *gin.Context) {
	stats, err := h.queueService.Stats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, stats)
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parseFloatQuery(c *gin.Context, name string) (float64, bool) {
	s := c.Query(name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
