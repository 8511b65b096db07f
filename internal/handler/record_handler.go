package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"parsegate/internal/service"
)

// RecordHandler handles detection record (audit log) endpoints.
type RecordHandler struct {
	recordService service.RecordService
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(recordService service.RecordService) *RecordHandler {
	return &RecordHandler{recordService: recordService}
}

// List handles GET /api/v1/records
func (h *RecordHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	records, total, err := h.recordService.ListRecent(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, records, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Get handles GET /api/v1/records/:id
func (h *RecordHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	record, err := h.recordService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, record)
}

// ListByDocument handles GET /api/v1/documents/:id/records
func (h *RecordHandler) ListByDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID")
		return
	}

	records, err := h.recordService.ListByDocument(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, records)
}

// LowConfidence handles GET /api/v1/records/low-confidence
func (h *RecordHandler) LowConfidence(c *gin.Context) {
	threshold, ok := parseFloatQuery(c, "threshold")
	if !ok {
		threshold = 0.5
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	records, err := h.recordService.ListLowConfidence(c.Request.Context(), threshold, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, records)
}

// Stats handles GET /api/v1/records/stats
func (h *RecordHandler) Stats(c *gin.Context) {
	stats, err := h.recordService.Stats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, stats)
}

// ExportCSV handles GET /api/v1/records/export
func (h *RecordHandler) ExportCSV(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "1000"))
	if limit <= 0 || limit > 10000 {
		limit = 1000
	}

	filename := fmt.Sprintf("detection-records-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.recordService.ExportCSV(c.Request.Context(), c.Writer, limit); err != nil {
		// Headers may already be out; log and abort the stream.
		log.Printf("recordHandler.ExportCSV: %v", err)
		c.Abort()
		return
	}
}
