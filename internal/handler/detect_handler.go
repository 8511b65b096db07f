package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"parsegate/internal/domain"
	"parsegate/internal/service"
)

// maxUploadSize caps inbound document uploads at 50MB.
const maxUploadSize = 50 << 20

// DetectHandler handles document detection endpoints.
type DetectHandler struct {
	detectionService service.DetectionService
}

// NewDetectHandler creates a new DetectHandler.
func NewDetectHandler(detectionService service.DetectionService) *DetectHandler {
	return &DetectHandler{detectionService: detectionService}
}

// Process handles POST /api/v1/documents
// The uploaded document is detected, recorded, and routed by confidence:
// auto-ingested or queued for review.
func (h *DetectHandler) Process(c *gin.Context) {
	doc, ok := h.documentFromRequest(c)
	if !ok {
		return
	}

	outcome, err := h.detectionService.Process(c.Request.Context(), doc)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, outcome)
}

// Detect handles POST /api/v1/detect
// Ad-hoc detection: runs the engine against the upload and returns the full
// result without persisting anything.
func (h *DetectHandler) Detect(c *gin.Context) {
	doc, ok := h.documentFromRequest(c)
	if !ok {
		return
	}

	result, err := h.detectionService.Preview(c.Request.Context(), doc)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

func (h *DetectHandler) documentFromRequest(c *gin.Context) (*domain.Document, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return nil, false
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxUploadSize {
		RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size")
		return nil, false
	}

	content, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_UPLOAD", "could not read uploaded file")
		return nil, false
	}
	if len(content) > maxUploadSize {
		RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size")
		return nil, false
	}

	format := domain.FormatType(strings.ToLower(c.PostForm("format")))
	if format == "" {
		format = formatFromFilename(header.Filename)
	}

	return &domain.Document{
		ID:         uuid.New(),
		Filename:   filepath.Base(header.Filename),
		Format:     format,
		Size:       int64(len(content)),
		Content:    content,
		UploadedAt: time.Now().UTC(),
	}, true
}

func formatFromFilename(filename string) domain.FormatType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xml":
		return domain.FormatXML
	case ".csv":
		return domain.FormatCSV
	case ".json":
		return domain.FormatJSON
	default:
		return ""
	}
}
