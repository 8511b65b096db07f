package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"parsegate/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound, "ITEM_NOT_FOUND", "approval queue item not found"
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound, "RECORD_NOT_FOUND", "detection record not found"
	case errors.Is(err, domain.ErrUnknownParseCase):
		return http.StatusBadRequest, "UNKNOWN_PARSE_CASE", "parse case is not in the catalog"
	case errors.Is(err, domain.ErrInvalidAction):
		return http.StatusBadRequest, "INVALID_ACTION", "review action must be approve or reject"
	case errors.Is(err, domain.ErrAlreadyReviewed):
		return http.StatusConflict, "ALREADY_REVIEWED", "item has already been reviewed"
	case errors.Is(err, domain.ErrNotApproved):
		return http.StatusConflict, "NOT_APPROVED", "item must be approved before reprocessing"
	case errors.Is(err, domain.ErrPendingDelete):
		return http.StatusConflict, "PENDING_DELETE", "pending items cannot be deleted"
	case errors.Is(err, domain.ErrNoDetectorAvailable):
		return http.StatusUnprocessableEntity, "NO_DETECTOR", "no registered detector can handle this document"
	case errors.Is(err, domain.ErrDocumentUnreadable):
		return http.StatusUnprocessableEntity, "DOCUMENT_UNREADABLE", "document content could not be read"
	case errors.Is(err, domain.ErrDetectionFailed):
		return http.StatusUnprocessableEntity, "DETECTION_FAILED", "detector failed while analyzing the document"
	case errors.Is(err, domain.ErrIngestionFailed):
		return http.StatusBadGateway, "INGESTION_FAILED", "downstream ingestion failed"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"
	case errors.Is(err, domain.ErrReviewerInactive):
		return http.StatusForbidden, "REVIEWER_INACTIVE", "reviewer account is inactive"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
