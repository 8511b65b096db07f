package domain

import "errors"

var (
	ErrUnknownParseCase    = errors.New("parse case not registered in catalog")
	ErrNoDetectorAvailable = errors.New("no detector available for document format")
	ErrDocumentUnreadable  = errors.New("document is unreadable or malformed")
	ErrDetectionFailed     = errors.New("detection failed")
	ErrAlreadyReviewed     = errors.New("queue item already reviewed")
	ErrNotApproved         = errors.New("queue item is not approved")
	ErrItemNotFound        = errors.New("queue item not found")
	ErrRecordNotFound      = errors.New("detection record not found")
	ErrIngestionFailed     = errors.New("downstream ingestion failed")
	ErrPendingDelete       = errors.New("pending queue items cannot be deleted")
	ErrInvalidAction       = errors.New("invalid review action")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrReviewerInactive    = errors.New("reviewer is inactive")
)
