package domain

import (
	"time"

	"github.com/google/uuid"
)

// ParseCase is a named document-schema variant the system recognizes.
type ParseCase struct {
	ID                uuid.UUID             `db:"id" json:"id"`
	Name              string                `db:"name" json:"name"`
	FormatType        FormatType            `db:"format_type" json:"format_type"`
	DetectionPriority int                   `db:"detection_priority" json:"detection_priority"`
	IsActive          bool                  `db:"is_active" json:"is_active"`
	Description       string                `db:"description" json:"description"`
	Attributes        []AttributeDefinition `db:"-" json:"attributes,omitempty"`
	CreatedAt         time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time             `db:"updated_at" json:"updated_at"`
}

// AttributeDefinition describes one structural attribute expected for a parse case.
type AttributeDefinition struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	ParseCaseID uuid.UUID         `db:"parse_case_id" json:"parse_case_id"`
	Name        string            `db:"name" json:"name"`
	Locator     string            `db:"locator" json:"locator"`
	DataType    AttributeDataType `db:"data_type" json:"data_type"`
	Required    bool              `db:"required" json:"required"`
	Description string            `db:"description" json:"description"`
	Position    int               `db:"position" json:"position"`
}

// AttributeFinding is one detected (or probed-but-absent) attribute in a document.
type AttributeFinding struct {
	Name    string `json:"name"`
	Locator string `json:"locator,omitempty"`
	Found   bool   `json:"found"`
	Value   string `json:"value,omitempty"`
	// Note carries detector annotations such as fuzzy near-miss element names.
	Note string `json:"note,omitempty"`
}

// StructuralMetadata summarizes the document structure a detector observed.
type StructuralMetadata struct {
	RootElement  string `json:"root_element,omitempty"`
	ElementCount int    `json:"element_count"`
	Depth        int    `json:"depth"`
	SessionCount int    `json:"session_count"`
}

// DetectionResult is the full outcome of one detection run. It is ephemeral;
// DetectionRecord is the persisted form.
type DetectionResult struct {
	ParseCase           string                `json:"parse_case"`
	Confidence          float64               `json:"confidence"`
	RawConfidence       float64               `json:"raw_confidence"`
	ExpectedAttributes  []AttributeDefinition `json:"expected_attributes"`
	DetectedAttributes  []AttributeFinding    `json:"detected_attributes"`
	MissingAttributes   []AttributeDefinition `json:"missing_attributes"`
	MatchPercentage     float64               `json:"match_percentage"`
	RequiredTotal       int                   `json:"required_total"`
	RequiredDetected    int                   `json:"required_detected"`
	TotalExpected       int                   `json:"total_expected"`
	TotalDetected       int                   `json:"total_detected"`
	DetectorName        string                `json:"detector_name"`
	DetectorVersion     string                `json:"detector_version"`
	DetectionMethod     string                `json:"detection_method"`
	ConfidenceBreakdown map[string]float64    `json:"confidence_breakdown,omitempty"`
	Metadata            StructuralMetadata    `json:"metadata"`
	// FallbackApplied marks results routed to the configured fallback case
	// because the detector's candidate was not in the catalog.
	FallbackApplied bool `json:"fallback_applied,omitempty"`
}

// DetectionRecord is the immutable audit entry for one detection run.
// Re-detection creates a new record; existing rows are never updated.
type DetectionRecord struct {
	ID                  uuid.UUID             `json:"id"`
	DocumentID          *uuid.UUID            `json:"document_id,omitempty"`
	QueueItemID         *uuid.UUID            `json:"queue_item_id,omitempty"`
	Outcome             DetectionOutcome      `json:"outcome"`
	ErrorDetail         string                `json:"error_detail,omitempty"`
	ParseCase           string                `json:"parse_case"`
	Confidence          float64               `json:"confidence"`
	RawConfidence       float64               `json:"raw_confidence"`
	ExpectedAttributes  []AttributeDefinition `json:"expected_attributes"`
	DetectedAttributes  []AttributeFinding    `json:"detected_attributes"`
	MissingAttributes   []AttributeDefinition `json:"missing_attributes"`
	MatchPercentage     float64               `json:"match_percentage"`
	TotalExpected       int                   `json:"total_expected"`
	TotalDetected       int                   `json:"total_detected"`
	DetectorName        string                `json:"detector_name"`
	DetectorVersion     string                `json:"detector_version"`
	DetectionMethod     string                `json:"detection_method"`
	ConfidenceBreakdown map[string]float64    `json:"confidence_breakdown,omitempty"`
	DetectedAt          time.Time             `json:"detected_at"`
}

// ApprovalQueueItem is a low-confidence detection awaiting human review.
type ApprovalQueueItem struct {
	ID                uuid.UUID   `db:"id" json:"id"`
	DocumentID        *uuid.UUID  `db:"document_id" json:"document_id,omitempty"`
	Filename          string      `db:"filename" json:"filename"`
	DetectedParseCase string      `db:"detected_parse_case" json:"detected_parse_case"`
	ParseCaseOverride *string     `db:"parse_case_override" json:"parse_case_override,omitempty"`
	Confidence        float64     `db:"confidence" json:"confidence"`
	FileType          string      `db:"file_type" json:"file_type"`
	FileSize          int64       `db:"file_size" json:"file_size"`
	StorageKey        string      `db:"storage_key" json:"storage_key,omitempty"`
	UploadedAt        time.Time   `db:"uploaded_at" json:"uploaded_at"`
	Status            QueueStatus `db:"status" json:"status"`
	ReviewedBy        *uuid.UUID  `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time  `db:"reviewed_at" json:"reviewed_at,omitempty"`
	Notes             string      `db:"notes" json:"notes"`
	// IngestedDocumentID is set by the first successful reprocess and makes
	// later reprocess calls idempotent.
	IngestedDocumentID *uuid.UUID `db:"ingested_document_id" json:"ingested_document_id,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// FinalParseCase returns the reviewer override when present, otherwise the
// detected parse case.
func (i *ApprovalQueueItem) FinalParseCase() string {
	if i.ParseCaseOverride != nil && *i.ParseCaseOverride != "" {
		return *i.ParseCaseOverride
	}
	return i.DetectedParseCase
}

// QueueStats summarizes the approval queue for dashboards.
type QueueStats struct {
	TotalPending         int        `db:"total_pending" json:"total_pending"`
	TotalApproved        int        `db:"total_approved" json:"total_approved"`
	TotalRejected        int        `db:"total_rejected" json:"total_rejected"`
	AvgPendingConfidence float64    `db:"avg_pending_confidence" json:"avg_pending_confidence"`
	LowConfidenceCount   int        `db:"low_confidence_count" json:"low_confidence_count"`
	MedConfidenceCount   int        `db:"med_confidence_count" json:"medium_confidence_count"`
	OldestPending        *time.Time `db:"oldest_pending" json:"oldest_pending,omitempty"`
}

// ParseCaseDetectionStats aggregates detection records per parse case for
// drift monitoring.
type ParseCaseDetectionStats struct {
	ParseCase          string  `db:"parse_case" json:"parse_case"`
	Count              int     `db:"count" json:"count"`
	AvgConfidence      float64 `db:"avg_confidence" json:"avg_confidence"`
	AvgMatchPercentage float64 `db:"avg_match_percentage" json:"avg_match_percentage"`
}

// Document is the decoded document handle supplied by the upstream
// collaborator. Content is what a registered detector analyzes; the core
// itself never interprets the bytes.
type Document struct {
	ID         uuid.UUID  `json:"id"`
	Filename   string     `json:"filename"`
	Format     FormatType `json:"format"`
	Size       int64      `json:"size"`
	Content    []byte     `json:"-"`
	StorageKey string     `json:"storage_key,omitempty"`
	UploadedAt time.Time  `json:"uploaded_at"`
}

// Reviewer is an authenticated user of the review surface.
type Reviewer struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// BatchReviewEntry is the per-item outcome of a batch review. Item holds the
// reviewed item on success so callers can render the result without a second
// lookup; the REST layer serializes it separately.
type BatchReviewEntry struct {
	ItemID uuid.UUID          `json:"item_id"`
	OK     bool               `json:"ok"`
	Error  string             `json:"error,omitempty"`
	Item   *ApprovalQueueItem `json:"-"`
}

// BatchReviewReport is the structured partial-result report of a batch
// review; one item's failure never rolls back the others.
type BatchReviewReport struct {
	Total   int                `json:"total"`
	Success int                `json:"success"`
	Failed  int                `json:"failed"`
	Results []BatchReviewEntry `json:"results"`
}
