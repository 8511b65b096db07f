package domain

// FormatType identifies the declared format of an inbound document.
type FormatType string

const (
	FormatXML  FormatType = "xml"
	FormatCSV  FormatType = "csv"
	FormatJSON FormatType = "json"
)

// AttributeDataType is the declared type of an expected attribute value.
type AttributeDataType string

const (
	DataTypeString  AttributeDataType = "string"
	DataTypeInt     AttributeDataType = "int"
	DataTypeFloat   AttributeDataType = "float"
	DataTypeDate    AttributeDataType = "date"
	DataTypeElement AttributeDataType = "element"
)

// QueueStatus is the review state of an approval queue item. Transitions are
// monotone: pending moves to approved or rejected exactly once, never back.
type QueueStatus string

const (
	QueueStatusPending  QueueStatus = "pending"
	QueueStatusApproved QueueStatus = "approved"
	QueueStatusRejected QueueStatus = "rejected"
)

// ReviewAction is a requested transition on a pending queue item.
type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionReject  ReviewAction = "reject"
)

// DetectionOutcome classifies a detection record. Failed runs still produce a
// record so the audit trail includes failures.
type DetectionOutcome string

const (
	OutcomeOK              DetectionOutcome = "ok"
	OutcomeFallback        DetectionOutcome = "fallback"
	OutcomeUnknownCase     DetectionOutcome = "unknown_parse_case"
	OutcomeNoDetector      DetectionOutcome = "no_detector"
	OutcomeUnreadable      DetectionOutcome = "unreadable"
	OutcomeDetectionFailed DetectionOutcome = "detection_failed"
)
