package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parsegate/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 16)
	assert.Equal(t, "Record ID", row[0])
	assert.Equal(t, "Outcome", row[3])
	assert.Equal(t, "Detected At", row[15])
}

func TestWriteRecords_Success(t *testing.T) {
	docID := uuid.New()
	queueItemID := uuid.New()
	detectedAt := time.Date(2026, 3, 12, 14, 30, 0, 0, time.UTC)

	rec := domain.DetectionRecord{
		ID:            uuid.New(),
		DocumentID:    &docID,
		QueueItemID:   &queueItemID,
		Outcome:       domain.OutcomeOK,
		ParseCase:     "complete_attributes",
		Confidence:    0.95,
		RawConfidence: 0.9,
		MatchPercentage: 100,
		TotalExpected:   3,
		TotalDetected:   3,
		DetectorName:    "xml_structure",
		DetectorVersion: "1.0.0",
		DetectionMethod: "structure_analysis",
		DetectedAt:      detectedAt,
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRecords([]domain.DetectionRecord{rec}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 16)
	assert.Equal(t, rec.ID.String(), row[0])
	assert.Equal(t, docID.String(), row[1])
	assert.Equal(t, queueItemID.String(), row[2])
	assert.Equal(t, "ok", row[3])
	assert.Equal(t, "complete_attributes", row[4])
	assert.Equal(t, "0.9500", row[5])
	assert.Equal(t, "0.9000", row[6])
	assert.Equal(t, "100.0000", row[7])
	assert.Equal(t, "3", row[8])
	assert.Equal(t, "3", row[9])
	assert.Equal(t, "", row[10])
	assert.Equal(t, "xml_structure", row[11])
	assert.Equal(t, "1.0.0", row[12])
	assert.Equal(t, "structure_analysis", row[13])
	assert.Equal(t, "", row[14])
	assert.Equal(t, "2026-03-12T14:30:00Z", row[15])
}

func TestWriteRecords_MissingAttributesJoined(t *testing.T) {
	rec := domain.DetectionRecord{
		ID:        uuid.New(),
		Outcome:   domain.OutcomeFallback,
		ParseCase: "freeform",
		MissingAttributes: []domain.AttributeDefinition{
			{Name: "study_uid"},
			{Name: "session_count"},
		},
		DetectedAt: time.Now().UTC(),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRecords([]domain.DetectionRecord{rec}))
	w.Flush()

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Equal(t, "study_uid; session_count", row[10])
	assert.Equal(t, "fallback", row[3])
}

func TestWriteRecords_FailureRecord(t *testing.T) {
	rec := domain.DetectionRecord{
		ID:          uuid.New(),
		Outcome:     domain.OutcomeUnreadable,
		ErrorDetail: "xml: unexpected EOF",
		DetectedAt:  time.Now().UTC(),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRecords([]domain.DetectionRecord{rec}))
	w.Flush()

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	// No document, queue item, or parse case for an unreadable upload.
	assert.Empty(t, row[1])
	assert.Empty(t, row[2])
	assert.Empty(t, row[4])
	assert.Equal(t, "unreadable", row[3])
	assert.Equal(t, "xml: unexpected EOF", row[14])
	assert.Equal(t, "0.0000", row[5])
}
