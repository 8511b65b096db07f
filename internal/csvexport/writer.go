package csvexport

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"parsegate/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row for detection record exports.
var columns = []string{
	"Record ID",
	"Document ID",
	"Queue Item ID",
	"Outcome",
	"Parse Case",
	"Confidence",
	"Raw Confidence",
	"Match Percentage",
	"Total Expected",
	"Total Detected",
	"Missing Attributes",
	"Detector Name",
	"Detector Version",
	"Detection Method",
	"Error Detail",
	"Detected At",
}

// Writer wraps csv.Writer for exporting detection records as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRecords converts a batch of detection records to CSV rows and writes them.
func (w *Writer) WriteRecords(records []domain.DetectionRecord) error {
	for i := range records {
		row := recordToRow(&records[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func recordToRow(rec *domain.DetectionRecord) []string {
	row := make([]string, len(columns))

	row[0] = rec.ID.String()
	if rec.DocumentID != nil {
		row[1] = rec.DocumentID.String()
	}
	if rec.QueueItemID != nil {
		row[2] = rec.QueueItemID.String()
	}
	row[3] = string(rec.Outcome)
	row[4] = rec.ParseCase
	row[5] = formatFloat(rec.Confidence)
	row[6] = formatFloat(rec.RawConfidence)
	row[7] = formatFloat(rec.MatchPercentage)
	row[8] = strconv.Itoa(rec.TotalExpected)
	row[9] = strconv.Itoa(rec.TotalDetected)
	row[10] = joinAttributeNames(rec.MissingAttributes)
	row[11] = rec.DetectorName
	row[12] = rec.DetectorVersion
	row[13] = rec.DetectionMethod
	row[14] = rec.ErrorDetail
	row[15] = rec.DetectedAt.Format(time.RFC3339)

	return row
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func joinAttributeNames(attrs []domain.AttributeDefinition) string {
	if len(attrs) == 0 {
		return ""
	}
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Name
	}
	return strings.Join(names, "; ")
}
