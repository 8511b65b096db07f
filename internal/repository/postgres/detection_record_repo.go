package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"parsegate/internal/domain"
	"parsegate/internal/port"
)

type detectionRecordRepo struct {
	db *sqlx.DB
}

// NewDetectionRecordRepo creates a new PostgreSQL-backed DetectionRecordRepository.
func NewDetectionRecordRepo(db *sqlx.DB) port.DetectionRecordRepository {
	return &detectionRecordRepo{db: db}
}

// detectionRecordRow is the flat scan target; attribute collections live in
// JSONB columns.
type detectionRecordRow struct {
	ID                  uuid.UUID  `db:"id"`
	DocumentID          *uuid.UUID `db:"document_id"`
	QueueItemID         *uuid.UUID `db:"queue_item_id"`
	Outcome             string     `db:"outcome"`
	ErrorDetail         string     `db:"error_detail"`
	ParseCase           string     `db:"parse_case"`
	Confidence          float64    `db:"confidence"`
	RawConfidence       float64    `db:"raw_confidence"`
	ExpectedAttributes  []byte     `db:"expected_attributes"`
	DetectedAttributes  []byte     `db:"detected_attributes"`
	MissingAttributes   []byte     `db:"missing_attributes"`
	MatchPercentage     float64    `db:"match_percentage"`
	TotalExpected       int        `db:"total_expected"`
	TotalDetected       int        `db:"total_detected"`
	DetectorName        string     `db:"detector_name"`
	DetectorVersion     string     `db:"detector_version"`
	DetectionMethod     string     `db:"detection_method"`
	ConfidenceBreakdown []byte     `db:"confidence_breakdown"`
	DetectedAt          time.Time  `db:"detected_at"`
}

func rowFromRecord(rec *domain.DetectionRecord) (*detectionRecordRow, error) {
	expected, err := json.Marshal(orEmptyAttrs(rec.ExpectedAttributes))
	if err != nil {
		return nil, err
	}
	detected, err := json.Marshal(orEmptyFindings(rec.DetectedAttributes))
	if err != nil {
		return nil, err
	}
	missing, err := json.Marshal(orEmptyAttrs(rec.MissingAttributes))
	if err != nil {
		return nil, err
	}
	breakdown, err := json.Marshal(rec.ConfidenceBreakdown)
	if err != nil {
		return nil, err
	}
	return &detectionRecordRow{
		ID:                  rec.ID,
		DocumentID:          rec.DocumentID,
		QueueItemID:         rec.QueueItemID,
		Outcome:             string(rec.Outcome),
		ErrorDetail:         rec.ErrorDetail,
		ParseCase:           rec.ParseCase,
		Confidence:          rec.Confidence,
		RawConfidence:       rec.RawConfidence,
		ExpectedAttributes:  expected,
		DetectedAttributes:  detected,
		MissingAttributes:   missing,
		MatchPercentage:     rec.MatchPercentage,
		TotalExpected:       rec.TotalExpected,
		TotalDetected:       rec.TotalDetected,
		DetectorName:        rec.DetectorName,
		DetectorVersion:     rec.DetectorVersion,
		DetectionMethod:     rec.DetectionMethod,
		ConfidenceBreakdown: breakdown,
		DetectedAt:          rec.DetectedAt,
	}, nil
}

func (r *detectionRecordRow) toRecord() (*domain.DetectionRecord, error) {
	rec := &domain.DetectionRecord{
		ID:              r.ID,
		DocumentID:      r.DocumentID,
		QueueItemID:     r.QueueItemID,
		Outcome:         domain.DetectionOutcome(r.Outcome),
		ErrorDetail:     r.ErrorDetail,
		ParseCase:       r.ParseCase,
		Confidence:      r.Confidence,
		RawConfidence:   r.RawConfidence,
		MatchPercentage: r.MatchPercentage,
		TotalExpected:   r.TotalExpected,
		TotalDetected:   r.TotalDetected,
		DetectorName:    r.DetectorName,
		DetectorVersion: r.DetectorVersion,
		DetectionMethod: r.DetectionMethod,
		DetectedAt:      r.DetectedAt,
	}
	if err := json.Unmarshal(r.ExpectedAttributes, &rec.ExpectedAttributes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(r.DetectedAttributes, &rec.DetectedAttributes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(r.MissingAttributes, &rec.MissingAttributes); err != nil {
		return nil, err
	}
	if len(r.ConfidenceBreakdown) > 0 {
		if err := json.Unmarshal(r.ConfidenceBreakdown, &rec.ConfidenceBreakdown); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func orEmptyAttrs(a []domain.AttributeDefinition) []domain.AttributeDefinition {
	if a == nil {
		return []domain.AttributeDefinition{}
	}
	return a
}

func orEmptyFindings(f []domain.AttributeFinding) []domain.AttributeFinding {
	if f == nil {
		return []domain.AttributeFinding{}
	}
	return f
}

const detectionRecordColumns = `id, document_id, queue_item_id, outcome, error_detail,
	parse_case, confidence, raw_confidence,
	expected_attributes, detected_attributes, missing_attributes,
	match_percentage, total_expected, total_detected,
	detector_name, detector_version, detection_method,
	confidence_breakdown, detected_at`

func (r *detectionRecordRepo) Create(ctx context.Context, rec *domain.DetectionRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.DetectedAt.IsZero() {
		rec.DetectedAt = time.Now().UTC()
	}
	row, err := rowFromRecord(rec)
	if err != nil {
		return fmt.Errorf("detectionRecordRepo.Create marshal: %w", err)
	}

	query := `INSERT INTO detection_records (` + detectionRecordColumns + `) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8,
		$9, $10, $11,
		$12, $13, $14,
		$15, $16, $17,
		$18, $19
	)`
	_, err = r.db.ExecContext(ctx, query,
		row.ID, row.DocumentID, row.QueueItemID, row.Outcome, row.ErrorDetail,
		row.ParseCase, row.Confidence, row.RawConfidence,
		row.ExpectedAttributes, row.DetectedAttributes, row.MissingAttributes,
		row.MatchPercentage, row.TotalExpected, row.TotalDetected,
		row.DetectorName, row.DetectorVersion, row.DetectionMethod,
		row.ConfidenceBreakdown, row.DetectedAt)
	if err != nil {
		return fmt.Errorf("detectionRecordRepo.Create: %w", err)
	}
	return nil
}

func (r *detectionRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DetectionRecord, error) {
	var row detectionRecordRow
	err := r.db.GetContext(ctx, &row,
		"SELECT "+detectionRecordColumns+" FROM detection_records WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("detectionRecordRepo.GetByID: %w", err)
	}
	rec, err := row.toRecord()
	if err != nil {
		return nil, fmt.Errorf("detectionRecordRepo.GetByID unmarshal: %w", err)
	}
	return rec, nil
}

func (r *detectionRecordRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.DetectionRecord, error) {
	return r.list(ctx,
		"SELECT "+detectionRecordColumns+" FROM detection_records WHERE document_id = $1 ORDER BY detected_at DESC",
		"ListByDocument", documentID)
}

func (r *detectionRecordRepo) ListByQueueItem(ctx context.Context, queueItemID uuid.UUID) ([]domain.DetectionRecord, error) {
	return r.list(ctx,
		"SELECT "+detectionRecordColumns+" FROM detection_records WHERE queue_item_id = $1 ORDER BY detected_at DESC",
		"ListByQueueItem", queueItemID)
}

func (r *detectionRecordRepo) ListLowConfidence(ctx context.Context, threshold float64, limit int) ([]domain.DetectionRecord, error) {
	return r.list(ctx,
		`SELECT `+detectionRecordColumns+` FROM detection_records
		 WHERE confidence < $1 AND outcome IN ('ok', 'fallback')
		 ORDER BY confidence ASC, detected_at DESC LIMIT $2`,
		"ListLowConfidence", threshold, limit)
}

func (r *detectionRecordRepo) ListRecent(ctx context.Context, offset, limit int) ([]domain.DetectionRecord, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM detection_records"); err != nil {
		return nil, 0, fmt.Errorf("detectionRecordRepo.ListRecent count: %w", err)
	}
	records, err := r.list(ctx,
		"SELECT "+detectionRecordColumns+" FROM detection_records ORDER BY detected_at DESC LIMIT $1 OFFSET $2",
		"ListRecent", limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *detectionRecordRepo) list(ctx context.Context, query, method string, args ...interface{}) ([]domain.DetectionRecord, error) {
	var rows []detectionRecordRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("detectionRecordRepo.%s: %w", method, err)
	}
	records := make([]domain.DetectionRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toRecord()
		if err != nil {
			return nil, fmt.Errorf("detectionRecordRepo.%s unmarshal: %w", method, err)
		}
		records = append(records, *rec)
	}
	return records, nil
}

func (r *detectionRecordRepo) AggregateStats(ctx context.Context) ([]domain.ParseCaseDetectionStats, error) {
	var stats []domain.ParseCaseDetectionStats
	err := r.db.SelectContext(ctx, &stats,
		`SELECT parse_case,
			COUNT(*) AS count,
			AVG(confidence) AS avg_confidence,
			AVG(match_percentage) AS avg_match_percentage
		 FROM detection_records
		 WHERE outcome IN ('ok', 'fallback')
		 GROUP BY parse_case
		 ORDER BY count DESC, parse_case`)
	if err != nil {
		return nil, fmt.Errorf("detectionRecordRepo.AggregateStats: %w", err)
	}
	return stats, nil
}
