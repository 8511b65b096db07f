package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"parsegate/internal/domain"
	"parsegate/internal/port"
)

type approvalQueueRepo struct {
	db *sqlx.DB
}

// NewApprovalQueueRepo creates a new PostgreSQL-backed ApprovalQueueRepository.
func NewApprovalQueueRepo(db *sqlx.DB) port.ApprovalQueueRepository {
	return &approvalQueueRepo{db: db}
}

func (r *approvalQueueRepo) Create(ctx context.Context, item *domain.ApprovalQueueItem) error {
	now := time.Now().UTC()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = domain.QueueStatusPending
	}

	query := `INSERT INTO approval_queue_items (
		id, document_id, filename, detected_parse_case, parse_case_override,
		confidence, file_type, file_size, storage_key, uploaded_at,
		status, reviewed_by, reviewed_at, notes, ingested_document_id,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15,
		$16, $17
	)`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.DocumentID, item.Filename, item.DetectedParseCase, item.ParseCaseOverride,
		item.Confidence, item.FileType, item.FileSize, item.StorageKey, item.UploadedAt,
		item.Status, item.ReviewedBy, item.ReviewedAt, item.Notes, item.IngestedDocumentID,
		item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("approvalQueueRepo.Create: %w", err)
	}
	return nil
}

func (r *approvalQueueRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ApprovalQueueItem, error) {
	var item domain.ApprovalQueueItem
	err := r.db.GetContext(ctx, &item,
		"SELECT * FROM approval_queue_items WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("approvalQueueRepo.GetByID: %w", err)
	}
	return &item, nil
}

func (r *approvalQueueRepo) List(ctx context.Context, filter port.QueueListFilter) ([]domain.ApprovalQueueItem, error) {
	query := "SELECT * FROM approval_queue_items WHERE 1=1"
	args := []interface{}{}
	n := 0

	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, *filter.Status)
	}
	if filter.MinConfidence != nil {
		n++
		query += fmt.Sprintf(" AND confidence >= $%d", n)
		args = append(args, *filter.MinConfidence)
	}
	if filter.MaxConfidence != nil {
		n++
		query += fmt.Sprintf(" AND confidence <= $%d", n)
		args = append(args, *filter.MaxConfidence)
	}

	// Pending listings surface the most uncertain items first; resolved
	// listings read like a review history.
	if filter.Status == nil || *filter.Status == domain.QueueStatusPending {
		query += " ORDER BY confidence ASC, uploaded_at ASC"
	} else {
		query += " ORDER BY reviewed_at DESC NULLS LAST"
	}

	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}

	var items []domain.ApprovalQueueItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("approvalQueueRepo.List: %w", err)
	}
	return items, nil
}

// TransitionFromPending performs the compare-and-set review transition: the
// status predicate in the WHERE clause guarantees exactly one winner between
// concurrent reviewers, with no application-level locking.
func (r *approvalQueueRepo) TransitionFromPending(ctx context.Context, id uuid.UUID, update port.ReviewUpdate) (*domain.ApprovalQueueItem, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE approval_queue_items SET
			status = $1, reviewed_by = $2, reviewed_at = $3, notes = $4,
			parse_case_override = COALESCE($5, parse_case_override),
			updated_at = $6
		 WHERE id = $7 AND status = $8`,
		update.Status, update.ReviewedBy, update.ReviewedAt, update.Notes,
		update.ParseCaseOverride,
		time.Now().UTC(), id, domain.QueueStatusPending)
	if err != nil {
		return nil, fmt.Errorf("approvalQueueRepo.TransitionFromPending: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Lost the race or the id never existed; disambiguate for the caller.
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("item %s is %s: %w", existing.ID, existing.Status, domain.ErrAlreadyReviewed)
	}
	return r.GetByID(ctx, id)
}

func (r *approvalQueueRepo) SetIngestedDocument(ctx context.Context, id uuid.UUID, documentID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE approval_queue_items SET ingested_document_id = $1, updated_at = $2
		 WHERE id = $3 AND ingested_document_id IS NULL`,
		documentID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("approvalQueueRepo.SetIngestedDocument: %w", err)
	}
	// rows == 0 means an earlier reprocess already set it; the stored id wins.
	_, _ = result.RowsAffected()
	return nil
}

func (r *approvalQueueRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM approval_queue_items WHERE id = $1 AND status <> $2",
		id, domain.QueueStatusPending)
	if err != nil {
		return fmt.Errorf("approvalQueueRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing.Status == domain.QueueStatusPending {
			return domain.ErrPendingDelete
		}
		return domain.ErrItemNotFound
	}
	return nil
}

const queueStatsQuery = `SELECT
	COUNT(CASE WHEN status = 'pending' THEN 1 END) AS total_pending,
	COUNT(CASE WHEN status = 'approved' THEN 1 END) AS total_approved,
	COUNT(CASE WHEN status = 'rejected' THEN 1 END) AS total_rejected,
	COALESCE(AVG(CASE WHEN status = 'pending' THEN confidence END), 0) AS avg_pending_confidence,
	COUNT(CASE WHEN status = 'pending' AND confidence < 0.5 THEN 1 END) AS low_confidence_count,
	COUNT(CASE WHEN status = 'pending' AND confidence >= 0.5 AND confidence < $1 THEN 1 END) AS med_confidence_count,
	MIN(CASE WHEN status = 'pending' THEN uploaded_at END) AS oldest_pending
FROM approval_queue_items`

func (r *approvalQueueRepo) Stats(ctx context.Context, approvalThreshold float64) (*domain.QueueStats, error) {
	var stats domain.QueueStats
	if err := r.db.GetContext(ctx, &stats, queueStatsQuery, approvalThreshold); err != nil {
		return nil, fmt.Errorf("approvalQueueRepo.Stats: %w", err)
	}
	return &stats, nil
}
