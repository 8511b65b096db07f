package port

import (
	"context"

	"parsegate/internal/domain"
)

// EmailSender notifies reviewers about queue activity. Sends are best-effort;
// a failure never blocks the detection pipeline.
type EmailSender interface {
	SendQueueItemNotification(ctx context.Context, recipients []string, item *domain.ApprovalQueueItem) error
}
