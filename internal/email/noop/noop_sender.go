package noop

import (
	"context"
	"log"
	"strings"

	"parsegate/internal/domain"
	"parsegate/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs notifications to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendQueueItemNotification(_ context.Context, recipients []string, item *domain.ApprovalQueueItem) error {
	log.Printf("[NOOP EMAIL] Queue item %s (%s, confidence %.3f) needs review; would notify %s",
		item.ID, item.Filename, item.Confidence, strings.Join(recipients, ", "))
	return nil
}
