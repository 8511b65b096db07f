package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"parsegate/internal/domain"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendQueueItemNotification(ctx context.Context, recipients []string, item *domain.ApprovalQueueItem) error {
	args := m.Called(ctx, recipients, item)
	return args.Error(0)
}
