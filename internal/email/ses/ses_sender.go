package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"parsegate/internal/domain"
	"parsegate/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	consoleURL  string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName, consoleURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		consoleURL:  consoleURL,
	}, nil
}

func (s *sesSender) SendQueueItemNotification(ctx context.Context, recipients []string, item *domain.ApprovalQueueItem) error {
	itemURL := fmt.Sprintf("%s/queue/%s", s.consoleURL, item.ID)

	subject := fmt.Sprintf("Review needed: %s (%.0f%% confidence)", item.Filename, item.Confidence*100)
	htmlBody := buildQueueItemHTML(item, itemURL)
	textBody := fmt.Sprintf(
		"A document needs review.\n\nFile: %s\nDetected parse case: %s\nConfidence: %.3f\n\nReview it at:\n%s\n",
		item.Filename, item.DetectedParseCase, item.Confidence, itemURL)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: recipients,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildQueueItemHTML(item *domain.ApprovalQueueItem, itemURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Document review needed</h2>
  <p>A document was detected below the auto-approval threshold and is waiting in the queue.</p>
  <table style="border-collapse: collapse; width: 100%%;">
    <tr><td style="padding: 6px 12px; color: #666;">File</td><td style="padding: 6px 12px;">%s</td></tr>
    <tr><td style="padding: 6px 12px; color: #666;">Detected parse case</td><td style="padding: 6px 12px;">%s</td></tr>
    <tr><td style="padding: 6px 12px; color: #666;">Confidence</td><td style="padding: 6px 12px;">%.3f</td></tr>
  </table>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Review Document</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Parsegate - Document Detection Pipeline</p>
</body>
</html>`, item.Filename, item.DetectedParseCase, item.Confidence, itemURL)
}
