package gateway

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"shijia/entity"
)

// EmailClient wraps the hosted transactional email sender.
type EmailClient struct {
	client *resend.Client
}

func NewEmailClient(apiKey string) *EmailClient {
	return &EmailClient{
		client: resend.NewClient(apiKey),
	}
}

// Send delivers a single message and returns the provider's message id.
func (c *EmailClient) Send(ctx context.Context, message entity.EmailMessage) (string, error) {
	sent, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    message.From,
		To:      []string{message.To},
		Subject: message.Subject,
		Html:    message.HTML,
		Text:    message.Text,
	})
	if err != nil {
		return "", fmt.Errorf("could not send email: %w", err)
	}

	return sent.Id, nil
}
