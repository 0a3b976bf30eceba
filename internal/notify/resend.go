package notify

import (
	"context"
	"fmt"

	"github.com/resendlabs/resend-go"
)

// ResendTransport sends mail through the Resend API.
type ResendTransport struct {
	client *resend.Client
}

// NewResendTransport creates a transport for the given API key. An empty
// key yields a transport that reports ErrNotConfigured.
func NewResendTransport(apiKey string) *ResendTransport {
	if apiKey == "" {
		return &ResendTransport{}
	}
	return &ResendTransport{client: resend.NewClient(apiKey)}
}

// Name implements Transport.
func (t *ResendTransport) Name() string { return "resend" }

// Deliver implements Transport. The Resend SDK does not take a context,
// so cancellation is only observed before the request starts.
func (t *ResendTransport) Deliver(ctx context.Context, msg Message) error {
	if t.client == nil {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.client.Emails.Send(&resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Body,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}
