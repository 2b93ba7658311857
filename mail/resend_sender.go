package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v3"
)

// ResendSender delivers codes through the Resend API.
type ResendSender struct {
	client  *resend.Client
	from    string
	appName string
	expiry  time.Duration
}

var _ Sender = (*ResendSender)(nil)

// NewResendSender creates a sender for apiKey. fromEmail must belong to a
// domain verified with Resend.
func NewResendSender(apiKey, fromName, fromEmail, appName string, expiry time.Duration) *ResendSender {
	return &ResendSender{
		client:  resend.NewClient(apiKey),
		from:    fmt.Sprintf("%s <%s>", fromName, fromEmail),
		appName: appName,
		expiry:  expiry,
	}
}

func (s *ResendSender) SendOTP(ctx context.Context, toEmail, code, purpose string) error {
	msg := Compose(s.appName, code, purpose, s.expiry)
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return errors.Wrap(err, "[ResendSender.SendOTP] failed to send email")
	}
	return nil
}
