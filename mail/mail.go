// Package mail delivers one time codes to users.
package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/flow-client/authmodel"
)

// Sender delivers a one time code for purpose to toEmail.
type Sender interface {
	SendOTP(ctx context.Context, toEmail, code, purpose string) error
}

// Message is a rendered email.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Compose renders the email for an OTP. Signup and password reset codes get
// different wording.
func Compose(appName, code, purpose string, expiry time.Duration) Message {
	minutes := int(expiry.Minutes())
	heading, intro, ignore := "Verify Your Email",
		"Your verification code is:",
		"If you didn't request this code, please ignore this email."
	if purpose == authmodel.PurposePasswordReset {
		heading, intro, ignore = "Reset Your Password",
			"You requested to reset your password. Your reset code is:",
			"If you didn't request this, please ignore this email or contact support if you're concerned."
	}

	text := fmt.Sprintf("Hello,\n\n%s %s\n\nThis code will expire in %d minutes.\n\n%s\n\nBest regards,\n%s Team\n",
		intro, code, minutes, ignore, appName)

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
</head>
<body style="font-family:Arial,sans-serif;line-height:1.6;color:#333;">
  <div style="max-width:600px;margin:0 auto;padding:20px;">
    <h2 style="color:#2c3e50;">%s</h2>
    <p>Hello,</p>
    <p>%s</p>
    <div style="background-color:#f8f9fa;padding:20px;text-align:center;margin:20px 0;border-radius:8px;">
      <span style="font-size:32px;font-weight:bold;letter-spacing:8px;color:#2c3e50;">%s</span>
    </div>
    <p>This code will expire in <strong>%d minutes</strong>.</p>
    <p style="color:#666;font-size:14px;">%s</p>
    <p style="color:#999;font-size:12px;">Best regards,<br>%s Team</p>
  </div>
</body>
</html>`, heading, intro, code, minutes, ignore, appName)

	return Message{
		Subject: fmt.Sprintf("%s - %s", appName, heading),
		Text:    text,
		HTML:    html,
	}
}
