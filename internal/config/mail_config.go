package config

type MailConfig interface {
	GetResendAPIKey() string
	GetMailSenderEmail() string
	GetMailSenderName() string
}

type Mail struct{}

var _ MailConfig = Mail{}

// GetResendAPIKey is empty in development, in which case codes are logged instead of mailed.
func (Mail) GetResendAPIKey() string {
	return GetEnv("RESEND_API_KEY", "")
}

func (Mail) GetMailSenderEmail() string {
	return GetEnv("MAIL_SENDER_EMAIL", "noreply@flow.local")
}

func (Mail) GetMailSenderName() string {
	return GetEnv("MAIL_SENDER_NAME", "Flow")
}
