package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes codes to the log instead of mailing them. Only for local
// development, where no mail provider is configured.
type LogSender struct {
	logger zerolog.Logger
}

var _ Sender = (*LogSender)(nil)

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendOTP(_ context.Context, toEmail, code, purpose string) error {
	s.logger.Info().Str("email", toEmail).Str("purpose", purpose).Str("code", code).Msg("one time code (not mailed)")
	return nil
}
