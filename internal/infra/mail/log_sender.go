package mail

import (
	"context"
	"log/slog"

	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/domain/service"
)

// logSender writes messages to the log instead of delivering them. Used in development.
type logSender struct {
	logger *slog.Logger
}

// NewLogSender creates a MailSender that only logs.
func NewLogSender(logger *slog.Logger) service.MailSender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(ctx context.Context, message *service.MailMessage) error {
	deliverycontext.GetLoggerOrDefault(ctx, s.logger).Info("[LogMail] Email",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("body", message.TextBody),
	)

	return nil
}
