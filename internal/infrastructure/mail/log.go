package mail

import (
	"context"

	"portfolio-cms/internal/logger"

	"go.uber.org/zap"
)

// LogSender records outbound mail in the log instead of delivering it.
// Bodies are never logged since they carry reset links.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (LogSender) Send(_ context.Context, msg Message) error {
	logger.Info("Mail delivery skipped",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("event", "mail_logged"),
	)
	return nil
}
