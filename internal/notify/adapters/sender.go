package adapters

import (
	"context"

	"go.uber.org/zap"

	"bookstore/internal/notify/ports"
	"bookstore/pkg/logger"
)

// LogSender writes notifications to the structured log. It stands in for
// a real mail gateway; the from address is kept so the swap is a config
// change, not a code change.
type LogSender struct {
	from string
	log  *logger.Logger
}

// NewLogSender creates a new log-backed sender
func NewLogSender(from string, log *logger.Logger) *LogSender {
	return &LogSender{from: from, log: log}
}

// Send logs the rendered notification
func (s *LogSender) Send(ctx context.Context, msg ports.Message) error {
	s.log.WithContext(ctx).Info("notification sent",
		zap.String("from", s.from),
		zap.Uint("user_id", msg.UserID),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
