package email

import (
	"context"
	"log/slog"
	"time"
)

// LogSender writes message metadata to the logger instead of delivering it.
// It backs EMAIL_MODE=log for local development and demos.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, message Message) (Receipt, error) {
	if err := message.validate(); err != nil {
		return Receipt{}, err
	}
	receipt := newReceipt(message, time.Now())
	s.logger.InfoContext(ctx, "email accepted by log sender",
		"id", receipt.ID,
		"to", message.To,
		"subject", message.Subject,
	)
	return receipt, nil
}
