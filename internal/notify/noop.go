package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded messages. It is used
// when no messaging transport is configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards messages with a log entry.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// Send logs and discards the message.
func (n *NoOpNotifier) Send(_ context.Context, userID int64, text string) error {
	n.log.Debug("notification discarded (no transport configured)",
		"user", userID,
		"text", text,
	)
	return nil
}
