package client

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the log when no push gateway is set up.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "log_notifier")}
}

func (n *LogNotifier) Notify(ctx context.Context, title, body string, data map[string]any) error {
	n.logger.InfoContext(ctx, "notification", "title", title, "body", body, "data", data)
	return nil
}
