package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/jobboard/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes notifications to the given logger instead of a chat.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each message via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs text and always reports success.
func (n *LogNotifier) Notify(_ context.Context, text string) bool {
	n.logger.Info("notification", "text", text)
	return true
}
