package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes notifications to the structured log. It stands in
// for an email or push delivery backend in development and tests.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger.Named("notifier"),
	}
}

// Notify logs the notification at info level
func (n *LogNotifier) Notify(ctx context.Context, notification Notification) error {
	n.logger.Info("notification",
		zap.String("seller_id", notification.SellerID.String()),
		zap.String("kind", notification.Kind),
		zap.String("subject", notification.Subject),
		zap.String("body", notification.Body),
	)
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
