package notify

import (
	"context"
	"log/slog"

	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/nikolayk812/sweetshop/internal/port"
)

// LogNotifier writes checkout outcomes to the log. Used when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

var _ port.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "notify")}
}

func (n *LogNotifier) Notify(ctx context.Context, outcome domain.CheckoutOutcome) error {
	event := newCheckoutEvent(outcome)

	attrs := []any{
		"event_type", event.Type,
		"user_id", event.UserID,
		"purchases", len(event.Purchases),
	}
	if event.Failure != nil {
		attrs = append(attrs, "reason", event.Failure.Reason, "error", event.Failure.Message)
	}

	n.logger.InfoContext(ctx, "checkout outcome", attrs...)
	return nil
}
