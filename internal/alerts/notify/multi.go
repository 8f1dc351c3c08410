package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	alertapp "aquaculture-cloud/internal/alerts/application"
	"aquaculture-cloud/internal/observability/metrics"
)

// MultiNotifier fans alert events out to several notifiers.
// A panicking notifier is logged and skipped; the rest still receive the event.
type MultiNotifier struct {
	notifiers []alertapp.AlertNotifier
	logger    *zap.Logger
}

// NewMultiNotifier constructs a MultiNotifier. Nil notifiers are dropped.
func NewMultiNotifier(logger *zap.Logger, notifiers ...alertapp.AlertNotifier) *MultiNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	kept := make([]alertapp.AlertNotifier, 0, len(notifiers))
	for _, notifier := range notifiers {
		if notifier != nil {
			kept = append(kept, notifier)
		}
	}
	return &MultiNotifier{notifiers: kept, logger: logger}
}

// Len reports how many notifiers receive events.
func (m *MultiNotifier) Len() int {
	if m == nil {
		return 0
	}
	return len(m.notifiers)
}

// Notify forwards the event to every notifier.
func (m *MultiNotifier) Notify(ctx context.Context, event alertapp.AlertEvent) {
	if m == nil {
		return
	}
	for i, notifier := range m.notifiers {
		if err := m.deliver(ctx, notifier, event); err != nil {
			metrics.IncNotificationFailure(event.Type)
			m.logger.Error("alert notifier failed",
				zap.Int("notifier", i),
				zap.String("notifier_type", fmt.Sprintf("%T", notifier)),
				zap.String("event", event.Type),
				zap.String("alert_id", event.Alert.ID),
				zap.Error(err),
			)
		}
	}
}

func (m *MultiNotifier) deliver(ctx context.Context, notifier alertapp.AlertNotifier, event alertapp.AlertEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()
	notifier.Notify(ctx, event)
	return nil
}
