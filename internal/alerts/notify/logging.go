package notify

import (
	"context"

	"go.uber.org/zap"

	alertapp "aquaculture-cloud/internal/alerts/application"
)

// LoggingNotifier writes alert lifecycle events to the structured log.
type LoggingNotifier struct {
	logger *zap.Logger
}

// NewLoggingNotifier constructs a LoggingNotifier.
func NewLoggingNotifier(logger *zap.Logger) *LoggingNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingNotifier{logger: logger}
}

// Notify logs the event. Created alerts are warnings; state changes are info.
func (n *LoggingNotifier) Notify(_ context.Context, event alertapp.AlertEvent) {
	if n == nil {
		return
	}
	fields := []zap.Field{
		zap.String("event", event.Type),
		zap.String("alert_id", event.Alert.ID),
		zap.String("rule_id", event.Alert.RuleID),
		zap.String("line_id", event.Alert.LineID),
		zap.Float64("value", event.Alert.Value),
		zap.Time("at", event.Alert.Timestamp),
	}
	if event.Alert.TankID != "" {
		fields = append(fields, zap.String("tank_id", event.Alert.TankID))
	}
	if event.Type == alertapp.EventCreated {
		n.logger.Warn(event.Alert.Description, fields...)
		return
	}
	n.logger.Info("alert "+event.Type, fields...)
}
