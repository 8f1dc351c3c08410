package application

import (
	"context"
	"time"

	alerts "aquaculture-cloud/internal/alerts/domain"
)

// Alert lifecycle event types.
const (
	EventCreated    = "created"
	EventResolved   = "resolved"
	EventUnresolved = "unresolved"
)

// AlertNotifier receives alert lifecycle events.
type AlertNotifier interface {
	Notify(ctx context.Context, event AlertEvent)
}

// AlertEvent represents a lifecycle update.
type AlertEvent struct {
	Type  string       `json:"type"`
	Alert alerts.Alert `json:"alert"`
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
