package events

import (
	"time"

	telemetry "aquaculture-cloud/internal/telemetry/domain"
)

// ReadingsAppended is raised after a batch of readings was stored.
type ReadingsAppended struct {
	Readings   []telemetry.Reading `json:"readings"`
	OccurredAt time.Time           `json:"occurred_at"`
}
