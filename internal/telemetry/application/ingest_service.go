package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"aquaculture-cloud/internal/eventing"
	"aquaculture-cloud/internal/observability/metrics"
	"aquaculture-cloud/internal/telemetry/application/events"
	telemetry "aquaculture-cloud/internal/telemetry/domain"
)

// Rejection describes a reading that could not be stored.
type Rejection struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

// IngestResult reports the outcome of a batch.
type IngestResult struct {
	Stored   []telemetry.Reading `json:"stored"`
	Rejected []Rejection         `json:"rejected"`
}

// IngestService appends readings and announces the stored batch.
type IngestService struct {
	repo   telemetry.ReadingRepository
	bus    eventing.EventBus
	logger *zap.Logger
}

// NewIngestService constructs an IngestService.
func NewIngestService(repo telemetry.ReadingRepository, bus eventing.EventBus, logger *zap.Logger) (*IngestService, error) {
	if repo == nil {
		return nil, errors.New("telemetry ingest: nil repository")
	}
	if bus == nil {
		return nil, errors.New("telemetry ingest: nil event bus")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{repo: repo, bus: bus, logger: logger}, nil
}

// Ingest stores each reading and publishes ReadingsAppended for the ones stored.
// Invalid or duplicate readings are rejected individually; the rest of the batch proceeds.
func (s *IngestService) Ingest(ctx context.Context, readings []telemetry.Reading) (IngestResult, error) {
	result := IngestResult{Stored: []telemetry.Reading{}, Rejected: []Rejection{}}
	for i, reading := range readings {
		stored, err := s.repo.Append(ctx, reading)
		if err != nil {
			metrics.IncIngestError(rejectReason(err))
			s.logger.Warn("reading rejected",
				zap.Int("index", i),
				zap.String("reading_id", reading.ID),
				zap.String("line_id", reading.LineID),
				zap.Error(err),
			)
			result.Rejected = append(result.Rejected, Rejection{Index: i, ID: reading.ID, Error: err.Error()})
			continue
		}
		metrics.IncReadingAppended(string(stored.Variant()))
		result.Stored = append(result.Stored, stored)
	}
	if len(result.Stored) == 0 {
		return result, nil
	}

	evt := events.ReadingsAppended{Readings: result.Stored, OccurredAt: time.Now().UTC()}
	if err := s.bus.Publish(ctx, evt); err != nil {
		return result, err
	}
	return result, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, telemetry.ErrDuplicateID):
		return "duplicate_id"
	case errors.Is(err, telemetry.ErrUnknownVariant):
		return "unknown_variant"
	case errors.Is(err, telemetry.ErrInvalidReading):
		return "invalid_reading"
	default:
		return "store_error"
	}
}
