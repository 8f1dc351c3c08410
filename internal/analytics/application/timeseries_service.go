package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aquaculture-cloud/internal/analytics/domain/series"
	"aquaculture-cloud/internal/observability/metrics"
	telemetry "aquaculture-cloud/internal/telemetry/domain"
)

// ErrUnknownParameter is returned when the variant does not carry the parameter.
var ErrUnknownParameter = errors.New("analytics: unknown parameter for variant")

// Options selects and buckets one parameter of a reading variant.
type Options struct {
	Variant     telemetry.Variant
	ParameterID string
	Start       time.Time
	End         time.Time
	LineID      string
	TankID      string
	Interval    series.Interval
}

// ReadingQuery is the read side of the time-series store.
type ReadingQuery interface {
	QueryByRange(ctx context.Context, variant telemetry.Variant, filter telemetry.Filter) ([]telemetry.Reading, error)
}

// TimeSeriesService answers windowed and bucketed queries.
type TimeSeriesService struct {
	readings ReadingQuery
	location *time.Location
}

// NewTimeSeriesService constructs the service. Buckets use loc; nil means UTC.
func NewTimeSeriesService(readings ReadingQuery, loc *time.Location) (*TimeSeriesService, error) {
	if readings == nil {
		return nil, errors.New("analytics: nil reading query")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TimeSeriesService{readings: readings, location: loc}, nil
}

// Location returns the bucketing time zone.
func (s *TimeSeriesService) Location() *time.Location {
	return s.location
}

// TimeSeries returns raw samples or one averaged point per bucket.
// No data in range yields an empty slice.
func (s *TimeSeriesService) TimeSeries(ctx context.Context, opts Options) (points []series.Point, err error) {
	start := time.Now()
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
		}
		metrics.ObserveTimeSeries(string(opts.Interval), result, time.Since(start))
	}()

	if !opts.Variant.IsValid() {
		return nil, telemetry.ErrUnknownVariant
	}
	if !opts.Interval.IsValid() {
		return nil, series.ErrInvalidInterval
	}
	if !telemetry.HasField(opts.Variant, opts.ParameterID) {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownParameter, opts.Variant, opts.ParameterID)
	}

	readings, err := s.readings.QueryByRange(ctx, opts.Variant, telemetry.Filter{
		LineID: opts.LineID,
		TankID: opts.TankID,
		Start:  opts.Start,
		End:    opts.End,
	})
	if err != nil {
		return nil, err
	}

	samples := make([]series.Point, 0, len(readings))
	for _, reading := range readings {
		value, ok := reading.Field(opts.ParameterID)
		if !ok {
			continue
		}
		samples = append(samples, series.Point{Timestamp: reading.Timestamp, Value: value})
	}
	return series.Aggregate(samples, opts.Interval, s.location)
}
