package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	telemetry "aquaculture-cloud/internal/telemetry/domain"
)

// ReadingRepository is the in-memory time-series store.
// Readings are append-only; queries return copies.
type ReadingRepository struct {
	mu     sync.RWMutex
	series map[telemetry.Variant][]telemetry.Reading
	ids    map[string]struct{}
	// latest holds the series index of the newest reading per exact line/tank.
	latest map[latestKey]int
}

type latestKey struct {
	variant telemetry.Variant
	key     telemetry.Key
}

// NewReadingRepository constructs an empty store.
func NewReadingRepository() *ReadingRepository {
	return &ReadingRepository{
		series: make(map[telemetry.Variant][]telemetry.Reading),
		ids:    make(map[string]struct{}),
		latest: make(map[latestKey]int),
	}
}

// Append stores a reading, assigning an id when it has none.
func (r *ReadingRepository) Append(ctx context.Context, reading telemetry.Reading) (telemetry.Reading, error) {
	_ = ctx
	if err := reading.Validate(); err != nil {
		return telemetry.Reading{}, err
	}
	stored := reading.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ids[stored.ID]; exists {
		return telemetry.Reading{}, telemetry.ErrDuplicateID
	}
	variant := stored.Variant()
	r.ids[stored.ID] = struct{}{}
	r.series[variant] = append(r.series[variant], stored)
	idx := len(r.series[variant]) - 1

	lk := latestKey{variant: variant, key: stored.Key()}
	if current, ok := r.latest[lk]; !ok || !stored.Timestamp.Before(r.series[variant][current].Timestamp) {
		r.latest[lk] = idx
	}
	return stored.Clone(), nil
}

// QueryByRange returns readings matching filter in ascending timestamp order.
// A filter with start after end yields no readings.
func (r *ReadingRepository) QueryByRange(ctx context.Context, variant telemetry.Variant, filter telemetry.Filter) ([]telemetry.Reading, error) {
	_ = ctx
	if !variant.IsValid() {
		return nil, telemetry.ErrUnknownVariant
	}
	if filter.Empty() {
		return []telemetry.Reading{}, nil
	}

	r.mu.RLock()
	result := make([]telemetry.Reading, 0)
	for _, reading := range r.series[variant] {
		if filter.Matches(reading) {
			result = append(result, reading.Clone())
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

// LatestFor returns the newest reading for key. Empty key fields match anything.
func (r *ReadingRepository) LatestFor(ctx context.Context, variant telemetry.Variant, key telemetry.Key) (telemetry.Reading, bool, error) {
	_ = ctx
	if !variant.IsValid() {
		return telemetry.Reading{}, false, telemetry.ErrUnknownVariant
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	series := r.series[variant]
	if key.LineID != "" && key.TankID != "" {
		idx, ok := r.latest[latestKey{variant: variant, key: key}]
		if !ok {
			return telemetry.Reading{}, false, nil
		}
		return series[idx].Clone(), true, nil
	}

	found := -1
	filter := telemetry.Filter{LineID: key.LineID, TankID: key.TankID}
	for i, reading := range series {
		if !filter.Matches(reading) {
			continue
		}
		if found < 0 || !reading.Timestamp.Before(series[found].Timestamp) {
			found = i
		}
	}
	if found < 0 {
		return telemetry.Reading{}, false, nil
	}
	return series[found].Clone(), true, nil
}
