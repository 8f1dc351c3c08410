package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	alerts "aquaculture-cloud/internal/alerts/domain"
)

// AlertRepository is the in-memory alert store.
// Every mutation, including the dedup check, runs under the write lock.
type AlertRepository struct {
	mu     sync.RWMutex
	alerts map[string]*alerts.Alert
	// bySubject indexes alert ids per rule/line/tank for dedup lookups.
	bySubject map[subjectKey][]string
}

type subjectKey struct {
	ruleID string
	lineID string
	tankID string
}

func keyOf(alert alerts.Alert) subjectKey {
	return subjectKey{ruleID: alert.RuleID, lineID: alert.LineID, tankID: alert.TankID}
}

// NewAlertRepository constructs an empty repository.
func NewAlertRepository() *AlertRepository {
	return &AlertRepository{
		alerts:    make(map[string]*alerts.Alert),
		bySubject: make(map[subjectKey][]string),
	}
}

// Insert stores an alert without a dedup check.
func (r *AlertRepository) Insert(ctx context.Context, alert alerts.Alert) error {
	_ = ctx
	if alert.ID == "" {
		return errors.New("memory alert repo: empty id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(alert)
}

// InsertUnlessSuppressed stores alert unless an alert for the same rule/line/tank
// exists with a timestamp within window of alert.Timestamp on either side, so
// batches delivered out of order still collapse to one alert.
// Resolved alerts suppress as well. It reports whether the alert was stored.
func (r *AlertRepository) InsertUnlessSuppressed(ctx context.Context, alert alerts.Alert, window time.Duration) (bool, error) {
	_ = ctx
	if alert.ID == "" {
		return false, errors.New("memory alert repo: empty id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	from := alert.Timestamp.Add(-window)
	to := alert.Timestamp.Add(window)
	for _, id := range r.bySubject[keyOf(alert)] {
		existing := r.alerts[id]
		if existing == nil {
			continue
		}
		if existing.Timestamp.Before(from) || existing.Timestamp.After(to) {
			continue
		}
		return false, nil
	}
	if err := r.insertLocked(alert); err != nil {
		return false, err
	}
	return true, nil
}

// Get returns a copy of the alert.
func (r *AlertRepository) Get(ctx context.Context, id string) (*alerts.Alert, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	alert := r.alerts[id]
	if alert == nil {
		return nil, alerts.ErrNotFound
	}
	clone := alert.Clone()
	return &clone, nil
}

// Resolve marks the alert resolved at the given time.
// An already resolved alert keeps its original ResolvedAt.
func (r *AlertRepository) Resolve(ctx context.Context, id string, at time.Time) (*alerts.Alert, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	alert := r.alerts[id]
	if alert == nil {
		return nil, false, alerts.ErrNotFound
	}
	changed := false
	if !alert.Resolved {
		resolvedAt := at
		alert.Resolved = true
		alert.ResolvedAt = &resolvedAt
		changed = true
	}
	clone := alert.Clone()
	return &clone, changed, nil
}

// Unresolve clears the resolved state.
func (r *AlertRepository) Unresolve(ctx context.Context, id string) (*alerts.Alert, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	alert := r.alerts[id]
	if alert == nil {
		return nil, false, alerts.ErrNotFound
	}
	changed := alert.Resolved
	alert.Resolved = false
	alert.ResolvedAt = nil
	clone := alert.Clone()
	return &clone, changed, nil
}

// Toggle flips the resolved state, stamping at when it becomes resolved.
func (r *AlertRepository) Toggle(ctx context.Context, id string, at time.Time) (*alerts.Alert, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	alert := r.alerts[id]
	if alert == nil {
		return nil, alerts.ErrNotFound
	}
	if alert.Resolved {
		alert.Resolved = false
		alert.ResolvedAt = nil
	} else {
		resolvedAt := at
		alert.Resolved = true
		alert.ResolvedAt = &resolvedAt
	}
	clone := alert.Clone()
	return &clone, nil
}

// List returns matching alerts, most recent first.
func (r *AlertRepository) List(ctx context.Context, filter alerts.Filter) ([]alerts.Alert, error) {
	_ = ctx
	if filter.Empty() {
		return []alerts.Alert{}, nil
	}
	r.mu.RLock()
	result := make([]alerts.Alert, 0, len(r.alerts))
	for _, alert := range r.alerts {
		if filter.Matches(*alert) {
			result = append(result, alert.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].ID > result[j].ID
		}
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}

// Stats computes the rollup from current state.
func (r *AlertRepository) Stats(ctx context.Context) (alerts.Stats, error) {
	_ = ctx
	stats := alerts.NewStats()
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, alert := range r.alerts {
		stats.Add(*alert)
	}
	return stats, nil
}

func (r *AlertRepository) insertLocked(alert alerts.Alert) error {
	if _, exists := r.alerts[alert.ID]; exists {
		return alerts.ErrDuplicateID
	}
	stored := alert.Clone()
	r.alerts[stored.ID] = &stored
	key := keyOf(stored)
	r.bySubject[key] = append(r.bySubject[key], stored.ID)
	return nil
}
