package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	alerts "aquaculture-cloud/internal/alerts/domain"
	"aquaculture-cloud/internal/observability/metrics"
)

// AlertStore is the alert persistence used by the service.
type AlertStore interface {
	Get(ctx context.Context, id string) (*alerts.Alert, error)
	Resolve(ctx context.Context, id string, at time.Time) (*alerts.Alert, bool, error)
	Unresolve(ctx context.Context, id string) (*alerts.Alert, bool, error)
	Toggle(ctx context.Context, id string, at time.Time) (*alerts.Alert, error)
	List(ctx context.Context, filter alerts.Filter) ([]alerts.Alert, error)
	Stats(ctx context.Context) (alerts.Stats, error)
}

// Service handles alert queries and resolve state transitions.
//
// Mutating a missing alert is a successful no-op unless strict mode is
// requested, in which case alerts.ErrNotFound is returned.
type Service struct {
	store    AlertStore
	notifier AlertNotifier
	clock    Clock
	strict   bool
	logger   *zap.Logger
}

// ServiceOption customizes the alert service.
type ServiceOption func(*Service)

// WithNotifier assigns a notifier.
func WithNotifier(notifier AlertNotifier) ServiceOption {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithStrictMutations makes every mutation report missing alerts.
func WithStrictMutations(strict bool) ServiceOption {
	return func(s *Service) {
		s.strict = strict
	}
}

// WithLogger assigns a logger.
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// MutationOption customizes a single resolve/unresolve/toggle call.
type MutationOption func(*mutation)

type mutation struct {
	strict bool
}

// Strict reports missing alerts as alerts.ErrNotFound for this call.
func Strict() MutationOption {
	return func(m *mutation) {
		m.strict = true
	}
}

// NewService constructs an alert service.
func NewService(store AlertStore, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("alerts: nil alert store")
	}
	service := &Service{
		store:  store,
		clock:  systemClock{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Resolve marks an alert resolved. Resolving twice keeps the first ResolvedAt.
// A nil alert with a nil error means the id was not found in lenient mode.
func (s *Service) Resolve(ctx context.Context, id string, opts ...MutationOption) (*alerts.Alert, error) {
	if err := s.checkID(id); err != nil {
		return nil, err
	}
	alert, changed, err := s.store.Resolve(ctx, id, s.clock.Now().UTC())
	if err != nil {
		return nil, s.missing(id, err, opts)
	}
	if changed {
		s.notify(ctx, EventResolved, *alert)
	}
	return alert, nil
}

// Unresolve reopens an alert and clears ResolvedAt.
func (s *Service) Unresolve(ctx context.Context, id string, opts ...MutationOption) (*alerts.Alert, error) {
	if err := s.checkID(id); err != nil {
		return nil, err
	}
	alert, changed, err := s.store.Unresolve(ctx, id)
	if err != nil {
		return nil, s.missing(id, err, opts)
	}
	if changed {
		s.notify(ctx, EventUnresolved, *alert)
	}
	return alert, nil
}

// Toggle flips the resolved state.
func (s *Service) Toggle(ctx context.Context, id string, opts ...MutationOption) (*alerts.Alert, error) {
	if err := s.checkID(id); err != nil {
		return nil, err
	}
	alert, err := s.store.Toggle(ctx, id, s.clock.Now().UTC())
	if err != nil {
		return nil, s.missing(id, err, opts)
	}
	if alert.Resolved {
		s.notify(ctx, EventResolved, *alert)
	} else {
		s.notify(ctx, EventUnresolved, *alert)
	}
	return alert, nil
}

// Get returns one alert.
func (s *Service) Get(ctx context.Context, id string) (*alerts.Alert, error) {
	if err := s.checkID(id); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// ListAlerts returns alerts matching filter, most recent first.
func (s *Service) ListAlerts(ctx context.Context, filter alerts.Filter) ([]alerts.Alert, error) {
	if s == nil {
		return nil, errors.New("alerts: nil service")
	}
	return s.store.List(ctx, filter)
}

// Stats returns totals computed from the current store state.
func (s *Service) Stats(ctx context.Context) (alerts.Stats, error) {
	if s == nil {
		return alerts.Stats{}, errors.New("alerts: nil service")
	}
	return s.store.Stats(ctx)
}

func (s *Service) checkID(id string) error {
	if s == nil {
		return errors.New("alerts: nil service")
	}
	if id == "" {
		return errors.New("alerts: alert id required")
	}
	return nil
}

func (s *Service) missing(id string, err error, opts []MutationOption) error {
	if !errors.Is(err, alerts.ErrNotFound) {
		return err
	}
	m := mutation{strict: s.strict}
	for _, opt := range opts {
		opt(&m)
	}
	if m.strict {
		return err
	}
	s.logger.Debug("alert mutation on missing id ignored", zap.String("alert_id", id))
	return nil
}

func (s *Service) notify(ctx context.Context, eventType string, alert alerts.Alert) {
	metrics.IncAlertEvent(eventType)
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, AlertEvent{Type: eventType, Alert: alert})
}
