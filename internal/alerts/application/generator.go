package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	alerts "aquaculture-cloud/internal/alerts/domain"
	masterdata "aquaculture-cloud/internal/masterdata/domain"
	"aquaculture-cloud/internal/observability/metrics"
	telemetry "aquaculture-cloud/internal/telemetry/domain"
)

// SuppressingStore inserts an alert unless a recent one for the same subject exists.
type SuppressingStore interface {
	InsertUnlessSuppressed(ctx context.Context, alert alerts.Alert, window time.Duration) (bool, error)
}

// Generator turns readings into alerts using the active rule table.
type Generator struct {
	params   masterdata.ParameterRepository
	rules    alerts.RuleRepository
	store    SuppressingStore
	notifier AlertNotifier
	newID    func() string
	logger   *zap.Logger
}

// GeneratorOption customizes the generator.
type GeneratorOption func(*Generator)

// WithGeneratorNotifier assigns a notifier for created alerts.
func WithGeneratorNotifier(notifier AlertNotifier) GeneratorOption {
	return func(g *Generator) {
		g.notifier = notifier
	}
}

// WithGeneratorLogger assigns a logger.
func WithGeneratorLogger(logger *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithIDFunc overrides alert id generation.
func WithIDFunc(fn func() string) GeneratorOption {
	return func(g *Generator) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// NewGenerator constructs a generator.
func NewGenerator(params masterdata.ParameterRepository, rules alerts.RuleRepository, store SuppressingStore, opts ...GeneratorOption) (*Generator, error) {
	if params == nil {
		return nil, errors.New("alerts generator: nil parameter repository")
	}
	if rules == nil {
		return nil, errors.New("alerts generator: nil rule repository")
	}
	if store == nil {
		return nil, errors.New("alerts generator: nil alert store")
	}
	g := &Generator{
		params: params,
		rules:  rules,
		store:  store,
		newID:  uuid.NewString,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate evaluates a batch of readings and returns the alerts it created.
// Readings are processed in timestamp order; the input slice is not modified.
func (g *Generator) Generate(ctx context.Context, readings []telemetry.Reading) ([]alerts.Alert, error) {
	if g == nil {
		return nil, errors.New("alerts generator: nil generator")
	}
	if len(readings) == 0 {
		return nil, nil
	}

	defs, err := g.params.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("alerts generator: load parameters: %w", err)
	}
	if len(defs) == 0 {
		return nil, nil
	}
	rules, err := g.rules.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("alerts generator: load rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, nil
	}

	defByID := make(map[string]masterdata.ParameterDefinition, len(defs))
	for _, def := range defs {
		defByID[def.ID] = def
	}
	rulesByParam := make(map[string][]alerts.AlertRule)
	for _, rule := range rules {
		rulesByParam[rule.ParameterID] = append(rulesByParam[rule.ParameterID], rule)
	}

	ordered := append([]telemetry.Reading(nil), readings...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var created []alerts.Alert
	for _, reading := range ordered {
		for _, field := range reading.Fields() {
			def, ok := defByID[field.ParameterID]
			if !ok {
				continue
			}
			for _, rule := range rulesByParam[field.ParameterID] {
				if !rule.Breached(field.Value) {
					continue
				}
				alert := g.buildAlert(reading, def, rule, field.Value)
				stored, err := g.store.InsertUnlessSuppressed(ctx, alert, rule.DedupWindow)
				if err != nil {
					return created, err
				}
				if !stored {
					metrics.IncAlertSuppressed(rule.ID)
					g.logger.Debug("alert suppressed",
						zap.String("rule_id", rule.ID),
						zap.String("line_id", alert.LineID),
						zap.String("tank_id", alert.TankID),
						zap.Time("at", alert.Timestamp),
					)
					continue
				}
				metrics.IncAlertCreated(rule.ID)
				created = append(created, alert)
				g.notify(ctx, alert)
			}
		}
	}
	return created, nil
}

func (g *Generator) buildAlert(reading telemetry.Reading, def masterdata.ParameterDefinition, rule alerts.AlertRule, value float64) alerts.Alert {
	tankID := ""
	if reading.Variant().TankScoped() {
		tankID = reading.TankID
	}
	return alerts.Alert{
		ID:            g.newID(),
		Timestamp:     reading.Timestamp,
		LineID:        reading.LineID,
		TankID:        tankID,
		RuleID:        rule.ID,
		ParameterID:   def.ID,
		ParameterName: def.DisplayName(),
		Unit:          def.Unit,
		Value:         value,
		ThresholdMin:  rule.ThresholdMin,
		ThresholdMax:  rule.ThresholdMax,
		Description:   describeBreach(def, rule, value, reading.LineID, tankID),
		Remedial:      rule.Remedial,
	}
}

func describeBreach(def masterdata.ParameterDefinition, rule alerts.AlertRule, value float64, lineID, tankID string) string {
	unit := ""
	if def.Unit != "" {
		unit = " " + def.Unit
	}
	where := "line " + lineID
	if tankID != "" {
		where += " tank " + tankID
	}
	if value > rule.ThresholdMax {
		return fmt.Sprintf("%s %.2f%s above maximum %.2f%s on %s", def.DisplayName(), value, unit, rule.ThresholdMax, unit, where)
	}
	return fmt.Sprintf("%s %.2f%s below minimum %.2f%s on %s", def.DisplayName(), value, unit, rule.ThresholdMin, unit, where)
}

func (g *Generator) notify(ctx context.Context, alert alerts.Alert) {
	metrics.IncAlertEvent(EventCreated)
	if g.notifier == nil {
		return
	}
	g.notifier.Notify(ctx, AlertEvent{Type: EventCreated, Alert: alert})
}
