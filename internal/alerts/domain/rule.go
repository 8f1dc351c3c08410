package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// AlertRule defines the trigger band for one parameter.
// A value outside [ThresholdMin, ThresholdMax] is a breach.
type AlertRule struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	ParameterID  string        `json:"parameter_id"`
	ThresholdMin float64       `json:"threshold_min"`
	ThresholdMax float64       `json:"threshold_max"`
	DedupWindow  time.Duration `json:"dedup_window"`
	Remedial     string        `json:"remedial"`
	Active       bool          `json:"active"`
}

// Validate checks rule invariants.
func (r AlertRule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRule)
	}
	if r.ParameterID == "" {
		return fmt.Errorf("%w: %s has empty parameter", ErrInvalidRule, r.ID)
	}
	if r.ThresholdMin > r.ThresholdMax {
		return fmt.Errorf("%w: %s threshold min %.3f > max %.3f", ErrInvalidRule, r.ID, r.ThresholdMin, r.ThresholdMax)
	}
	if r.DedupWindow < 0 {
		return fmt.Errorf("%w: %s negative dedup window", ErrInvalidRule, r.ID)
	}
	return nil
}

// Breached reports whether value falls outside the trigger band.
func (r AlertRule) Breached(value float64) bool {
	return value < r.ThresholdMin || value > r.ThresholdMax
}

// RuleRepository provides read access to the rule table.
type RuleRepository interface {
	ListActive(ctx context.Context) ([]AlertRule, error)
}

// MarshalJSON renders the dedup window as a duration string such as "3h0m0s".
func (r AlertRule) MarshalJSON() ([]byte, error) {
	type rule AlertRule
	return json.Marshal(struct {
		rule
		DedupWindow string `json:"dedup_window"`
	}{rule: rule(r), DedupWindow: r.DedupWindow.String()})
}
