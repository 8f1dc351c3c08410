package alerts

import (
	"strings"
	"time"
)

// Alert is raised once per non-suppressed breach.
// Threshold values are a snapshot of the rule at detection time.
// ResolvedAt is non-nil iff Resolved is true.
type Alert struct {
	ID            string     `json:"id"`
	Timestamp     time.Time  `json:"timestamp"`
	LineID        string     `json:"line_id"`
	TankID        string     `json:"tank_id,omitempty"`
	RuleID        string     `json:"rule_id"`
	ParameterID   string     `json:"parameter_id"`
	ParameterName string     `json:"parameter_name"`
	Unit          string     `json:"unit,omitempty"`
	Value         float64    `json:"value"`
	ThresholdMin  float64    `json:"threshold_min"`
	ThresholdMax  float64    `json:"threshold_max"`
	Description   string     `json:"description"`
	Remedial      string     `json:"remedial"`
	Resolved      bool       `json:"resolved"`
	ResolvedAt    *time.Time `json:"resolved_at"`
}

// Clone returns a deep copy so callers never share ResolvedAt.
func (a Alert) Clone() Alert {
	if a.ResolvedAt != nil {
		at := *a.ResolvedAt
		a.ResolvedAt = &at
	}
	return a
}

// SameSubject reports whether other was raised by the same rule for the same line/tank.
func (a Alert) SameSubject(other Alert) bool {
	return a.RuleID == other.RuleID && a.LineID == other.LineID && a.TankID == other.TankID
}

// Filter selects alerts. Zero values disable a criterion.
type Filter struct {
	Search         string
	OnlyUnresolved bool
	LineID         string
	TankID         string
	Start          time.Time
	End            time.Time
}

// Empty reports whether the filter can never match, i.e. start > end.
func (f Filter) Empty() bool {
	return !f.Start.IsZero() && !f.End.IsZero() && f.Start.After(f.End)
}

// Matches reports whether alert satisfies every criterion of the filter.
func (f Filter) Matches(alert Alert) bool {
	if f.OnlyUnresolved && alert.Resolved {
		return false
	}
	if f.LineID != "" && alert.LineID != f.LineID {
		return false
	}
	if f.TankID != "" && alert.TankID != f.TankID {
		return false
	}
	if !f.Start.IsZero() && alert.Timestamp.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && alert.Timestamp.After(f.End) {
		return false
	}
	return f.matchesSearch(alert)
}

// matchesSearch is an OR over the searchable fields.
func (f Filter) matchesSearch(alert Alert) bool {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	fields := []string{alert.ParameterName, alert.Description, alert.LineID}
	if alert.TankID != "" {
		fields = append(fields, alert.TankID)
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// LineStats counts alerts for one line.
type LineStats struct {
	Total      int `json:"total"`
	Unresolved int `json:"unresolved"`
}

// Stats is a rollup of the alert store.
type Stats struct {
	Total      int                  `json:"total"`
	Unresolved int                  `json:"unresolved"`
	ByLine     map[string]LineStats `json:"by_line"`
}

// NewStats returns zeroed stats.
func NewStats() Stats {
	return Stats{ByLine: make(map[string]LineStats)}
}

// Add counts alert into the rollup.
func (s *Stats) Add(alert Alert) {
	line := s.ByLine[alert.LineID]
	s.Total++
	line.Total++
	if !alert.Resolved {
		s.Unresolved++
		line.Unresolved++
	}
	s.ByLine[alert.LineID] = line
}
