package masterdata

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidValue is returned when a reading value is NaN or infinite.
	ErrInvalidValue = errors.New("masterdata: invalid value")
	// ErrInvalidRange is returned when a tier has min > max.
	ErrInvalidRange = errors.New("masterdata: invalid range")
	// ErrParameterNotFound is returned when a definition is missing.
	ErrParameterNotFound = errors.New("masterdata: parameter not found")
)

// Tier is the classification of a value against a parameter definition.
type Tier string

const (
	TierNormal  Tier = "normal"
	TierWarning Tier = "warning"
	TierDanger  Tier = "danger"
)

// Range is a closed interval [Min, Max].
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether value lies inside the range, bounds included.
func (r Range) Contains(value float64) bool {
	return value >= r.Min && value <= r.Max
}

// Covers reports whether r fully encloses other.
func (r Range) Covers(other Range) bool {
	return r.Min <= other.Min && r.Max >= other.Max
}

// ParameterDefinition is static reference data for a measured parameter.
type ParameterDefinition struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Unit    string `json:"unit"`
	Normal  Range  `json:"normal"`
	Warning Range  `json:"warning"`
	Danger  Range  `json:"danger"`
}

// Validate checks definition invariants.
// Tier nesting is a convention and is not enforced here, see Nested.
func (d ParameterDefinition) Validate() error {
	if d.ID == "" {
		return errors.New("parameter: empty id")
	}
	tiers := []struct {
		name string
		r    Range
	}{
		{"normal", d.Normal},
		{"warning", d.Warning},
		{"danger", d.Danger},
	}
	for _, tier := range tiers {
		if tier.r.Min > tier.r.Max {
			return fmt.Errorf("%w: %s %s min %.3f > max %.3f", ErrInvalidRange, d.ID, tier.name, tier.r.Min, tier.r.Max)
		}
	}
	return nil
}

// Nested reports whether danger ⊇ warning ⊇ normal.
func (d ParameterDefinition) Nested() bool {
	return d.Danger.Covers(d.Warning) && d.Warning.Covers(d.Normal)
}

// DisplayName returns the label used on alerts.
func (d ParameterDefinition) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// Classify maps a value to its tier.
// A value equal to a bound is inside that band.
func Classify(value float64, def ParameterDefinition) (Tier, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "", ErrInvalidValue
	}
	if value < def.Danger.Min || value > def.Danger.Max {
		return TierDanger, nil
	}
	if value < def.Warning.Min || value > def.Warning.Max {
		return TierWarning, nil
	}
	return TierNormal, nil
}

// ParameterRepository provides read access to the definition table.
type ParameterRepository interface {
	Get(ctx context.Context, id string) (*ParameterDefinition, error)
	List(ctx context.Context) ([]ParameterDefinition, error)
}
