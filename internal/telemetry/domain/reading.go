package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrDuplicateID is returned when a reading id already exists.
	ErrDuplicateID = errors.New("telemetry: duplicate id")
	// ErrInvalidReading is returned when a reading fails validation.
	ErrInvalidReading = errors.New("telemetry: invalid reading")
	// ErrUnknownVariant is returned for an unsupported reading variant.
	ErrUnknownVariant = errors.New("telemetry: unknown variant")
)

// Variant names a reading collection.
type Variant string

const (
	VariantEquipment Variant = "equipment"
	VariantTank      Variant = "tank"
	VariantFeeding   Variant = "feeding"
	VariantFishCount Variant = "fish_count"
	VariantPackTest  Variant = "pack_test"
)

// Variants lists every supported variant.
var Variants = []Variant{VariantEquipment, VariantTank, VariantFeeding, VariantFishCount, VariantPackTest}

// IsValid checks if the variant is supported.
func (v Variant) IsValid() bool {
	switch v {
	case VariantEquipment, VariantTank, VariantFeeding, VariantFishCount, VariantPackTest:
		return true
	default:
		return false
	}
}

// TankScoped reports whether readings of this variant belong to a single tank.
// Line-scoped variants raise line-wide alerts.
func (v Variant) TankScoped() bool {
	switch v {
	case VariantTank, VariantFeeding, VariantFishCount:
		return true
	default:
		return false
	}
}

// ParseVariant validates a variant name.
func ParseVariant(value string) (Variant, error) {
	v := Variant(value)
	if !v.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, value)
	}
	return v, nil
}

// Payload is the variant-specific part of a reading.
type Payload interface {
	Variant() Variant
}

// Reading is an immutable time-series record for a line or tank.
type Reading struct {
	ID        string
	LineID    string
	TankID    string
	Timestamp time.Time
	Payload   Payload
}

// Variant returns the payload variant, or "" when the payload is nil.
func (r Reading) Variant() Variant {
	if r.Payload == nil {
		return ""
	}
	return r.Payload.Variant()
}

// Validate checks reading invariants.
func (r Reading) Validate() error {
	if r.Payload == nil {
		return fmt.Errorf("%w: missing payload", ErrInvalidReading)
	}
	if !r.Variant().IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownVariant, r.Variant())
	}
	if r.LineID == "" {
		return fmt.Errorf("%w: empty line id", ErrInvalidReading)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("%w: zero timestamp", ErrInvalidReading)
	}
	if r.Variant().TankScoped() && r.TankID == "" {
		return fmt.Errorf("%w: %s reading requires tank id", ErrInvalidReading, r.Variant())
	}
	for _, field := range r.Fields() {
		if math.IsNaN(field.Value) || math.IsInf(field.Value, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidReading, field.ParameterID)
		}
	}
	return nil
}

// Key identifies the line/tank a reading belongs to.
type Key struct {
	LineID string
	TankID string
}

// Key returns the reading's line/tank identity.
func (r Reading) Key() Key {
	return Key{LineID: r.LineID, TankID: r.TankID}
}

// Filter selects readings. Zero values disable a criterion; bounds are inclusive.
type Filter struct {
	LineID string
	TankID string
	Start  time.Time
	End    time.Time
}

// Empty reports whether the filter can never match, i.e. start > end.
func (f Filter) Empty() bool {
	return !f.Start.IsZero() && !f.End.IsZero() && f.Start.After(f.End)
}

// Matches reports whether reading satisfies the filter.
func (f Filter) Matches(r Reading) bool {
	if f.LineID != "" && r.LineID != f.LineID {
		return false
	}
	if f.TankID != "" && r.TankID != f.TankID {
		return false
	}
	if !f.Start.IsZero() && r.Timestamp.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && r.Timestamp.After(f.End) {
		return false
	}
	return true
}

type readingJSON struct {
	ID        string          `json:"id,omitempty"`
	Variant   Variant         `json:"variant"`
	LineID    string          `json:"line_id"`
	TankID    string          `json:"tank_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Values    json.RawMessage `json:"values"`
}

// MarshalJSON encodes the reading with its variant tag.
func (r Reading) MarshalJSON() ([]byte, error) {
	values, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(readingJSON{
		ID:        r.ID,
		Variant:   r.Variant(),
		LineID:    r.LineID,
		TankID:    r.TankID,
		Timestamp: r.Timestamp,
		Values:    values,
	})
}

// UnmarshalJSON decodes a tagged reading.
func (r *Reading) UnmarshalJSON(data []byte) error {
	var raw readingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	payload, err := decodePayload(raw.Variant, raw.Values)
	if err != nil {
		return err
	}
	*r = Reading{
		ID:        raw.ID,
		LineID:    raw.LineID,
		TankID:    raw.TankID,
		Timestamp: raw.Timestamp,
		Payload:   payload,
	}
	return nil
}

func decodePayload(variant Variant, values json.RawMessage) (Payload, error) {
	if len(values) == 0 {
		values = json.RawMessage("{}")
	}
	switch variant {
	case VariantEquipment:
		var p EquipmentValues
		err := json.Unmarshal(values, &p)
		return p, err
	case VariantTank:
		var p TankValues
		err := json.Unmarshal(values, &p)
		return p, err
	case VariantFeeding:
		var p FeedingValues
		err := json.Unmarshal(values, &p)
		return p, err
	case VariantFishCount:
		var p FishCountValues
		err := json.Unmarshal(values, &p)
		return p, err
	case VariantPackTest:
		var p PackTestValues
		err := json.Unmarshal(values, &p)
		return p, err
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
}
