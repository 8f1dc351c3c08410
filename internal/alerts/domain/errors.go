package alerts

import "errors"

var (
	// ErrNotFound indicates a missing alert record.
	ErrNotFound = errors.New("alerts: not found")
	// ErrDuplicateID indicates an alert id collision on insert.
	ErrDuplicateID = errors.New("alerts: duplicate id")
	// ErrRuleNotFound indicates a missing alert rule.
	ErrRuleNotFound = errors.New("alerts: rule not found")
	// ErrInvalidRule is returned when a rule fails validation.
	ErrInvalidRule = errors.New("alerts: invalid rule")
)
