package models

import (
	"fmt"
	"time"
)

// TriggerType identifies the condition that makes a re-engagement rule fire.
// The set is closed: anything outside it is never eligible.
type TriggerType string

// Trigger type constants
const (
	TriggerNoResponse   TriggerType = "no_response"
	TriggerTimeBased    TriggerType = "time_based"
	TriggerStatusChange TriggerType = "status_change"
)

// TimeUnit expresses the unit of a rule window
type TimeUnit string

// Time unit constants
const (
	UnitMinutes TimeUnit = "minutes"
	UnitHours   TimeUnit = "hours"
	UnitDays    TimeUnit = "days"
)

// ReengagementRule governs automatic follow-up for leads: after Window() of
// silence (or of existence, for time_based triggers) a message rendered from
// Template is sent on Channel. Rules are authored in the dashboard and are
// read-only to the engine.
type ReengagementRule struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Trigger   TriggerType `json:"trigger"`
	Value     int         `json:"value"`
	Unit      TimeUnit    `json:"unit"`
	Channel   Channel     `json:"channel"`
	Template  string      `json:"template"`
	Active    bool        `json:"active"`
	Priority  int         `json:"priority"`
	CreatedAt time.Time   `json:"created_at"`
}

// Window returns the rule's time window as a duration.
// An unrecognized unit falls back to minutes.
func (r *ReengagementRule) Window() time.Duration {
	switch r.Unit {
	case UnitHours:
		return time.Duration(r.Value) * time.Hour
	case UnitDays:
		return time.Duration(r.Value) * 24 * time.Hour
	case UnitMinutes:
		return time.Duration(r.Value) * time.Minute
	default:
		return time.Duration(r.Value) * time.Minute
	}
}

// Validate performs validation on rule data
func (r *ReengagementRule) Validate() error {
	if !IsValidTriggerType(r.Trigger) {
		return ErrInvalidInput(fmt.Sprintf("invalid trigger type: %s", r.Trigger))
	}
	if r.Value <= 0 {
		return ErrInvalidInput("window value must be positive")
	}
	if !IsValidChannel(r.Channel) {
		return ErrInvalidInput(fmt.Sprintf("invalid channel: %s", r.Channel))
	}
	if r.Template == "" {
		return ErrInvalidInput("template is required")
	}
	return nil
}

// IsValidTriggerType checks if the trigger type is valid
func IsValidTriggerType(t TriggerType) bool {
	switch t {
	case TriggerNoResponse, TriggerTimeBased, TriggerStatusChange:
		return true
	default:
		return false
	}
}
