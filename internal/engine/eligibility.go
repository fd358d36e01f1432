package engine

import (
	"time"

	"github.com/educonnect/reengage-engine/internal/models"
)

// Eligible decides whether a rule should fire for a lead at the given
// instant. Pure function of its inputs.
//
// status_change currently shares the no_response test (time since the last
// interaction); the observed behavior of the system is preserved here until
// distinct status-transition semantics are specified upstream.
func Eligible(lead *models.Lead, rule *models.ReengagementRule, now time.Time) bool {
	switch rule.Trigger {
	case models.TriggerNoResponse:
		return now.Sub(lead.UpdatedAt) >= rule.Window()
	case models.TriggerStatusChange:
		return now.Sub(lead.UpdatedAt) >= rule.Window()
	case models.TriggerTimeBased:
		return now.Sub(lead.CreatedAt) >= rule.Window()
	default:
		// Unknown triggers never fire
		return false
	}
}
