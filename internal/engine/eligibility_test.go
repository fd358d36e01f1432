package engine

import (
	"testing"
	"time"

	"github.com/educonnect/reengage-engine/internal/models"
)

func TestEligible(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		trigger   models.TriggerType
		value     int
		unit      models.TimeUnit
		createdAt time.Time
		updatedAt time.Time
		want      bool
	}{
		{
			name:      "no_response past window",
			trigger:   models.TriggerNoResponse,
			value:     30,
			unit:      models.UnitMinutes,
			createdAt: now.Add(-2 * time.Hour),
			updatedAt: now.Add(-31 * time.Minute),
			want:      true,
		},
		{
			name:      "no_response inside window",
			trigger:   models.TriggerNoResponse,
			value:     30,
			unit:      models.UnitMinutes,
			createdAt: now.Add(-2 * time.Hour),
			updatedAt: now.Add(-5 * time.Minute),
			want:      false,
		},
		{
			name:      "no_response exactly at window boundary",
			trigger:   models.TriggerNoResponse,
			value:     30,
			unit:      models.UnitMinutes,
			createdAt: now.Add(-2 * time.Hour),
			updatedAt: now.Add(-30 * time.Minute),
			want:      true,
		},
		{
			name:      "time_based measures creation not update",
			trigger:   models.TriggerTimeBased,
			value:     30,
			unit:      models.UnitMinutes,
			createdAt: now.Add(-31 * time.Minute),
			updatedAt: now,
			want:      true,
		},
		{
			name:      "time_based inside window",
			trigger:   models.TriggerTimeBased,
			value:     2,
			unit:      models.UnitHours,
			createdAt: now.Add(-90 * time.Minute),
			updatedAt: now.Add(-90 * time.Minute),
			want:      false,
		},
		{
			name:      "status_change mirrors no_response",
			trigger:   models.TriggerStatusChange,
			value:     1,
			unit:      models.UnitDays,
			createdAt: now.Add(-10 * 24 * time.Hour),
			updatedAt: now.Add(-25 * time.Hour),
			want:      true,
		},
		{
			name:      "status_change inside window",
			trigger:   models.TriggerStatusChange,
			value:     1,
			unit:      models.UnitDays,
			createdAt: now.Add(-10 * 24 * time.Hour),
			updatedAt: now.Add(-23 * time.Hour),
			want:      false,
		},
		{
			name:      "unknown trigger never fires",
			trigger:   models.TriggerType("on_birthday"),
			value:     1,
			unit:      models.UnitMinutes,
			createdAt: now.Add(-24 * time.Hour),
			updatedAt: now.Add(-24 * time.Hour),
			want:      false,
		},
		{
			name:      "unknown unit falls back to minutes",
			trigger:   models.TriggerNoResponse,
			value:     45,
			unit:      models.TimeUnit("fortnights"),
			createdAt: now.Add(-2 * time.Hour),
			updatedAt: now.Add(-46 * time.Minute),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := &models.Lead{
				CreatedAt: tt.createdAt,
				UpdatedAt: tt.updatedAt,
			}
			rule := &models.ReengagementRule{
				Trigger: tt.trigger,
				Value:   tt.value,
				Unit:    tt.unit,
			}

			if got := Eligible(lead, rule, now); got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}
