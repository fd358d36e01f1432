package models

import (
	"testing"
	"time"
)

func TestRuleWindow(t *testing.T) {
	tests := []struct {
		name  string
		value int
		unit  TimeUnit
		want  time.Duration
	}{
		{name: "minutes", value: 30, unit: UnitMinutes, want: 30 * time.Minute},
		{name: "hours", value: 2, unit: UnitHours, want: 2 * time.Hour},
		{name: "days", value: 3, unit: UnitDays, want: 72 * time.Hour},
		{name: "unknown unit defaults to minutes", value: 15, unit: TimeUnit("weeks"), want: 15 * time.Minute},
		{name: "empty unit defaults to minutes", value: 10, unit: "", want: 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &ReengagementRule{Value: tt.value, Unit: tt.unit}
			if got := r.Window(); got != tt.want {
				t.Errorf("Window() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRuleValidate(t *testing.T) {
	valid := ReengagementRule{
		Trigger:  TriggerNoResponse,
		Value:    30,
		Unit:     UnitMinutes,
		Channel:  ChannelChat,
		Template: "Olá {{name}}",
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("valid rule failed validation: %v", err)
	}

	bad := valid
	bad.Trigger = TriggerType("on_signup")
	if err := bad.Validate(); err == nil {
		t.Error("unknown trigger should fail validation")
	}

	bad = valid
	bad.Value = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero window should fail validation")
	}

	bad = valid
	bad.Template = ""
	if err := bad.Validate(); err == nil {
		t.Error("empty template should fail validation")
	}
}
