package models

import (
	"fmt"
	"time"
)

// Campaign status constants
const (
	CampaignStatusActive    = "active"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusCompleted = "completed"
)

// Campaign represents a batch marketing push to a segmented set of leads.
// Once at least one send succeeds within a run the campaign transitions to
// completed and is never swept again.
type Campaign struct {
	ID        int64         `json:"id"`
	OrgID     int64         `json:"org_id"`
	Name      string        `json:"name"`
	Status    string        `json:"status"`
	Channel   Channel       `json:"channel"`
	Template  string        `json:"template"`
	StartDate *time.Time    `json:"start_date,omitempty"`
	EndDate   *time.Time    `json:"end_date,omitempty"`
	Filter    SegmentFilter `json:"filter"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// SegmentFilter selects which leads a campaign targets. Empty fields match
// everything; all populated predicates must hold.
type SegmentFilter struct {
	Audience    string     `json:"audience"`
	Course      string     `json:"course"`
	Location    string     `json:"location"`
	Statuses    []string   `json:"statuses"`
	CreatedFrom *time.Time `json:"created_from,omitempty"`
	CreatedTo   *time.Time `json:"created_to,omitempty"`
}

// Matches reports whether the lead falls inside the segment.
// Audience "all" (or empty) matches every funnel stage.
func (f *SegmentFilter) Matches(lead *Lead) bool {
	if f.Audience != "" && f.Audience != "all" && f.Audience != lead.Stage {
		return false
	}
	if f.Course != "" && f.Course != lead.CourseInterest {
		return false
	}
	if f.Location != "" && f.Location != lead.Location {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if s == lead.Status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.CreatedFrom != nil && lead.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && lead.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

// Validate performs validation on campaign data
func (c *Campaign) Validate() error {
	if c.Name == "" {
		return ErrInvalidInput("name is required")
	}
	if !IsValidCampaignStatus(c.Status) {
		return ErrInvalidInput(fmt.Sprintf("invalid status: %s", c.Status))
	}
	if !IsValidChannel(c.Channel) {
		return ErrInvalidInput(fmt.Sprintf("invalid channel: %s", c.Channel))
	}
	if c.Template == "" {
		return ErrInvalidInput("template is required")
	}
	return nil
}

// IsValidCampaignStatus checks if the campaign status is valid
func IsValidCampaignStatus(status string) bool {
	switch status {
	case CampaignStatusActive, CampaignStatusScheduled, CampaignStatusCompleted:
		return true
	default:
		return false
	}
}
