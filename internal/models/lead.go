package models

import "time"

// Lead status constants (funnel position as tracked by the CRM)
const (
	LeadStatusNew        = "NOVO"
	LeadStatusInProgress = "ANDAMENTO"
	LeadStatusContacted  = "CONTATADO"
	LeadStatusEnrolled   = "MATRICULADO"
	LeadStatusLost       = "PERDIDO"
)

// Lead stage constants
const (
	LeadStageCapture     = "CAPTACAO"
	LeadStageFollowUp    = "FOLLOW_UP"
	LeadStageNegotiation = "NEGOCIACAO"
	LeadStageEnrollment  = "MATRICULA"
)

// Lead represents a prospective student tracked through the recruitment funnel.
// UpdatedAt must reflect the most recent inbound or outbound interaction; the
// eligibility windows for re-engagement are computed against it.
type Lead struct {
	ID             int64     `json:"id"`
	OrgID          int64     `json:"org_id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	CourseInterest string    `json:"course_interest"`
	Location       string    `json:"location"`
	Status         string    `json:"status"`
	Stage          string    `json:"stage"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsValidLeadStatus checks if the lead status is valid
func IsValidLeadStatus(status string) bool {
	switch status {
	case LeadStatusNew, LeadStatusInProgress, LeadStatusContacted, LeadStatusEnrolled, LeadStatusLost:
		return true
	default:
		return false
	}
}
