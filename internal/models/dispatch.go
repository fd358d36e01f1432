package models

import "time"

// Channel identifies the delivery channel for a message
type Channel string

// Channel constants
const (
	ChannelChat  Channel = "chat"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// IsValidChannel checks if the channel is valid
func IsValidChannel(ch Channel) bool {
	switch ch {
	case ChannelChat, ChannelEmail, ChannelSMS:
		return true
	default:
		return false
	}
}

// Dedup record status constants
const (
	DedupStatusSent   = "sent"
	DedupStatusFailed = "failed"
)

// DispatchOutcome is the normalized result of one delivery attempt. Failures
// are carried here as values, never as errors: the dispatcher always returns
// an outcome and the run continues.
type DispatchOutcome struct {
	LeadID     int64     `json:"lead_id"`
	Channel    Channel   `json:"channel"`
	Message    string    `json:"message"`
	Success    bool      `json:"success"`
	ProviderID string    `json:"provider_id,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// DedupRecord marks a (lead, campaign) pair as already processed. Both sent
// and failed records suppress re-sends of the same campaign across runs.
type DedupRecord struct {
	ID         int64     `json:"id"`
	LeadID     int64     `json:"lead_id"`
	CampaignID int64     `json:"campaign_id"`
	OrgID      int64     `json:"org_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// DeliveryLog is one persisted delivery-attempt entry. RuleID and CampaignID
// are mutually exclusive depending on which sweep produced the attempt.
type DeliveryLog struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"run_id"`
	LeadID     int64     `json:"lead_id"`
	RuleID     *int64    `json:"rule_id,omitempty"`
	CampaignID *int64    `json:"campaign_id,omitempty"`
	Channel    Channel   `json:"channel"`
	Message    string    `json:"message"`
	Success    bool      `json:"success"`
	ProviderID *string   `json:"provider_id,omitempty"`
	Error      *string   `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Chat instance status constants
const (
	InstanceStatusConnected    = "connected"
	InstanceStatusDisconnected = "disconnected"
)

// ChatInstance is an organization's connection to the chat gateway. Dispatch
// on the chat channel requires a connected instance.
type ChatInstance struct {
	ID         int64  `json:"id"`
	OrgID      int64  `json:"org_id"`
	InstanceID string `json:"instance_id"`
	Status     string `json:"status"`
}

// OrgSMTPSettings holds an organization's outbound email configuration
type OrgSMTPSettings struct {
	OrgID       int64  `json:"org_id"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	UseTLS      bool   `json:"use_tls"`
	Username    string `json:"username"`
	Password    string `json:"-"`
	FromAddress string `json:"from_address"`
}

// Complete reports whether the settings carry everything a send needs
func (s *OrgSMTPSettings) Complete() bool {
	return s != nil && s.Host != "" && s.Username != "" && s.Password != "" && s.FromAddress != ""
}
