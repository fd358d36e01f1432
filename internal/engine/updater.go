package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/educonnect/reengage-engine/internal/models"
	"github.com/educonnect/reengage-engine/internal/repository"
)

// StateUpdater persists the consequences of a dispatch attempt: delivery
// logs for every outcome, lead advancement after successful rule sends,
// dedup entries for campaign attempts, and campaign completion.
type StateUpdater struct {
	leadRepo     repository.LeadRepository
	campaignRepo repository.CampaignRepository
	dispatchRepo repository.DispatchRepository
	ledger       *Ledger
	logger       *slog.Logger
	clock        func() time.Time
}

// NewStateUpdater creates a new state updater. A nil clock defaults to
// time.Now.
func NewStateUpdater(
	leadRepo repository.LeadRepository,
	campaignRepo repository.CampaignRepository,
	dispatchRepo repository.DispatchRepository,
	ledger *Ledger,
	logger *slog.Logger,
	clock func() time.Time,
) *StateUpdater {
	if clock == nil {
		clock = time.Now
	}
	return &StateUpdater{
		leadRepo:     leadRepo,
		campaignRepo: campaignRepo,
		dispatchRepo: dispatchRepo,
		ledger:       ledger,
		logger:       logger,
		clock:        clock,
	}
}

// AfterRuleDispatch logs the attempt and, on success, advances the lead to
// the contacted status/stage and refreshes updated_at. Refreshing updated_at
// is what re-closes the eligibility window for no_response rules; the lead
// is also updated in memory so later rules in the same run see the new time.
func (u *StateUpdater) AfterRuleDispatch(ctx context.Context, runID string, lead *models.Lead, rule *models.ReengagementRule, outcome models.DispatchOutcome) {
	u.logDelivery(ctx, runID, lead.ID, &rule.ID, nil, outcome)

	if !outcome.Success {
		return
	}

	now := u.clock()
	if err := u.leadRepo.UpdateContactState(ctx, lead.ID, models.LeadStatusContacted, models.LeadStageFollowUp, now); err != nil {
		u.logger.Error("failed to advance lead after rule dispatch",
			slog.Int64("lead_id", lead.ID),
			slog.Int64("rule_id", rule.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	lead.Status = models.LeadStatusContacted
	lead.Stage = models.LeadStageFollowUp
	lead.UpdatedAt = now
}

// AfterCampaignDispatch logs the attempt and records the dedup entry. Both
// sent and failed attempts enter the ledger: a failed campaign send is not
// retried for that lead.
func (u *StateUpdater) AfterCampaignDispatch(ctx context.Context, runID string, lead *models.Lead, campaign *models.Campaign, outcome models.DispatchOutcome) {
	u.logDelivery(ctx, runID, lead.ID, nil, &campaign.ID, outcome)

	status := models.DedupStatusFailed
	if outcome.Success {
		status = models.DedupStatusSent
	}
	u.ledger.Record(ctx, lead.ID, campaign.ID, lead.OrgID, status)
}

// CompleteCampaign transitions a campaign to completed after a run in which
// at least one send succeeded
func (u *StateUpdater) CompleteCampaign(ctx context.Context, campaign *models.Campaign) {
	if err := u.campaignRepo.MarkCompleted(ctx, campaign.ID); err != nil {
		u.logger.Error("failed to mark campaign completed",
			slog.Int64("campaign_id", campaign.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	campaign.Status = models.CampaignStatusCompleted

	u.logger.Info("campaign completed",
		slog.Int64("campaign_id", campaign.ID),
		slog.String("name", campaign.Name),
	)
}

// logDelivery writes one delivery-log entry; failures are logged and ignored
func (u *StateUpdater) logDelivery(ctx context.Context, runID string, leadID int64, ruleID, campaignID *int64, outcome models.DispatchOutcome) {
	entry := &models.DeliveryLog{
		RunID:      runID,
		LeadID:     leadID,
		RuleID:     ruleID,
		CampaignID: campaignID,
		Channel:    outcome.Channel,
		Message:    outcome.Message,
		Success:    outcome.Success,
		CreatedAt:  outcome.Timestamp,
	}
	if outcome.ProviderID != "" {
		entry.ProviderID = &outcome.ProviderID
	}
	if outcome.Error != "" {
		entry.Error = &outcome.Error
	}

	if err := u.dispatchRepo.InsertDeliveryLog(ctx, entry); err != nil {
		u.logger.Error("failed to write delivery log",
			slog.Int64("lead_id", leadID),
			slog.String("channel", string(outcome.Channel)),
			slog.String("error", err.Error()),
		)
	}
}
