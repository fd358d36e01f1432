package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/educonnect/reengage-engine/internal/models"
	"github.com/educonnect/reengage-engine/internal/repository"
)

// ErrRunInProgress is returned when a run is requested while another run
// holds the guard. It is informational: the caller is told, nothing is queued.
var ErrRunInProgress = errors.New("a run is already in progress")

// Dispatcher delivers a rendered message on a channel and always returns a
// structured outcome, never an error
type Dispatcher interface {
	Send(ctx context.Context, ch models.Channel, lead *models.Lead, message string) models.DispatchOutcome
}

// reengageableStatuses is the candidate pool for every sweep: leads that are
// still in play and may be contacted again
var reengageableStatuses = []string{models.LeadStatusNew, models.LeadStatusInProgress}

// scheduledTolerance is how far from start_date a scheduled campaign may
// still be picked up by a sweep
const scheduledTolerance = 5 * time.Minute

// RunSummary aggregates one run's attempts
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Processed  int       `json:"processed"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func (s *RunSummary) count(outcome models.DispatchOutcome) {
	s.Processed++
	if outcome.Success {
		s.Succeeded++
	} else {
		s.Failed++
	}
}

// Orchestrator is the engine's run loop. A single boolean guard serializes
// runs: manual triggers and the scheduler share it, and a run requested
// while one is active is rejected, not queued. All dispatching is
// sequential, with a fixed anti-flood delay after every attempt.
type Orchestrator struct {
	mu      sync.Mutex
	running bool

	leadRepo     repository.LeadRepository
	ruleRepo     repository.RuleRepository
	campaignRepo repository.CampaignRepository
	dispatcher   Dispatcher
	ledger       *Ledger
	updater      *StateUpdater
	logger       *slog.Logger

	orgName    string
	sendDelay  time.Duration
	phasePause time.Duration
	clock      func() time.Time
}

// OrchestratorConfig holds orchestrator construction parameters
type OrchestratorConfig struct {
	LeadRepo         repository.LeadRepository
	RuleRepo         repository.RuleRepository
	CampaignRepo     repository.CampaignRepository
	Dispatcher       Dispatcher
	Ledger           *Ledger
	Updater          *StateUpdater
	Logger           *slog.Logger
	OrganizationName string
	SendDelay        time.Duration
	PhasePause       time.Duration
	Clock            func() time.Time
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Orchestrator{
		leadRepo:     cfg.LeadRepo,
		ruleRepo:     cfg.RuleRepo,
		campaignRepo: cfg.CampaignRepo,
		dispatcher:   cfg.Dispatcher,
		ledger:       cfg.Ledger,
		updater:      cfg.Updater,
		logger:       cfg.Logger,
		orgName:      cfg.OrganizationName,
		sendDelay:    cfg.SendDelay,
		phasePause:   cfg.PhasePause,
		clock:        clock,
	}
}

// Running reports whether a run currently holds the guard
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

func (o *Orchestrator) tryAcquire() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return false
	}
	o.running = true
	return true
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.running = false
	o.mu.Unlock()
}

// RunRules sweeps all active rules against all candidate leads
func (o *Orchestrator) RunRules(ctx context.Context) (*RunSummary, error) {
	if !o.tryAcquire() {
		o.logger.Info("rule run rejected: already running")
		return nil, ErrRunInProgress
	}
	defer o.release()

	summary := o.newSummary()
	o.runRules(ctx, summary)
	o.finish(summary, "rule sweep finished")
	return summary, nil
}

// RunCampaigns sweeps all active and scheduled campaigns
func (o *Orchestrator) RunCampaigns(ctx context.Context) (*RunSummary, error) {
	if !o.tryAcquire() {
		o.logger.Info("campaign run rejected: already running")
		return nil, ErrRunInProgress
	}
	defer o.release()

	summary := o.newSummary()
	o.runCampaigns(ctx, summary)
	o.finish(summary, "campaign sweep finished")
	return summary, nil
}

// RunCampaign dispatches a single campaign by ID, bypassing the time-window
// predicate. Manual-trigger path; completed campaigns are refused.
func (o *Orchestrator) RunCampaign(ctx context.Context, id int64) (*RunSummary, error) {
	if !o.tryAcquire() {
		o.logger.Info("campaign run rejected: already running", slog.Int64("campaign_id", id))
		return nil, ErrRunInProgress
	}
	defer o.release()

	campaign, err := o.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status == models.CampaignStatusCompleted {
		return nil, models.ErrConflictWithMsg("campaign is already completed")
	}

	summary := o.newSummary()
	o.runCampaign(ctx, summary, campaign)
	o.finish(summary, "single campaign run finished")
	return summary, nil
}

// RunAll performs a unified run: the rule sweep, a fixed inter-phase pause,
// then the campaign sweep, all under one guard acquisition.
func (o *Orchestrator) RunAll(ctx context.Context) (*RunSummary, error) {
	if !o.tryAcquire() {
		o.logger.Info("unified run rejected: already running")
		return nil, ErrRunInProgress
	}
	defer o.release()

	summary := o.newSummary()
	o.runRules(ctx, summary)
	o.sleep(ctx, o.phasePause)
	o.runCampaigns(ctx, summary)
	o.finish(summary, "unified run finished")
	return summary, nil
}

func (o *Orchestrator) runRules(ctx context.Context, summary *RunSummary) {
	rules, err := o.ruleRepo.ListActive(ctx)
	if err != nil {
		o.logger.Error("failed to load active rules", slog.String("error", err.Error()))
		return
	}
	if len(rules) == 0 {
		return
	}

	leads, err := o.leadRepo.ListByStatuses(ctx, reengageableStatuses)
	if err != nil {
		o.logger.Error("failed to load candidate leads", slog.String("error", err.Error()))
		return
	}

	o.logger.Info("starting rule sweep",
		slog.String("run_id", summary.RunID),
		slog.Int("rules", len(rules)),
		slog.Int("leads", len(leads)),
	)

	for _, lead := range leads {
		for _, rule := range rules {
			if ctx.Err() != nil {
				return
			}
			if !Eligible(lead, rule, o.clock()) {
				continue
			}

			message := Render(rule.Template, Vars{
				Name:         lead.Name,
				Course:       lead.CourseInterest,
				Organization: o.orgName,
			})

			outcome := o.dispatcher.Send(ctx, rule.Channel, lead, message)
			o.updater.AfterRuleDispatch(ctx, summary.RunID, lead, rule, outcome)
			summary.count(outcome)

			o.logOutcome("rule dispatch", lead.ID, outcome,
				slog.Int64("rule_id", rule.ID))

			o.sleep(ctx, o.sendDelay)
		}
	}
}

func (o *Orchestrator) runCampaigns(ctx context.Context, summary *RunSummary) {
	campaigns, err := o.campaignRepo.ListByStatuses(ctx, []string{
		models.CampaignStatusActive,
		models.CampaignStatusScheduled,
	})
	if err != nil {
		o.logger.Error("failed to load campaigns", slog.String("error", err.Error()))
		return
	}

	now := o.clock()
	for _, campaign := range campaigns {
		if ctx.Err() != nil {
			return
		}
		if !o.shouldExecuteNow(campaign, now) {
			continue
		}
		o.runCampaign(ctx, summary, campaign)
	}
}

func (o *Orchestrator) runCampaign(ctx context.Context, summary *RunSummary, campaign *models.Campaign) {
	statuses := campaign.Filter.Statuses
	if len(statuses) == 0 {
		statuses = reengageableStatuses
	}

	leads, err := o.leadRepo.ListByStatuses(ctx, statuses)
	if err != nil {
		o.logger.Error("failed to load leads for campaign",
			slog.Int64("campaign_id", campaign.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	o.logger.Info("starting campaign dispatch",
		slog.String("run_id", summary.RunID),
		slog.Int64("campaign_id", campaign.ID),
		slog.String("name", campaign.Name),
		slog.Int("candidates", len(leads)),
	)

	succeeded := 0
	for _, lead := range leads {
		if ctx.Err() != nil {
			break
		}
		if !campaign.Filter.Matches(lead) {
			continue
		}
		if o.ledger.Processed(ctx, lead.ID, campaign.ID) {
			summary.Skipped++
			continue
		}

		message := Render(campaign.Template, Vars{
			Name:         lead.Name,
			Course:       lead.CourseInterest,
			Organization: o.orgName,
			CampaignName: campaign.Name,
		})

		outcome := o.dispatcher.Send(ctx, campaign.Channel, lead, message)
		o.updater.AfterCampaignDispatch(ctx, summary.RunID, lead, campaign, outcome)
		summary.count(outcome)
		if outcome.Success {
			succeeded++
		}

		o.logOutcome("campaign dispatch", lead.ID, outcome,
			slog.Int64("campaign_id", campaign.ID))

		o.sleep(ctx, o.sendDelay)
	}

	// A campaign with no successful send stays as-is and is reconsidered on
	// the next sweep while its window holds
	if succeeded > 0 {
		o.updater.CompleteCampaign(ctx, campaign)
	}
}

// shouldExecuteNow applies the campaign time/status predicate: active
// campaigns run whenever their end date has not passed; scheduled campaigns
// run only within a tolerance around their start date.
func (o *Orchestrator) shouldExecuteNow(campaign *models.Campaign, now time.Time) bool {
	if campaign.EndDate != nil && now.After(*campaign.EndDate) {
		return false
	}

	switch campaign.Status {
	case models.CampaignStatusActive:
		return true
	case models.CampaignStatusScheduled:
		if campaign.StartDate == nil {
			return false
		}
		diff := now.Sub(*campaign.StartDate)
		if diff < 0 {
			diff = -diff
		}
		return diff <= scheduledTolerance
	default:
		return false
	}
}

func (o *Orchestrator) newSummary() *RunSummary {
	return &RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: o.clock(),
	}
}

func (o *Orchestrator) finish(summary *RunSummary, msg string) {
	summary.FinishedAt = o.clock()
	o.logger.Info(msg,
		slog.String("run_id", summary.RunID),
		slog.Int("processed", summary.Processed),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed),
		slog.Int("skipped", summary.Skipped),
	)
}

func (o *Orchestrator) logOutcome(msg string, leadID int64, outcome models.DispatchOutcome, attrs ...any) {
	args := append([]any{
		slog.Int64("lead_id", leadID),
		slog.String("channel", string(outcome.Channel)),
		slog.Bool("success", outcome.Success),
	}, attrs...)
	if outcome.Success {
		o.logger.Info(msg, args...)
	} else {
		args = append(args, slog.String("error", outcome.Error))
		o.logger.Warn(msg, args...)
	}
}

// sleep waits for d or until the context is cancelled
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
