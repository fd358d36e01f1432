package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/educonnect/reengage-engine/internal/models"
	"github.com/educonnect/reengage-engine/internal/repository"
)

// DedupPolicy controls what a dedup lookup failure means
type DedupPolicy string

// Dedup policies. FailOpen prefers a possible duplicate over a possibly
// lost send when the ledger store cannot be read; FailClosed the opposite.
const (
	DedupFailOpen   DedupPolicy = "fail_open"
	DedupFailClosed DedupPolicy = "fail_closed"
)

// Ledger is the campaign dedup ledger: it answers whether a (lead, campaign)
// pair was already processed and records new attempts. Postgres is the source
// of truth; an optional Redis client serves as a positive-hit fast path.
// Rule-based re-engagement does not consult the ledger at all.
type Ledger struct {
	repo   repository.DispatchRepository
	cache  *redis.Client
	policy DedupPolicy
	logger *slog.Logger
}

// NewLedger creates a dedup ledger. cache may be nil.
func NewLedger(repo repository.DispatchRepository, cache *redis.Client, policy DedupPolicy, logger *slog.Logger) *Ledger {
	if policy != DedupFailClosed {
		policy = DedupFailOpen
	}
	return &Ledger{
		repo:   repo,
		cache:  cache,
		policy: policy,
		logger: logger,
	}
}

// Processed reports whether the (lead, campaign) pair has already been
// handled in any prior run, on either a sent or a failed attempt.
func (l *Ledger) Processed(ctx context.Context, leadID, campaignID int64) bool {
	if l.cache != nil {
		hit, err := l.cache.Exists(ctx, dedupKey(leadID, campaignID)).Result()
		if err == nil && hit > 0 {
			return true
		}
		// Cache miss or cache error: the database decides
	}

	rec, err := l.repo.GetDedupRecord(ctx, leadID, campaignID)
	if err != nil {
		l.logger.Warn("dedup lookup failed",
			slog.Int64("lead_id", leadID),
			slog.Int64("campaign_id", campaignID),
			slog.String("policy", string(l.policy)),
			slog.String("error", err.Error()),
		)
		return l.policy == DedupFailClosed
	}

	return rec != nil
}

// Record marks a (lead, campaign) pair as processed with the given status.
// Persistence errors are logged and swallowed: the attempt itself already
// happened and the run must continue.
func (l *Ledger) Record(ctx context.Context, leadID, campaignID, orgID int64, status string) {
	rec := &models.DedupRecord{
		LeadID:     leadID,
		CampaignID: campaignID,
		OrgID:      orgID,
		Status:     status,
		CreatedAt:  time.Now(),
	}

	if err := l.repo.InsertDedupRecord(ctx, rec); err != nil {
		l.logger.Error("failed to record dedup entry",
			slog.Int64("lead_id", leadID),
			slog.Int64("campaign_id", campaignID),
			slog.String("error", err.Error()),
		)
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, dedupKey(leadID, campaignID), status, 0).Err(); err != nil {
			l.logger.Warn("failed to cache dedup entry",
				slog.Int64("lead_id", leadID),
				slog.Int64("campaign_id", campaignID),
				slog.String("error", err.Error()),
			)
		}
	}
}

func dedupKey(leadID, campaignID int64) string {
	return fmt.Sprintf("reengage:dedup:%d:%d", campaignID, leadID)
}
