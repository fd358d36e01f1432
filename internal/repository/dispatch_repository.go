package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/educonnect/reengage-engine/internal/models"
)

// DispatchRepository persists dispatch bookkeeping: the dedup ledger entries
// that suppress campaign re-sends, and the per-attempt delivery log.
type DispatchRepository interface {
	// GetDedupRecord returns the record for a (lead, campaign) pair, or
	// (nil, nil) when the pair has never been processed.
	GetDedupRecord(ctx context.Context, leadID, campaignID int64) (*models.DedupRecord, error)
	InsertDedupRecord(ctx context.Context, rec *models.DedupRecord) error
	InsertDeliveryLog(ctx context.Context, entry *models.DeliveryLog) error
}

// dispatchRepository implements DispatchRepository using PostgreSQL
type dispatchRepository struct {
	db *sql.DB
}

// NewDispatchRepository creates a new dispatch repository
func NewDispatchRepository(db *sql.DB) DispatchRepository {
	return &dispatchRepository{db: db}
}

// GetDedupRecord retrieves the dedup record for a (lead, campaign) pair
func (r *dispatchRepository) GetDedupRecord(ctx context.Context, leadID, campaignID int64) (*models.DedupRecord, error) {
	query := `
		SELECT id, lead_id, campaign_id, org_id, status, created_at
		FROM campaign_dedup_records
		WHERE lead_id = $1 AND campaign_id = $2`

	rec := &models.DedupRecord{}
	err := r.db.QueryRowContext(ctx, query, leadID, campaignID).Scan(
		&rec.ID,
		&rec.LeadID,
		&rec.CampaignID,
		&rec.OrgID,
		&rec.Status,
		&rec.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dedup record: %w", err)
	}

	return rec, nil
}

// InsertDedupRecord records that a (lead, campaign) pair has been processed.
// The unique index on (lead_id, campaign_id) makes double inserts a conflict,
// which callers treat as already-recorded.
func (r *dispatchRepository) InsertDedupRecord(ctx context.Context, rec *models.DedupRecord) error {
	query := `
		INSERT INTO campaign_dedup_records (lead_id, campaign_id, org_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (lead_id, campaign_id) DO NOTHING
		RETURNING id`

	err := r.db.QueryRowContext(
		ctx,
		query,
		rec.LeadID,
		rec.CampaignID,
		rec.OrgID,
		rec.Status,
		rec.CreatedAt,
	).Scan(&rec.ID)

	if err == sql.ErrNoRows {
		// Conflict path: a record already exists, which is what we want
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to insert dedup record: %w", err)
	}

	return nil
}

// InsertDeliveryLog appends one delivery-attempt entry
func (r *dispatchRepository) InsertDeliveryLog(ctx context.Context, entry *models.DeliveryLog) error {
	query := `
		INSERT INTO delivery_logs (run_id, lead_id, rule_id, campaign_id, channel, message, success, provider_id, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := r.db.QueryRowContext(
		ctx,
		query,
		entry.RunID,
		entry.LeadID,
		entry.RuleID,
		entry.CampaignID,
		entry.Channel,
		entry.Message,
		entry.Success,
		entry.ProviderID,
		entry.Error,
		entry.CreatedAt,
	).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("failed to insert delivery log: %w", err)
	}

	return nil
}
