package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/educonnect/reengage-engine/internal/models"
)

// CampaignRepository defines the engine's access to campaigns
type CampaignRepository interface {
	ListByStatuses(ctx context.Context, statuses []string) ([]*models.Campaign, error)
	GetByID(ctx context.Context, id int64) (*models.Campaign, error)
	MarkCompleted(ctx context.Context, id int64) error
}

// campaignRepository implements CampaignRepository using PostgreSQL
type campaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *sql.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

const campaignColumns = `
	id, org_id, name, status, channel, template, start_date, end_date,
	filter_audience, filter_course, filter_location, filter_statuses,
	filter_created_from, filter_created_to, created_at, updated_at`

func scanCampaign(scan func(dest ...any) error) (*models.Campaign, error) {
	c := &models.Campaign{}
	var statuses pq.StringArray
	err := scan(
		&c.ID,
		&c.OrgID,
		&c.Name,
		&c.Status,
		&c.Channel,
		&c.Template,
		&c.StartDate,
		&c.EndDate,
		&c.Filter.Audience,
		&c.Filter.Course,
		&c.Filter.Location,
		&statuses,
		&c.Filter.CreatedFrom,
		&c.Filter.CreatedTo,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Filter.Statuses = []string(statuses)
	return c, nil
}

// ListByStatuses retrieves campaigns whose status is in the given set
func (r *campaignRepository) ListByStatuses(ctx context.Context, statuses []string) ([]*models.Campaign, error) {
	query := `
		SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE status = ANY($1)
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate campaigns: %w", err)
	}

	return campaigns, nil
}

// GetByID retrieves a campaign by ID
func (r *campaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	query := `
		SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE id = $1`

	c, err := scanCampaign(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("campaign with ID %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	return c, nil
}

// MarkCompleted transitions a campaign to completed
func (r *campaignRepository) MarkCompleted(ctx context.Context, id int64) error {
	query := `
		UPDATE campaigns
		SET status = $2, updated_at = $3
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, models.CampaignStatusCompleted, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark campaign completed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("campaign with ID %d not found", id))
	}

	return nil
}
