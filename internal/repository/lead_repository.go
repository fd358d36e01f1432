package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/educonnect/reengage-engine/internal/models"
)

// LeadRepository defines the engine's access to lead data. The engine only
// reads candidate leads and advances contact state after successful sends;
// everything else belongs to the dashboard.
type LeadRepository interface {
	ListByStatuses(ctx context.Context, statuses []string) ([]*models.Lead, error)
	GetByID(ctx context.Context, id int64) (*models.Lead, error)
	UpdateContactState(ctx context.Context, id int64, status, stage string, updatedAt time.Time) error
}

// leadRepository implements LeadRepository using PostgreSQL
type leadRepository struct {
	db *sql.DB
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *sql.DB) LeadRepository {
	return &leadRepository{db: db}
}

// ListByStatuses retrieves leads whose status is in the given set, in
// creation order. This is the candidate pool for every sweep.
func (r *leadRepository) ListByStatuses(ctx context.Context, statuses []string) ([]*models.Lead, error) {
	query := `
		SELECT id, org_id, name, phone, email, course_interest, location, status, stage, created_at, updated_at
		FROM leads
		WHERE status = ANY($1)
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		lead := &models.Lead{}
		err := rows.Scan(
			&lead.ID,
			&lead.OrgID,
			&lead.Name,
			&lead.Phone,
			&lead.Email,
			&lead.CourseInterest,
			&lead.Location,
			&lead.Status,
			&lead.Stage,
			&lead.CreatedAt,
			&lead.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}

	return leads, nil
}

// GetByID retrieves a lead by ID
func (r *leadRepository) GetByID(ctx context.Context, id int64) (*models.Lead, error) {
	query := `
		SELECT id, org_id, name, phone, email, course_interest, location, status, stage, created_at, updated_at
		FROM leads
		WHERE id = $1`

	lead := &models.Lead{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lead.ID,
		&lead.OrgID,
		&lead.Name,
		&lead.Phone,
		&lead.Email,
		&lead.CourseInterest,
		&lead.Location,
		&lead.Status,
		&lead.Stage,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("lead with ID %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	return lead, nil
}

// UpdateContactState advances a lead's status/stage and refreshes updated_at.
// Called only after a successful rule-based send.
func (r *leadRepository) UpdateContactState(ctx context.Context, id int64, status, stage string, updatedAt time.Time) error {
	query := `
		UPDATE leads
		SET status = $2, stage = $3, updated_at = $4
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, stage, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update lead contact state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("lead with ID %d not found", id))
	}

	return nil
}
