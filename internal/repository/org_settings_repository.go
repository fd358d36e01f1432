package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/educonnect/reengage-engine/internal/models"
)

// OrgSettingsRepository resolves per-organization channel configuration:
// the connected chat-gateway instance and the SMTP credentials.
type OrgSettingsRepository interface {
	// GetConnectedInstance returns the organization's connected chat instance,
	// or (nil, nil) when none is connected.
	GetConnectedInstance(ctx context.Context, orgID int64) (*models.ChatInstance, error)
	// GetSMTPSettings returns the organization's SMTP settings, or (nil, nil)
	// when none are configured.
	GetSMTPSettings(ctx context.Context, orgID int64) (*models.OrgSMTPSettings, error)
}

// orgSettingsRepository implements OrgSettingsRepository using PostgreSQL
type orgSettingsRepository struct {
	db *sql.DB
}

// NewOrgSettingsRepository creates a new org settings repository
func NewOrgSettingsRepository(db *sql.DB) OrgSettingsRepository {
	return &orgSettingsRepository{db: db}
}

// GetConnectedInstance retrieves the connected chat instance for an org
func (r *orgSettingsRepository) GetConnectedInstance(ctx context.Context, orgID int64) (*models.ChatInstance, error) {
	query := `
		SELECT id, org_id, instance_id, status
		FROM chat_instances
		WHERE org_id = $1 AND status = $2
		LIMIT 1`

	inst := &models.ChatInstance{}
	err := r.db.QueryRowContext(ctx, query, orgID, models.InstanceStatusConnected).Scan(
		&inst.ID,
		&inst.OrgID,
		&inst.InstanceID,
		&inst.Status,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat instance: %w", err)
	}

	return inst, nil
}

// GetSMTPSettings retrieves the SMTP settings for an org
func (r *orgSettingsRepository) GetSMTPSettings(ctx context.Context, orgID int64) (*models.OrgSMTPSettings, error) {
	query := `
		SELECT org_id, host, port, use_tls, username, password, from_address
		FROM org_smtp_settings
		WHERE org_id = $1`

	s := &models.OrgSMTPSettings{}
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(
		&s.OrgID,
		&s.Host,
		&s.Port,
		&s.UseTLS,
		&s.Username,
		&s.Password,
		&s.FromAddress,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get smtp settings: %w", err)
	}

	return s, nil
}
