package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/educonnect/reengage-engine/internal/models"
)

// RuleRepository defines read access to re-engagement rules. Rules are
// authored in the dashboard and are immutable from the engine's side.
type RuleRepository interface {
	ListActive(ctx context.Context) ([]*models.ReengagementRule, error)
}

// ruleRepository implements RuleRepository using PostgreSQL
type ruleRepository struct {
	db *sql.DB
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(db *sql.DB) RuleRepository {
	return &ruleRepository{db: db}
}

// ListActive retrieves all active rules, highest priority first
func (r *ruleRepository) ListActive(ctx context.Context) ([]*models.ReengagementRule, error) {
	query := `
		SELECT id, name, trigger_type, window_value, window_unit, channel, template, active, priority, created_at
		FROM reengagement_rules
		WHERE active = true
		ORDER BY priority DESC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rules: %w", err)
	}
	defer rows.Close()

	var rules []*models.ReengagementRule
	for rows.Next() {
		rule := &models.ReengagementRule{}
		err := rows.Scan(
			&rule.ID,
			&rule.Name,
			&rule.Trigger,
			&rule.Value,
			&rule.Unit,
			&rule.Channel,
			&rule.Template,
			&rule.Active,
			&rule.Priority,
			&rule.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}

	return rules, nil
}
