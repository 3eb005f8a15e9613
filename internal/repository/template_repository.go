package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nemocrk/my-wedding-app/internal/domain"
)

// TemplateRepository reads message templates. Template CRUD lives in
// the admin backend; this service only consumes them.
type TemplateRepository struct {
	db *sqlx.DB
}

func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

const templateColumns = `id, name, content, send_condition, trigger_status, is_active, created_at, updated_at`

// FetchAll returns every template in stable id order. Eligibility
// filtering is done in the service layer so it stays testable.
func (r *TemplateRepository) FetchAll(ctx context.Context) ([]domain.MessageTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM message_templates ORDER BY id ASC`

	var templates []domain.MessageTemplate
	if err := r.db.SelectContext(ctx, &templates, query); err != nil {
		return nil, fmt.Errorf("failed to fetch templates: %w", err)
	}

	return templates, nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id int64) (*domain.MessageTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM message_templates WHERE id = ?`

	var tmpl domain.MessageTemplate
	if err := r.db.GetContext(ctx, &tmpl, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return &tmpl, nil
}
