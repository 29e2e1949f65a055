package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/community-roster/internal/persistence"
)

// TemplateRepository implements persistence.TemplateRepository using SQLite.
type TemplateRepository struct {
	store *Store
}

// NewTemplateRepository creates a SQLite-backed message template repository.
func NewTemplateRepository(store *Store) *TemplateRepository {
	return &TemplateRepository{store: store}
}

// UpsertTemplate inserts or replaces a template keyed by name. CreatedAt is
// preserved across replacements.
func (r *TemplateRepository) UpsertTemplate(ctx context.Context, template persistence.MessageTemplate) error {
	if strings.TrimSpace(template.Name) == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO message_templates (name, subject, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET subject = excluded.subject, body = excluded.body, updated_at = excluded.updated_at`,
		template.Name,
		template.Subject,
		template.Body,
		formatTime(template.CreatedAt),
		formatTime(template.UpdatedAt),
	)
	return mapError(err)
}

// GetTemplate retrieves a template by name.
func (r *TemplateRepository) GetTemplate(ctx context.Context, name string) (persistence.MessageTemplate, error) {
	if strings.TrimSpace(name) == "" {
		return persistence.MessageTemplate{}, persistence.ErrNotFound
	}

	var template persistence.MessageTemplate
	var createdAt, updatedAt string

	err := r.store.db.QueryRowContext(ctx, `
		SELECT name, subject, body, created_at, updated_at
		FROM message_templates WHERE name = ?`, name).Scan(
		&template.Name,
		&template.Subject,
		&template.Body,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.MessageTemplate{}, mapError(err)
	}

	if template.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.MessageTemplate{}, err
	}
	if template.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.MessageTemplate{}, err
	}
	return template, nil
}

// ListTemplates returns all templates ordered by name.
func (r *TemplateRepository) ListTemplates(ctx context.Context) ([]persistence.MessageTemplate, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT name, subject, body, created_at, updated_at
		FROM message_templates ORDER BY name`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var templates []persistence.MessageTemplate
	for rows.Next() {
		var template persistence.MessageTemplate
		var createdAt, updatedAt string
		if err := rows.Scan(&template.Name, &template.Subject, &template.Body, &createdAt, &updatedAt); err != nil {
			return nil, mapError(err)
		}
		if template.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if template.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return templates, nil
}

// DeleteTemplate removes a template by name.
func (r *TemplateRepository) DeleteTemplate(ctx context.Context, name string) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM message_templates WHERE name = ?`, name)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
