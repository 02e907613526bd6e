package template

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"campuscard/internal/card/models"
	id "campuscard/pkg/domain"
	"campuscard/pkg/platform/sentinel"
	txcontext "campuscard/pkg/platform/tx"
)

// Postgres reads templates with their fields and maintains the usage
// counter. IncrementUsage joins a caller transaction when one is in context.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) FindByID(ctx context.Context, templateID id.TemplateID) (*models.Template, error) {
	var t models.Template
	var rowID uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, subject_type, status, width_mm, height_mm,
		       orientation, usage_count, created_at, updated_at
		FROM templates
		WHERE id = $1
	`, uuid.UUID(templateID)).Scan(
		&rowID, &t.Name, &t.SubjectType, &t.Status, &t.WidthMM, &t.HeightMM,
		&t.Orientation, &t.UsageCount, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query template: %w", err)
	}
	t.ID = id.TemplateID(rowID)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, field_type, data_source,
		       COALESCE(database_field, ''), COALESCE(static_text, ''),
		       COALESCE(image_url, ''), COALESCE(placeholder, ''), label,
		       x, y, width, height,
		       COALESCE(font_size, 0), COALESCE(font_family, ''),
		       COALESCE(font_weight, ''), COALESCE(text_align, ''),
		       COALESCE(color, ''), COALESCE(background_color, '')
		FROM template_fields
		WHERE template_id = $1
		ORDER BY position
	`, uuid.UUID(templateID))
	if err != nil {
		return nil, fmt.Errorf("query template fields: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f models.TemplateField
		if err := rows.Scan(
			&f.ID, &f.FieldType, &f.Source,
			&f.DatabaseField, &f.StaticText,
			&f.ImageURL, &f.Placeholder, &f.Label,
			&f.Geometry.X, &f.Geometry.Y, &f.Geometry.Width, &f.Geometry.Height,
			&f.Style.FontSize, &f.Style.FontFamily,
			&f.Style.FontWeight, &f.Style.TextAlign,
			&f.Style.Color, &f.Style.BackgroundColor,
		); err != nil {
			return nil, fmt.Errorf("scan template field: %w", err)
		}
		t.Fields = append(t.Fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate template fields: %w", err)
	}
	return &t, nil
}

func (s *Postgres) IncrementUsage(ctx context.Context, templateID id.TemplateID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE templates
		SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE id = $1
	`, uuid.UUID(templateID))
	if err != nil {
		return fmt.Errorf("increment template usage: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}
