package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"campuscard/internal/card/models"
	id "campuscard/pkg/domain"
	"campuscard/pkg/platform/sentinel"
	txcontext "campuscard/pkg/platform/tx"
)

// Postgres persists issued credentials. Writes join a caller transaction
// when one is carried in context so issuance stays atomic.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, c *models.IssuedCredential) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO issued_credentials
			(id, subject_id, subject_type, template_id, expiry_date, batch_name, issued_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
	`,
		uuid.UUID(c.ID), uuid.UUID(c.SubjectID), string(c.SubjectType),
		uuid.UUID(c.TemplateID), c.ExpiryDate, c.BatchName, c.IssuedAt,
	)
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (s *Postgres) Touch(ctx context.Context, credentialID id.CredentialID, now time.Time) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE issued_credentials SET superseded_at = $1 WHERE id = $2
	`, now, uuid.UUID(credentialID))
	if err != nil {
		return fmt.Errorf("touch credential: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindLatestBySubject(ctx context.Context, subjectID id.SubjectID, types ...id.SubjectType) (*models.IssuedCredential, error) {
	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = string(t)
	}

	var (
		c            models.IssuedCredential
		rowID        uuid.UUID
		subID        uuid.UUID
		tmplID       uuid.UUID
		expiry       sql.NullTime
		batch        sql.NullString
		supersededAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, subject_id, subject_type, template_id, expiry_date,
		       batch_name, issued_at, superseded_at
		FROM issued_credentials
		WHERE subject_id = $1 AND subject_type = ANY($2)
		ORDER BY issued_at DESC
		LIMIT 1
	`, uuid.UUID(subjectID), pq.Array(typeNames)).Scan(
		&rowID, &subID, &c.SubjectType, &tmplID, &expiry,
		&batch, &c.IssuedAt, &supersededAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query latest credential: %w", err)
	}
	c.ID = id.CredentialID(rowID)
	c.SubjectID = id.SubjectID(subID)
	c.TemplateID = id.TemplateID(tmplID)
	c.BatchName = batch.String
	if expiry.Valid {
		t := expiry.Time
		c.ExpiryDate = &t
	}
	if supersededAt.Valid {
		t := supersededAt.Time
		c.SupersededAt = &t
	}
	return &c, nil
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
