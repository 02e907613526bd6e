package school

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Postgres reads the single school_info row. A missing row is not an error;
// it reports as unconfigured metadata.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context) (*Info, error) {
	var info Info
	err := p.db.QueryRowContext(ctx, `
		SELECT name, COALESCE(logo, ''), COALESCE(address, ''), COALESCE(code, '')
		FROM school_info
		ORDER BY created_at
		LIMIT 1
	`).Scan(&info.Name, &info.Logo, &info.Address, &info.Code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query school info: %w", err)
	}
	return &info, nil
}
