//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a testcontainers Postgres instance with the service
// schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("campuscard"),
		tcpostgres.WithUsername("campuscard"),
		tcpostgres.WithPassword("campuscard"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	pc := &PostgresContainer{Container: container, DSN: dsn, DB: db}
	if err := pc.applySchema(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}
	return pc
}

// TruncateTables empties the named tables. Use between tests for isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))
	if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

func (p *PostgresContainer) applySchema(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, schema)
	return err
}

const schema = `
CREATE TABLE subjects (
	id            UUID PRIMARY KEY,
	first_name    TEXT NOT NULL,
	last_name     TEXT NOT NULL DEFAULT '',
	email         TEXT,
	phone         TEXT,
	address       TEXT,
	date_of_birth DATE,
	blood_group   TEXT,
	photo         TEXT,
	deleted_at    TIMESTAMPTZ
);

CREATE TABLE student_profiles (
	subject_id       UUID PRIMARY KEY REFERENCES subjects (id) ON DELETE CASCADE,
	student_id       TEXT,
	roll_number      TEXT,
	admission_number TEXT,
	class            TEXT,
	section          TEXT,
	father_name      TEXT,
	father_phone     TEXT,
	mother_name      TEXT,
	mother_phone     TEXT
);

CREATE TABLE teacher_profiles (
	subject_id       UUID PRIMARY KEY REFERENCES subjects (id) ON DELETE CASCADE,
	employee_id      TEXT,
	designation      TEXT,
	department       TEXT,
	subjects         TEXT[] NOT NULL DEFAULT '{}',
	qualification    TEXT,
	experience_years INTEGER,
	joining_date     DATE
);

CREATE TABLE staff_profiles (
	subject_id      UUID PRIMARY KEY REFERENCES subjects (id) ON DELETE CASCADE,
	employee_id     TEXT,
	designation     TEXT,
	department      TEXT,
	position        TEXT,
	shift           TEXT,
	working_hours   TEXT,
	employment_date DATE
);

CREATE TABLE templates (
	id           UUID PRIMARY KEY,
	name         TEXT NOT NULL,
	subject_type TEXT NOT NULL,
	status       TEXT NOT NULL,
	width_mm     DOUBLE PRECISION NOT NULL,
	height_mm    DOUBLE PRECISION NOT NULL,
	orientation  TEXT NOT NULL,
	usage_count  INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE template_fields (
	id               TEXT PRIMARY KEY,
	template_id      UUID NOT NULL REFERENCES templates (id) ON DELETE CASCADE,
	position         INTEGER NOT NULL,
	field_type       TEXT NOT NULL,
	data_source      TEXT NOT NULL,
	database_field   TEXT,
	static_text      TEXT,
	image_url        TEXT,
	placeholder      TEXT,
	label            TEXT NOT NULL,
	x                DOUBLE PRECISION NOT NULL DEFAULT 0,
	y                DOUBLE PRECISION NOT NULL DEFAULT 0,
	width            DOUBLE PRECISION NOT NULL DEFAULT 0,
	height           DOUBLE PRECISION NOT NULL DEFAULT 0,
	font_size        INTEGER,
	font_family      TEXT,
	font_weight      TEXT,
	text_align       TEXT,
	color            TEXT,
	background_color TEXT
);

CREATE TABLE issued_credentials (
	id            UUID PRIMARY KEY,
	subject_id    UUID NOT NULL REFERENCES subjects (id),
	subject_type  TEXT NOT NULL,
	template_id   UUID NOT NULL REFERENCES templates (id),
	expiry_date   TIMESTAMPTZ,
	batch_name    TEXT,
	issued_at     TIMESTAMPTZ NOT NULL,
	superseded_at TIMESTAMPTZ
);

CREATE INDEX idx_issued_credentials_subject
	ON issued_credentials (subject_id, subject_type, issued_at DESC);

CREATE TABLE school_info (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	logo       TEXT,
	address    TEXT,
	code       TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE outbox (
	id             UUID PRIMARY KEY,
	aggregate_type TEXT NOT NULL,
	aggregate_id   TEXT NOT NULL,
	event_type     TEXT NOT NULL,
	payload        JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL,
	published_at   TIMESTAMPTZ
);
`
