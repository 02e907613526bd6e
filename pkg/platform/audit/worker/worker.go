// Package worker ships audit outbox rows to Kafka.
package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Topic is where audit events are published.
const Topic = "campuscard.audit"

const (
	pollInterval = 2 * time.Second
	batchSize    = 100
)

// Worker polls unpublished outbox rows and produces them to Kafka in order.
// Rows are marked published only after the produce is acknowledged, so a
// crash between produce and mark yields at-least-once delivery; consumers
// dedupe on the outbox row ID carried as the record key.
type Worker struct {
	db     *sql.DB
	client *kgo.Client
	logger *slog.Logger
}

func New(db *sql.DB, brokers []string, logger *slog.Logger) (*Worker, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(Topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Worker{db: db, client: client, logger: logger}, nil
}

// EnsureTopic creates the audit topic if the cluster does not have it yet.
func (w *Worker) EnsureTopic(ctx context.Context) error {
	adm := kadm.NewClient(w.client)
	resp, err := adm.CreateTopic(ctx, 3, 1, nil, Topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", Topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", Topic, resp.Err)
	}
	return nil
}

// Run polls until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.client.Close()
			return ctx.Err()
		case <-ticker.C:
			if err := w.drainOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.ErrorContext(ctx, "audit outbox drain failed", "error", err)
			}
		}
	}
}

func (w *Worker) drainOnce(ctx context.Context) error {
	rows, err := w.db.QueryContext(ctx, `
		SELECT id, payload FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, batchSize)
	if err != nil {
		return fmt.Errorf("select outbox: %w", err)
	}
	defer rows.Close()

	type entry struct {
		id      uuid.UUID
		payload []byte
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.id, &e.payload); err != nil {
			return fmt.Errorf("scan outbox row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate outbox: %w", err)
	}

	for _, e := range entries {
		record := &kgo.Record{Key: e.id[:], Value: e.payload}
		if err := w.client.ProduceSync(ctx, record).FirstErr(); err != nil {
			return fmt.Errorf("produce audit record: %w", err)
		}
		if _, err := w.db.ExecContext(ctx,
			`UPDATE outbox SET published_at = $1 WHERE id = $2`,
			time.Now(), e.id,
		); err != nil {
			return fmt.Errorf("mark outbox published: %w", err)
		}
	}
	return nil
}
