package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/resilience"
)

// Sink archives a labelled set of result lines and returns its id.
type Sink interface {
	Save(ctx context.Context, label string, lines []string) (int64, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS search_exports (
	id          BIGSERIAL PRIMARY KEY,
	label       TEXT        NOT NULL,
	line_count  INTEGER     NOT NULL,
	exported_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS search_export_lines (
	export_id BIGINT  NOT NULL REFERENCES search_exports(id) ON DELETE CASCADE,
	line_no   INTEGER NOT NULL,
	line      TEXT    NOT NULL,
	PRIMARY KEY (export_id, line_no)
);`

// PostgresSink stores exports in search_exports and search_export_lines.
type PostgresSink struct {
	client  *postgres.Client
	retry   resilience.RetryConfig
	timeout time.Duration
	logger  *slog.Logger
}

func NewPostgresSink(client *postgres.Client) *PostgresSink {
	return &PostgresSink{
		client: client,
		retry: resilience.RetryConfig{
			MaxAttempts: 3,
			Retryable:   retryable,
		},
		timeout: 10 * time.Second,
		logger:  slog.Default().With("component", "export-sink"),
	}
}

// EnsureSchema creates the export tables if they do not exist.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.client.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating export schema: %w", err)
	}
	return nil
}

// Save writes the export header and its lines in one transaction, retrying
// transient failures.
func (s *PostgresSink) Save(ctx context.Context, label string, lines []string) (int64, error) {
	var id int64
	err := resilience.Retry(ctx, "export-save", s.retry, func(ctx context.Context) error {
		return resilience.WithTimeout(ctx, s.timeout, "export-save", func(ctx context.Context) error {
			return s.client.InTx(ctx, func(tx *sql.Tx) error {
				return insertExport(ctx, tx, label, lines, &id)
			})
		})
	})
	if err != nil {
		return 0, fmt.Errorf("saving export %q: %w", label, err)
	}
	s.logger.Info("export archived", "id", id, "label", label, "lines", len(lines))
	return id, nil
}

func insertExport(ctx context.Context, tx *sql.Tx, label string, lines []string, id *int64) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO search_exports (label, line_count) VALUES ($1, $2) RETURNING id`,
		label, len(lines),
	).Scan(id)
	if err != nil {
		return fmt.Errorf("inserting export: %w", err)
	}
	if len(lines) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("search_export_lines", "export_id", "line_no", "line"))
	if err != nil {
		return fmt.Errorf("preparing line copy: %w", err)
	}
	defer stmt.Close()
	for i, line := range lines {
		if _, err := stmt.ExecContext(ctx, *id, i+1, line); err != nil {
			return fmt.Errorf("copying line %d: %w", i+1, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("flushing line copy: %w", err)
	}
	return nil
}

// retryable rejects syntax/schema errors (SQLSTATE class 42) and integrity
// violations (class 23); everything else is assumed transient.
func retryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "42", "23":
			return false
		}
	}
	return true
}
