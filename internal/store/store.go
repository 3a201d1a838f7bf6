// File: internal/store/store.go
// Description: Optional PostgreSQL audit trail for fix sessions. One row per
// session plus a bulk insert of per-job outcomes via the pgx CopyFrom
// protocol.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/docmend/internal/reporting"
)

// DBPool abstracts the pgxpool.Pool surface the store needs so tests can
// substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Store provides the PostgreSQL session audit implementation.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// Connect opens a pool for the given URL and wraps it.
func Connect(ctx context.Context, url string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	store, err := New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// PersistSession writes the session row and its per-job outcomes in one
// transaction.
func (s *Store) PersistSession(ctx context.Context, report reporting.SessionReport) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback on an already committed transaction returns pgx.ErrTxClosed.
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO fix_sessions (id, document_path, started_at, finished_at, total_jobs, succeeded, failed)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		report.SessionID, report.DocumentPath,
		report.StartedAt.UTC(), report.FinishedAt.UTC(),
		report.Total, report.Succeeded, report.Failed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if len(report.Outcomes) > 0 {
		if err := s.persistOutcomes(ctx, tx, report.SessionID, report.Outcomes); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.log.Debug("Persisted fix session",
		zap.String("session_id", report.SessionID),
		zap.Int("outcomes", len(report.Outcomes)))
	return nil
}

func (s *Store) persistOutcomes(ctx context.Context, tx pgx.Tx, sessionID string, outcomes []reporting.IssueOutcome) error {
	rows := make([][]interface{}, len(outcomes))
	for i, o := range outcomes {
		rows[i] = []interface{}{
			sessionID, o.IssueID, string(o.Kind), o.Pattern,
			string(o.Status), o.Suggestion, o.Error, o.Selected, o.Applied,
		}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"fix_session_jobs"},
		[]string{"session_id", "issue_id", "kind", "pattern", "status", "suggestion", "error", "selected", "applied"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy session jobs: %w", err)
	}
	if int(copyCount) != len(outcomes) {
		return fmt.Errorf("mismatch in copied job count: expected %d, got %d", len(outcomes), copyCount)
	}
	return nil
}
