package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/internup/coachflow/store"
)

// DBPool defines the interface for the database connection pool.
type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresCheckpointStore implements store.CheckpointStore using PostgreSQL.
type PostgresCheckpointStore struct {
	pool DBPool
}

var _ store.CheckpointStore = (*PostgresCheckpointStore)(nil)

// PostgresOptions configuration for the Postgres connection.
type PostgresOptions struct {
	ConnString string
}

// NewPostgresCheckpointStore creates a new Postgres checkpoint store.
func NewPostgresCheckpointStore(ctx context.Context, opts PostgresOptions) (*PostgresCheckpointStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return &PostgresCheckpointStore{pool: pool}, nil
}

// NewPostgresCheckpointStoreWithPool creates a store with an existing pool.
// Useful for testing with mocks.
func NewPostgresCheckpointStoreWithPool(pool DBPool) *PostgresCheckpointStore {
	return &PostgresCheckpointStore{pool: pool}
}

// InitSchema creates the necessary tables if they don't exist.
func (s *PostgresCheckpointStore) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS checkpoints (
			thread_key TEXT PRIMARY KEY,
			state JSONB NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			version INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS writes (
			id TEXT PRIMARY KEY,
			thread_key TEXT NOT NULL,
			step TEXT NOT NULL,
			payload JSONB NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_writes_thread_key ON writes (thread_key);
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresCheckpointStore) Close() {
	s.pool.Close()
}

// Load implements store.CheckpointStore.
func (s *PostgresCheckpointStore) Load(ctx context.Context, threadKey string) (*store.Checkpoint, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT thread_key, state, timestamp, version FROM checkpoints WHERE thread_key = $1`, threadKey)

	var cp store.Checkpoint
	var stateJSON []byte
	if err := row.Scan(&cp.ThreadKey, &stateJSON, &cp.Timestamp, &cp.Version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := json.Unmarshal(stateJSON, &cp.State); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &cp, nil
}

// Save implements store.CheckpointStore. Snapshot and writes commit in one
// transaction.
func (s *PostgresCheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint, writes []*store.Write) error {
	stateJSON, err := json.Marshal(checkpoint.State)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO checkpoints (thread_key, state, timestamp, version)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (thread_key) DO UPDATE SET
			state = EXCLUDED.state,
			timestamp = EXCLUDED.timestamp,
			version = EXCLUDED.version
	`, checkpoint.ThreadKey, stateJSON, checkpoint.Timestamp, checkpoint.Version)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	for _, w := range writes {
		payload, err := json.Marshal(w)
		if err != nil {
			return fmt.Errorf("failed to marshal write: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO writes (id, thread_key, step, payload, timestamp)
			VALUES ($1, $2, $3, $4, $5)
		`, w.ID, w.ThreadKey, w.Step, payload, w.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to save write: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit checkpoint: %w", err)
	}
	return nil
}

// ListWrites implements store.CheckpointStore.
func (s *PostgresCheckpointStore) ListWrites(ctx context.Context, threadKey string) ([]*store.Write, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM writes WHERE thread_key = $1 ORDER BY timestamp, id`, threadKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list writes: %w", err)
	}
	defer rows.Close()

	var writes []*store.Write
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan write: %w", err)
		}
		var w store.Write
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, fmt.Errorf("failed to unmarshal write: %w", err)
		}
		writes = append(writes, &w)
	}
	return writes, rows.Err()
}

// ListThreadKeys implements store.CheckpointStore.
func (s *PostgresCheckpointStore) ListThreadKeys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT thread_key FROM checkpoints ORDER BY thread_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list thread keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan thread key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// DeleteForUser implements store.CheckpointStore. Thread keys are matched
// by prefix; LIKE wildcards in the user id are escaped.
func (s *PostgresCheckpointStore) DeleteForUser(ctx context.Context, userID string) (int64, int64, error) {
	pattern := escapeLike(store.UserPrefix(userID)) + "%"
	return s.deleteWhere(ctx, `thread_key LIKE $1`, pattern)
}

// DeleteAll implements store.CheckpointStore.
func (s *PostgresCheckpointStore) DeleteAll(ctx context.Context) (int64, int64, error) {
	return s.deleteWhere(ctx, "TRUE")
}

func (s *PostgresCheckpointStore) deleteWhere(ctx context.Context, cond string, args ...any) (int64, int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, "DELETE FROM checkpoints WHERE "+cond, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete checkpoints: %w", err)
	}
	checkpoints := tag.RowsAffected()

	tag, err = tx.Exec(ctx, "DELETE FROM writes WHERE "+cond, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete writes: %w", err)
	}
	writes := tag.RowsAffected()

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return checkpoints, writes, nil
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '%', '_':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
