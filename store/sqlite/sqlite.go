package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/internup/coachflow/store"
)

// SqliteCheckpointStore implements store.CheckpointStore using SQLite.
type SqliteCheckpointStore struct {
	db *sql.DB
}

var _ store.CheckpointStore = (*SqliteCheckpointStore)(nil)

// SqliteOptions configuration for the SQLite connection.
type SqliteOptions struct {
	Path string
}

// NewSqliteCheckpointStore creates a new SQLite checkpoint store.
func NewSqliteCheckpointStore(opts SqliteOptions) (*SqliteCheckpointStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	s := &SqliteCheckpointStore{db: db}
	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// InitSchema creates the necessary tables if they don't exist.
func (s *SqliteCheckpointStore) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS checkpoints (
			thread_key TEXT PRIMARY KEY,
			state TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			version INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS writes (
			id TEXT PRIMARY KEY,
			thread_key TEXT NOT NULL,
			step TEXT NOT NULL,
			payload TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_writes_thread_key ON writes (thread_key);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SqliteCheckpointStore) Close() error {
	return s.db.Close()
}

// Load implements store.CheckpointStore.
func (s *SqliteCheckpointStore) Load(ctx context.Context, threadKey string) (*store.Checkpoint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT thread_key, state, timestamp, version FROM checkpoints WHERE thread_key = ?`, threadKey)

	var cp store.Checkpoint
	var stateJSON string
	if err := row.Scan(&cp.ThreadKey, &stateJSON, &cp.Timestamp, &cp.Version); err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := json.Unmarshal([]byte(stateJSON), &cp.State); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &cp, nil
}

// Save implements store.CheckpointStore. Snapshot and writes commit in one
// transaction.
func (s *SqliteCheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint, writes []*store.Write) error {
	stateJSON, err := json.Marshal(checkpoint.State)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checkpoints (thread_key, state, timestamp, version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(thread_key) DO UPDATE SET
			state = excluded.state,
			timestamp = excluded.timestamp,
			version = excluded.version
	`, checkpoint.ThreadKey, string(stateJSON), checkpoint.Timestamp, checkpoint.Version)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	for _, w := range writes {
		payload, err := json.Marshal(w)
		if err != nil {
			return fmt.Errorf("failed to marshal write: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO writes (id, thread_key, step, payload, timestamp)
			VALUES (?, ?, ?, ?, ?)
		`, w.ID, w.ThreadKey, w.Step, string(payload), w.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to save write: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit checkpoint: %w", err)
	}
	return nil
}

// ListWrites implements store.CheckpointStore.
func (s *SqliteCheckpointStore) ListWrites(ctx context.Context, threadKey string) ([]*store.Write, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM writes WHERE thread_key = ? ORDER BY timestamp, id`, threadKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list writes: %w", err)
	}
	defer rows.Close()

	var writes []*store.Write
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan write: %w", err)
		}
		var w store.Write
		if err := json.Unmarshal([]byte(payload), &w); err != nil {
			return nil, fmt.Errorf("failed to unmarshal write: %w", err)
		}
		writes = append(writes, &w)
	}
	return writes, rows.Err()
}

// ListThreadKeys implements store.CheckpointStore.
func (s *SqliteCheckpointStore) ListThreadKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT thread_key FROM checkpoints ORDER BY thread_key`)
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

// DeleteForUser implements store.CheckpointStore.
func (s *SqliteCheckpointStore) DeleteForUser(ctx context.Context, userID string) (int64, int64, error) {
	pattern := escapeLike(store.UserPrefix(userID)) + "%"
	return s.deleteWhere(ctx, `thread_key LIKE ? ESCAPE '\'`, pattern)
}

// DeleteAll implements store.CheckpointStore.
func (s *SqliteCheckpointStore) DeleteAll(ctx context.Context) (int64, int64, error) {
	return s.deleteWhere(ctx, "1 = 1")
}

func (s *SqliteCheckpointStore) deleteWhere(ctx context.Context, cond string, args ...any) (int64, int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM checkpoints WHERE "+cond, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete checkpoints: %w", err)
	}
	checkpoints, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, "DELETE FROM writes WHERE "+cond, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete writes: %w", err)
	}
	writes, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return checkpoints, writes, nil
}

// escapeLike escapes LIKE wildcards so user ids containing "_" or "%"
// only match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
