package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/internup/coachflow/conversation"
)

// ErrNotFound is returned by Load when a thread has no checkpoint yet.
var ErrNotFound = errors.New("checkpoint not found")

// Checkpoint is the latest committed state snapshot for one thread.
type Checkpoint struct {
	ThreadKey string              `json:"thread_key"`
	State     *conversation.State `json:"state"`
	Timestamp time.Time           `json:"timestamp"`
	Version   int                 `json:"version"`
}

// Write records the partial update one workflow step produced during a
// turn. The write log supports historical replay and the admin history
// view; it is never read back to rebuild the latest state.
type Write struct {
	ID         string                 `json:"id"`
	ThreadKey  string                 `json:"thread_key"`
	Step       string                 `json:"step"`
	Messages   []conversation.Message `json:"messages,omitempty"`
	Summary    string                 `json:"summary,omitempty"`
	RemovedIDs []int64                `json:"removed_ids,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// NewWrite creates a write record for a step on a thread.
func NewWrite(threadKey, step string) *Write {
	return &Write{
		ID:        uuid.NewString(),
		ThreadKey: threadKey,
		Step:      step,
		Timestamp: time.Now(),
	}
}

// CheckpointStore persists conversation state keyed by thread key.
//
// Save commits a snapshot together with the turn's writes; backends make
// this atomic so a turn is either fully recorded or not at all. Per-user
// deletion matches thread keys by the "userID_" prefix, mirroring how
// thread keys are constructed.
type CheckpointStore interface {
	// Load returns the checkpoint for a thread, or ErrNotFound.
	Load(ctx context.Context, threadKey string) (*Checkpoint, error)

	// Save stores a snapshot and appends the turn's writes.
	Save(ctx context.Context, checkpoint *Checkpoint, writes []*Write) error

	// ListWrites returns a thread's writes in append order.
	ListWrites(ctx context.Context, threadKey string) ([]*Write, error)

	// ListThreadKeys returns every thread key with a checkpoint.
	ListThreadKeys(ctx context.Context) ([]string, error)

	// DeleteForUser removes all checkpoints and writes for a user's
	// threads, returning the deletion counts.
	DeleteForUser(ctx context.Context, userID string) (checkpoints, writes int64, err error)

	// DeleteAll removes every checkpoint and write.
	DeleteAll(ctx context.Context) (checkpoints, writes int64, err error)
}

// UserPrefix returns the thread-key prefix that scopes a user's threads.
func UserPrefix(userID string) string {
	return userID + "_"
}
