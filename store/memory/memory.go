// Package memory provides an in-process CheckpointStore for tests and
// single-node deployments.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/internup/coachflow/store"
)

// MemoryCheckpointStore implements store.CheckpointStore with maps guarded
// by a mutex. Snapshots are deep-copied on Save and Load so callers never
// share mutable state with the store.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*store.Checkpoint
	writes      map[string][]*store.Write
}

var _ store.CheckpointStore = (*MemoryCheckpointStore)(nil)

// NewMemoryCheckpointStore creates an empty in-memory checkpoint store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{
		checkpoints: make(map[string]*store.Checkpoint),
		writes:      make(map[string][]*store.Write),
	}
}

// Load implements store.CheckpointStore.
func (s *MemoryCheckpointStore) Load(_ context.Context, threadKey string) (*store.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.checkpoints[threadKey]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneCheckpoint(cp), nil
}

// Save implements store.CheckpointStore.
func (s *MemoryCheckpointStore) Save(_ context.Context, checkpoint *store.Checkpoint, writes []*store.Write) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints[checkpoint.ThreadKey] = cloneCheckpoint(checkpoint)
	for _, w := range writes {
		cw := *w
		cw.Messages = slices.Clone(w.Messages)
		cw.RemovedIDs = slices.Clone(w.RemovedIDs)
		s.writes[checkpoint.ThreadKey] = append(s.writes[checkpoint.ThreadKey], &cw)
	}
	return nil
}

// ListWrites implements store.CheckpointStore.
func (s *MemoryCheckpointStore) ListWrites(_ context.Context, threadKey string) ([]*store.Write, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*store.Write, 0, len(s.writes[threadKey]))
	for _, w := range s.writes[threadKey] {
		cw := *w
		cw.Messages = slices.Clone(w.Messages)
		cw.RemovedIDs = slices.Clone(w.RemovedIDs)
		out = append(out, &cw)
	}
	return out, nil
}

// ListThreadKeys implements store.CheckpointStore.
func (s *MemoryCheckpointStore) ListThreadKeys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.checkpoints))
	for key := range s.checkpoints {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// DeleteForUser implements store.CheckpointStore.
func (s *MemoryCheckpointStore) DeleteForUser(_ context.Context, userID string) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := store.UserPrefix(userID)
	var checkpoints, writes int64
	for key := range s.checkpoints {
		if strings.HasPrefix(key, prefix) {
			delete(s.checkpoints, key)
			checkpoints++
		}
	}
	for key, ws := range s.writes {
		if strings.HasPrefix(key, prefix) {
			writes += int64(len(ws))
			delete(s.writes, key)
		}
	}
	return checkpoints, writes, nil
}

// DeleteAll implements store.CheckpointStore.
func (s *MemoryCheckpointStore) DeleteAll(_ context.Context) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	checkpoints := int64(len(s.checkpoints))
	var writes int64
	for _, ws := range s.writes {
		writes += int64(len(ws))
	}
	s.checkpoints = make(map[string]*store.Checkpoint)
	s.writes = make(map[string][]*store.Write)
	return checkpoints, writes, nil
}

func cloneCheckpoint(cp *store.Checkpoint) *store.Checkpoint {
	out := *cp
	out.State = cp.State.Clone()
	return &out
}
