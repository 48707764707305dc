// Package history provides a read-only view over the write log. Unlike a
// checkpoint, which holds only the live window after summarization, the
// replayed transcript keeps every message ever exchanged on a thread.
package history

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/internup/coachflow/conversation"
	"github.com/internup/coachflow/store"
)

// Transcript is the full reconstructed history of one thread.
type Transcript struct {
	ThreadKey string                 `json:"thread_key"`
	Messages  []conversation.Message `json:"messages"`
	Summary   string                 `json:"summary,omitempty"`
	Turns     int                    `json:"turns"`
}

// Service reads conversation history out of a checkpoint store.
type Service struct {
	store store.CheckpointStore
}

func NewService(st store.CheckpointStore) *Service {
	return &Service{store: st}
}

// Users returns the distinct user ids that own at least one thread,
// sorted. The user id is the thread-key segment before the first
// underscore.
func (s *Service) Users(ctx context.Context) ([]string, error) {
	keys, err := s.store.ListThreadKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list thread keys: %w", err)
	}

	seen := make(map[string]struct{})
	var users []string
	for _, key := range keys {
		id, _, ok := strings.Cut(key, "_")
		if !ok || id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}

// Threads returns the thread keys belonging to a user, sorted.
func (s *Service) Threads(ctx context.Context, userID string) ([]string, error) {
	keys, err := s.store.ListThreadKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list thread keys: %w", err)
	}

	prefix := store.UserPrefix(userID)
	var owned []string
	for _, key := range keys {
		if strings.HasPrefix(key, prefix) {
			owned = append(owned, key)
		}
	}
	sort.Strings(owned)
	return owned, nil
}

// Transcript replays a thread's write log into a full transcript.
// Messages purged by summarization stay in the transcript; the summary
// reflects the latest summarize step.
func (s *Service) Transcript(ctx context.Context, threadKey string) (*Transcript, error) {
	writes, err := s.store.ListWrites(ctx, threadKey)
	if err != nil {
		return nil, fmt.Errorf("list writes for %s: %w", threadKey, err)
	}
	if len(writes) == 0 {
		return nil, fmt.Errorf("thread %s: %w", threadKey, store.ErrNotFound)
	}

	tr := &Transcript{ThreadKey: threadKey}
	for _, w := range writes {
		switch w.Step {
		case "input":
			tr.Messages = append(tr.Messages, w.Messages...)
			tr.Turns++
		case "summarize":
			tr.Summary = w.Summary
		default:
			tr.Messages = append(tr.Messages, w.Messages...)
		}
	}
	return tr, nil
}
