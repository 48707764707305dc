package conversation

import (
	"slices"

	"github.com/internup/coachflow/coach"
)

// State is the conversation state threaded through every workflow step.
// Messages and Summary are the only fields steps mutate; the identity
// bundle and caller-supplied context pass through unchanged.
type State struct {
	// Messages is the ordered conversation history. Append-only within a
	// turn; summarization may truncate older entries between turns.
	Messages []Message `json:"messages"`

	// Summary is the running digest of truncated history. Empty until the
	// first summarization; written only by the summarize step.
	Summary string `json:"summary"`

	// Coach is the agent identity bundle supplied by the caller.
	Coach coach.Identity `json:"coach"`

	// UserID scopes persistence and thread-key construction.
	UserID string `json:"user_id"`

	// UserContext is free-text background about the user's situation.
	UserContext string `json:"user_context,omitempty"`

	// SessionGoals are caller-supplied goals, passed through unchanged.
	SessionGoals []string `json:"session_goals,omitempty"`

	// NextMessageID is the next id to assign. Monotonic per thread.
	NextMessageID int64 `json:"next_message_id"`
}

// Append adds a message with the next sequence id and returns it.
func (s *State) Append(role Role, content string) Message {
	if s.NextMessageID <= 0 {
		s.NextMessageID = 1
	}
	m := Message{ID: s.NextMessageID, Role: role, Content: content}
	s.NextMessageID++
	s.Messages = append(s.Messages, m)
	return m
}

// Remove deletes the messages with the given ids. Unknown ids are ignored,
// so replaying a purge instruction is safe.
func (s *State) Remove(ids []int64) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.Messages[:0]
	for _, m := range s.Messages {
		if _, gone := drop[m.ID]; !gone {
			kept = append(kept, m)
		}
	}
	s.Messages = kept
}

// Last returns the most recent message, if any.
func (s *State) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Messages = slices.Clone(s.Messages)
	out.SessionGoals = slices.Clone(s.SessionGoals)
	out.Coach.FocusAreas = slices.Clone(s.Coach.FocusAreas)
	return &out
}
