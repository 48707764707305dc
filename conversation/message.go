package conversation

import (
	"errors"
	"fmt"
)

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks a message written by the user.
	RoleUser Role = "user"

	// RoleAssistant marks a message produced by the coach.
	RoleAssistant Role = "assistant"
)

// ErrInvalidInput is returned when raw caller input has an unrecognized shape.
var ErrInvalidInput = errors.New("invalid message input")

// Message is a single role-tagged entry in a conversation. The ID is a
// monotonic per-thread sequence number assigned when the message is
// appended to a State, so that summarization can name superseded
// messages across persistence boundaries.
type Message struct {
	ID      int64  `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NormalizeMessages converts loose caller input into role-tagged messages.
// Accepted shapes:
//   - a single string, wrapped as one user message
//   - a []string, each wrapped as a user message in order
//   - a []Message or a list of {role, content} records; entries whose role
//     is neither "user" nor "assistant" are silently dropped
//
// An empty list yields an empty slice. Any other shape is rejected with
// ErrInvalidInput before the engine touches state or calls the generator.
func NormalizeMessages(input any) ([]Message, error) {
	switch v := input.(type) {
	case nil:
		return []Message{}, nil
	case string:
		return []Message{{Role: RoleUser, Content: v}}, nil
	case []string:
		out := make([]Message, 0, len(v))
		for _, s := range v {
			out = append(out, Message{Role: RoleUser, Content: s})
		}
		return out, nil
	case []Message:
		out := make([]Message, 0, len(v))
		for _, m := range v {
			if m.Role == RoleUser || m.Role == RoleAssistant {
				out = append(out, Message{Role: m.Role, Content: m.Content})
			}
		}
		return out, nil
	case []map[string]any:
		out := make([]Message, 0, len(v))
		for _, rec := range v {
			m, ok, err := messageFromRecord(rec)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, m)
			}
		}
		return out, nil
	case []any:
		out := make([]Message, 0, len(v))
		for _, item := range v {
			switch it := item.(type) {
			case string:
				out = append(out, Message{Role: RoleUser, Content: it})
			case Message:
				if it.Role == RoleUser || it.Role == RoleAssistant {
					out = append(out, Message{Role: it.Role, Content: it.Content})
				}
			case map[string]any:
				m, ok, err := messageFromRecord(it)
				if err != nil {
					return nil, err
				}
				if ok {
					out = append(out, m)
				}
			default:
				return nil, fmt.Errorf("%w: unsupported element type %T", ErrInvalidInput, item)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidInput, input)
	}
}

// messageFromRecord maps one {role, content} record. The bool result is
// false when the record carries a foreign role and should be dropped.
func messageFromRecord(rec map[string]any) (Message, bool, error) {
	role, okRole := rec["role"].(string)
	content, okContent := rec["content"].(string)
	if !okRole || !okContent {
		return Message{}, false, fmt.Errorf("%w: record must have string role and content", ErrInvalidInput)
	}
	switch Role(role) {
	case RoleUser, RoleAssistant:
		return Message{Role: Role(role), Content: content}, true, nil
	default:
		return Message{}, false, nil
	}
}
