package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    any
		expected []Message
	}{
		{
			name:     "single string becomes one user message",
			input:    "hello",
			expected: []Message{{Role: RoleUser, Content: "hello"}},
		},
		{
			name:  "string list preserves order",
			input: []string{"first", "second"},
			expected: []Message{
				{Role: RoleUser, Content: "first"},
				{Role: RoleUser, Content: "second"},
			},
		},
		{
			name:     "empty list yields empty sequence",
			input:    []string{},
			expected: []Message{},
		},
		{
			name:     "nil yields empty sequence",
			input:    nil,
			expected: []Message{},
		},
		{
			name: "records keep user and assistant, drop system",
			input: []map[string]any{
				{"role": "user", "content": "a"},
				{"role": "assistant", "content": "b"},
				{"role": "system", "content": "x"},
			},
			expected: []Message{
				{Role: RoleUser, Content: "a"},
				{Role: RoleAssistant, Content: "b"},
			},
		},
		{
			name: "typed messages drop foreign roles",
			input: []Message{
				{Role: RoleUser, Content: "a"},
				{Role: Role("tool"), Content: "x"},
			},
			expected: []Message{{Role: RoleUser, Content: "a"}},
		},
		{
			name: "mixed any slice from decoded json",
			input: []any{
				map[string]any{"role": "user", "content": "a"},
				map[string]any{"role": "assistant", "content": "b"},
			},
			expected: []Message{
				{Role: RoleUser, Content: "a"},
				{Role: RoleAssistant, Content: "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeMessages(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeMessagesInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
	}{
		{name: "integer", input: 42},
		{name: "record without content", input: []map[string]any{{"role": "user"}}},
		{name: "record with non-string role", input: []map[string]any{{"role": 1, "content": "a"}}},
		{name: "list with unsupported element", input: []any{3.14}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NormalizeMessages(tt.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
