package generate

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/internup/coachflow/coach"
	"github.com/internup/coachflow/conversation"
)

// fakeModel replies with a fixed text, chunked when a streaming func is set.
type fakeModel struct {
	reply    string
	chunks   []string
	requests [][]llms.MessageContent
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.requests = append(m.requests, messages)

	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	if opts.StreamingFunc != nil {
		for _, chunk := range m.chunks {
			if err := opts.StreamingFunc(ctx, []byte(chunk)); err != nil {
				return nil, err
			}
		}
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.reply}},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return m.reply, nil
}

func TestLangchainGeneratorGenerate(t *testing.T) {
	t.Parallel()

	model := &fakeModel{reply: "Nice to meet you."}
	gen := NewLangchainGenerator(model)

	text, err := gen.Generate(context.Background(), Prompt{
		Coach:       coach.Identity{ID: "career_assessment", Name: "Sophie", Specialty: "Career Assessment"},
		Messages:    []conversation.Message{{ID: 1, Role: conversation.RoleUser, Content: "hi"}},
		Summary:     "earlier summary",
		UserContext: "recent graduate",
	})
	require.NoError(t, err)
	assert.Equal(t, "Nice to meet you.", text)

	// The system message leads and carries identity, context and summary.
	require.Len(t, model.requests, 1)
	req := model.requests[0]
	require.Len(t, req, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, req[0].Role)
	system := req[0].Parts[0].(llms.TextContent).Text
	assert.Contains(t, system, "Sophie")
	assert.Contains(t, system, "recent graduate")
	assert.Contains(t, system, "earlier summary")
	assert.Equal(t, llms.ChatMessageTypeHuman, req[1].Role)
}

func TestLangchainGeneratorGenerateStream(t *testing.T) {
	t.Parallel()

	model := &fakeModel{reply: "Hello world", chunks: []string{"Hel", "lo ", "world"}}
	gen := NewLangchainGenerator(model)

	stream, err := gen.GenerateStream(context.Background(), Prompt{Coach: coach.Identity{Name: "Sophie", Specialty: "x"}})
	require.NoError(t, err)
	defer stream.Close()

	var got []string
	for {
		frag, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, frag)
	}
	assert.Equal(t, []string{"Hel", "lo ", "world"}, got)
}

func TestLangchainGeneratorStreamClose(t *testing.T) {
	t.Parallel()

	model := &fakeModel{reply: "Hello world", chunks: []string{"a", "b", "c"}}
	gen := NewLangchainGenerator(model)

	stream, err := gen.GenerateStream(context.Background(), Prompt{Coach: coach.Identity{Name: "Sophie", Specialty: "x"}})
	require.NoError(t, err)

	_, err = stream.Recv()
	require.NoError(t, err)

	// Closing mid-stream stops the underlying call without error.
	assert.NoError(t, stream.Close())
}
