package generate

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tmc/langchaingo/llms"

	"github.com/internup/coachflow/conversation"
)

// LangchainGenerator implements Generator over any langchaingo chat model,
// so provider selection stays outside the orchestration engine.
type LangchainGenerator struct {
	model llms.Model
}

var _ Generator = (*LangchainGenerator)(nil)

// NewLangchainGenerator wraps a langchaingo model as a Generator.
func NewLangchainGenerator(model llms.Model) *LangchainGenerator {
	return &LangchainGenerator{model: model}
}

// Generate implements Generator.
func (g *LangchainGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := g.model.GenerateContent(ctx, buildContent(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate content returned no choices")
	}
	return resp.Choices[0].Content, nil
}

// GenerateStream implements Generator. The callback-based langchaingo
// streaming API is adapted into a pull-based stream; closing the stream
// cancels the underlying call.
func (g *LangchainGenerator) GenerateStream(ctx context.Context, prompt Prompt) (Stream, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	s := &chanStream{
		fragments: make(chan string),
		done:      make(chan struct{}),
		cancel:    cancel,
	}

	go func() {
		defer close(s.done)
		_, err := g.model.GenerateContent(streamCtx, buildContent(prompt),
			llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
				select {
				case s.fragments <- string(chunk):
					return nil
				case <-streamCtx.Done():
					return streamCtx.Err()
				}
			}),
		)
		if err != nil && streamCtx.Err() == nil {
			s.err = err
		}
	}()

	return s, nil
}

func buildContent(prompt Prompt) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(prompt.Messages)+1)
	content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt(prompt)))
	for _, m := range prompt.Messages {
		role := llms.ChatMessageTypeHuman
		if m.Role == conversation.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, m.Content))
	}
	return content
}

// chanStream is a channel-backed Stream fed by a streaming callback.
type chanStream struct {
	fragments chan string
	done      chan struct{}
	cancel    context.CancelFunc
	err       error

	closeOnce sync.Once
}

func (s *chanStream) Recv() (string, error) {
	select {
	case frag := <-s.fragments:
		return frag, nil
	case <-s.done:
		// Drain fragments delivered before the generation call returned.
		select {
		case frag := <-s.fragments:
			return frag, nil
		default:
		}
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
}

func (s *chanStream) Close() error {
	s.closeOnce.Do(s.cancel)
	return nil
}
