package generate

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/internup/coachflow/conversation"
)

// OpenAIOptions configures the OpenAI-backed generator.
type OpenAIOptions struct {
	APIKey      string
	BaseURL     string // optional, for OpenAI-compatible providers
	Model       string // default gpt-4o-mini
	Temperature float32
}

// OpenAIGenerator implements Generator on top of the OpenAI chat
// completion API.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
}

var _ Generator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator creates a generator backed by the OpenAI API.
func NewOpenAIGenerator(opts OpenAIOptions) *OpenAIGenerator {
	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}

	model := opts.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: opts.Temperature,
	}
}

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, g.buildRequest(prompt, false))
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream implements Generator.
func (g *OpenAIGenerator) GenerateStream(ctx context.Context, prompt Prompt) (Stream, error) {
	stream, err := g.client.CreateChatCompletionStream(ctx, g.buildRequest(prompt, true))
	if err != nil {
		return nil, fmt.Errorf("chat completion stream: %w", err)
	}
	return &openaiStream{stream: stream}, nil
}

func (g *OpenAIGenerator) buildRequest(prompt Prompt, stream bool) openai.ChatCompletionRequest {
	chat := make([]openai.ChatCompletionMessage, 0, len(prompt.Messages)+1)
	chat = append(chat, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(prompt),
	})
	for _, m := range prompt.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == conversation.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		chat = append(chat, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	return openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    chat,
		Temperature: g.temperature,
		Stream:      stream,
	}
}

// openaiStream adapts the SDK stream to the Stream interface.
type openaiStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openaiStream) Recv() (string, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		// io.EOF passes through as the end-of-stream marker.
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (s *openaiStream) Close() error {
	return s.stream.Close()
}
