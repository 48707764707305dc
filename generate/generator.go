// Package generate defines the response-generation collaborator consumed
// by the workflow engine, with backends for the OpenAI API and for any
// langchaingo chat model. The engine is agnostic to which backend is used;
// the coach identity routes to a per-coach system message inside the
// backend.
package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/internup/coachflow/coach"
	"github.com/internup/coachflow/conversation"
)

// Prompt carries everything a backend needs to produce one reply: the
// coach identity, the live message window, and the out-of-band context
// that goes into the system message.
type Prompt struct {
	Coach        coach.Identity
	Messages     []conversation.Message
	Summary      string
	UserContext  string
	SessionGoals []string
}

// Generator produces one assistant reply from the conversation so far.
type Generator interface {
	// Generate returns the full reply text in one call.
	Generate(ctx context.Context, prompt Prompt) (string, error)

	// GenerateStream returns the reply as a lazy sequence of text
	// fragments. The returned stream must be drained to io.EOF or closed.
	GenerateStream(ctx context.Context, prompt Prompt) (Stream, error)
}

// Stream is a cancellable sequence of reply fragments. Recv returns io.EOF
// once the reply is complete. Close releases the underlying call; closing
// before EOF abandons the reply.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// systemPrompt composes the system message for a coach. The running
// summary stands in for the truncated part of the history.
func systemPrompt(p Prompt) string {
	identity := p.Coach

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a career coach specializing in %s.", identity.Name, identity.Specialty)
	if identity.Approach != "" {
		fmt.Fprintf(&b, "\n\nYour approach: %s", identity.Approach)
	}
	if len(identity.FocusAreas) > 0 {
		b.WriteString("\n\nYour focus areas:")
		for _, area := range identity.FocusAreas {
			fmt.Fprintf(&b, "\n- %s", area)
		}
	}
	if p.UserContext != "" {
		fmt.Fprintf(&b, "\n\nAbout the user: %s", p.UserContext)
	}
	if len(p.SessionGoals) > 0 {
		b.WriteString("\n\nThe user's goals for this session:")
		for _, goal := range p.SessionGoals {
			fmt.Fprintf(&b, "\n- %s", goal)
		}
	}
	if p.Summary != "" {
		fmt.Fprintf(&b, "\n\nSummary of the conversation so far: %s", p.Summary)
	}
	return b.String()
}
