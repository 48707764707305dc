package workflow

import (
	"context"
	"fmt"
	"slices"

	"github.com/internup/coachflow/conversation"
	"github.com/internup/coachflow/generate"
)

// Instructions the summarize step sends to the generator as a trailing
// user message. Which one is used is decided by whether the state already
// carries a summary, never by a caller flag, so behavior cannot drift
// from state.
const (
	summaryInstruction = "Create a summary of the conversation above. " +
		"Capture the user's situation, goals and the advice given so far."

	extendSummaryInstructionFmt = "This is a summary of the conversation to date: %s\n\n" +
		"Extend the summary by taking into account the new messages above."
)

// respond runs the RESPOND step: one generator call producing the
// assistant reply text. The engine appends it to state and records the
// write.
func (e *Engine) respond(ctx context.Context, state *conversation.State) (string, error) {
	text, err := e.generator.Generate(ctx, respondPrompt(state))
	if err != nil {
		return "", &GenerationError{Step: StepRespond, Err: err}
	}
	return text, nil
}

// respondPrompt is the prompt for the RESPOND step: the live window plus
// the summary and caller context in the system message.
func respondPrompt(state *conversation.State) generate.Prompt {
	return generate.Prompt{
		Coach:        state.Coach,
		Messages:     state.Messages,
		Summary:      state.Summary,
		UserContext:  state.UserContext,
		SessionGoals: state.SessionGoals,
	}
}

// connect runs the CONNECT step. It mutates nothing; it exists so the
// summarization decision is taken at a fixed point after respond.
func (e *Engine) connect(state *conversation.State) {
	e.logger.Debug("connect step: %d messages on thread", len(state.Messages))
}

// summarize runs the SUMMARIZE step. It returns the new summary and the
// ids of every message except the newest keepAfterSummary, which the
// engine purges before committing the turn.
func (e *Engine) summarize(ctx context.Context, state *conversation.State) (string, []int64, error) {
	instruction := summaryInstruction
	if state.Summary != "" {
		instruction = fmt.Sprintf(extendSummaryInstructionFmt, state.Summary)
	}

	messages := append(slices.Clone(state.Messages), conversation.Message{
		Role:    conversation.RoleUser,
		Content: instruction,
	})

	// The running summary stays out of the system message here; the
	// instruction already embeds it in extend mode.
	summary, err := e.generator.Generate(ctx, generate.Prompt{Coach: state.Coach, Messages: messages})
	if err != nil {
		return "", nil, &GenerationError{Step: StepSummarize, Err: err}
	}

	var removeIDs []int64
	if keep := e.keepAfterSummary; len(state.Messages) > keep {
		superseded := state.Messages[:len(state.Messages)-keep]
		removeIDs = make([]int64, 0, len(superseded))
		for _, m := range superseded {
			removeIDs = append(removeIDs, m.ID)
		}
	}
	return summary, removeIDs, nil
}
