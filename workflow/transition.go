package workflow

import "github.com/internup/coachflow/conversation"

// Step names a node in the fixed step machine.
type Step string

const (
	// StepRespond generates the assistant reply.
	StepRespond Step = "respond"

	// StepConnect is the pass-through node after respond; the transition
	// policy is evaluated here.
	StepConnect Step = "connect"

	// StepSummarize folds older history into the running summary.
	StepSummarize Step = "summarize"

	// StepEnd terminates the turn.
	StepEnd Step = "end"
)

// stepInput names the pseudo-step recording the caller's input in the
// write log.
const stepInput = "input"

// NextStep is the transition policy evaluated after the connect step:
// summarize once the message count reaches summaryTrigger (inclusive),
// otherwise end the turn. Pure function, no side effects.
func NextStep(state *conversation.State, summaryTrigger int) Step {
	if len(state.Messages) >= summaryTrigger {
		return StepSummarize
	}
	return StepEnd
}
