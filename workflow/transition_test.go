package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/internup/coachflow/conversation"
	"github.com/internup/coachflow/workflow"
)

func stateWithMessages(n int) *conversation.State {
	s := &conversation.State{}
	for i := 0; i < n; i++ {
		role := conversation.RoleUser
		if i%2 == 1 {
			role = conversation.RoleAssistant
		}
		s.Append(role, "m")
	}
	return s
}

func TestNextStep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		messages int
		trigger  int
		expected workflow.Step
	}{
		{name: "below threshold terminates", messages: 29, trigger: 30, expected: workflow.StepEnd},
		{name: "at threshold summarizes", messages: 30, trigger: 30, expected: workflow.StepSummarize},
		{name: "above threshold summarizes", messages: 31, trigger: 30, expected: workflow.StepSummarize},
		{name: "empty conversation terminates", messages: 0, trigger: 30, expected: workflow.StepEnd},
		{name: "custom trigger", messages: 4, trigger: 4, expected: workflow.StepSummarize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := workflow.NextStep(stateWithMessages(tt.messages), tt.trigger)
			assert.Equal(t, tt.expected, got)
		})
	}
}
