package history_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internup/coachflow/coach"
	"github.com/internup/coachflow/conversation"
	"github.com/internup/coachflow/generate"
	"github.com/internup/coachflow/history"
	"github.com/internup/coachflow/store"
	"github.com/internup/coachflow/store/memory"
	"github.com/internup/coachflow/workflow"
)

type scriptedGenerator struct {
	calls int
}

func (g *scriptedGenerator) Generate(context.Context, generate.Prompt) (string, error) {
	g.calls++
	return fmt.Sprintf("reply %d", g.calls), nil
}

func (g *scriptedGenerator) GenerateStream(context.Context, generate.Prompt) (generate.Stream, error) {
	return nil, fmt.Errorf("not scripted")
}

func runTurns(t *testing.T, st store.CheckpointStore, userID, coachID string, turns int, opts ...workflow.Option) {
	t.Helper()
	engine := workflow.New(&scriptedGenerator{}, st, coach.DefaultRegistry(), opts...)
	for i := 0; i < turns; i++ {
		_, _, err := engine.Run(context.Background(), workflow.Request{
			UserID: userID, CoachID: coachID, Input: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}
}

func TestUsersAndThreads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := memory.NewMemoryCheckpointStore()
	runTurns(t, st, "bob", "career_assessment", 1)
	runTurns(t, st, "alice", "career_assessment", 1)
	runTurns(t, st, "alice", "resume_builder", 1)

	svc := history.NewService(st)

	users, err := svc.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, users)

	threads, err := svc.Threads(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice_career_assessment", "alice_resume_builder"}, threads)

	threads, err = svc.Threads(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, threads)
}

func TestTranscriptKeepsPurgedMessages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := memory.NewMemoryCheckpointStore()
	// Three turns with a low trigger: the third turn summarizes and purges
	// everything but the kept tail.
	runTurns(t, st, "alice", "career_assessment", 3,
		workflow.WithSummaryTrigger(6), workflow.WithKeepAfterSummary(2))

	svc := history.NewService(st)
	tr, err := svc.Transcript(ctx, "alice_career_assessment")
	require.NoError(t, err)

	assert.Equal(t, 3, tr.Turns)
	assert.NotEmpty(t, tr.Summary)

	// The live checkpoint kept two messages; the transcript retains all six.
	cp, err := st.Load(ctx, "alice_career_assessment")
	require.NoError(t, err)
	assert.Len(t, cp.State.Messages, 2)
	require.Len(t, tr.Messages, 6)
	assert.Equal(t, "message 0", tr.Messages[0].Content)
	assert.Equal(t, conversation.RoleAssistant, tr.Messages[5].Role)
}

func TestTranscriptUnknownThread(t *testing.T) {
	t.Parallel()

	svc := history.NewService(memory.NewMemoryCheckpointStore())
	_, err := svc.Transcript(context.Background(), "ghost_thread")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
