package workflow_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internup/coachflow/conversation"
	"github.com/internup/coachflow/store"
	"github.com/internup/coachflow/store/memory"
	"github.com/internup/coachflow/workflow"
)

func TestRunStreamDeliversFragmentsAndCommits(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := memory.NewMemoryCheckpointStore()
	gen := &fakeGenerator{chunks: []string{"Hel", "lo ", "world"}}
	engine := newEngine(gen, st)

	stream, err := engine.RunStream(ctx, workflow.Request{
		UserID: "u1", CoachID: "career_assessment", Input: "hi",
	})
	require.NoError(t, err)
	defer stream.Close()

	var fragments []string
	for {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		fragments = append(fragments, frag)
	}
	assert.Equal(t, []string{"Hel", "lo ", "world"}, fragments)

	state, err := stream.Final()
	require.NoError(t, err)
	require.Len(t, state.Messages, 2)
	assert.Equal(t, "Hello world", state.Messages[1].Content)

	// The accumulated reply was persisted only after full consumption.
	cp, err := st.Load(ctx, "u1_career_assessment")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", cp.State.Messages[1].Content)
	assert.Equal(t, conversation.RoleAssistant, cp.State.Messages[1].Role)
}

func TestRunStreamRecvAfterEOF(t *testing.T) {
	t.Parallel()

	st := memory.NewMemoryCheckpointStore()
	engine := newEngine(&fakeGenerator{chunks: []string{"x"}}, st)

	stream, err := engine.RunStream(context.Background(), workflow.Request{
		UserID: "u1", CoachID: "career_assessment", Input: "hi",
	})
	require.NoError(t, err)

	for {
		if _, err := stream.Recv(); errors.Is(err, io.EOF) {
			break
		}
	}

	// Terminal result is sticky.
	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRunStreamCloseAbandonsTurn(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := memory.NewMemoryCheckpointStore()
	engine := newEngine(&fakeGenerator{chunks: []string{"a", "b", "c"}}, st)

	stream, err := engine.RunStream(ctx, workflow.Request{
		UserID: "u1", CoachID: "career_assessment", Input: "hi",
	})
	require.NoError(t, err)

	_, err = stream.Recv()
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	// Nothing was persisted for the abandoned turn.
	_, err = st.Load(ctx, "u1_career_assessment")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = stream.Final()
	assert.Error(t, err)
}

func TestRunStreamGeneratorFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := memory.NewMemoryCheckpointStore()
	engine := newEngine(&fakeGenerator{failOn: 1}, st)

	_, err := engine.RunStream(ctx, workflow.Request{
		UserID: "u1", CoachID: "career_assessment", Input: "hi",
	})

	var genErr *workflow.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, workflow.StepRespond, genErr.Step)

	_, err = st.Load(ctx, "u1_career_assessment")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunStreamSaveFailureSurfacesAnswer(t *testing.T) {
	t.Parallel()

	st := &failingStore{
		CheckpointStore: memory.NewMemoryCheckpointStore(),
		saveErr:         errors.New("disk full"),
	}
	engine := newEngine(&fakeGenerator{chunks: []string{"Hello"}}, st)

	stream, err := engine.RunStream(context.Background(), workflow.Request{
		UserID: "u1", CoachID: "career_assessment", Input: "hi",
	})
	require.NoError(t, err)

	frag, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "Hello", frag)

	_, err = stream.Recv()
	var perErr *workflow.PersistenceError
	require.ErrorAs(t, err, &perErr)
	assert.Equal(t, "Hello", perErr.Answer)

	// The final state is still readable so the caller can render the
	// reply it already streamed.
	state, err := stream.Final()
	require.ErrorAs(t, err, &perErr)
	require.NotNil(t, state)
	assert.Equal(t, "Hello", state.Messages[len(state.Messages)-1].Content)
}
