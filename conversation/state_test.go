package conversation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internup/coachflow/coach"
)

func TestStateAppendAssignsMonotonicIDs(t *testing.T) {
	t.Parallel()

	s := &State{}
	first := s.Append(RoleUser, "hi")
	second := s.Append(RoleAssistant, "hello")

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, int64(3), s.NextMessageID)
	assert.Len(t, s.Messages, 2)
}

func TestStateRemove(t *testing.T) {
	t.Parallel()

	s := &State{}
	for i := 0; i < 5; i++ {
		s.Append(RoleUser, "m")
	}

	s.Remove([]int64{1, 3, 99})

	require.Len(t, s.Messages, 3)
	assert.Equal(t, int64(2), s.Messages[0].ID)
	assert.Equal(t, int64(4), s.Messages[1].ID)
	assert.Equal(t, int64(5), s.Messages[2].ID)

	// Ids keep advancing after a purge; they are never reused.
	next := s.Append(RoleAssistant, "later")
	assert.Equal(t, int64(6), next.ID)
}

func TestStateCloneIsIndependent(t *testing.T) {
	t.Parallel()

	s := &State{
		UserID:       "u1",
		SessionGoals: []string{"goal"},
		Coach:        coach.Identity{ID: "career_assessment", FocusAreas: []string{"a"}},
	}
	s.Append(RoleUser, "hi")

	clone := s.Clone()
	clone.Append(RoleAssistant, "mutated")
	clone.SessionGoals[0] = "changed"

	assert.Len(t, s.Messages, 1)
	assert.Equal(t, "goal", s.SessionGoals[0])
}

func TestStateJSONRoundTrip(t *testing.T) {
	t.Parallel()

	s := &State{
		Summary:      "so far",
		UserID:       "u1",
		UserContext:  "recent graduate",
		SessionGoals: []string{"find a job"},
		Coach: coach.Identity{
			ID:         "career_assessment",
			Name:       "Sophie",
			Specialty:  "Career Assessment & Path Planning",
			FocusAreas: []string{"assessments"},
		},
	}
	s.Append(RoleUser, "hi")
	s.Append(RoleAssistant, "hello")

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var got State
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, *s, got)
}

func TestResolveThreadKey(t *testing.T) {
	t.Parallel()

	stable := ResolveThreadKey("u1", "career_assessment", false)
	assert.Equal(t, "u1_career_assessment", stable)

	// Idempotent for the same pair.
	assert.Equal(t, stable, ResolveThreadKey("u1", "career_assessment", false))

	// Each new-thread request forks a distinct lineage.
	fresh := ResolveThreadKey("u1", "career_assessment", true)
	again := ResolveThreadKey("u1", "career_assessment", true)
	assert.NotEqual(t, stable, fresh)
	assert.NotEqual(t, fresh, again)
	assert.Contains(t, fresh, stable+"_")
}
