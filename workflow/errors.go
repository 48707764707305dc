package workflow

import (
	"fmt"

	"github.com/internup/coachflow/coach"
	"github.com/internup/coachflow/conversation"
)

// ErrInvalidInput is returned when raw caller input has an unrecognized
// shape. Rejected before any generator call; nothing is persisted.
var ErrInvalidInput = conversation.ErrInvalidInput

// ErrUnknownCoach is returned when the coach id has no configuration.
// Rejected before any state is loaded.
var ErrUnknownCoach = coach.ErrUnknownCoach

// GenerationError reports a failed or timed-out response-generator call.
// The turn is not committed, so retrying the whole turn is safe.
type GenerationError struct {
	Step Step
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed at %s step: %v", e.Step, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a checkpoint store failure. When the failure
// happens after a successful generation, Answer carries the generated
// text so the user-visible reply is not lost even though it was not
// saved.
type PersistenceError struct {
	Op     string // "load", "save" or "delete"
	Answer string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("checkpoint %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
