package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/internup/coachflow/coach"
	"github.com/internup/coachflow/conversation"
	"github.com/internup/coachflow/generate"
	"github.com/internup/coachflow/log"
	"github.com/internup/coachflow/store"
)

const (
	// DefaultSummaryTrigger is the message count at which summarization
	// fires (inclusive).
	DefaultSummaryTrigger = 30

	// DefaultKeepAfterSummary is how many of the newest messages survive
	// a summarization.
	DefaultKeepAfterSummary = 5
)

// Engine drives the conversation step machine. Build it once at process
// start and share it across request handlers; it is stateless between
// turns apart from the checkpoint store.
type Engine struct {
	generator        generate.Generator
	store            store.CheckpointStore
	coaches          *coach.Registry
	summaryTrigger   int
	keepAfterSummary int
	logger           log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSummaryTrigger sets the message count that triggers summarization.
func WithSummaryTrigger(n int) Option {
	return func(e *Engine) { e.summaryTrigger = n }
}

// WithKeepAfterSummary sets how many recent messages summarization keeps.
func WithKeepAfterSummary(n int) Option {
	return func(e *Engine) { e.keepAfterSummary = n }
}

// WithLogger sets the engine logger.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an engine over a generator, a checkpoint store and a coach
// registry.
func New(generator generate.Generator, st store.CheckpointStore, coaches *coach.Registry, opts ...Option) *Engine {
	e := &Engine{
		generator:        generator,
		store:            st,
		coaches:          coaches,
		summaryTrigger:   DefaultSummaryTrigger,
		keepAfterSummary: DefaultKeepAfterSummary,
		logger:           log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request carries one caller turn.
type Request struct {
	// UserID identifies the user. Required.
	UserID string

	// CoachID selects the coach configuration. Required; must be
	// registered.
	CoachID string

	// Input is the raw caller input: a string, a []string, or a list of
	// {role, content} records. See conversation.NormalizeMessages.
	Input any

	// UserContext is free-text background about the user.
	UserContext string

	// SessionGoals are the caller's goals for this session.
	SessionGoals []string

	// NewThread forks a fresh conversation lineage instead of resuming
	// the stable (user, coach) thread.
	NewThread bool
}

// ResetResult reports what a reset deleted.
type ResetResult struct {
	CheckpointsDeleted int64 `json:"checkpoints_deleted"`
	WritesDeleted      int64 `json:"writes_deleted"`
}

// turn is the per-invocation context shared by Run and RunStream.
type turn struct {
	threadKey string
	state     *conversation.State
	version   int
	writes    []*store.Write
}

// begin validates the request, resolves the thread key, loads or
// initializes state and appends the normalized caller input.
func (e *Engine) begin(ctx context.Context, req Request) (*turn, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidInput)
	}
	identity, err := e.coaches.Get(req.CoachID)
	if err != nil {
		return nil, err
	}
	incoming, err := conversation.NormalizeMessages(req.Input)
	if err != nil {
		return nil, err
	}

	threadKey := conversation.ResolveThreadKey(req.UserID, identity.ID, req.NewThread)

	t := &turn{threadKey: threadKey}
	cp, err := e.store.Load(ctx, threadKey)
	switch {
	case err == nil:
		t.state = cp.State
		t.version = cp.Version
	case errors.Is(err, store.ErrNotFound):
		t.state = &conversation.State{UserID: req.UserID}
	default:
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	// Identity and caller context always reflect the current request;
	// steps treat them as read-only.
	t.state.Coach = identity
	t.state.UserID = req.UserID
	t.state.UserContext = req.UserContext
	t.state.SessionGoals = req.SessionGoals

	if len(incoming) > 0 {
		w := store.NewWrite(threadKey, stepInput)
		for _, m := range incoming {
			w.Messages = append(w.Messages, t.state.Append(m.Role, m.Content))
		}
		t.writes = append(t.writes, w)
	}

	e.logger.Debug("turn started: thread=%s messages=%d", threadKey, len(t.state.Messages))
	return t, nil
}

// finish runs the steps after the assistant reply is known: record the
// respond write, evaluate the transition policy, summarize if due, and
// commit the turn.
func (e *Engine) finish(ctx context.Context, t *turn, answer string) error {
	asst := t.state.Append(conversation.RoleAssistant, answer)
	w := store.NewWrite(t.threadKey, string(StepRespond))
	w.Messages = []conversation.Message{asst}
	t.writes = append(t.writes, w)

	e.connect(t.state)

	if NextStep(t.state, e.summaryTrigger) == StepSummarize {
		summary, removeIDs, err := e.summarize(ctx, t.state)
		if err != nil {
			return err
		}
		t.state.Summary = summary
		t.state.Remove(removeIDs)

		sw := store.NewWrite(t.threadKey, string(StepSummarize))
		sw.Summary = summary
		sw.RemovedIDs = removeIDs
		t.writes = append(t.writes, sw)
		e.logger.Info("summarized thread %s: purged %d messages", t.threadKey, len(removeIDs))
	}

	cp := &store.Checkpoint{
		ThreadKey: t.threadKey,
		State:     t.state,
		Timestamp: time.Now(),
		Version:   t.version + 1,
	}
	if err := e.store.Save(ctx, cp, t.writes); err != nil {
		e.logger.Error("checkpoint save failed for thread %s: %v", t.threadKey, err)
		return &PersistenceError{Op: "save", Answer: answer, Err: err}
	}

	e.logger.Debug("turn committed: thread=%s version=%d messages=%d",
		t.threadKey, cp.Version, len(t.state.Messages))
	return nil
}

// Run executes one blocking turn and returns the assistant reply and the
// final state.
//
// If persistence fails after a successful generation, the reply text and
// state are still returned together with a *PersistenceError, so callers
// can deliver the answer while reporting that it was not saved.
func (e *Engine) Run(ctx context.Context, req Request) (string, *conversation.State, error) {
	t, err := e.begin(ctx, req)
	if err != nil {
		return "", nil, err
	}

	answer, err := e.respond(ctx, t.state)
	if err != nil {
		return "", nil, err
	}

	if err := e.finish(ctx, t, answer); err != nil {
		var pe *PersistenceError
		if errors.As(err, &pe) && pe.Answer != "" {
			return answer, t.state, err
		}
		return "", nil, err
	}
	return answer, t.state, nil
}

// Reset deletes all checkpoints and writes for one user's threads, or for
// every thread when userID is empty. Idempotent: resetting a clean store
// reports zero deletions.
func (e *Engine) Reset(ctx context.Context, userID string) (ResetResult, error) {
	var (
		checkpoints, writes int64
		err                 error
	)
	if userID == "" {
		checkpoints, writes, err = e.store.DeleteAll(ctx)
	} else {
		checkpoints, writes, err = e.store.DeleteForUser(ctx, userID)
	}
	if err != nil {
		return ResetResult{}, &PersistenceError{Op: "delete", Err: err}
	}

	e.logger.Info("reset user=%q: checkpoints=%d writes=%d", userID, checkpoints, writes)
	return ResetResult{CheckpointsDeleted: checkpoints, WritesDeleted: writes}, nil
}
