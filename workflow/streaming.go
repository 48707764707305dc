package workflow

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/internup/coachflow/conversation"
	"github.com/internup/coachflow/generate"
)

// RunStream executes one turn with the reply delivered as incremental
// fragments. The turn topology and state handling match Run exactly; only
// the respond step runs in fragment mode.
//
// The turn commits after the caller drains the stream to io.EOF. Closing
// the stream before that abandons the turn: the generator call is
// cancelled and nothing is persisted.
func (e *Engine) RunStream(ctx context.Context, req Request) (*TurnStream, error) {
	t, err := e.begin(ctx, req)
	if err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	src, err := e.generator.GenerateStream(streamCtx, respondPrompt(t.state))
	if err != nil {
		cancel()
		return nil, &GenerationError{Step: StepRespond, Err: err}
	}

	return &TurnStream{
		engine: e,
		ctx:    ctx,
		cancel: cancel,
		src:    src,
		turn:   t,
	}, nil
}

// TurnStream is one in-flight streaming turn. Recv yields reply fragments
// in order and returns io.EOF once the turn has committed. Not safe for
// concurrent use.
type TurnStream struct {
	engine *Engine
	ctx    context.Context
	cancel context.CancelFunc
	src    generate.Stream
	turn   *turn

	buf      strings.Builder
	finished bool
	finalErr error

	closeOnce sync.Once
}

// Recv returns the next reply fragment. After the generator finishes, the
// remaining steps run and the turn commits; Recv then returns io.EOF, or
// the turn's terminal error. Once terminal, further calls repeat the same
// result.
func (s *TurnStream) Recv() (string, error) {
	if s.finished {
		if s.finalErr != nil {
			return "", s.finalErr
		}
		return "", io.EOF
	}

	for {
		frag, err := s.src.Recv()
		if errors.Is(err, io.EOF) {
			s.finished = true
			s.cancel()
			s.finalErr = s.commit()
			if s.finalErr != nil {
				return "", s.finalErr
			}
			return "", io.EOF
		}
		if err != nil {
			s.finished = true
			s.cancel()
			s.finalErr = &GenerationError{Step: StepRespond, Err: err}
			return "", s.finalErr
		}
		if frag == "" {
			continue
		}
		s.buf.WriteString(frag)
		return frag, nil
	}
}

// commit runs the post-respond steps once the fragment stream is
// exhausted.
func (s *TurnStream) commit() error {
	err := s.engine.finish(s.ctx, s.turn, s.buf.String())
	if err != nil {
		var pe *PersistenceError
		if errors.As(err, &pe) && pe.Answer != "" {
			// The caller already holds the full reply; surface the
			// persistence failure while keeping the final state readable.
			return err
		}
	}
	return err
}

// Final returns the committed state after Recv has reached io.EOF. Before
// that, or after an abandoned turn, it returns the terminal error.
func (s *TurnStream) Final() (*conversation.State, error) {
	if !s.finished {
		return nil, errors.New("stream not drained")
	}
	if s.finalErr != nil {
		var pe *PersistenceError
		if errors.As(s.finalErr, &pe) && pe.Answer != "" {
			return s.turn.state, s.finalErr
		}
		return nil, s.finalErr
	}
	return s.turn.state, nil
}

// Close abandons the turn if it has not finished: the generator call is
// cancelled and nothing is persisted. Closing a finished stream is a
// no-op.
func (s *TurnStream) Close() error {
	s.closeOnce.Do(func() {
		if !s.finished {
			s.finished = true
			s.finalErr = context.Canceled
			s.engine.logger.Debug("streaming turn abandoned: thread=%s", s.turn.threadKey)
		}
		s.cancel()
		_ = s.src.Close()
	})
	return nil
}
