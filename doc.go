// Coachflow - Stateful Conversation Orchestration for LLM Coaches
//
// Coachflow runs multi-turn coaching conversations against an LLM provider.
// Every turn moves through a fixed pipeline: record the user input, generate
// the coach's reply, refresh the user/coach association, and summarize the
// conversation once it grows past a threshold. The resulting state is
// checkpointed per user/coach thread, so conversations survive restarts and
// can be resumed, forked, inspected, or reset.
//
// # Quick Start
//
// Install the package:
//
//	go get github.com/internup/coachflow
//
// Basic example:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/internup/coachflow/coach"
//		"github.com/internup/coachflow/generate"
//		"github.com/internup/coachflow/store/memory"
//		"github.com/internup/coachflow/workflow"
//	)
//
//	func main() {
//		gen := generate.NewOpenAIGenerator(generate.OpenAIOptions{})
//		engine := workflow.New(gen, memory.NewMemoryCheckpointStore(), coach.DefaultRegistry())
//
//		answer, _, err := engine.Run(context.Background(), workflow.Request{
//			UserID:  "alice",
//			CoachID: "career_assessment",
//			Input:   "I want to move into engineering management.",
//		})
//		if err != nil {
//			panic(err)
//		}
//		fmt.Println(answer)
//	}
//
// Streaming delivery uses the same pipeline; the turn commits only after
// the caller drains the stream:
//
//	stream, err := engine.RunStream(ctx, req)
//	if err != nil {
//		return err
//	}
//	defer stream.Close()
//	for {
//		frag, err := stream.Recv()
//		if errors.Is(err, io.EOF) {
//			break
//		}
//		if err != nil {
//			return err
//		}
//		fmt.Print(frag)
//	}
//
// # Packages
//
//   - workflow: the turn engine, step transitions, streaming and reset
//   - coach: the registry of coach identities
//   - conversation: messages, normalization, per-thread state
//   - generate: LLM backends (OpenAI and langchaingo)
//   - store: the checkpoint store contract, with memory, Redis, SQLite and
//     Postgres backends
//   - history: transcript replay over the write log
//   - log: the logging facade used across the module
//
// # Persistence Model
//
// A thread key is "userID_coachID", with a random suffix for forked
// threads. Each committed turn saves one checkpoint snapshot plus the
// step writes that produced it, atomically. Summarization keeps the
// checkpoint bounded; the write log keeps the full transcript.
package coachflow
