// Package workflow implements the conversation orchestration engine.
//
// Each caller input runs one turn through a fixed step machine:
//
//	START → RESPOND → CONNECT → {SUMMARIZE → END | END}
//
// RESPOND appends exactly one assistant message produced by the response
// generator. CONNECT is a pass-through marking the point where the
// transition policy is evaluated. SUMMARIZE fires once the message count
// reaches the configured trigger; it folds older history into the running
// summary and purges the superseded messages by id.
//
// State is persisted per thread key through a store.CheckpointStore. A
// turn commits all-or-nothing: if generation fails nothing is persisted,
// and if persistence fails after a successful generation the answer is
// still returned to the caller alongside a PersistenceError.
//
// The engine does not coordinate concurrent turns on the same thread key;
// it assumes at most one in-flight turn per thread. Callers running turns
// concurrently on one thread key get last-write-wins persistence and
// should serialize per thread key at the integration layer. Turns on
// distinct thread keys are independent and safe to run concurrently.
package workflow
