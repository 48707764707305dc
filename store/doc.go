// Package store defines checkpoint persistence for conversation threads.
//
// A checkpoint is the latest full snapshot of a thread's conversation
// state plus an append log of the incremental writes that produced it.
// The snapshot is what the workflow engine loads at the start of a turn;
// the write log exists for replay and for the admin history view.
//
// Four backends implement CheckpointStore:
//   - store/memory: in-process map, for tests and single-node setups
//   - store/sqlite: file-based, zero-configuration persistence
//   - store/postgres: production deployments with connection pooling
//   - store/redis: high-throughput deployments, optional TTL
//
// All backends commit a turn's snapshot and writes together, so a failed
// save never leaves a thread half-recorded.
package store
