// Package sqlite provides a file-based CheckpointStore using SQLite.
//
// Best for single-process deployments and development: zero configuration,
// ACID transactions, conversation history in a single file.
//
// Example:
//
//	store, err := sqlite.NewSqliteCheckpointStore(sqlite.SqliteOptions{
//	    Path: "./conversations.db",
//	})
package sqlite
