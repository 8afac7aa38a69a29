// Package repositories implements SQLite persistence for the download history.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [DownloadRepository] : History of every acquisition that reached a terminal state
//
// Sequence numbers provide stable, human-readable ordering (e.g., download #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
