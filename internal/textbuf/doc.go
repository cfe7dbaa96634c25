// Package textbuf implements the source-buffer collaborator consumed by
// the aggregation engine: independently versioned text content with
// immutable snapshots, stable local anchors, and an ordered stream of
// edit notifications.
//
// A Buffer is the mutable handle; a Snapshot is a point-in-time view
// that remains valid and fully queryable after further edits. Anchors
// created against one version resolve against any later snapshot by
// replaying the intervening edit log.
//
// The edit log is retained for the buffer's lifetime so that anchors
// from any version stay resolvable, and each snapshot pins the log
// prefix up to its version. Memory therefore grows with total edit
// history; buffers here back aggregation sessions, not long-lived
// documents, and anchor versions give no lower bound for safe
// compaction.
package textbuf
