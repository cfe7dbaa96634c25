// Package coords provides the shared coordinate primitives for the
// aggregation engine: byte offsets, line/column points, ranges, edits,
// and the TextSummary monoid used by the excerpt sum-tree.
//
// All types are immutable values and safe to share between goroutines.
package coords
