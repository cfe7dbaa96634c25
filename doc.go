// Package multibuf presents disjoint excerpts of independently edited
// text buffers as a single contiguous, navigable document.
//
// Callers create excerpts through the MultiBuffer management API;
// source buffers push their edits through subscriptions the engine
// maintains automatically. Both paths update a persistent excerpt
// index from which all coordinate conversions, anchor resolutions, and
// summary queries read.
//
// Mutations are serialized through one logical writer per MultiBuffer.
// Readers work against immutable Snapshot values and never observe a
// partially applied mutation; an older snapshot remains fully queryable
// while newer ones are built.
//
// Every excerpt materializes as its padded line range plus a trailing
// newline when the underlying slice lacks one, so excerpt boundaries
// always fall on line boundaries. An aggregate offset exactly at a
// boundary belongs to the following excerpt; the aggregate end belongs
// to the last excerpt.
package multibuf
