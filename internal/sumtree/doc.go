// Package sumtree implements the excerpt index: a persistent, balanced
// B+ tree of excerpt entries ordered by aggregate position. Internal
// nodes cache the combined summary of their subtree, so converting
// between aggregate offsets, points, and excerpt-local coordinates
// descends exactly one child per level.
//
// Every mutation returns a new Tree that shares unchanged subtrees with
// its predecessor; an older Tree remains valid and fully queryable while
// a newer one is built.
//
// Mutations do not report which entries shifted position. Items after
// an insertion or removal move implicitly, and the aggregate layer
// conveys the invalidated region to consumers through its edit events,
// whose old range covers every shifted entry.
package sumtree
