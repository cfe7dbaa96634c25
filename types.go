package multibuf

import (
	"github.com/dshills/multibuf/internal/coords"
	"github.com/dshills/multibuf/internal/sumtree"
	"github.com/dshills/multibuf/internal/textbuf"
)

// Re-export commonly used types for convenience.
type (
	// ByteOffset is a byte position in a buffer or in the aggregate.
	ByteOffset = coords.ByteOffset

	// Point represents a line/column position.
	Point = coords.Point

	// Range represents a byte range.
	Range = coords.Range

	// LineRange represents a half-open range of lines.
	LineRange = coords.LineRange

	// Edit represents a text edit operation.
	Edit = coords.Edit

	// TextSummary holds aggregated metrics for a text span.
	TextSummary = coords.TextSummary

	// Buffer is an independently versioned source text buffer.
	Buffer = textbuf.Buffer

	// BufferID identifies a source buffer.
	BufferID = textbuf.BufferID

	// BufferSnapshot is an immutable view of a source buffer.
	BufferSnapshot = textbuf.Snapshot

	// Bias breaks ties when an edit lands exactly at an anchor.
	Bias = textbuf.Bias

	// ExcerptID identifies an excerpt for the aggregate's lifetime.
	ExcerptID = sumtree.ExcerptID

	// Padding is extra context lines materialized around an excerpt.
	Padding = sumtree.Padding
)

// Re-export constants.
const (
	BiasLeft  = textbuf.BiasLeft
	BiasRight = textbuf.BiasRight
)

// NewBuffer creates a source buffer with the given initial content.
func NewBuffer(text string) *Buffer {
	return textbuf.NewBuffer(text)
}

// ExcerptSpec describes an excerpt to create: a line range of one
// buffer plus optional context padding.
type ExcerptSpec struct {
	// Buffer is the source buffer.
	Buffer *Buffer

	// Lines is the logical line range [Start, End) to excerpt.
	Lines LineRange

	// Padding is extra context materialized around the range.
	Padding Padding
}

// ExcerptInfo describes one live excerpt as seen by a snapshot.
type ExcerptInfo struct {
	// ID is the excerpt's stable identity.
	ID ExcerptID

	// Buffer identifies the source buffer.
	Buffer BufferID

	// Range is the excerpt's aggregate byte range, separator included.
	Range Range

	// BufferRange is the padded byte range in the source buffer.
	BufferRange Range

	// Lines is the current logical line range in the source buffer.
	Lines LineRange

	// Padding is the excerpt's current context padding.
	Padding Padding

	// Text is the materialized extent, separator newline included.
	Text string
}

// Event describes the net effect of one mutation in aggregate
// coordinates. OldRange is expressed in the pre-mutation aggregate,
// NewRange in the post-mutation aggregate; NewText is the text now
// occupying NewRange. Consumers applying events one at a time, in
// order, stay synchronized with the aggregate.
type Event struct {
	OldRange Range
	NewRange Range
	NewText  string
}

// Delta returns the change in aggregate length described by the event.
func (e Event) Delta() ByteOffset {
	return e.NewRange.Len() - e.OldRange.Len()
}
