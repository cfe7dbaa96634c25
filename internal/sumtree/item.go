package sumtree

import (
	"github.com/dshills/multibuf/internal/coords"
	"github.com/dshills/multibuf/internal/textbuf"
)

// ExcerptID uniquely identifies an excerpt for the lifetime of one
// aggregate instance. IDs are assigned from a monotonic counter and
// never reused after removal.
type ExcerptID uint64

// Padding is the number of extra context lines materialized before and
// after an excerpt's logical line range.
type Padding struct {
	Before uint32
	After  uint32
}

// IsZero returns true if no padding is applied.
func (p Padding) IsZero() bool {
	return p.Before == 0 && p.After == 0
}

// Item is one excerpt entry in the index: a window into a source buffer
// bounded by stable local anchors, plus the cached summary of its
// current materialized extent (padding and separator included).
type Item struct {
	// ID is the excerpt's stable identity.
	ID ExcerptID

	// Locator is the excerpt's immutable position label.
	Locator Locator

	// Buffer identifies the source buffer.
	Buffer textbuf.BufferID

	// Start and End anchor the excerpt's logical line range in the
	// source buffer's own coordinate space. Both sit at line starts;
	// End is exclusive.
	Start textbuf.Anchor
	End   textbuf.Anchor

	// Padding is the extra context currently materialized around the
	// logical range.
	Padding Padding

	// Summary caches the metrics of the materialized extent.
	Summary coords.TextSummary
}

// Summary is the sum-tree monoid over excerpt items: combined text
// metrics, the item count, and the greatest locator in the span (the
// rightmost, since aggregate order and locator order coincide).
type Summary struct {
	Text  coords.TextSummary
	Count int
	Max   Locator
}

// Add combines two adjacent summaries.
func (s Summary) Add(other Summary) Summary {
	if other.Count == 0 {
		return s
	}
	if s.Count == 0 {
		return other
	}
	return Summary{
		Text:  s.Text.Add(other.Text),
		Count: s.Count + other.Count,
		Max:   other.Max,
	}
}

func itemSummary(it Item) Summary {
	return Summary{Text: it.Summary, Count: 1, Max: it.Locator}
}
