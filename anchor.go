package multibuf

import (
	"github.com/dshills/multibuf/internal/sumtree"
	"github.com/dshills/multibuf/internal/textbuf"
)

// Anchor is a stable aggregate position: a tagged reference to an
// excerpt plus a local anchor in the excerpt's source buffer, resolved
// on demand. It survives arbitrary edits to the source buffer and
// outlives the excerpt itself: resolving against a snapshot where the
// excerpt was removed yields a Dangling resolution, not an error.
type Anchor struct {
	// Excerpt is the id of the excerpt the anchor was created in.
	Excerpt ExcerptID

	// Locator is the excerpt's position label, retained so a dangling
	// anchor still resolves deterministically relative to the excerpts
	// that surrounded it.
	Locator sumtree.Locator

	// Local is the stable position within the source buffer.
	Local textbuf.Anchor
}

// Resolution is the outcome of resolving an anchor. Dangling reports
// that the anchor's excerpt has been removed and the position is the
// deterministic fallback: the end of the nearest preceding surviving
// excerpt, or the start of the aggregate when none precedes.
type Resolution struct {
	Offset   ByteOffset
	Point    Point
	Dangling bool
}

// AnchorAt creates an anchor at the given aggregate offset. The offset
// must lie within the aggregate; fails with ErrOffsetOutOfRange
// otherwise, and with ErrUnknownExcerpt when the aggregate is empty.
func (s *Snapshot) AnchorAt(offset ByteOffset, bias Bias) (Anchor, error) {
	if offset < 0 || offset > s.Len() {
		return Anchor{}, ErrOffsetOutOfRange
	}
	it, base, ok := s.tree.SeekOffset(offset)
	if !ok {
		return Anchor{}, ErrUnknownExcerpt
	}

	buf := s.buffers[it.Buffer]
	padded := s.paddedRange(it)
	local := offset - base.Text.Bytes
	// Positions in the synthetic separator newline clamp to the end of
	// the underlying slice.
	if local > padded.Len() {
		local = padded.Len()
	}
	return Anchor{
		Excerpt: it.ID,
		Locator: it.Locator,
		Local:   buf.AnchorAt(padded.Start+local, bias),
	}, nil
}

// Resolve maps an anchor to a live aggregate position.
func (s *Snapshot) Resolve(a Anchor) Resolution {
	loc, live := s.locators[a.Excerpt]
	if !live {
		return s.resolveDangling(a)
	}

	it, base, ok := s.tree.SeekLocator(loc)
	if !ok {
		return s.resolveDangling(a)
	}

	buf := s.buffers[it.Buffer]
	padded := s.paddedRange(it)
	bufferOffset := buf.ResolveAnchor(a.Local)

	local := bufferOffset - padded.Start
	if local < 0 {
		local = 0
	}
	if max := padded.Len(); local > max {
		local = max
	}

	offset := base.Text.Bytes + local
	return Resolution{Offset: offset, Point: s.OffsetToPoint(offset)}
}

// resolveDangling applies the removal fallback: clamp to the end of the
// surviving excerpt with the greatest locator below the anchor's, or to
// the aggregate start when no such excerpt remains.
func (s *Snapshot) resolveDangling(a Anchor) Resolution {
	it, base, ok := s.tree.PrecedingLocator(a.Locator)
	if !ok {
		return Resolution{Dangling: true}
	}
	offset := base.Text.Bytes + it.Summary.Bytes
	return Resolution{
		Offset:   offset,
		Point:    s.OffsetToPoint(offset),
		Dangling: true,
	}
}
