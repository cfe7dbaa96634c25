package textbuf

import (
	"fmt"

	"github.com/dshills/multibuf/internal/coords"
)

// Bias controls how an anchor behaves when text is inserted exactly at
// its position: a left-biased anchor stays before the insertion, a
// right-biased anchor moves after it.
type Bias uint8

const (
	// BiasLeft keeps the anchor attached to the text before it.
	BiasLeft Bias = iota

	// BiasRight keeps the anchor attached to the text after it.
	BiasRight
)

// String returns the bias name.
func (b Bias) String() string {
	if b == BiasRight {
		return "right"
	}
	return "left"
}

// Anchor is a stable position within one buffer. It records the offset
// at a specific version; resolution against a later snapshot replays
// the intervening edits, so the anchor tracks the text it was created
// next to rather than a fixed offset.
type Anchor struct {
	// Version is the buffer version the offset is valid at.
	Version Version

	// Offset is the byte offset at Version.
	Offset coords.ByteOffset

	// Bias breaks ties when an edit lands exactly at the anchor.
	Bias Bias
}

// String returns a human-readable representation of the anchor.
func (a Anchor) String() string {
	return fmt.Sprintf("@%d v%d %s", a.Offset, a.Version, a.Bias)
}

// transform shifts an anchor offset across one change.
// Offsets strictly before the replaced range are unchanged; offsets at
// or past its end shift by the delta; offsets inside the range clamp to
// the range start (left bias) or to the end of the replacement (right
// bias). An insertion exactly at the offset honors the bias.
func transform(offset coords.ByteOffset, bias Bias, c Change) coords.ByteOffset {
	switch {
	case offset < c.Range.Start:
		return offset
	case offset == c.Range.Start:
		if c.Range.IsEmpty() && bias == BiasRight {
			return offset + coords.ByteOffset(len(c.NewText))
		}
		return offset
	case offset >= c.Range.End:
		return offset + c.Delta()
	default:
		// Inside the replaced range.
		if bias == BiasRight {
			return c.Range.Start + coords.ByteOffset(len(c.NewText))
		}
		return c.Range.Start
	}
}
