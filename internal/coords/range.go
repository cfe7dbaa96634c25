package coords

import "fmt"

// Range represents a byte range.
// Start is inclusive, End is exclusive: [Start, End).
type Range struct {
	Start ByteOffset // Inclusive start position
	End   ByteOffset // Exclusive end position
}

// NewRange creates a new Range from start and end offsets.
func NewRange(start, end ByteOffset) Range {
	return Range{Start: start, End: end}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

// Len returns the length of the range in bytes.
func (r Range) Len() ByteOffset {
	return r.End - r.Start
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsValid returns true if the range is valid (Start <= End).
func (r Range) IsValid() bool {
	return r.Start <= r.End
}

// Touches returns true if this range overlaps or abuts another range.
// Two ranges that merely share a boundary still touch.
func (r Range) Touches(other Range) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// LineRange represents a half-open range of lines [Start, End).
type LineRange struct {
	Start uint32 // Inclusive first line
	End   uint32 // Exclusive end line
}

// String returns a human-readable representation of the line range.
func (r LineRange) String() string {
	return fmt.Sprintf("lines[%d:%d)", r.Start, r.End)
}

// Len returns the number of lines in the range.
func (r LineRange) Len() uint32 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// IsValid returns true if Start <= End.
func (r LineRange) IsValid() bool {
	return r.Start <= r.End
}
