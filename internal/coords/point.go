package coords

import "fmt"

// ByteOffset represents a byte position in a buffer or in the aggregate
// document. This is the fundamental position type.
type ByteOffset = int64

// Point represents a line and column position.
// Both Line and Column are 0-indexed. Column is measured in bytes from
// the start of the line.
type Point struct {
	Line   uint32 // 0-indexed line number
	Column uint32 // 0-indexed column (byte offset within line)
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}
