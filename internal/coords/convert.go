package coords

import "strings"

// OffsetToPoint converts a byte offset within text to a line/column point.
// Offsets past the end of the text clamp to the final point.
func OffsetToPoint(text string, offset ByteOffset) Point {
	if offset <= 0 {
		return Point{}
	}
	if offset > ByteOffset(len(text)) {
		offset = ByteOffset(len(text))
	}

	prefix := text[:offset]
	line := CountLines(prefix)
	lastNL := strings.LastIndexByte(prefix, '\n')
	return Point{
		Line:   line,
		Column: uint32(int(offset) - lastNL - 1),
	}
}

// PointToOffset converts a line/column point within text to a byte offset.
// Points past the end of a line clamp to the line's end; points past the
// last line clamp to the end of the text.
func PointToOffset(text string, point Point) ByteOffset {
	offset := 0
	for line := uint32(0); line < point.Line; line++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return ByteOffset(len(text))
		}
		offset += nl + 1
	}

	lineEnd := strings.IndexByte(text[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(text) - offset
	}
	col := int(point.Column)
	if col > lineEnd {
		col = lineEnd
	}
	return ByteOffset(offset + col)
}

// LineStartOffset returns the byte offset of the start of the given line.
// Lines past the end clamp to the end of the text.
func LineStartOffset(text string, line uint32) ByteOffset {
	offset := 0
	for l := uint32(0); l < line; l++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return ByteOffset(len(text))
		}
		offset += nl + 1
	}
	return ByteOffset(offset)
}
