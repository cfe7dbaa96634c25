package textbuf

import (
	"github.com/dshills/multibuf/internal/coords"
)

// Snapshot is an immutable point-in-time view of a buffer. It is safe
// for concurrent access and never changes after creation, even while the
// originating buffer continues to be edited.
type Snapshot struct {
	id      BufferID
	text    string
	version Version
	log     []Change
}

// ID returns the identity of the originating buffer.
func (s Snapshot) ID() BufferID {
	return s.id
}

// Version returns the buffer version this snapshot captured.
func (s Snapshot) Version() Version {
	return s.version
}

// Text returns the full content.
func (s Snapshot) Text() string {
	return s.text
}

// Len returns the byte length.
func (s Snapshot) Len() coords.ByteOffset {
	return coords.ByteOffset(len(s.text))
}

// Slice returns the text within the given byte range, clamped to the
// snapshot's extent.
func (s Snapshot) Slice(r coords.Range) string {
	start := clampOffset(r.Start, s.Len())
	end := clampOffset(r.End, s.Len())
	if start >= end {
		return ""
	}
	return s.text[start:end]
}

// Extent returns aggregate statistics for the whole snapshot.
func (s Snapshot) Extent() coords.TextSummary {
	return coords.Summarize(s.text)
}

// LineCount returns the number of lines (newlines + 1).
func (s Snapshot) LineCount() uint32 {
	return coords.CountLines(s.text) + 1
}

// OffsetToPoint converts a byte offset to line/column.
func (s Snapshot) OffsetToPoint(offset coords.ByteOffset) coords.Point {
	return coords.OffsetToPoint(s.text, offset)
}

// PointToOffset converts line/column to a byte offset.
func (s Snapshot) PointToOffset(point coords.Point) coords.ByteOffset {
	return coords.PointToOffset(s.text, point)
}

// LineStartOffset returns the byte offset where the given line begins,
// clamped to the end of the snapshot.
func (s Snapshot) LineStartOffset(line uint32) coords.ByteOffset {
	return coords.LineStartOffset(s.text, line)
}

// LineByteRange returns the byte range covering the lines [start, end),
// clamped to the snapshot's extent.
func (s Snapshot) LineByteRange(lines coords.LineRange) coords.Range {
	return coords.Range{
		Start: s.LineStartOffset(lines.Start),
		End:   s.LineStartOffset(lines.End),
	}
}

// AnchorAt creates an anchor at the given offset in this snapshot's
// version, clamped to the snapshot's extent.
func (s Snapshot) AnchorAt(offset coords.ByteOffset, bias Bias) Anchor {
	return Anchor{
		Version: s.version,
		Offset:  clampOffset(offset, s.Len()),
		Bias:    bias,
	}
}

// ResolveAnchor maps an anchor created at an earlier version to a byte
// offset in this snapshot by replaying the intervening edit log.
// Anchors created at this snapshot's version resolve to their offset
// unchanged; anchors from a later version than the snapshot clamp to
// the snapshot's extent.
func (s Snapshot) ResolveAnchor(a Anchor) coords.ByteOffset {
	offset := a.Offset
	if a.Version < s.version {
		for _, c := range s.log[a.Version:s.version] {
			offset = transform(offset, a.Bias, c)
		}
	}
	return clampOffset(offset, s.Len())
}

func clampOffset(offset, max coords.ByteOffset) coords.ByteOffset {
	if offset < 0 {
		return 0
	}
	if offset > max {
		return max
	}
	return offset
}
