package multibuf

import (
	"strings"

	"github.com/dshills/multibuf/internal/coords"
	"github.com/dshills/multibuf/internal/sumtree"
	"github.com/dshills/multibuf/internal/textbuf"
)

// Snapshot is an immutable view of the aggregate at one point in time.
// It captures the excerpt index, the locator assignments, and a
// snapshot of every referenced buffer, so all queries answer
// consistently even while the originating MultiBuffer keeps mutating.
type Snapshot struct {
	tree     sumtree.Tree
	locators map[ExcerptID]sumtree.Locator
	buffers  map[BufferID]textbuf.Snapshot
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		locators: make(map[ExcerptID]sumtree.Locator),
		buffers:  make(map[BufferID]textbuf.Snapshot),
	}
}

// Len returns the aggregate byte length.
func (s *Snapshot) Len() ByteOffset {
	return s.tree.Summary().Text.Bytes
}

// LineCount returns the number of lines. Every excerpt's extent is
// newline-terminated, so this equals the newline count.
func (s *Snapshot) LineCount() uint32 {
	return s.tree.Summary().Text.Lines
}

// Summary returns aggregate statistics over all live excerpts.
func (s *Snapshot) Summary() TextSummary {
	return s.tree.Summary().Text
}

// ExcerptCount returns the number of live excerpts.
func (s *Snapshot) ExcerptCount() int {
	return s.tree.Len()
}

// Text materializes the full aggregate document.
func (s *Snapshot) Text() string {
	var sb strings.Builder
	sb.Grow(int(s.Len()))
	for _, it := range s.tree.Items() {
		sb.WriteString(s.materialize(it))
	}
	return sb.String()
}

// Excerpts returns information about every live excerpt in order.
func (s *Snapshot) Excerpts() []ExcerptInfo {
	items := s.tree.Items()
	infos := make([]ExcerptInfo, 0, len(items))
	var offset ByteOffset
	for _, it := range items {
		info := s.excerptInfo(it, offset)
		infos = append(infos, info)
		offset += it.Summary.Bytes
	}
	return infos
}

// ExcerptAt returns the excerpt containing the given aggregate offset
// and the offset's position within the excerpt's materialized extent.
// An offset exactly at a boundary belongs to the following excerpt.
func (s *Snapshot) ExcerptAt(offset ByteOffset) (ExcerptInfo, ByteOffset, bool) {
	it, base, ok := s.tree.SeekOffset(offset)
	if !ok {
		return ExcerptInfo{}, 0, false
	}
	return s.excerptInfo(it, base.Text.Bytes), offset - base.Text.Bytes, true
}

// OffsetOf converts an excerpt-local offset (within the materialized
// extent) to an aggregate offset. Fails with ErrUnknownExcerpt if the
// excerpt is not live.
func (s *Snapshot) OffsetOf(id ExcerptID, local ByteOffset) (ByteOffset, error) {
	loc, ok := s.locators[id]
	if !ok {
		return 0, ErrUnknownExcerpt
	}
	it, base, _ := s.tree.SeekLocator(loc)
	if local < 0 {
		local = 0
	}
	if local > it.Summary.Bytes {
		local = it.Summary.Bytes
	}
	return base.Text.Bytes + local, nil
}

// OffsetToPoint converts an aggregate byte offset to a line/column
// point. Offsets outside the aggregate clamp to its ends.
func (s *Snapshot) OffsetToPoint(offset ByteOffset) Point {
	if offset <= 0 {
		return Point{}
	}
	if offset >= s.Len() {
		return s.tree.Summary().Text.Extent()
	}
	it, base, _ := s.tree.SeekOffset(offset)
	local := coords.OffsetToPoint(s.materialize(it), offset-base.Text.Bytes)
	return Point{Line: base.Text.Lines + local.Line, Column: local.Column}
}

// PointToOffset converts a line/column point to an aggregate byte
// offset. Columns past a line's end clamp to the line end; rows past
// the aggregate clamp to its end.
func (s *Snapshot) PointToOffset(point Point) ByteOffset {
	if s.tree.Len() == 0 {
		return 0
	}
	if point.Line >= s.LineCount() {
		return s.Len()
	}
	it, base, _ := s.tree.SeekPoint(point)
	local := coords.PointToOffset(s.materialize(it), Point{
		Line:   point.Line - base.Text.Lines,
		Column: point.Column,
	})
	return base.Text.Bytes + local
}

// BufferSnapshot returns the captured snapshot of one referenced buffer.
func (s *Snapshot) BufferSnapshot(id BufferID) (BufferSnapshot, bool) {
	snap, ok := s.buffers[id]
	return snap, ok
}

// logicalRange resolves an item's anchors against its buffer snapshot.
func (s *Snapshot) logicalRange(it sumtree.Item) Range {
	return logicalRangeIn(it, s.buffers[it.Buffer])
}

// paddedRange widens an item's logical range to whole lines, extended
// by the item's context padding and clamped to the buffer's extent.
func (s *Snapshot) paddedRange(it sumtree.Item) Range {
	return paddedRangeIn(it, s.buffers[it.Buffer])
}

// materialize returns an item's current extent text: the padded slice
// plus a separator newline when the slice lacks one.
func (s *Snapshot) materialize(it sumtree.Item) string {
	return materializeIn(it, s.buffers[it.Buffer])
}

func (s *Snapshot) excerptInfo(it sumtree.Item, offset ByteOffset) ExcerptInfo {
	buf := s.buffers[it.Buffer]
	logical := logicalRangeIn(it, buf)
	return ExcerptInfo{
		ID:          it.ID,
		Buffer:      it.Buffer,
		Range:       Range{Start: offset, End: offset + it.Summary.Bytes},
		BufferRange: paddedRangeIn(it, buf),
		Lines: LineRange{
			Start: buf.OffsetToPoint(logical.Start).Line,
			End:   logicalEndLine(logical, buf),
		},
		Padding: it.Padding,
		Text:    materializeIn(it, buf),
	}
}

// logicalRangeIn resolves an item's anchors against a buffer snapshot.
func logicalRangeIn(it sumtree.Item, buf textbuf.Snapshot) Range {
	start := buf.ResolveAnchor(it.Start)
	end := buf.ResolveAnchor(it.End)
	if end < start {
		end = start
	}
	return Range{Start: start, End: end}
}

// logicalEndLine returns the exclusive end line of a logical range.
// The end anchor normally sits at a line start; if an edit left it
// mid-line, the partial line is included.
func logicalEndLine(logical Range, buf textbuf.Snapshot) uint32 {
	endPoint := buf.OffsetToPoint(logical.End)
	if endPoint.Column > 0 {
		return endPoint.Line + 1
	}
	return endPoint.Line
}

// paddedRangeIn widens an item's logical range to whole lines, extended
// by the item's context padding and clamped to the buffer's extent.
func paddedRangeIn(it sumtree.Item, buf textbuf.Snapshot) Range {
	logical := logicalRangeIn(it, buf)

	startLine := buf.OffsetToPoint(logical.Start).Line
	if startLine > it.Padding.Before {
		startLine -= it.Padding.Before
	} else {
		startLine = 0
	}
	endLine := logicalEndLine(logical, buf) + it.Padding.After

	return Range{
		Start: buf.LineStartOffset(startLine),
		End:   buf.LineStartOffset(endLine),
	}
}

// materializeIn returns an item's extent text against a buffer
// snapshot: the padded slice plus a separator newline when the slice
// lacks one.
func materializeIn(it sumtree.Item, buf textbuf.Snapshot) string {
	text := buf.Slice(paddedRangeIn(it, buf))
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text
}

func cloneLocators(src map[ExcerptID]sumtree.Locator) map[ExcerptID]sumtree.Locator {
	out := make(map[ExcerptID]sumtree.Locator, len(src)+1)
	for k, v := range src {
		out[k] = v
	}
	return out
}

func cloneBuffers(src map[BufferID]textbuf.Snapshot) map[BufferID]textbuf.Snapshot {
	out := make(map[BufferID]textbuf.Snapshot, len(src)+1)
	for k, v := range src {
		out[k] = v
	}
	return out
}
