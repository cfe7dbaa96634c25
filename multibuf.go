package multibuf

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/dshills/multibuf/internal/coords"
	"github.com/dshills/multibuf/internal/sumtree"
	"github.com/dshills/multibuf/internal/textbuf"
)

// MultiBuffer is the aggregation engine: an ordered collection of
// excerpts over one or more source buffers, indexed for logarithmic
// coordinate conversion, with stable anchors and automatic edit
// propagation.
//
// All structural mutations are serialized through one logical writer.
// Readers obtain immutable Snapshot values and never block on, or
// observe partial effects of, an in-flight mutation.
type MultiBuffer struct {
	// emitMu serializes mutations together with their event delivery so
	// the event stream never reorders.
	emitMu sync.Mutex

	mu          sync.Mutex
	snap        *Snapshot
	nextExcerpt uint64
	buffers     map[BufferID]*bufferState
	subs        []subscriber
	nextSub     int

	logger         *slog.Logger
	defaultPadding Padding
	eventBuffer    int
}

// bufferState tracks one registered source buffer: its subscription,
// the last version incorporated into the aggregate, and the live
// excerpts referencing it.
type bufferState struct {
	buf         *Buffer
	unsubscribe func()
	lastVersion textbuf.Version
	excerpts    map[ExcerptID]struct{}
}

// New creates an empty aggregate.
func New(opts ...Option) *MultiBuffer {
	m := &MultiBuffer{
		snap:        emptySnapshot(),
		buffers:     make(map[BufferID]*bufferState),
		logger:      slog.Default(),
		eventBuffer: DefaultEventBuffer,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns the current immutable view of the aggregate.
func (m *MultiBuffer) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// InsertExcerpts creates one excerpt per spec and inserts them, in
// order, before the excerpt currently at the given index (clamped to
// the excerpt count). Each excerpt receives a fresh id, never reused.
// Fails with ErrInvalidRange if any spec's line range falls outside its
// buffer's current extent; no partial mutation is committed.
func (m *MultiBuffer) InsertExcerpts(at int, specs []ExcerptSpec) ([]ExcerptID, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.mu.Lock()
	ids, events, err := m.insertLocked(at, specs)
	handlers := m.handlersLocked()
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	deliver(handlers, events)
	return ids, nil
}

func (m *MultiBuffer) insertLocked(at int, specs []ExcerptSpec) ([]ExcerptID, []Event, error) {
	tree := m.snap.tree
	if at < 0 {
		at = 0
	}
	if at > tree.Len() {
		at = tree.Len()
	}

	snaps, bufs, err := m.pinBuffersLocked(specs)
	if err != nil {
		return nil, nil, err
	}

	prev := sumtree.MinLocator()
	if at > 0 {
		it, _, _ := tree.ItemAt(at - 1)
		prev = it.Locator
	}
	next := sumtree.MaxLocator()
	if at < tree.Len() {
		it, _, _ := tree.ItemAt(at)
		next = it.Locator
	}

	ids := make([]ExcerptID, 0, len(specs))
	items := make([]sumtree.Item, 0, len(specs))
	var insertedBytes ByteOffset
	var newText string
	for _, spec := range specs {
		bs := snaps[spec.Buffer.ID()]
		padding := spec.Padding
		if padding.IsZero() {
			padding = m.defaultPadding
		}

		m.nextExcerpt++
		loc := sumtree.Between(prev, next)
		prev = loc

		item := sumtree.Item{
			ID:      ExcerptID(m.nextExcerpt),
			Locator: loc,
			Buffer:  bs.ID(),
			Start:   bs.AnchorAt(bs.LineStartOffset(spec.Lines.Start), BiasRight),
			End:     bs.AnchorAt(bs.LineStartOffset(spec.Lines.End), BiasLeft),
			Padding: clampPadding(padding, spec.Lines, bs),
		}
		text := materializeIn(item, bs)
		item.Summary = coords.Summarize(text)

		ids = append(ids, item.ID)
		items = append(items, item)
		insertedBytes += item.Summary.Bytes
		newText += text
	}

	insertOffset := offsetOfIndex(tree, at)

	locators := cloneLocators(m.snap.locators)
	buffers := cloneBuffers(m.snap.buffers)
	var registered []BufferID
	for _, item := range items {
		locators[item.ID] = item.Locator
		buffers[item.Buffer] = snaps[item.Buffer]
		if m.trackExcerptLocked(item, bufs[item.Buffer], snaps[item.Buffer]) {
			registered = append(registered, item.Buffer)
		}
	}

	m.snap = &Snapshot{
		tree:     tree.InsertAt(at, items...),
		locators: locators,
		buffers:  buffers,
	}

	events := []Event{{
		OldRange: Range{Start: insertOffset, End: insertOffset},
		NewRange: Range{Start: insertOffset, End: insertOffset + insertedBytes},
		NewText:  newText,
	}}
	events = append(events, m.catchUpLocked(registered)...)
	return ids, events, nil
}

// pinBuffersLocked resolves one buffer snapshot per spec, preferring
// the version already incorporated into the aggregate, and validates
// every spec's line range against it. Nothing is mutated; callers see
// either a full result or an error.
func (m *MultiBuffer) pinBuffersLocked(specs []ExcerptSpec) (map[BufferID]textbuf.Snapshot, map[BufferID]*Buffer, error) {
	snaps := make(map[BufferID]textbuf.Snapshot)
	bufs := make(map[BufferID]*Buffer)
	for _, spec := range specs {
		if spec.Buffer == nil {
			return nil, nil, ErrInvalidRange
		}
		id := spec.Buffer.ID()
		bufs[id] = spec.Buffer
		if _, ok := snaps[id]; ok {
			continue
		}
		if bs, ok := m.snap.buffers[id]; ok {
			snaps[id] = bs
		} else {
			snaps[id] = spec.Buffer.Snapshot()
		}
	}
	for _, spec := range specs {
		bs := snaps[spec.Buffer.ID()]
		if !spec.Lines.IsValid() || spec.Lines.End > bs.LineCount() {
			return nil, nil, ErrInvalidRange
		}
	}
	return snaps, bufs, nil
}

// trackExcerptLocked registers the excerpt with its buffer's state,
// subscribing to the buffer on first reference. Returns true when this
// call registered the buffer.
func (m *MultiBuffer) trackExcerptLocked(item sumtree.Item, buf *Buffer, bs textbuf.Snapshot) bool {
	st, ok := m.buffers[item.Buffer]
	if !ok {
		st = &bufferState{
			buf:         buf,
			lastVersion: bs.Version(),
			excerpts:    make(map[ExcerptID]struct{}),
		}
		st.unsubscribe = buf.Subscribe(m.applyChange)
		m.buffers[item.Buffer] = st
	}
	st.excerpts[item.ID] = struct{}{}
	return !ok
}

// catchUpLocked recovers edits that landed on a buffer between pinning
// its snapshot and subscribing to it: a buffer whose version moved past
// the pinned one was edited in that window and the change notified no
// one, so its excerpts are resynced from the current state. Changes
// applied after the subscription are delivered normally, and any
// notification for a version at or below the resynced one is dropped as
// stale, so each edit is incorporated exactly once.
func (m *MultiBuffer) catchUpLocked(registered []BufferID) []Event {
	var events []Event
	for _, id := range registered {
		st, ok := m.buffers[id]
		if !ok {
			continue
		}
		if st.buf.Version() != st.lastVersion {
			events = append(events, m.resyncLocked(st)...)
		}
	}
	return events
}

// RemoveExcerpts removes the given excerpts from the aggregate. Unknown
// or already-removed ids are ignored, so idempotent cleanup from
// concurrent callers is safe. Anchors into removed excerpts become
// dangling and resolve per the documented fallback.
func (m *MultiBuffer) RemoveExcerpts(ids ...ExcerptID) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.mu.Lock()
	events := m.removeLocked(ids)
	handlers := m.handlersLocked()
	m.mu.Unlock()

	deliver(handlers, events)
}

func (m *MultiBuffer) removeLocked(ids []ExcerptID) []Event {
	type removal struct {
		id  ExcerptID
		loc sumtree.Locator
	}
	var removals []removal
	seen := make(map[ExcerptID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if loc, ok := m.snap.locators[id]; ok {
			removals = append(removals, removal{id: id, loc: loc})
		}
	}
	if len(removals) == 0 {
		return nil
	}
	sort.Slice(removals, func(i, j int) bool {
		return removals[i].loc.Compare(removals[j].loc) < 0
	})

	tree := m.snap.tree
	locators := cloneLocators(m.snap.locators)
	buffers := cloneBuffers(m.snap.buffers)
	var events []Event
	for _, r := range removals {
		it, base, _ := tree.SeekLocator(r.loc)
		start := base.Text.Bytes
		tree, _ = tree.Remove(r.loc)
		delete(locators, r.id)
		m.untrackExcerptLocked(it.Buffer, r.id, buffers)

		events = append(events, Event{
			OldRange: Range{Start: start, End: start + it.Summary.Bytes},
			NewRange: Range{Start: start, End: start},
		})
	}

	m.snap = &Snapshot{tree: tree, locators: locators, buffers: buffers}
	return events
}

// untrackExcerptLocked drops the excerpt from its buffer's state,
// unsubscribing and forgetting the buffer when nothing references it.
func (m *MultiBuffer) untrackExcerptLocked(bufID BufferID, id ExcerptID, buffers map[BufferID]textbuf.Snapshot) {
	st, ok := m.buffers[bufID]
	if !ok {
		return
	}
	delete(st.excerpts, id)
	if len(st.excerpts) == 0 {
		if st.unsubscribe != nil {
			st.unsubscribe()
		}
		delete(m.buffers, bufID)
		delete(buffers, bufID)
	}
}

// ExpandContext widens an excerpt's context padding by the given line
// counts, clamped to the buffer's extent. The logical range is
// untouched, so anchors inside it are unaffected.
func (m *MultiBuffer) ExpandContext(id ExcerptID, before, after uint32) error {
	return m.adjustPadding(id, func(p Padding) Padding {
		return Padding{Before: p.Before + before, After: p.After + after}
	})
}

// CollapseContext narrows an excerpt's context padding to the given
// minimums (zero collapses it entirely).
func (m *MultiBuffer) CollapseContext(id ExcerptID, minBefore, minAfter uint32) error {
	return m.adjustPadding(id, func(Padding) Padding {
		return Padding{Before: minBefore, After: minAfter}
	})
}

func (m *MultiBuffer) adjustPadding(id ExcerptID, fn func(Padding) Padding) error {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.mu.Lock()
	events, err := m.adjustPaddingLocked(id, fn)
	handlers := m.handlersLocked()
	m.mu.Unlock()

	if err != nil {
		return err
	}
	deliver(handlers, events)
	return nil
}

func (m *MultiBuffer) adjustPaddingLocked(id ExcerptID, fn func(Padding) Padding) ([]Event, error) {
	loc, ok := m.snap.locators[id]
	if !ok {
		return nil, ErrUnknownExcerpt
	}

	it, base, _ := m.snap.tree.SeekLocator(loc)
	buf := m.snap.buffers[it.Buffer]
	oldBytes := it.Summary.Bytes

	var newText string
	tree, _ := m.snap.tree.UpdateItem(loc, func(item sumtree.Item) sumtree.Item {
		logical := logicalRangeIn(item, buf)
		lines := coords.LineRange{
			Start: buf.OffsetToPoint(logical.Start).Line,
			End:   logicalEndLine(logical, buf),
		}
		item.Padding = clampPadding(fn(item.Padding), lines, buf)
		newText = materializeIn(item, buf)
		item.Summary = coords.Summarize(newText)
		return item
	})

	m.snap = &Snapshot{tree: tree, locators: m.snap.locators, buffers: m.snap.buffers}

	start := base.Text.Bytes
	event := Event{
		OldRange: Range{Start: start, End: start + oldBytes},
		NewRange: Range{Start: start, End: start + ByteOffset(len(newText))},
		NewText:  newText,
	}
	return []Event{event}, nil
}

// ReplaceExcerpts atomically removes the given excerpts and inserts one
// excerpt per spec at the position of the first removed excerpt, so
// consumers observe exactly one edit event with no transient state
// where both generations are absent. Fails with ErrUnknownExcerpt if
// any old id is not live and ErrInvalidRange if any spec is invalid; no
// partial mutation is committed.
func (m *MultiBuffer) ReplaceExcerpts(oldIDs []ExcerptID, specs []ExcerptSpec) ([]ExcerptID, error) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.mu.Lock()
	ids, events, err := m.replaceLocked(oldIDs, specs)
	handlers := m.handlersLocked()
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	deliver(handlers, events)
	return ids, nil
}

func (m *MultiBuffer) replaceLocked(oldIDs []ExcerptID, specs []ExcerptSpec) ([]ExcerptID, []Event, error) {
	if len(oldIDs) == 0 {
		return nil, nil, ErrUnknownExcerpt
	}

	oldLocs := make([]sumtree.Locator, 0, len(oldIDs))
	removed := make(map[ExcerptID]struct{}, len(oldIDs))
	for _, id := range oldIDs {
		loc, ok := m.snap.locators[id]
		if !ok {
			return nil, nil, ErrUnknownExcerpt
		}
		oldLocs = append(oldLocs, loc)
		removed[id] = struct{}{}
	}
	sort.Slice(oldLocs, func(i, j int) bool { return oldLocs[i].Compare(oldLocs[j]) < 0 })

	snaps, bufs, err := m.pinBuffersLocked(specs)
	if err != nil {
		return nil, nil, err
	}

	tree := m.snap.tree

	// The replaced span runs from the first removed excerpt to the last
	// one; excerpts interleaved within it survive and stay in the event.
	_, firstBase, _ := tree.SeekLocator(oldLocs[0])
	lastItem, lastBase, _ := tree.SeekLocator(oldLocs[len(oldLocs)-1])
	firstIdx := firstBase.Count
	lastIdx := lastBase.Count
	spanStart := firstBase.Text.Bytes
	spanEndOld := lastBase.Text.Bytes + lastItem.Summary.Bytes

	// Survivors inside the span keep their text and follow the new
	// excerpts in the post-state.
	var survivorText string
	var survivors []sumtree.Item
	for idx := firstIdx; idx <= lastIdx; idx++ {
		it, _, _ := tree.ItemAt(idx)
		if _, gone := removed[it.ID]; !gone {
			survivors = append(survivors, it)
			survivorText += m.snap.materialize(it)
		}
	}

	locators := cloneLocators(m.snap.locators)
	buffers := cloneBuffers(m.snap.buffers)
	for _, loc := range oldLocs {
		it, _, _ := tree.SeekLocator(loc)
		tree, _ = tree.Remove(loc)
		delete(locators, it.ID)
		m.untrackExcerptLocked(it.Buffer, it.ID, buffers)
	}

	prev := sumtree.MinLocator()
	if firstIdx > 0 {
		it, _, _ := tree.ItemAt(firstIdx - 1)
		prev = it.Locator
	}
	next := sumtree.MaxLocator()
	if firstIdx < tree.Len() {
		it, _, _ := tree.ItemAt(firstIdx)
		next = it.Locator
	}

	ids := make([]ExcerptID, 0, len(specs))
	items := make([]sumtree.Item, 0, len(specs))
	var newText string
	var insertedBytes ByteOffset
	for _, spec := range specs {
		bs := snaps[spec.Buffer.ID()]
		padding := spec.Padding
		if padding.IsZero() {
			padding = m.defaultPadding
		}

		m.nextExcerpt++
		loc := sumtree.Between(prev, next)
		prev = loc

		item := sumtree.Item{
			ID:      ExcerptID(m.nextExcerpt),
			Locator: loc,
			Buffer:  bs.ID(),
			Start:   bs.AnchorAt(bs.LineStartOffset(spec.Lines.Start), BiasRight),
			End:     bs.AnchorAt(bs.LineStartOffset(spec.Lines.End), BiasLeft),
			Padding: clampPadding(padding, spec.Lines, bs),
		}
		text := materializeIn(item, bs)
		item.Summary = coords.Summarize(text)

		ids = append(ids, item.ID)
		items = append(items, item)
		insertedBytes += item.Summary.Bytes
		newText += text
	}

	tree = tree.InsertAt(firstIdx, items...)
	for _, item := range items {
		locators[item.ID] = item.Locator
		buffers[item.Buffer] = snaps[item.Buffer]
	}

	m.snap = &Snapshot{tree: tree, locators: locators, buffers: buffers}
	var registered []BufferID
	for _, item := range items {
		if m.trackExcerptLocked(item, bufs[item.Buffer], snaps[item.Buffer]) {
			registered = append(registered, item.Buffer)
		}
	}

	var survivorBytes ByteOffset
	for _, it := range survivors {
		survivorBytes += it.Summary.Bytes
	}
	events := []Event{{
		OldRange: Range{Start: spanStart, End: spanEndOld},
		NewRange: Range{Start: spanStart, End: spanStart + insertedBytes + survivorBytes},
		NewText:  newText + survivorText,
	}}
	events = append(events, m.catchUpLocked(registered)...)
	return ids, events, nil
}

// clampPadding limits padding to the context actually available around
// the logical line range in the buffer.
func clampPadding(p Padding, lines LineRange, buf textbuf.Snapshot) Padding {
	if p.Before > lines.Start {
		p.Before = lines.Start
	}
	if avail := buf.LineCount() - minU32(lines.End, buf.LineCount()); p.After > avail {
		p.After = avail
	}
	return p
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// offsetOfIndex returns the aggregate byte offset immediately before
// the item at the given index (the aggregate length for index == Len).
func offsetOfIndex(tree sumtree.Tree, index int) ByteOffset {
	if index <= 0 {
		return 0
	}
	if index >= tree.Len() {
		return tree.Summary().Text.Bytes
	}
	_, base, _ := tree.ItemAt(index)
	return base.Text.Bytes
}
