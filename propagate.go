package multibuf

import (
	"sort"

	"github.com/dshills/multibuf/internal/coords"
	"github.com/dshills/multibuf/internal/sumtree"
	"github.com/dshills/multibuf/internal/textbuf"
)

// applyChange incorporates one source buffer change into the aggregate.
// Registered as the subscription handler for every tracked buffer, so
// it runs synchronously with the buffer's own edit stream and sees
// changes in version order.
func (m *MultiBuffer) applyChange(c textbuf.Change) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.mu.Lock()
	events := m.propagateLocked(c)
	handlers := m.handlersLocked()
	m.mu.Unlock()

	deliver(handlers, events)
}

func (m *MultiBuffer) propagateLocked(c textbuf.Change) []Event {
	st, ok := m.buffers[c.Buffer]
	if !ok {
		// All excerpts over this buffer were removed while the change
		// was in flight.
		return nil
	}
	if c.Version <= st.lastVersion {
		// Already incorporated: the change predates the snapshot the
		// buffer was pinned at.
		return nil
	}
	if c.Base != st.lastVersion {
		m.logger.Warn("buffer change stream desynced, resyncing",
			"buffer", c.Buffer,
			"expected_base", st.lastVersion,
			"change_base", c.Base,
			"change_version", c.Version)
		return m.resyncLocked(st)
	}

	oldBuf := m.snap.buffers[c.Buffer]
	newBuf := st.buf.Snapshot()
	if newBuf.Version() != c.Version {
		// The buffer moved past the change before we observed it.
		return m.resyncLocked(st)
	}

	// An excerpt is affected when the edited range touches its padded
	// extent in the pre-change buffer, boundary adjacency included
	// (an insertion at the extent's edge can grow it).
	affected := m.affectedLocked(st, func(it sumtree.Item) bool {
		return paddedRangeIn(it, oldBuf).Touches(c.Range)
	})

	events := m.remeasureLocked(affected, oldBuf, newBuf)
	st.lastVersion = c.Version

	// A single affected excerpt whose extent changed by exactly the
	// edit's delta, with the edit inside its logical range, reports the
	// edit verbatim instead of a whole-extent replacement.
	if len(events) == 1 && len(affected) == 1 {
		if exact, ok := m.exactEvent(affected[0], oldBuf, c, events[0]); ok {
			return []Event{exact}
		}
	}
	return events
}

// resyncLocked rebuilds every excerpt of one buffer against the
// buffer's current state, emitting a coarse replacement event per
// excerpt whose extent changed.
func (m *MultiBuffer) resyncLocked(st *bufferState) []Event {
	newBuf := st.buf.Snapshot()
	oldBuf := m.snap.buffers[newBuf.ID()]

	affected := m.affectedLocked(st, func(sumtree.Item) bool { return true })
	events := m.remeasureLocked(affected, oldBuf, newBuf)
	st.lastVersion = newBuf.Version()
	return events
}

// affectedLocked returns the locators of st's excerpts matching the
// predicate, in aggregate order.
func (m *MultiBuffer) affectedLocked(st *bufferState, match func(sumtree.Item) bool) []sumtree.Locator {
	var locs []sumtree.Locator
	for id := range st.excerpts {
		loc, ok := m.snap.locators[id]
		if !ok {
			continue
		}
		it, _, ok := m.snap.tree.SeekLocator(loc)
		if !ok || !match(it) {
			continue
		}
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i].Compare(locs[j]) < 0 })
	return locs
}

// remeasureLocked rematerializes the given excerpts against the new
// buffer snapshot, commits a new aggregate snapshot, and returns one
// extent-replacement event per excerpt whose text actually changed.
// Events are emitted in aggregate order with offsets that account for
// the preceding events in the same batch.
func (m *MultiBuffer) remeasureLocked(locs []sumtree.Locator, oldBuf, newBuf textbuf.Snapshot) []Event {
	tree := m.snap.tree
	var events []Event
	for _, loc := range locs {
		it, base, ok := tree.SeekLocator(loc)
		if !ok {
			continue
		}
		oldText := materializeIn(it, oldBuf)
		newText := materializeIn(it, newBuf)
		if newText == oldText {
			continue
		}

		tree, _ = tree.UpdateItem(loc, func(item sumtree.Item) sumtree.Item {
			item.Summary = coords.Summarize(newText)
			return item
		})

		start := base.Text.Bytes
		events = append(events, Event{
			OldRange: Range{Start: start, End: start + ByteOffset(len(oldText))},
			NewRange: Range{Start: start, End: start + ByteOffset(len(newText))},
			NewText:  newText,
		})
	}

	buffers := cloneBuffers(m.snap.buffers)
	buffers[newBuf.ID()] = newBuf
	m.snap = &Snapshot{tree: tree, locators: m.snap.locators, buffers: buffers}
	return events
}

// exactEvent narrows a whole-extent replacement event down to the
// underlying buffer edit when that is provably safe: the edit lies
// inside the excerpt's logical range, so the extent start is unmoved
// and the extent length changed by exactly the edit's delta.
func (m *MultiBuffer) exactEvent(loc sumtree.Locator, oldBuf textbuf.Snapshot, c textbuf.Change, coarse Event) (Event, bool) {
	it, _, ok := m.snap.tree.SeekLocator(loc)
	if !ok {
		return Event{}, false
	}

	logical := logicalRangeIn(it, oldBuf)
	if c.Range.Start < logical.Start || c.Range.End > logical.End {
		return Event{}, false
	}
	if coarse.NewRange.Len()-coarse.OldRange.Len() != c.Delta() {
		return Event{}, false
	}

	padded := paddedRangeIn(it, oldBuf)
	local := c.Range.Start - padded.Start
	start := coarse.OldRange.Start + local
	return Event{
		OldRange: Range{Start: start, End: start + ByteOffset(len(c.OldText))},
		NewRange: Range{Start: start, End: start + ByteOffset(len(c.NewText))},
		NewText:  c.NewText,
	}, true
}
