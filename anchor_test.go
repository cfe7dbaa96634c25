package multibuf

import (
	"errors"
	"testing"
)

func TestAnchorResolveRoundTrip(t *testing.T) {
	buf := NewBuffer(numberedLines("a", 10))

	m := New()
	mustInsert(t, m, 0,
		ExcerptSpec{Buffer: buf, Lines: LineRange{Start: 0, End: 2}},
		ExcerptSpec{Buffer: buf, Lines: LineRange{Start: 4, End: 6}},
	)
	snap := m.Snapshot()

	for _, offset := range []ByteOffset{0, 3, 7, 8, 10, 15, 16} {
		a, err := snap.AnchorAt(offset, BiasLeft)
		if err != nil {
			t.Fatalf("AnchorAt(%d) failed: %v", offset, err)
		}
		res := snap.Resolve(a)
		if res.Dangling {
			t.Errorf("offset %d: expected live resolution", offset)
		}
		if res.Offset != offset {
			t.Errorf("offset %d: expected round trip, got %d", offset, res.Offset)
		}
		if want := snap.OffsetToPoint(offset); res.Point != want {
			t.Errorf("offset %d: expected point %v, got %v", offset, want, res.Point)
		}
	}
}

func TestAnchorAtErrors(t *testing.T) {
	m := New()
	if _, err := m.Snapshot().AnchorAt(0, BiasLeft); !errors.Is(err, ErrUnknownExcerpt) {
		t.Errorf("expected ErrUnknownExcerpt on empty aggregate, got %v", err)
	}

	buf := NewBuffer(numberedLines("a", 10))
	mustInsert(t, m, 0, ExcerptSpec{Buffer: buf, Lines: LineRange{Start: 0, End: 1}})
	snap := m.Snapshot()

	if _, err := snap.AnchorAt(-1, BiasLeft); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange for -1, got %v", err)
	}
	if _, err := snap.AnchorAt(snap.Len()+1, BiasLeft); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange past end, got %v", err)
	}
}

func TestAnchorStabilityAcrossEdits(t *testing.T) {
	buf := NewBuffer(numberedLines("x", 25))

	m := New()
	mustInsert(t, m, 0, ExcerptSpec{Buffer: buf, Lines: LineRange{Start: 10, End: 20}})
	snap := m.Snapshot()

	before, err := snap.AnchorAt(10, BiasLeft)
	if err != nil {
		t.Fatalf("AnchorAt failed: %v", err)
	}
	after, err := snap.AnchorAt(25, BiasLeft)
	if err != nil {
		t.Fatalf("AnchorAt failed: %v", err)
	}

	// Insert a whole line at the start of buffer line 15, between the
	// two anchors.
	if _, err := buf.Apply(Edit{Range: Range{Start: 60, End: 60}, NewText: "new\n"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	snap = m.Snapshot()
	if res := m.Snapshot().Resolve(before); res.Offset != 10 {
		t.Errorf("expected anchor before edit to stay at 10, got %d", res.Offset)
	}
	res := snap.Resolve(after)
	if res.Offset != 29 {
		t.Errorf("expected anchor after edit to shift to 29, got %d", res.Offset)
	}
	if want := (Point{Line: 7, Column: 1}); res.Point != want {
		t.Errorf("expected point %v, got %v", want, res.Point)
	}
}

func TestAnchorBiasAtInsertionPoint(t *testing.T) {
	buf := NewBuffer(numberedLines("x", 25))

	m := New()
	mustInsert(t, m, 0, ExcerptSpec{Buffer: buf, Lines: LineRange{Start: 10, End: 20}})
	snap := m.Snapshot()

	left, err := snap.AnchorAt(20, BiasLeft)
	if err != nil {
		t.Fatalf("AnchorAt failed: %v", err)
	}
	right, err := snap.AnchorAt(20, BiasRight)
	if err != nil {
		t.Fatalf("AnchorAt failed: %v", err)
	}

	// Insert exactly at the anchored position (buffer offset 60).
	if _, err := buf.Apply(Edit{Range: Range{Start: 60, End: 60}, NewText: "!!"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	snap = m.Snapshot()
	if res := snap.Resolve(left); res.Offset != 20 {
		t.Errorf("expected left-biased anchor to stay at 20, got %d", res.Offset)
	}
	if res := snap.Resolve(right); res.Offset != 22 {
		t.Errorf("expected right-biased anchor to move to 22, got %d", res.Offset)
	}
}

func TestDanglingAnchorResolution(t *testing.T) {
	buf := NewBuffer(numberedLines("a", 10))

	m := New()
	ids := mustInsert(t, m, 0,
		ExcerptSpec{Buffer: buf, Lines: LineRange{Start: 0, End: 1}},
		ExcerptSpec{Buffer: buf, Lines: LineRange{Start: 2, End: 3}},
		ExcerptSpec{Buffer: buf, Lines: LineRange{Start: 4, End: 5}},
	)

	a, err := m.Snapshot().AnchorAt(5, BiasLeft)
	if err != nil {
		t.Fatalf("AnchorAt failed: %v", err)
	}
	if a.Excerpt != ids[1] {
		t.Fatalf("expected anchor in excerpt %d, got %d", ids[1], a.Excerpt)
	}

	m.RemoveExcerpts(ids[1])
	res := m.Snapshot().Resolve(a)
	if !res.Dangling {
		t.Error("expected dangling resolution after removal")
	}
	// Falls back to the end of the preceding surviving excerpt.
	if res.Offset != 4 {
		t.Errorf("expected fallback offset 4, got %d", res.Offset)
	}

	m.RemoveExcerpts(ids[0])
	res = m.Snapshot().Resolve(a)
	if !res.Dangling {
		t.Error("expected dangling resolution")
	}
	// No preceding excerpt survives: falls back to the aggregate start.
	if res.Offset != 0 {
		t.Errorf("expected fallback offset 0, got %d", res.Offset)
	}
}

func TestAnchorSurvivesContextChange(t *testing.T) {
	buf := NewBuffer(numberedLines("a", 10))

	m := New()
	ids := mustInsert(t, m, 0, ExcerptSpec{Buffer: buf, Lines: LineRange{Start: 4, End: 6}})
	snap := m.Snapshot()

	// Anchor on line 5, column 2 (aggregate offset 6).
	a, err := snap.AnchorAt(6, BiasLeft)
	if err != nil {
		t.Fatalf("AnchorAt failed: %v", err)
	}

	if err := m.ExpandContext(ids[0], 2, 0); err != nil {
		t.Fatalf("ExpandContext failed: %v", err)
	}

	// Two context lines now precede the logical range; the anchored
	// position moved down by their length.
	res := m.Snapshot().Resolve(a)
	if res.Offset != 14 {
		t.Errorf("expected offset 14 after context expansion, got %d", res.Offset)
	}
	if res.Dangling {
		t.Error("expected live resolution")
	}
}
