package textbuf

import (
	"errors"
	"testing"

	"github.com/dshills/multibuf/internal/coords"
)

func TestNewBuffer(t *testing.T) {
	b := NewBuffer("hello")

	if b.Len() != 5 {
		t.Errorf("expected length 5, got %d", b.Len())
	}
	if b.Version() != 0 {
		t.Errorf("expected version 0, got %d", b.Version())
	}
	if b.ID() == "" {
		t.Error("buffer should have an id")
	}
}

func TestBufferApplyInsert(t *testing.T) {
	b := NewBuffer("hello world")

	change, err := b.Apply(coords.NewInsert(5, ","))
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if got := b.Snapshot().Text(); got != "hello, world" {
		t.Errorf("expected 'hello, world', got %q", got)
	}
	if change.Base != 0 || change.Version != 1 {
		t.Errorf("expected version 0->1, got %d->%d", change.Base, change.Version)
	}
	if change.NewRange.Len() != 1 {
		t.Errorf("expected new range length 1, got %d", change.NewRange.Len())
	}
}

func TestBufferApplyDelete(t *testing.T) {
	b := NewBuffer("hello world")

	change, err := b.Apply(coords.NewDelete(5, 11))
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if got := b.Snapshot().Text(); got != "hello" {
		t.Errorf("expected 'hello', got %q", got)
	}
	if change.OldText != " world" {
		t.Errorf("expected old text ' world', got %q", change.OldText)
	}
}

func TestBufferApplyOutOfRange(t *testing.T) {
	b := NewBuffer("short")

	_, err := b.Apply(coords.NewDelete(2, 99))
	if !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
	if b.Version() != 0 {
		t.Error("failed edit should not advance the version")
	}
}

func TestBufferApplyInvalidRange(t *testing.T) {
	b := NewBuffer("short")

	_, err := b.Apply(coords.Edit{Range: coords.Range{Start: 3, End: 1}})
	if !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}
}

func TestSnapshotImmutable(t *testing.T) {
	b := NewBuffer("original")
	snap := b.Snapshot()

	if _, err := b.Apply(coords.NewInsert(0, "edited ")); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if snap.Text() != "original" {
		t.Errorf("snapshot should keep old text, got %q", snap.Text())
	}
	if snap.Version() != 0 {
		t.Errorf("snapshot version should stay 0, got %d", snap.Version())
	}
}

func TestSubscribeOrder(t *testing.T) {
	b := NewBuffer("")
	var seen []Change
	unsubscribe := b.Subscribe(func(c Change) {
		seen = append(seen, c)
	})
	defer unsubscribe()

	for i := 0; i < 5; i++ {
		if _, err := b.Apply(coords.NewInsert(b.Len(), "x")); err != nil {
			t.Fatalf("apply %d failed: %v", i, err)
		}
	}

	if len(seen) != 5 {
		t.Fatalf("expected 5 notifications, got %d", len(seen))
	}
	for i, c := range seen {
		if c.Base != Version(i) {
			t.Errorf("notification %d: expected base %d, got %d", i, i, c.Base)
		}
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	b := NewBuffer("")
	count := 0
	unsubscribe := b.Subscribe(func(Change) { count++ })

	if _, err := b.Apply(coords.NewInsert(0, "a")); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	unsubscribe()
	if _, err := b.Apply(coords.NewInsert(0, "b")); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if count != 1 {
		t.Errorf("expected 1 notification, got %d", count)
	}
}

func TestSnapshotLineByteRange(t *testing.T) {
	b := NewBuffer("one\ntwo\nthree\n")
	snap := b.Snapshot()

	r := snap.LineByteRange(coords.LineRange{Start: 1, End: 3})
	if snap.Slice(r) != "two\nthree\n" {
		t.Errorf("expected 'two\\nthree\\n', got %q", snap.Slice(r))
	}

	r = snap.LineByteRange(coords.LineRange{Start: 2, End: 99})
	if snap.Slice(r) != "three\n" {
		t.Errorf("clamped range: expected 'three\\n', got %q", snap.Slice(r))
	}
}
