package sumtree

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/dshills/multibuf/internal/coords"
)

// makeItems builds n single-line items, each with a distinct byte width,
// with locators assigned in order.
func makeItems(n int) []Item {
	items := make([]Item, n)
	prev := MinLocator()
	for i := range items {
		loc := Between(prev, MaxLocator())
		text := fmt.Sprintf("excerpt-%03d\n", i)
		items[i] = Item{
			ID:      ExcerptID(i + 1),
			Locator: loc,
			Summary: coords.Summarize(text),
		}
		prev = loc
	}
	return items
}

func treeOf(items []Item) Tree {
	var t Tree
	return t.InsertAt(0, items...)
}

func TestEmptyTree(t *testing.T) {
	var tree Tree

	if tree.Len() != 0 {
		t.Errorf("expected empty tree, got %d items", tree.Len())
	}
	if _, _, ok := tree.SeekOffset(0); ok {
		t.Error("seek in empty tree should fail")
	}
}

func TestInsertAndSummary(t *testing.T) {
	items := makeItems(50)
	tree := treeOf(items)

	if tree.Len() != 50 {
		t.Fatalf("expected 50 items, got %d", tree.Len())
	}

	var want coords.TextSummary
	for _, it := range items {
		want = want.Add(it.Summary)
	}
	got := tree.Summary().Text
	if got != want {
		t.Errorf("root summary %+v does not match item sum %+v", got, want)
	}
}

func TestItemsOrder(t *testing.T) {
	items := makeItems(30)
	tree := treeOf(items)

	out := tree.Items()
	if len(out) != 30 {
		t.Fatalf("expected 30 items, got %d", len(out))
	}
	for i, it := range out {
		if it.ID != ExcerptID(i+1) {
			t.Errorf("position %d: expected id %d, got %d", i, i+1, it.ID)
		}
	}
}

func TestInsertAtMiddle(t *testing.T) {
	items := makeItems(10)
	tree := treeOf(items)

	extra := Item{
		ID:      99,
		Locator: Between(items[4].Locator, items[5].Locator),
		Summary: coords.Summarize("inserted\n"),
	}
	tree = tree.InsertAt(5, extra)

	out := tree.Items()
	if out[5].ID != 99 {
		t.Errorf("expected id 99 at index 5, got %d", out[5].ID)
	}
	if tree.Len() != 11 {
		t.Errorf("expected 11 items, got %d", tree.Len())
	}
}

func TestSeekOffsetBoundaries(t *testing.T) {
	items := makeItems(3) // each "excerpt-NNN\n" is 12 bytes
	tree := treeOf(items)

	it, base, ok := tree.SeekOffset(0)
	if !ok || it.ID != 1 || base.Text.Bytes != 0 {
		t.Errorf("offset 0: expected item 1 at base 0, got id=%d base=%d ok=%v", it.ID, base.Text.Bytes, ok)
	}

	// An offset exactly at a boundary belongs to the following excerpt.
	it, base, ok = tree.SeekOffset(12)
	if !ok || it.ID != 2 || base.Text.Bytes != 12 {
		t.Errorf("offset 12: expected item 2 at base 12, got id=%d base=%d ok=%v", it.ID, base.Text.Bytes, ok)
	}

	// The aggregate end belongs to the last excerpt.
	it, base, ok = tree.SeekOffset(36)
	if !ok || it.ID != 3 || base.Text.Bytes != 24 {
		t.Errorf("offset 36: expected item 3 at base 24, got id=%d base=%d ok=%v", it.ID, base.Text.Bytes, ok)
	}

	if _, _, ok := tree.SeekOffset(37); ok {
		t.Error("offset past aggregate end should fail")
	}
}

func TestSeekPoint(t *testing.T) {
	items := makeItems(5) // one line each
	tree := treeOf(items)

	it, base, ok := tree.SeekPoint(coords.Point{Line: 3, Column: 2})
	if !ok || it.ID != 4 {
		t.Errorf("line 3: expected item 4, got id=%d ok=%v", it.ID, ok)
	}
	if base.Text.Lines != 3 {
		t.Errorf("expected base at line 3, got %d", base.Text.Lines)
	}

	// Rows past the end clamp to the last excerpt.
	it, _, ok = tree.SeekPoint(coords.Point{Line: 99})
	if !ok || it.ID != 5 {
		t.Errorf("clamped row: expected item 5, got id=%d ok=%v", it.ID, ok)
	}
}

func TestRemove(t *testing.T) {
	items := makeItems(20)
	tree := treeOf(items)

	removed, ok := tree.Remove(items[7].Locator)
	if !ok {
		t.Fatal("remove should find item 8")
	}
	if removed.Len() != 19 {
		t.Errorf("expected 19 items, got %d", removed.Len())
	}
	if _, _, ok := removed.SeekLocator(items[7].Locator); ok {
		t.Error("removed locator should no longer be found")
	}

	if _, ok := removed.Remove(items[7].Locator); ok {
		t.Error("removing twice should report not found")
	}
}

func TestUpdateItem(t *testing.T) {
	items := makeItems(12)
	tree := treeOf(items)

	grown := coords.Summarize("a much longer excerpt body\n")
	updated, ok := tree.UpdateItem(items[6].Locator, func(it Item) Item {
		it.Summary = grown
		return it
	})
	if !ok {
		t.Fatal("update should find item 7")
	}

	it, _, ok := updated.SeekLocator(items[6].Locator)
	if !ok || it.Summary != grown {
		t.Errorf("expected updated summary, got %+v", it.Summary)
	}

	var want coords.TextSummary
	for _, orig := range updated.Items() {
		want = want.Add(orig.Summary)
	}
	if updated.Summary().Text != want {
		t.Error("root summary must stay exact after update")
	}
}

func TestPersistence(t *testing.T) {
	items := makeItems(16)
	tree := treeOf(items)
	before := tree.Summary()

	mutated, _ := tree.Remove(items[0].Locator)
	mutated = mutated.InsertAt(0, Item{
		ID:      100,
		Locator: Between(MinLocator(), items[1].Locator),
		Summary: coords.Summarize("replacement\n"),
	})

	// The original tree is unaffected by mutations of its descendants.
	if !reflect.DeepEqual(tree.Summary(), before) {
		t.Error("original tree summary changed after mutation")
	}
	if tree.Len() != 16 {
		t.Errorf("original tree length changed: %d", tree.Len())
	}
	if it, _, ok := tree.SeekLocator(items[0].Locator); !ok || it.ID != 1 {
		t.Error("original tree lost its first item")
	}
	if mutated.Items()[0].ID != 100 {
		t.Error("mutated tree should start with the replacement")
	}
}

func TestPrecedingLocator(t *testing.T) {
	items := makeItems(10)
	tree := treeOf(items)

	it, base, ok := tree.PrecedingLocator(items[4].Locator)
	if !ok || it.ID != 4 {
		t.Errorf("expected item 4, got id=%d ok=%v", it.ID, ok)
	}
	if base.Count != 3 {
		t.Errorf("expected 3 items before, got %d", base.Count)
	}

	if _, _, ok := tree.PrecedingLocator(items[0].Locator); ok {
		t.Error("nothing precedes the first locator")
	}

	// A removed item's locator still resolves to its former neighbor.
	removed, _ := tree.Remove(items[4].Locator)
	it, _, ok = removed.PrecedingLocator(items[4].Locator)
	if !ok || it.ID != 4 {
		t.Errorf("after removal: expected item 4, got id=%d ok=%v", it.ID, ok)
	}
}

func TestItemAt(t *testing.T) {
	items := makeItems(25)
	tree := treeOf(items)

	it, base, ok := tree.ItemAt(13)
	if !ok || it.ID != 14 {
		t.Errorf("expected id 14, got %d ok=%v", it.ID, ok)
	}
	if base.Count != 13 {
		t.Errorf("expected 13 items before, got %d", base.Count)
	}

	if _, _, ok := tree.ItemAt(25); ok {
		t.Error("index past end should fail")
	}
}

func TestLargeTreeSeeks(t *testing.T) {
	items := makeItems(500)
	tree := treeOf(items)

	var offset coords.ByteOffset
	for i, want := range items {
		it, base, ok := tree.SeekOffset(offset)
		if !ok || it.ID != want.ID {
			t.Fatalf("offset %d: expected id %d, got %d ok=%v", offset, want.ID, it.ID, ok)
		}
		if base.Text.Bytes != offset {
			t.Fatalf("offset %d: expected base %d, got %d", offset, offset, base.Text.Bytes)
		}
		if base.Count != i {
			t.Fatalf("offset %d: expected %d items before, got %d", offset, i, base.Count)
		}
		offset += want.Summary.Bytes
	}
}
