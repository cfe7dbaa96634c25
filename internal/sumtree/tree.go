package sumtree

import (
	"github.com/dshills/multibuf/internal/coords"
)

// Tree is a persistent ordered index of excerpt items. The zero value
// is an empty tree. All mutators return a new Tree; the receiver is
// never modified, so any previously obtained Tree remains a valid
// snapshot while a newer one is built.
type Tree struct {
	root *node
}

// Len returns the number of excerpt items.
func (t Tree) Len() int {
	if t.root == nil {
		return 0
	}
	return t.root.count()
}

// Summary returns the combined summary of all items.
func (t Tree) Summary() Summary {
	if t.root == nil {
		return Summary{}
	}
	return t.root.summary
}

// Items returns all items in aggregate order.
func (t Tree) Items() []Item {
	if t.root == nil {
		return nil
	}
	return t.root.appendItems(make([]Item, 0, t.Len()))
}

// InsertAt returns a tree with the given items inserted before the item
// currently at index. The index is clamped to [0, Len].
func (t Tree) InsertAt(index int, items ...Item) Tree {
	if len(items) == 0 {
		return t
	}
	if index < 0 {
		index = 0
	}
	if index > t.Len() {
		index = t.Len()
	}

	inserted := make([]Item, len(items))
	copy(inserted, items)
	middle := buildFromItems(inserted)
	if t.root == nil || t.root.count() == 0 {
		return Tree{root: middle}
	}
	left, right := t.root.splitAt(index)
	return Tree{root: concat(concat(left, middle), right)}
}

// Remove returns a tree without the item carrying the given locator.
// The second result is false if no such item exists.
func (t Tree) Remove(locator Locator) (Tree, bool) {
	index, ok := t.indexOfLocator(locator)
	if !ok {
		return t, false
	}
	left, rest := t.root.splitAt(index)
	_, right := rest.splitAt(1)
	return Tree{root: concat(left, right)}, true
}

// UpdateItem returns a tree in which the item carrying the given
// locator has been replaced by fn's result. The replacement must keep
// the same locator. The second result is false if no such item exists.
func (t Tree) UpdateItem(locator Locator, fn func(Item) Item) (Tree, bool) {
	index, ok := t.indexOfLocator(locator)
	if !ok {
		return t, false
	}
	left, rest := t.root.splitAt(index)
	mid, right := rest.splitAt(1)
	updated := fn(mid.items[0])
	return Tree{root: concat(concat(left, newLeaf([]Item{updated})), right)}, true
}

// ItemAt returns the item at the given index together with the combined
// summary of everything before it.
func (t Tree) ItemAt(index int) (Item, Summary, bool) {
	if t.root == nil || index < 0 || index >= t.Len() {
		return Item{}, Summary{}, false
	}

	var base Summary
	n := t.root
	for !n.isLeaf() {
		var next *node
		for i, child := range n.children {
			if index < child.count() {
				next = child
				break
			}
			index -= child.count()
			base = base.Add(n.childSummaries[i])
		}
		n = next
	}
	for i := 0; i < index; i++ {
		base = base.Add(itemSummary(n.items[i]))
	}
	return n.items[index], base, true
}

// SeekOffset returns the item containing the given aggregate byte
// offset, plus the combined summary of everything before it. An offset
// exactly at an excerpt boundary belongs to the following excerpt; the
// aggregate end belongs to the last excerpt.
func (t Tree) SeekOffset(offset coords.ByteOffset) (Item, Summary, bool) {
	if t.root == nil || t.root.count() == 0 {
		return Item{}, Summary{}, false
	}
	total := t.root.summary.Text.Bytes
	if offset < 0 || offset > total {
		return Item{}, Summary{}, false
	}
	if offset == total {
		return t.ItemAt(t.Len() - 1)
	}

	var base Summary
	n := t.root
	for !n.isLeaf() {
		var next *node
		for i, cs := range n.childSummaries {
			if offset < base.Text.Bytes+cs.Text.Bytes {
				next = n.children[i]
				break
			}
			base = base.Add(cs)
		}
		n = next
	}
	for _, it := range n.items {
		if offset < base.Text.Bytes+it.Summary.Bytes {
			return it, base, true
		}
		base = base.Add(itemSummary(it))
	}
	return Item{}, Summary{}, false
}

// SeekPoint returns the item containing the given aggregate point, plus
// the combined summary of everything before it. Every excerpt's extent
// ends with a newline, so excerpt boundaries are line boundaries and
// the row alone selects the excerpt; rows past the end clamp to the
// last excerpt.
func (t Tree) SeekPoint(point coords.Point) (Item, Summary, bool) {
	if t.root == nil || t.root.count() == 0 {
		return Item{}, Summary{}, false
	}
	if point.Line >= t.root.summary.Text.Lines {
		return t.ItemAt(t.Len() - 1)
	}

	var base Summary
	n := t.root
	for !n.isLeaf() {
		var next *node
		for i, cs := range n.childSummaries {
			if point.Line < base.Text.Lines+cs.Text.Lines {
				next = n.children[i]
				break
			}
			base = base.Add(cs)
		}
		n = next
	}
	for _, it := range n.items {
		if point.Line < base.Text.Lines+it.Summary.Lines {
			return it, base, true
		}
		base = base.Add(itemSummary(it))
	}
	return Item{}, Summary{}, false
}

// SeekLocator returns the item carrying the given locator, plus the
// combined summary of everything before it.
func (t Tree) SeekLocator(locator Locator) (Item, Summary, bool) {
	index, ok := t.indexOfLocator(locator)
	if !ok {
		return Item{}, Summary{}, false
	}
	return t.ItemAt(index)
}

// PrecedingLocator returns the live item with the greatest locator
// strictly below the given one, plus the combined summary of everything
// before it. Used for deterministic dangling-anchor resolution.
func (t Tree) PrecedingLocator(locator Locator) (Item, Summary, bool) {
	index := t.lowerBoundLocator(locator)
	if index == 0 {
		return Item{}, Summary{}, false
	}
	return t.ItemAt(index - 1)
}

// indexOfLocator returns the index of the item carrying the locator.
func (t Tree) indexOfLocator(locator Locator) (int, bool) {
	if t.root == nil || t.root.count() == 0 {
		return 0, false
	}

	index := 0
	n := t.root
	for !n.isLeaf() {
		var next *node
		for i, cs := range n.childSummaries {
			if cs.Max.Compare(locator) >= 0 {
				next = n.children[i]
				break
			}
			index += cs.Count
		}
		if next == nil {
			return 0, false
		}
		n = next
	}
	for _, it := range n.items {
		cmp := it.Locator.Compare(locator)
		if cmp == 0 {
			return index, true
		}
		if cmp > 0 {
			return 0, false
		}
		index++
	}
	return 0, false
}

// lowerBoundLocator counts the items whose locator sorts strictly below
// the given one.
func (t Tree) lowerBoundLocator(locator Locator) int {
	if t.root == nil || t.root.count() == 0 {
		return 0
	}

	index := 0
	n := t.root
	for !n.isLeaf() {
		var next *node
		for i, cs := range n.childSummaries {
			if cs.Max.Compare(locator) >= 0 {
				next = n.children[i]
				break
			}
			index += cs.Count
		}
		if next == nil {
			return index
		}
		n = next
	}
	for _, it := range n.items {
		if it.Locator.Compare(locator) >= 0 {
			break
		}
		index++
	}
	return index
}
