package sumtree

// Tree structure constants.
const (
	// MinChildren is the minimum children per internal node (except root).
	MinChildren = 4

	// MaxChildren is the maximum children per internal node before splitting.
	MaxChildren = 8

	// MaxItemsPerLeaf is the maximum excerpt entries in a leaf node.
	MaxItemsPerLeaf = 8
)

// node is a node in the excerpt B+ tree. Leaf nodes (height == 0) hold
// excerpt items; internal nodes hold child references with per-child
// summaries for seeking. Nodes are immutable after construction: every
// mutation builds fresh nodes along the touched path and shares the rest.
type node struct {
	height  uint8
	summary Summary

	// Internal node fields (height > 0)
	children       []*node
	childSummaries []Summary

	// Leaf node fields (height == 0)
	items []Item
}

func newLeaf(items []Item) *node {
	n := &node{items: items}
	for _, it := range items {
		n.summary = n.summary.Add(itemSummary(it))
	}
	return n
}

func newInternal(children []*node) *node {
	if len(children) == 0 {
		return newLeaf(nil)
	}
	n := &node{
		height:         children[0].height + 1,
		children:       children,
		childSummaries: make([]Summary, len(children)),
	}
	for i, child := range children {
		n.childSummaries[i] = child.summary
		n.summary = n.summary.Add(child.summary)
	}
	return n
}

func (n *node) isLeaf() bool {
	return n.height == 0
}

func (n *node) count() int {
	return n.summary.Count
}

// buildFromNodes creates a balanced tree from same-height children.
func buildFromNodes(children []*node) *node {
	if len(children) == 0 {
		return newLeaf(nil)
	}
	if len(children) == 1 {
		return children[0]
	}
	if len(children) <= MaxChildren {
		return newInternal(children)
	}

	var parents []*node
	for i := 0; i < len(children); i += MaxChildren {
		end := i + MaxChildren
		if end > len(children) {
			end = len(children)
		}
		group := make([]*node, end-i)
		copy(group, children[i:end])
		parents = append(parents, newInternal(group))
	}
	return buildFromNodes(parents)
}

// buildFromItems creates a balanced tree over the given items.
func buildFromItems(items []Item) *node {
	if len(items) == 0 {
		return newLeaf(nil)
	}

	var leaves []*node
	for i := 0; i < len(items); i += MaxItemsPerLeaf {
		end := i + MaxItemsPerLeaf
		if end > len(items) {
			end = len(items)
		}
		leafItems := make([]Item, end-i)
		copy(leafItems, items[i:end])
		leaves = append(leaves, newLeaf(leafItems))
	}
	return buildFromNodes(leaves)
}

// splitAt splits the subtree by item index: left holds items [0, index),
// right holds [index, count).
func (n *node) splitAt(index int) (*node, *node) {
	if index <= 0 {
		return newLeaf(nil), n
	}
	if index >= n.count() {
		return n, newLeaf(nil)
	}

	if n.isLeaf() {
		left := make([]Item, index)
		copy(left, n.items[:index])
		right := make([]Item, len(n.items)-index)
		copy(right, n.items[index:])
		return newLeaf(left), newLeaf(right)
	}

	var leftChildren, rightChildren []*node
	remaining := index
	for _, child := range n.children {
		switch {
		case remaining >= child.count():
			leftChildren = append(leftChildren, child)
			remaining -= child.count()
		case remaining <= 0:
			rightChildren = append(rightChildren, child)
		default:
			l, r := child.splitAt(remaining)
			if l.count() > 0 {
				leftChildren = append(leftChildren, l)
			}
			if r.count() > 0 {
				rightChildren = append(rightChildren, r)
			}
			remaining = 0
		}
	}
	return collapse(leftChildren), collapse(rightChildren)
}

// collapse builds a node from children that may differ in height by one
// (a split child ends up shorter than its siblings).
func collapse(children []*node) *node {
	if len(children) == 0 {
		return newLeaf(nil)
	}
	result := children[0]
	for _, child := range children[1:] {
		result = concat(result, child)
	}
	return result
}

// concat joins two subtrees, preserving item order.
func concat(left, right *node) *node {
	if left == nil || left.count() == 0 {
		if right == nil {
			return newLeaf(nil)
		}
		return right
	}
	if right == nil || right.count() == 0 {
		return left
	}

	if left.isLeaf() && right.isLeaf() {
		return concatLeaves(left, right)
	}

	for left.height < right.height {
		left = newInternal([]*node{left})
	}
	for right.height < left.height {
		right = newInternal([]*node{right})
	}
	return mergeNodes(left, right)
}

func concatLeaves(left, right *node) *node {
	total := len(left.items) + len(right.items)
	if total <= MaxItemsPerLeaf {
		items := make([]Item, 0, total)
		items = append(items, left.items...)
		items = append(items, right.items...)
		return newLeaf(items)
	}
	return newInternal([]*node{left, right})
}

func mergeNodes(left, right *node) *node {
	if left.isLeaf() {
		return concatLeaves(left, right)
	}

	all := make([]*node, 0, len(left.children)+len(right.children))
	all = append(all, left.children...)
	all = append(all, right.children...)
	if len(all) <= MaxChildren {
		return newInternal(all)
	}
	return buildFromNodes(all)
}

// appendItems collects the subtree's items in order.
func (n *node) appendItems(out []Item) []Item {
	if n.isLeaf() {
		return append(out, n.items...)
	}
	for _, child := range n.children {
		out = child.appendItems(out)
	}
	return out
}
