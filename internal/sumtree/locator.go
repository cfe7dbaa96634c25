package sumtree

import (
	"fmt"
	"math"
	"strings"
)

// Locator is an immutable ordered label identifying an excerpt's place
// in the aggregate ordering. Locators sort lexicographically, a shorter
// locator ordering before any longer locator it prefixes. They are
// assigned once at insertion, never change while the excerpt is live,
// and are never reused, which makes them usable for deterministic
// dangling-anchor resolution after the excerpt is gone.
type Locator []uint64

// MinLocator sorts before every assignable locator.
func MinLocator() Locator {
	return Locator{}
}

// MaxLocator sorts after every assignable locator.
func MaxLocator() Locator {
	return Locator{math.MaxUint64}
}

// Compare returns -1 if l < other, 0 if equal, 1 if l > other.
func (l Locator) Compare(other Locator) int {
	n := len(l)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if l[i] < other[i] {
			return -1
		}
		if l[i] > other[i] {
			return 1
		}
	}
	switch {
	case len(l) < len(other):
		return -1
	case len(l) > len(other):
		return 1
	default:
		return 0
	}
}

// String returns a human-readable representation of the locator.
func (l Locator) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "<" + strings.Join(parts, ".") + ">"
}

// Between returns a fresh locator strictly between lhs and rhs.
// Requires lhs < rhs; MinLocator and MaxLocator serve as the open
// bounds at the edges of the ordering.
func Between(lhs, rhs Locator) Locator {
	var out Locator
	for i := 0; ; i++ {
		var lv uint64
		if i < len(lhs) {
			lv = lhs[i]
		}
		rv := uint64(math.MaxUint64)
		if i < len(rhs) {
			rv = rhs[i]
		}
		mid := lv + (rv-lv)/2
		if mid > lv {
			return append(out, mid)
		}
		out = append(out, lv)
	}
}
