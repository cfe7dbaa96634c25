package sumtree

import "testing"

func TestLocatorCompare(t *testing.T) {
	a := Locator{5}
	b := Locator{6}
	prefix := Locator{5, 10}

	if a.Compare(b) != -1 {
		t.Error("expected {5} < {6}")
	}
	if b.Compare(a) != 1 {
		t.Error("expected {6} > {5}")
	}
	if a.Compare(a) != 0 {
		t.Error("expected {5} == {5}")
	}
	if a.Compare(prefix) != -1 {
		t.Error("expected {5} < {5,10} (shorter prefix sorts first)")
	}
	if prefix.Compare(b) != -1 {
		t.Error("expected {5,10} < {6}")
	}
}

func TestBetweenBounds(t *testing.T) {
	l := Between(MinLocator(), MaxLocator())

	if l.Compare(MinLocator()) <= 0 {
		t.Errorf("%s should sort after the minimum", l)
	}
	if l.Compare(MaxLocator()) >= 0 {
		t.Errorf("%s should sort before the maximum", l)
	}
}

func TestBetweenAdjacentValues(t *testing.T) {
	a := Locator{5}
	b := Locator{6}

	mid := Between(a, b)
	if mid.Compare(a) <= 0 || mid.Compare(b) >= 0 {
		t.Errorf("%s should sort strictly between %s and %s", mid, a, b)
	}
}

func TestBetweenRepeatedSplitting(t *testing.T) {
	// Repeatedly bisect the same interval; every new locator must stay
	// strictly ordered against both neighbors.
	lo := MinLocator()
	hi := MaxLocator()
	for i := 0; i < 200; i++ {
		mid := Between(lo, hi)
		if mid.Compare(lo) <= 0 {
			t.Fatalf("step %d: %s not above %s", i, mid, lo)
		}
		if mid.Compare(hi) >= 0 {
			t.Fatalf("step %d: %s not below %s", i, mid, hi)
		}
		if i%2 == 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
}
