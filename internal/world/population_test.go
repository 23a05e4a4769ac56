package world

import "testing"

func TestFromTotalRoundTrips(t *testing.T) {
	for _, n := range []uint32{0, 1, 2, 5, 50, 137, 2000, 100000} {
		if got := FromTotal(n).Total(); got != n {
			t.Fatalf("FromTotal(%d).Total() = %d, want %d", n, got, n)
		}
	}
}

func TestSubtractFractionConservesTotal(t *testing.T) {
	rng := newTestRNG(1)
	original := FromTotal(500)
	remaining, removed := original.SubtractFraction(0.3, rng)
	if remaining.Total()+removed.Total() != original.Total() {
		t.Fatalf("expected conservation: %d + %d != %d", remaining.Total(), removed.Total(), original.Total())
	}
}

func TestAddBreakdown(t *testing.T) {
	a := FromTotal(100)
	b := FromTotal(50)
	sum := a.Add(b)
	if sum.Total() != 150 {
		t.Fatalf("expected 150, got %d", sum.Total())
	}
}
