package stochastic

import (
	"math/rand"
	"testing"
)

func TestRoundPreservesExpectation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const trials = 200000
	const x = 0.3
	total := 0
	for i := 0; i < trials; i++ {
		total += Round(x, rng)
	}
	got := float64(total) / float64(trials)
	if got < x-0.01 || got > x+0.01 {
		t.Fatalf("expected mean near %v, got %v", x, got)
	}
}

func TestRoundWholeNumber(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := Round(4.0, rng); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
}

func TestRoundZeroOrNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := Round(0, rng); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := Round(-1, rng); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestRoundSigned(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	neg := RoundSigned(-4.0, rng)
	if neg != -4 {
		t.Fatalf("expected -4, got %d", neg)
	}
}
