package signal

import "testing"

func TestPublishAndDrain(t *testing.T) {
	b := NewBus()
	if b.Pending() {
		t.Fatalf("new bus should have no pending signals")
	}
	b.Publish(New(KindWarStarted, 1).With("attacker_faction_id", uint64(2)))
	if !b.Pending() {
		t.Fatalf("expected pending signal after Publish")
	}
	drained := b.Drain()
	if len(drained) != 1 || drained[0].Kind != KindWarStarted {
		t.Fatalf("unexpected drain result: %+v", drained)
	}
	if b.Pending() {
		t.Fatalf("bus should be empty after Drain")
	}
}

func TestDrainClearsBuffer(t *testing.T) {
	b := NewBus()
	b.Publish(New(KindEntityDied, 5))
	b.Drain()
	if len(b.Drain()) != 0 {
		t.Fatalf("second drain should be empty")
	}
}

func TestSignalAccessors(t *testing.T) {
	s := New(KindPlagueStarted, 10).With("infection_rate", 0.4).With("profile", "classic").With("peak", true)
	if s.Float("infection_rate") != 0.4 {
		t.Fatalf("expected 0.4, got %v", s.Float("infection_rate"))
	}
	if s.Str("profile") != "classic" {
		t.Fatalf("expected classic, got %v", s.Str("profile"))
	}
	if !s.Bool("peak") {
		t.Fatalf("expected peak true")
	}
	if s.Float("missing") != 0 {
		t.Fatalf("expected default 0 for missing field")
	}
}
