package world

import "testing"

func ts(year, month uint32) Timestamp { return Timestamp{Year: year, Month: month} }

func TestAddEntityRecordsEffect(t *testing.T) {
	w := New(ts(100, 1))
	ev := w.AddEvent("worldgen", ts(100, 1), "genesis")
	id := w.AddEntity(KindSettlement, "Rivenford", nil, SettlementData{Population: 500}, ev)

	e, ok := w.Entity(id)
	if !ok || e.Name != "Rivenford" {
		t.Fatalf("expected entity to exist with name Rivenford, got %+v", e)
	}
	effects := w.Effects()
	if len(effects) != 1 || effects[0].Change.Type != ChangeEntityCreated {
		t.Fatalf("expected one EntityCreated effect, got %+v", effects)
	}
}

func TestAddCausedEventRequiresNotBeforeCause(t *testing.T) {
	w := New(ts(100, 1))
	cause := w.AddEvent("war_started", ts(100, 5), "war begins")

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for effect before cause")
		}
	}()
	w.AddCausedEvent("war_ended", ts(100, 1), "war ends", cause)
}

func TestAddRelationshipRejectsSelf(t *testing.T) {
	w := New(ts(1, 1))
	ev := w.AddEvent("bookkeeping", ts(1, 1), "")
	id := w.AddEntity(KindPerson, "Solo", nil, PersonData{}, ev)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for self relationship")
		}
	}()
	w.AddRelationship(id, id, RelMemberOf, ts(1, 1), ev)
}

func TestAddRelationshipRejectsMissingTarget(t *testing.T) {
	w := New(ts(1, 1))
	ev := w.AddEvent("bookkeeping", ts(1, 1), "")
	id := w.AddEntity(KindPerson, "Solo", nil, PersonData{}, ev)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for missing target")
		}
	}()
	w.AddRelationship(id, 9999, RelMemberOf, ts(1, 1), ev)
}

func TestAddRelationshipRejectsDuplicateActiveSingleton(t *testing.T) {
	w := New(ts(1, 1))
	ev := w.AddEvent("bookkeeping", ts(1, 1), "")
	p := w.AddEntity(KindPerson, "P", nil, PersonData{}, ev)
	f := w.AddEntity(KindFaction, "F", nil, FactionData{}, ev)
	g := w.AddEntity(KindFaction, "G", nil, FactionData{}, ev)

	w.AddRelationship(p, f, RelMemberOf, ts(1, 1), ev)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for duplicate active singleton relationship")
		}
	}()
	w.AddRelationship(p, g, RelMemberOf, ts(1, 1), ev)
}

func TestEndRelationshipRequiresActiveMatch(t *testing.T) {
	w := New(ts(1, 1))
	ev := w.AddEvent("bookkeeping", ts(1, 1), "")
	p := w.AddEntity(KindPerson, "P", nil, PersonData{}, ev)
	f := w.AddEntity(KindFaction, "F", nil, FactionData{}, ev)
	w.AddRelationship(p, f, RelMemberOf, ts(1, 1), ev)

	w.EndRelationship(p, f, RelMemberOf, ts(2, 1), ev)
	if _, ok := w.ActiveRel(p, RelMemberOf); ok {
		t.Fatalf("expected no active relationship after end")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for ending already-ended relationship")
		}
	}()
	w.EndRelationship(p, f, RelMemberOf, ts(3, 1), ev)
}

func TestParentImpliesChild(t *testing.T) {
	w := New(ts(1, 1))
	ev := w.AddEvent("bookkeeping", ts(1, 1), "")
	parent := w.AddEntity(KindPerson, "Parent", nil, PersonData{}, ev)
	child := w.AddEntity(KindPerson, "Child", nil, PersonData{}, ev)

	w.AddRelationship(parent, child, RelParent, ts(1, 1), ev)

	if !w.HasActiveRel(child, RelChild, parent) {
		t.Fatalf("expected mirrored Child relationship")
	}
}

func TestGraphPairCanonicalAndDuplicateRejected(t *testing.T) {
	w := New(ts(1, 1))
	ev := w.AddEvent("bookkeeping", ts(1, 1), "")
	a := w.AddEntity(KindFaction, "A", nil, FactionData{}, ev)
	b := w.AddEntity(KindFaction, "B", nil, FactionData{}, ev)

	w.AddGraphRelationship(a, b, RelAlly, ts(1, 1), ev)
	if !w.HasGraphRelationship(b, a, RelAlly) {
		t.Fatalf("expected symmetric lookup to find ally relationship")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for duplicate active graph relationship")
		}
	}()
	w.AddGraphRelationship(b, a, RelAlly, ts(1, 2), ev)
}

func TestEndEntityEndsStructuralRelationshipsForPersonsAndFactions(t *testing.T) {
	w := New(ts(1, 1))
	ev := w.AddEvent("bookkeeping", ts(1, 1), "")
	p := w.AddEntity(KindPerson, "P", nil, PersonData{}, ev)
	f := w.AddEntity(KindFaction, "F", nil, FactionData{}, ev)
	w.AddRelationship(p, f, RelMemberOf, ts(1, 1), ev)

	w.EndEntity(p, ts(2, 1), ev)

	if _, ok := w.ActiveRel(p, RelMemberOf); ok {
		t.Fatalf("expected membership to end when person dies")
	}
}

func TestEndEntityTwicePanics(t *testing.T) {
	w := New(ts(1, 1))
	ev := w.AddEvent("bookkeeping", ts(1, 1), "")
	p := w.AddEntity(KindPerson, "P", nil, PersonData{}, ev)
	w.EndEntity(p, ts(2, 1), ev)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic re-ending an entity")
		}
	}()
	w.EndEntity(p, ts(3, 1), ev)
}

func TestYearlyBoundary(t *testing.T) {
	w := New(ts(1, 11))
	if w.IsYearlyBoundary() {
		t.Fatalf("month 11 should not be a yearly boundary")
	}
	w.AdvanceMonth()
	if !w.IsYearlyBoundary() {
		t.Fatalf("month 12 should be a yearly boundary")
	}
	w.AdvanceMonth()
	if w.Current.Year != 2 || w.Current.Month != 1 {
		t.Fatalf("expected year to roll over, got %v", w.Current)
	}
}
