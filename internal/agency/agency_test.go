package agency

import (
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

func newHarness() (*world.World, *command.Applicator) {
	w := world.New(world.Timestamp{Year: 1, Month: 1})
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	bus := signal.NewBus()
	return w, command.NewApplicator(w, bus, log)
}

func TestRuthlessAmbitiousNobleEventuallyMovesAgainstLeader(t *testing.T) {
	w, app := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	leader := w.AddEntity(world.KindPerson, "Ruler", &w.Current, world.PersonData{}, ev)
	faction := w.AddEntity(world.KindFaction, "Realm", nil, world.FactionData{LeaderPersonID: leader}, ev)
	settlement := w.AddEntity(world.KindSettlement, "Capital", &w.Current, world.SettlementData{}, ev)
	w.AddRelationship(settlement, faction, world.RelMemberOf, w.Current, ev)
	noble := w.AddEntity(world.KindPerson, "Scheming Noble", &w.Current,
		world.PersonData{Traits: []world.Trait{world.TraitRuthless, world.TraitAmbitious}}, ev)
	w.AddRelationship(noble, settlement, world.RelLocatedIn, w.Current, ev)
	w.AddRelationship(leader, settlement, world.RelLocatedIn, w.Current, ev)

	sys := New()
	found := false
	for i := 0; i < 5000 && !found; i++ {
		sys.Update(w, rand.New(rand.NewSource(int64(i))), app)
		found = app.Pending()
	}
	if !found {
		t.Fatalf("expected an elimination attempt to eventually be enqueued")
	}
}

func TestContentNobleRarelyActs(t *testing.T) {
	w, app := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	leader := w.AddEntity(world.KindPerson, "Ruler", &w.Current, world.PersonData{}, ev)
	faction := w.AddEntity(world.KindFaction, "Realm", nil, world.FactionData{LeaderPersonID: leader}, ev)
	settlement := w.AddEntity(world.KindSettlement, "Capital", &w.Current, world.SettlementData{}, ev)
	w.AddRelationship(settlement, faction, world.RelMemberOf, w.Current, ev)
	noble := w.AddEntity(world.KindPerson, "Content Noble", &w.Current,
		world.PersonData{Traits: []world.Trait{world.TraitContent}}, ev)
	w.AddRelationship(noble, settlement, world.RelLocatedIn, w.Current, ev)
	w.AddRelationship(leader, settlement, world.RelLocatedIn, w.Current, ev)

	sys := New()
	sys.Update(w, rand.New(rand.NewSource(1)), app)
	if app.Pending() {
		t.Fatalf("expected no elimination attempt from a single low-chance roll")
	}
}

func TestNoEliminationWithoutLivingLeader(t *testing.T) {
	w, app := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	w.AddEntity(world.KindFaction, "Headless Realm", nil, world.FactionData{}, ev)

	sys := New()
	sys.Update(w, rand.New(rand.NewSource(1)), app)
	if app.Pending() {
		t.Fatalf("expected no elimination attempts for a faction with no leader")
	}
}
