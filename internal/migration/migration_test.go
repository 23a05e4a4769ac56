package migration

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

func TestDistressedSettlementEventuallyMigrates(t *testing.T) {
	w, app := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	w.AddEntity(world.KindSettlement, "Besieged Town", &w.Current,
		world.SettlementData{Population: 500, Breakdown: world.FromTotal(500), Prosperity: 0.1,
			ActiveSiege: &world.ActiveSiege{}}, ev)
	w.AddEntity(world.KindSettlement, "Safe Haven", &w.Current,
		world.SettlementData{Population: 500, Breakdown: world.FromTotal(500), Prosperity: 0.9}, ev)

	sys := New()
	found := false
	for i := 0; i < 200 && !found; i++ {
		sys.Update(w, rand.New(rand.NewSource(int64(i))), app)
		found = app.Pending()
	}
	if !found {
		t.Fatalf("expected migration to eventually trigger for a besieged, impoverished settlement")
	}
}

func TestNoMigrationBelowMinimumPopulation(t *testing.T) {
	w, app := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	w.AddEntity(world.KindSettlement, "Hamlet", &w.Current,
		world.SettlementData{Population: 5, Breakdown: world.FromTotal(5), Prosperity: 0.05,
			ActiveSiege: &world.ActiveSiege{}}, ev)

	sys := New()
	sys.Update(w, rand.New(rand.NewSource(1)), app)
	if app.Pending() {
		t.Fatalf("expected no migration below the minimum population threshold")
	}
}

func TestBestDestinationPrefersHigherProsperity(t *testing.T) {
	w, _ := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	origin := w.AddEntity(world.KindSettlement, "Origin", &w.Current, world.SettlementData{Prosperity: 0.2}, ev)
	w.AddEntity(world.KindSettlement, "Poorer", &w.Current, world.SettlementData{Prosperity: 0.3}, ev)
	best := w.AddEntity(world.KindSettlement, "Richest", &w.Current, world.SettlementData{Prosperity: 0.8}, ev)

	settlements := w.LivingByKind(world.KindSettlement)
	oe, _ := w.Entity(origin)
	got := bestDestination(w, settlements, oe, oe.Data.(world.SettlementData))
	if got != best {
		t.Fatalf("expected %d (highest prosperity), got %d", best, got)
	}
}
