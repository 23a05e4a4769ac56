package culture

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

func TestLiterateProsperousSettlementEventuallyFoundsReligion(t *testing.T) {
	w, app := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	settlement := w.AddEntity(world.KindSettlement, "Templeton", &w.Current,
		world.SettlementData{LiteracyRate: 0.8, Prestige: 0.8}, ev)
	w.AddEntity(world.KindPerson, "Devout", &w.Current,
		world.PersonData{Traits: []world.Trait{world.TraitPious}}, ev)
	w.AddRelationship(w.LivingByKind(world.KindPerson)[0].ID, settlement, world.RelLocatedIn, w.Current, ev)

	found := false
	for i := 0; i < 2000 && !found; i++ {
		foundNewReligions(w, rand.New(rand.NewSource(int64(i))), app)
		found = app.Pending()
	}
	if !found {
		t.Fatalf("expected a religion to eventually be founded")
	}
}

func TestIlliterateSettlementNeverFoundsReligion(t *testing.T) {
	w, app := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	w.AddEntity(world.KindSettlement, "Backwater", &w.Current,
		world.SettlementData{LiteracyRate: 0.05, Prestige: 0.8}, ev)

	for i := 0; i < 200; i++ {
		foundNewReligions(w, rand.New(rand.NewSource(int64(i))), app)
	}
	if app.Pending() {
		t.Fatalf("expected no religion founding below the literacy floor")
	}
}

func TestTradePartnerWithDifferentCultureEventuallyConverts(t *testing.T) {
	w, app := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	a := w.AddEntity(world.KindSettlement, "A", &w.Current, world.SettlementData{}, ev)
	b := w.AddEntity(world.KindSettlement, "B", &w.Current, world.SettlementData{}, ev)
	w.SetProperty(a, "dominant_culture_id", uint64(1), ev)
	w.SetProperty(b, "dominant_culture_id", uint64(2), ev)
	w.AddRelationship(a, b, world.RelTradeRoute, w.Current, ev)
	w.AddRelationship(b, a, world.RelTradeRoute, w.Current, ev)

	found := false
	for i := 0; i < 2000 && !found; i++ {
		convertCultures(w, rand.New(rand.NewSource(int64(i))), app)
		found = app.Pending()
	}
	if !found {
		t.Fatalf("expected culture conversion to eventually trigger across a trade route")
	}
}

func TestFlavorNameIsDeterministicForSameSeed(t *testing.T) {
	seedChains(42)
	a := flavorName("pious", []string{"the", "faithful"})
	b := flavorName("pious", []string{"the", "faithful"})
	if a == "" || b == "" {
		t.Fatalf("expected non-empty generated flavor text")
	}
}
