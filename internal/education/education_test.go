package education

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

func TestSettlementWithLibraryGainsLiteracy(t *testing.T) {
	w, app := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	settlement := w.AddEntity(world.KindSettlement, "Scholartown", &w.Current,
		world.SettlementData{LiteracyRate: 0.3}, ev)
	w.AddEntity(world.KindBuilding, "Library", &w.Current,
		world.BuildingData{Type: world.BuildingLibrary, SettlementID: settlement, Condition: 1}, ev)

	New().Update(w, rand.New(rand.NewSource(1)), app)
	app.Drain()
	e, _ := w.Entity(settlement)
	if e.Data.(world.SettlementData).LiteracyRate <= 0.3 {
		t.Fatalf("expected literacy to rise with a library present")
	}
}

func TestSettlementWithoutLibraryDecaysLiteracy(t *testing.T) {
	w, app := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	settlement := w.AddEntity(world.KindSettlement, "Backwater", &w.Current,
		world.SettlementData{LiteracyRate: 0.3}, ev)

	New().Update(w, rand.New(rand.NewSource(1)), app)
	app.Drain()
	e, _ := w.Entity(settlement)
	if e.Data.(world.SettlementData).LiteracyRate >= 0.3 {
		t.Fatalf("expected literacy to decay without a library")
	}
}

func TestPersonEducationChasesLocalLiteracy(t *testing.T) {
	w, app := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	settlement := w.AddEntity(world.KindSettlement, "Scholartown", &w.Current,
		world.SettlementData{LiteracyRate: 0.9}, ev)
	person := w.AddEntity(world.KindPerson, "Pupil", &w.Current,
		world.PersonData{Education: 0.1}, ev)
	w.AddRelationship(person, settlement, world.RelLocatedIn, w.Current, ev)

	New().Update(w, rand.New(rand.NewSource(1)), app)
	app.Drain()
	e, _ := w.Entity(person)
	if e.Data.(world.PersonData).Education <= 0.1 {
		t.Fatalf("expected education to rise toward the settlement's literacy rate")
	}
}
