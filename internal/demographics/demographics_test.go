package demographics

import (
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

func TestUpdateEnqueuesPopulationChange(t *testing.T) {
	w := world.New(world.Timestamp{Year: 1, Month: 1})
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	bus := signal.NewBus()
	app := command.NewApplicator(w, bus, log)
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	w.AddEntity(world.KindSettlement, "Rivenford", &w.Current,
		world.SettlementData{Population: 1000, Breakdown: world.FromTotal(1000)}, ev)

	sys := New()
	rng := rand.New(rand.NewSource(1))
	sys.Update(w, rng, app)
	if !app.Pending() {
		t.Fatalf("expected a population update to be enqueued for a non-empty settlement")
	}
	app.Drain()
	if app.Pending() {
		t.Fatalf("expected queue to be empty after Drain")
	}
}

func TestUpdateSkipsEmptySettlements(t *testing.T) {
	w := world.New(world.Timestamp{Year: 1, Month: 1})
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	bus := signal.NewBus()
	app := command.NewApplicator(w, bus, log)
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	w.AddEntity(world.KindSettlement, "Ghosttown", &w.Current, world.SettlementData{}, ev)

	sys := New()
	rng := rand.New(rand.NewSource(1))
	sys.Update(w, rng, app)
	if app.Pending() {
		t.Fatalf("expected no commands enqueued for an empty settlement")
	}
}
