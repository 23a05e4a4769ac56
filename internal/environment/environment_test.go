package environment

import (
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

func TestUpdateAlwaysSetsSeasonalModifiers(t *testing.T) {
	w := world.New(world.Timestamp{Year: 1, Month: 1})
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	bus := signal.NewBus()
	app := command.NewApplicator(w, bus, log)
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	region := w.AddEntity(world.KindRegion, "North", nil, world.RegionData{Y: 80, Terrain: "plains"}, ev)
	w.AddEntity(world.KindSettlement, "Rivenford", &w.Current,
		world.SettlementData{Population: 500, Breakdown: world.FromTotal(500), RegionID: region}, ev)

	sys := New()
	rng := rand.New(rand.NewSource(1))
	sys.Update(w, rng, app)
	if !app.Pending() {
		t.Fatalf("expected at least one seasonal-modifier command to be enqueued")
	}
}

func TestWinterDepressesFoodAtHighLatitude(t *testing.T) {
	w := world.New(world.Timestamp{Year: 1, Month: 1})
	mods := seasonalModifiers(w, 0, 1)
	if mods.Food != 1.0 {
		t.Fatalf("expected neutral food modifier for a missing region, got %v", mods.Food)
	}
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	region := w.AddEntity(world.KindRegion, "Far North", nil, world.RegionData{Y: 90, Terrain: "plains"}, ev)
	winter := seasonalModifiers(w, region, 1)
	if winter.Food >= 1.0 {
		t.Fatalf("expected winter to depress food at high latitude, got %v", winter.Food)
	}
}

func TestDisasterProgressEventuallyEnds(t *testing.T) {
	w := world.New(world.Timestamp{Year: 1, Month: 1})
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	bus := signal.NewBus()
	app := command.NewApplicator(w, bus, log)
	sd := world.SettlementData{
		Population: 500, Breakdown: world.FromTotal(500),
		ActiveDisaster: &world.ActiveDisaster{MonthsElapsed: 35, MonthsDuration: 36},
	}
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	id := w.AddEntity(world.KindSettlement, "Drought Town", &w.Current, sd, ev)

	progressDisaster(app, id, sd, rand.New(rand.NewSource(1)))
	app.Drain()

	e, _ := w.Entity(id)
	got := e.Data.(world.SettlementData)
	if got.ActiveDisaster != nil {
		t.Fatalf("expected disaster to have ended")
	}
}
