package buildings

import (
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

func TestExistingBuildingsDecayEveryTick(t *testing.T) {
	w := world.New(world.Timestamp{Year: 1, Month: 1})
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	bus := signal.NewBus()
	app := command.NewApplicator(w, bus, log)
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	w.AddEntity(world.KindBuilding, "Old Mill", &w.Current,
		world.BuildingData{Type: world.BuildingWorkshop, Level: 1, Condition: 1.0}, ev)

	sys := New()
	sys.Update(w, rand.New(rand.NewSource(1)), app)
	if !app.Pending() {
		t.Fatalf("expected a decay command to be enqueued")
	}
}

func TestMissingBuildingTypeFindsFirstAbsent(t *testing.T) {
	w := world.New(world.Timestamp{Year: 1, Month: 1})
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	settlement := w.AddEntity(world.KindSettlement, "Rivenford", &w.Current, world.SettlementData{}, ev)
	w.AddEntity(world.KindBuilding, "Market", &w.Current,
		world.BuildingData{Type: world.BuildingMarket, SettlementID: settlement}, ev)

	got := missingBuildingType(w, settlement)
	if got != world.BuildingWorkshop {
		t.Fatalf("expected workshop to be the next missing type, got %v", got)
	}
}

func TestNoConstructionWithoutTreasury(t *testing.T) {
	w := world.New(world.Timestamp{Year: 1, Month: 1})
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	bus := signal.NewBus()
	app := command.NewApplicator(w, bus, log)
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	faction := w.AddEntity(world.KindFaction, "Poor Folk", nil, world.FactionData{Treasury: 0}, ev)
	settlement := w.AddEntity(world.KindSettlement, "Rivenford", &w.Current, world.SettlementData{}, ev)
	w.AddRelationship(settlement, faction, world.RelMemberOf, w.Current, ev)

	sys := New()
	sys.Update(w, rand.New(rand.NewSource(1)), app)
	app.Drain()

	if len(w.LivingByKind(world.KindBuilding)) != 0 {
		t.Fatalf("expected no buildings constructed without treasury")
	}
}
