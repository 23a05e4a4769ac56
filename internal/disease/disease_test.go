package disease

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

func TestOutbreakEndsAfterThreeYears(t *testing.T) {
	w, app := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	diseaseID := w.AddEntity(world.KindDisease, "Outbreak", &w.Current,
		world.DiseaseData{Virulence: 0.5, Lethality: 0.3, Duration: 3}, ev)
	sd := world.SettlementData{
		Population: 1000, Breakdown: world.FromTotal(1000),
		ActiveDisease: &world.ActiveDisease{DiseaseID: diseaseID, InfectionRate: 0.3, YearsElapsed: 3},
	}
	id := w.AddEntity(world.KindSettlement, "Plaguetown", &w.Current, sd, ev)

	progressAndKill(w, rand.New(rand.NewSource(2)), app)
	app.Drain()

	e, _ := w.Entity(id)
	got := e.Data.(world.SettlementData)
	if got.ActiveDisease != nil {
		t.Fatalf("expected outbreak to have ended after 3 years")
	}
	if got.PlagueImmunity <= 0 {
		t.Fatalf("expected plague immunity gain")
	}
}

func TestHighImmunitySuppressesOutbreakChance(t *testing.T) {
	w, app := newHarness()
	sd := world.SettlementData{Population: 1000, Breakdown: world.FromTotal(1000), PlagueImmunity: 1.0}
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	w.AddEntity(world.KindSettlement, "Immune City", &w.Current, sd, ev)

	checkOutbreaks(w, rand.New(rand.NewSource(1)), app)
	if app.Pending() {
		t.Fatalf("expected no outbreak with full immunity")
	}
}
