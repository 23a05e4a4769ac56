package politics

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

func TestSevereGrievanceFormsRivalry(t *testing.T) {
	w, app := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	f2 := w.AddEntity(world.KindFaction, "B", nil, world.FactionData{}, ev)
	w.AddEntity(world.KindFaction, "A", nil, world.FactionData{
		Grievances: map[uint64]*world.Grievance{f2: {Severity: 0.9}},
	}, ev)

	decayGrievances(w, rand.New(rand.NewSource(1)), app)
	if !app.Pending() {
		t.Fatalf("expected a rivalry-formation command to be enqueued")
	}
}

func TestLowLegitimacyWithAmbitiousNobleTriggersCoup(t *testing.T) {
	w, app := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	faction := w.AddEntity(world.KindFaction, "Teetering Realm", nil,
		world.FactionData{Legitimacy: 0.1, Stability: 0.3}, ev)
	settlement := w.AddEntity(world.KindSettlement, "Capital", &w.Current, world.SettlementData{}, ev)
	w.AddRelationship(settlement, faction, world.RelMemberOf, w.Current, ev)
	noble := w.AddEntity(world.KindPerson, "Ambitious Noble", &w.Current,
		world.PersonData{Traits: []world.Trait{world.TraitAmbitious}}, ev)
	w.AddRelationship(noble, settlement, world.RelLocatedIn, w.Current, ev)

	found := false
	for i := 0; i < 2000 && !found; i++ {
		evaluateCoups(w, rand.New(rand.NewSource(int64(i))), app)
		found = app.Pending()
	}
	if !found {
		t.Fatalf("expected a coup attempt to eventually be enqueued")
	}
}

func TestHighLegitimacySkipsCoupEvaluation(t *testing.T) {
	w, app := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	w.AddEntity(world.KindFaction, "Secure Realm", nil,
		world.FactionData{Legitimacy: 0.9, Stability: 0.9}, ev)

	evaluateCoups(w, rand.New(rand.NewSource(1)), app)
	if app.Pending() {
		t.Fatalf("expected no coup evaluation for a secure, legitimate faction")
	}
}

func TestHandleSignalsInstallsSuccessorOnLeaderDeath(t *testing.T) {
	w, app := newHarness()
	ev := w.AddEvent("worldgen", w.Current, "genesis")
	leader := w.AddEntity(world.KindPerson, "Old King", &w.Current, world.PersonData{}, ev)
	faction := w.AddEntity(world.KindFaction, "Realm", nil,
		world.FactionData{LeaderPersonID: leader}, ev)
	settlement := w.AddEntity(world.KindSettlement, "Capital", &w.Current, world.SettlementData{}, ev)
	w.AddRelationship(settlement, faction, world.RelMemberOf, w.Current, ev)
	heir := w.AddEntity(world.KindPerson, "Heir", &w.Current,
		world.PersonData{Prestige: 0.6}, ev)
	w.AddRelationship(heir, settlement, world.RelLocatedIn, w.Current, ev)
	w.EndEntity(leader, w.Current, ev)

	sys := New()
	sys.HandleSignals(w, rand.New(rand.NewSource(1)), app,
		[]signal.Signal{signal.New(signal.KindEntityDied, leader)})
	if !app.Pending() {
		t.Fatalf("expected an install-leader command to be enqueued")
	}
	app.Drain()
	fe, _ := w.Entity(faction)
	fd := fe.Data.(world.FactionData)
	if fd.LeaderPersonID != heir {
		t.Fatalf("expected heir %d installed, got %d", heir, fd.LeaderPersonID)
	}
}
