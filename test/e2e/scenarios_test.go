// Black-box scenario tests driving the command/applicator/world pipeline
// directly, the way the teacher's test/e2e package drives a running server
// through client.go rather than reaching into package internals. Each test
// here but the replay test plays a handful of Commands through a bare
// Applicator (the replay test runs the full scheduler) and asserts
// the resulting World state and published Signals match one of the
// end-to-end behaviors a full simulation run is expected to exhibit.
package e2e

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/historica/chronicle/internal/agency"
	"github.com/historica/chronicle/internal/buildings"
	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/conflict"
	"github.com/historica/chronicle/internal/culture"
	"github.com/historica/chronicle/internal/demographics"
	"github.com/historica/chronicle/internal/disease"
	"github.com/historica/chronicle/internal/economy"
	"github.com/historica/chronicle/internal/education"
	"github.com/historica/chronicle/internal/environment"
	"github.com/historica/chronicle/internal/items"
	"github.com/historica/chronicle/internal/migration"
	"github.com/historica/chronicle/internal/politics"
	"github.com/historica/chronicle/internal/reputation"
	"github.com/historica/chronicle/internal/scenario"
	"github.com/historica/chronicle/internal/scheduler"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
	"github.com/historica/chronicle/internal/worldlog"
)

func silentLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// harness is a bare World + Applicator + Bus, without a Scheduler, for
// scenario tests that want to play a known sequence of Commands rather
// than drive a full tick loop with its RNG-dependent subsystem decisions.
type harness struct {
	W   *world.World
	Bus *signal.Bus
	App *command.Applicator
}

func newHarness(start world.Timestamp) *harness {
	w := world.New(start)
	w.Log = silentLog()
	bus := signal.NewBus()
	return &harness{W: w, Bus: bus, App: command.NewApplicator(w, bus, w.Log)}
}

// apply enqueues and immediately drains a single command, returning
// whatever Signals its handler published.
func (h *harness) apply(c command.Command) []signal.Signal {
	h.App.Enqueue(c)
	h.App.Drain()
	return h.Bus.Drain()
}

func settlementData(t *testing.T, h *harness, id uint64) world.SettlementData {
	t.Helper()
	e, ok := h.W.Entity(id)
	require.True(t, ok)
	sd, ok := e.Data.(world.SettlementData)
	require.True(t, ok)
	return sd
}

func factionData(t *testing.T, h *harness, id uint64) world.FactionData {
	t.Helper()
	e, ok := h.W.Entity(id)
	require.True(t, ok)
	fd, ok := e.Data.(world.FactionData)
	require.True(t, ok)
	return fd
}

// --- Scenario 1: population conservation under migration ---

func TestScenarioPopulationConservationUnderMigration(t *testing.T) {
	h := newHarness(world.Timestamp{Year: 1, Month: 1})
	origin := h.W.AddEntity(world.KindSettlement, "Ashford", &h.W.Current,
		world.SettlementData{Population: 500, Breakdown: world.FromTotal(500), Prosperity: 0.5}, 0)
	destination := h.W.AddEntity(world.KindSettlement, "Brackwater", &h.W.Current,
		world.SettlementData{Population: 200, Breakdown: world.FromTotal(200), Prosperity: 0.5}, 0)

	beforeTotal := settlementData(t, h, origin).Population + settlementData(t, h, destination).Population

	moving := world.FromTotal(150)
	signals := h.apply(command.New(command.KindMigratePopulation, "migration", "refugees move on").
		With(origin, world.RoleOrigin).With(destination, world.RoleDestination).
		Set("breakdown", moving))

	after := settlementData(t, h, origin)
	afterDest := settlementData(t, h, destination)

	assert.Equal(t, uint32(350), after.Population)
	assert.Equal(t, uint32(350), afterDest.Population)
	assert.Equal(t, beforeTotal, after.Population+afterDest.Population, "migration must conserve total population")

	require.Len(t, signals, 1)
	assert.Equal(t, signal.KindRefugeesArrived, signals[0].Kind)
	assert.Equal(t, destination, signals[0].EntityID)
	assert.Equal(t, origin, signals[0].Uint64("origin_id"))
}

// --- Scenario 2: siege conquest transfers faction membership ---

func TestScenarioSiegeConquest(t *testing.T) {
	h := newHarness(world.Timestamp{Year: 10, Month: 1})
	defender := h.W.AddEntity(world.KindFaction, "Defenders", &h.W.Current,
		world.FactionData{Government: world.GovernmentMonarchy, Stability: 0.6, Legitimacy: 0.6, Tributes: map[uint64]world.Tribute{}, Grievances: map[uint64]*world.Grievance{}}, 0)
	attacker := h.W.AddEntity(world.KindFaction, "Attackers", &h.W.Current,
		world.FactionData{Government: world.GovernmentMonarchy, Stability: 0.6, Legitimacy: 0.6, Tributes: map[uint64]world.Tribute{}, Grievances: map[uint64]*world.Grievance{}}, 0)
	settlement := h.W.AddEntity(world.KindSettlement, "Cindermoor", &h.W.Current,
		world.SettlementData{Population: 300, Breakdown: world.FromTotal(300), Prosperity: 0.4, FortificationLevel: 0}, 0)
	h.W.AddRelationship(settlement, defender, world.RelMemberOf, h.W.Current, 0)

	army := h.W.AddEntity(world.KindArmy, "Siege Host", &h.W.Current,
		world.ArmyData{Strength: 200, Morale: 0.8, Supply: 1.0, FactionID: attacker}, 0)

	signals := h.apply(command.New(command.KindBeginSiege, "siege_started", "Cindermoor is besieged").
		With(settlement, world.RoleLocation).With(army, world.RoleAttacker))
	require.Len(t, signals, 1)
	assert.Equal(t, signal.KindSiegeStarted, signals[0].Kind)
	assert.NotNil(t, settlementData(t, h, settlement).ActiveSiege)

	signals = h.apply(command.New(command.KindCaptureSettlement, "settlement_captured", "Cindermoor falls").
		With(settlement, world.RoleObject).With(attacker, world.RoleAttacker))
	require.Len(t, signals, 1)
	assert.Equal(t, signal.KindSettlementCaptured, signals[0].Kind)

	rel, ok := h.W.ActiveRel(settlement, world.RelMemberOf)
	require.True(t, ok)
	assert.Equal(t, attacker, rel.Target, "settlement must belong to the new owner after capture")
	assert.False(t, h.W.HasActiveRel(settlement, world.RelMemberOf, defender))

	signals = h.apply(command.New(command.KindEndSiege, "siege_ended", "the siege is over").
		With(settlement, world.RoleLocation).Set("outcome", "captured"))
	require.Len(t, signals, 1)
	assert.Equal(t, signal.KindSiegeEnded, signals[0].Kind)
	assert.Nil(t, settlementData(t, h, settlement).ActiveSiege)
}

// --- Scenario 3: plague lifecycle strictly reduces population and ends
// with a nonzero immunity gain ---

func TestScenarioPlagueLifecycle(t *testing.T) {
	h := newHarness(world.Timestamp{Year: 5, Month: 1})
	settlement := h.W.AddEntity(world.KindSettlement, "Dunholt", &h.W.Current,
		world.SettlementData{Population: 1000, Breakdown: world.FromTotal(1000), Prosperity: 0.5, PlagueImmunity: 0}, 0)

	signals := h.apply(command.New(command.KindStartPlague, "plague_started", "plague breaks out in Dunholt").
		With(settlement, world.RoleLocation).
		Set("profile", string(world.ProfileClassic)).Set("virulence", 0.6).Set("lethality", 0.3).
		Set("duration", 24).Set("infection_rate", 0.2).Set("name", "The Wasting"))
	require.Len(t, signals, 1)
	assert.Equal(t, signal.KindPlagueStarted, signals[0].Kind)
	require.NotNil(t, settlementData(t, h, settlement).ActiveDisease)

	lastPop := settlementData(t, h, settlement).Population
	for year := 0; year < 3; year++ {
		deaths := world.FromTotal(50)
		h.apply(command.Bookkeeping(command.KindApplyDiseaseDeaths).
			With(settlement, world.RoleLocation).Set("deaths_breakdown", deaths))
		pop := settlementData(t, h, settlement).Population
		assert.Less(t, pop, lastPop, "population must strictly decrease while the plague kills")
		lastPop = pop
	}

	signals = h.apply(command.New(command.KindEndDisease, "plague_ended", "the plague burns itself out").
		With(settlement, world.RoleLocation).Set("immunity_gain", 0.7))
	require.Len(t, signals, 1)
	assert.Equal(t, signal.KindPlagueEnded, signals[0].Kind)

	final := settlementData(t, h, settlement)
	assert.Nil(t, final.ActiveDisease)
	assert.InDelta(t, 0.7, final.PlagueImmunity, 1e-9)
}

// --- Scenario 4: alliance betrayal dissolves the alliance and penalizes
// the betrayer's diplomatic trust ---

func TestScenarioAllianceBetrayalAppliesTrustPenalty(t *testing.T) {
	h := newHarness(world.Timestamp{Year: 20, Month: 1})
	a := h.W.AddEntity(world.KindFaction, "Kingdom of Ash", &h.W.Current,
		world.FactionData{Government: world.GovernmentMonarchy, DiplomaticTrust: 0.8, Tributes: map[uint64]world.Tribute{}, Grievances: map[uint64]*world.Grievance{}}, 0)
	b := h.W.AddEntity(world.KindFaction, "Brackwater Republic", &h.W.Current,
		world.FactionData{Government: world.GovernmentRepublic, DiplomaticTrust: 0.8, Tributes: map[uint64]world.Tribute{}, Grievances: map[uint64]*world.Grievance{}}, 0)

	h.apply(command.New(command.KindFormAlliance, "alliance_formed", "an alliance is sworn").
		With(a, world.RoleSubject).With(b, world.RoleObject))
	require.True(t, h.W.HasGraphRelationship(a, b, world.RelAlly))

	signals := h.apply(command.New(command.KindBetrayAlliance, "alliance_betrayed", "Kingdom of Ash breaks its oath").
		With(a, world.RoleInstigator).With(b, world.RoleSubject))

	assert.False(t, h.W.HasGraphRelationship(a, b, world.RelAlly), "alliance must be dissolved by betrayal")
	require.Len(t, signals, 1)
	assert.Equal(t, signal.KindAllianceBetrayed, signals[0].Kind)
	assert.Equal(t, b, signals[0].Uint64("victim_id"))
	assert.InDelta(t, 0.4, factionData(t, h, a).DiplomaticTrust, 1e-9, "betrayer's trust must be halved")
}

// --- Scenario 5: tribute payment moves treasury, then lapses cleanly ---

func TestScenarioTributePaymentAndLapse(t *testing.T) {
	h := newHarness(world.Timestamp{Year: 2, Month: 1})
	payer := h.W.AddEntity(world.KindFaction, "Cinder Theocracy", &h.W.Current,
		world.FactionData{Government: world.GovernmentTheocracy, Treasury: 100, Tributes: map[uint64]world.Tribute{}, Grievances: map[uint64]*world.Grievance{}}, 0)
	payee := h.W.AddEntity(world.KindFaction, "Kingdom of Ash", &h.W.Current,
		world.FactionData{Government: world.GovernmentMonarchy, Treasury: 50, Tributes: map[uint64]world.Tribute{}, Grievances: map[uint64]*world.Grievance{}}, 0)

	e, ok := h.W.Entity(payer)
	require.True(t, ok)
	payerData := e.Data.(world.FactionData)
	payerData.Tributes[payee] = world.Tribute{Amount: 10, YearsRemaining: 3}
	e.Data = payerData

	h.apply(command.New(command.KindPayTribute, "tribute_paid", "tribute is paid").
		With(payer, world.RoleSubject).With(payee, world.RoleObject))

	assert.InDelta(t, 90, factionData(t, h, payer).Treasury, 1e-9)
	assert.InDelta(t, 60, factionData(t, h, payee).Treasury, 1e-9)
	_, stillOwed := factionData(t, h, payer).Tributes[payee]
	assert.True(t, stillOwed, "one payment must not itself end the obligation")

	h.apply(command.New(command.KindTributeEnded, "tribute_ended", "the tribute obligation lapses").
		With(payer, world.RoleSubject).With(payee, world.RoleObject))
	_, stillOwed = factionData(t, h, payer).Tributes[payee]
	assert.False(t, stillOwed, "TributeEnded must remove the obligation")
}

// --- Scenario 6: same seed, same subsystem stack, same number of ticks
// produces a bitwise-identical chronicle ---

func fullSystemStack(seed uint64) []scheduler.System {
	return []scheduler.System{
		demographics.New(),
		environment.New(),
		disease.New(),
		economy.New(),
		buildings.New(),
		conflict.New(),
		politics.New(),
		migration.New(),
		reputation.New(),
		items.New(),
		education.New(),
		culture.New(seed),
		agency.New(),
	}
}

func runBootstrapSimulation(t *testing.T, seed uint64, months int) string {
	t.Helper()
	b := scenario.Bootstrap(seed, world.Timestamp{Year: 1, Month: 1})
	w := b.W
	w.Log = silentLog()
	bus := signal.NewBus()
	app := command.NewApplicator(w, bus, w.Log)
	sched := scheduler.New(w, app, bus, seed, w.Log, fullSystemStack(seed)...)
	sched.Run(months)

	dir := t.TempDir()
	require.NoError(t, worldlog.Flush(w, dir, w.Log))
	return dir
}

func readAll(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestScenarioDeterministicReplayIsBitwiseIdentical(t *testing.T) {
	const seed = 42
	const months = 24

	dirA := runBootstrapSimulation(t, seed, months)
	dirB := runBootstrapSimulation(t, seed, months)

	for _, name := range []string{"entities.jsonl", "events.jsonl", "event_participants.jsonl", "event_effects.jsonl", "relationships.jsonl"} {
		a := readAll(t, filepath.Join(dirA, name))
		b := readAll(t, filepath.Join(dirB, name))
		assert.Equal(t, a, b, "%s must be byte-identical across replays of the same seed", name)
	}
}
