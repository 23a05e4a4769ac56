package scheduler

import (
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

type countingSystem struct {
	name        string
	freq        Frequency
	updates     int
	reactions   int
	emitOnFirst bool
	bus         *signal.Bus
}

func (c *countingSystem) Name() string          { return c.name }
func (c *countingSystem) Frequency() Frequency   { return c.freq }
func (c *countingSystem) Update(w *world.World, rng *rand.Rand, app *command.Applicator) {
	c.updates++
	if c.emitOnFirst && c.updates == 1 {
		c.bus.Publish(signal.New(signal.KindEntityDied, 1))
	}
}
func (c *countingSystem) HandleSignals(w *world.World, rng *rand.Rand, app *command.Applicator, signals []signal.Signal) {
	c.reactions++
}

func newTestScheduler(systems ...System) (*Scheduler, *world.World) {
	w := world.New(world.Timestamp{Year: 1, Month: 1})
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	bus := signal.NewBus()
	app := command.NewApplicator(w, bus, log)
	return New(w, app, bus, 42, log, systems...), w
}

func TestMonthlySystemRunsEveryTick(t *testing.T) {
	monthly := &countingSystem{name: "demographics", freq: Monthly}
	s, _ := newTestScheduler(monthly)
	s.Run(13)
	if monthly.updates != 13 {
		t.Fatalf("expected 13 updates, got %d", monthly.updates)
	}
}

func TestYearlySystemRunsOnlyAtBoundary(t *testing.T) {
	yearly := &countingSystem{name: "politics", freq: Yearly}
	s, _ := newTestScheduler(yearly)
	s.Run(24)
	if yearly.updates != 2 {
		t.Fatalf("expected 2 yearly updates across 24 ticks, got %d", yearly.updates)
	}
}

func TestReactionsDeliverWithinSameTick(t *testing.T) {
	w := world.New(world.Timestamp{Year: 1, Month: 1})
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	bus := signal.NewBus()
	app := command.NewApplicator(w, bus, log)
	emitter := &countingSystem{name: "emitter", freq: Monthly, emitOnFirst: true, bus: bus}
	receiver := &countingSystem{name: "receiver", freq: Monthly}
	s := New(w, app, bus, 7, log, emitter, receiver)

	s.Tick()

	if receiver.reactions == 0 {
		t.Fatalf("expected receiver to see at least one reaction iteration")
	}
}

func TestTickAdvancesClock(t *testing.T) {
	s, w := newTestScheduler(&countingSystem{name: "x", freq: Monthly})
	s.Tick()
	if w.Current.Year != 1 || w.Current.Month != 2 {
		t.Fatalf("expected clock to advance to 1-2, got %s", w.Current)
	}
}
