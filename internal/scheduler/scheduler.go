// Package scheduler drives the tick loop: Update -> Reactions (looped up
// to a cap) -> PostUpdate (spec §4.4). It owns nothing about any one
// domain; it only sequences System implementations and hands each one a
// deterministic RNG stream derived from the world seed.
//
// Grounded on original_source/src/sim/scheduler.rs's run_tick function,
// restructured as a Go interface + slice-of-implementations the way the
// teacher structures its turn resolution in pkg/game/engine.go.
package scheduler

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/simrand"
	"github.com/historica/chronicle/internal/world"
)

// Frequency tags how often a System's Update runs.
type Frequency string

const (
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// System is implemented by every L2 subsystem package. Update runs once
// per tick matching its Frequency; HandleSignals runs once per Reactions
// iteration for every system, regardless of Frequency, since a
// yearly-cadence subsystem may still need to react to a same-month war
// declaration.
type System interface {
	Name() string
	Frequency() Frequency
	Update(w *world.World, rng *rand.Rand, app *command.Applicator)
	HandleSignals(w *world.World, rng *rand.Rand, app *command.Applicator, signals []signal.Signal)
}

// ReactionCap bounds the Reactions loop (spec §4.4's "K" iteration cap),
// guarding against signal cascades that never settle. Crossing it is a
// class-4 warn-logged event, not a panic.
const ReactionCap = 8

// Scheduler sequences System implementations over a World's command
// applicator and signal bus.
type Scheduler struct {
	World      *world.World
	Applicator *command.Applicator
	Bus        *signal.Bus
	Systems    []System
	MasterSeed uint64
	Log        *logrus.Logger
}

// New builds a Scheduler. Systems run in the order given, both within
// Update and within each Reactions iteration — determinism requires a
// fixed system order, not just a fixed RNG.
func New(w *world.World, app *command.Applicator, bus *signal.Bus, seed uint64, log *logrus.Logger, systems ...System) *Scheduler {
	return &Scheduler{World: w, Applicator: app, Bus: bus, Systems: systems, MasterSeed: seed, Log: log}
}

func (s *Scheduler) tickIndex() uint64 {
	return uint64(s.World.Current.Year)*12 + uint64(s.World.Current.Month)
}

// Tick runs one full Update -> Reactions -> PostUpdate cycle and advances
// the world clock by one month.
func (s *Scheduler) Tick() {
	tick := s.tickIndex()
	yearly := s.World.IsYearlyBoundary()

	for _, sys := range s.Systems {
		if sys.Frequency() == Yearly && !yearly {
			continue
		}
		rng := simrand.ForSubsystemTick(s.MasterSeed, sys.Name(), tick)
		sys.Update(s.World, rng, s.Applicator)
	}

	for iter := 0; iter < ReactionCap; iter++ {
		pending := s.Bus.Drain()
		if len(pending) == 0 {
			break
		}
		if iter == ReactionCap-1 {
			s.Log.WithFields(logrus.Fields{
				"component": "scheduler", "tick": tick, "signal_count": len(pending),
			}).Warn("reaction cascade hit iteration cap, truncating")
		}
		for _, sys := range s.Systems {
			rng := simrand.ForSubsystemTick(s.MasterSeed, sys.Name()+":reactions", tick*uint64(iter+1))
			sys.HandleSignals(s.World, rng, s.Applicator, pending)
		}
	}

	s.Applicator.Drain()
	s.World.AdvanceMonth()
}

// Run advances the scheduler for the given number of ticks (months).
func (s *Scheduler) Run(ticks int) {
	for i := 0; i < ticks; i++ {
		s.Tick()
	}
}
