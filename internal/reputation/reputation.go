// Package reputation drifts every entity's passive renown and reacts to
// the world events that make or break a name: conquest, betrayal, and
// failed power grabs (spec §4.12).
//
// Grounded on original_source/src/sim/reputation.rs's drift-toward-target
// model; a Person's drift rate is scaled by internal/traits'
// PrestigeDrift multiplier, the one place trait weighting is centralized
// per spec §9.
package reputation

import (
	"math/rand"
	"sort"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/scheduler"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/traits"
	"github.com/historica/chronicle/internal/world"
)

const (
	personDriftRate     = 0.01
	personBaseline      = 0.5
	factionDriftRate    = 0.02
	settlementDriftRate = 0.015

	conquestBoost       = 0.05
	successionPenalty   = 0.15
	newLeaderBoost      = 0.1
	failedCoupPenalty   = 0.1
	betrayalPenalty     = 0.1
)

// System implements scheduler.System for prestige drift.
type System struct{}

func New() *System { return &System{} }

func (s *System) Name() string                   { return "reputation" }
func (s *System) Frequency() scheduler.Frequency { return scheduler.Monthly }

func (s *System) Update(w *world.World, rng *rand.Rand, app *command.Applicator) {
	for _, e := range w.LivingByKind(world.KindPerson) {
		pd, ok := e.Data.(world.PersonData)
		if !ok {
			continue
		}
		rate := personDriftRate * traits.Combine(pd.Traits).PrestigeDrift
		driftTo(app, e.ID, pd.Prestige, personBaseline, rate)
	}
	for _, e := range w.LivingByKind(world.KindFaction) {
		fd, ok := e.Data.(world.FactionData)
		if !ok {
			continue
		}
		target := (fd.Stability + fd.Legitimacy) / 2
		driftTo(app, e.ID, fd.Prestige, target, factionDriftRate)
	}
	for _, e := range w.LivingByKind(world.KindSettlement) {
		sd, ok := e.Data.(world.SettlementData)
		if !ok {
			continue
		}
		driftTo(app, e.ID, sd.Prestige, sd.Prosperity, settlementDriftRate)
	}
}

// driftTo enqueues a prestige adjustment moving current toward target at
// the given rate, skipping the command entirely when already at target
// (keeps quiet ticks genuinely quiet in the command stream).
func driftTo(app *command.Applicator, id uint64, current, target, rate float64) {
	delta := (target - current) * rate
	if delta == 0 {
		return
	}
	app.Enqueue(command.Bookkeeping(command.KindAdjustPrestige).
		With(id, world.RoleSubject).Set("delta", delta))
}

// HandleSignals translates the political and military events other
// subsystems publish into prestige consequences: conquerors gain renown,
// failed plotters and broken allies lose it.
func (s *System) HandleSignals(w *world.World, rng *rand.Rand, app *command.Applicator, signals []signal.Signal) {
	sort.SliceStable(signals, func(i, j int) bool { return signals[i].EntityID < signals[j].EntityID })
	for _, sig := range signals {
		switch sig.Kind {
		case signal.KindSettlementCaptured:
			if owner := sig.Uint64("new_owner_id"); owner != 0 {
				adjust(app, owner, conquestBoost)
			}
			if old := sig.Uint64("old_faction"); old != 0 {
				adjust(app, old, -0.05)
			}
		case signal.KindSuccessionCrisis:
			adjust(app, sig.EntityID, -successionPenalty)
			if leader := sig.Uint64("new_leader_id"); leader != 0 {
				adjust(app, leader, newLeaderBoost)
			}
		case signal.KindFailedCoup:
			if plotter := sig.Uint64("plotter_id"); plotter != 0 {
				adjust(app, plotter, -failedCoupPenalty)
			}
		case signal.KindAllianceBetrayed:
			adjust(app, sig.EntityID, -betrayalPenalty)
		}
	}
}

func adjust(app *command.Applicator, id uint64, delta float64) {
	app.Enqueue(command.New(command.KindAdjustPrestige, "prestige_adjusted", "reputation shifts").
		With(id, world.RoleSubject).Set("delta", delta))
}
