// Package demographics advances every settlement's population one tick:
// births, baseline mortality, and disease/disaster-adjusted mortality
// (spec §4.5). Newborns enter the infant brackets; survivors stay in the
// bracket they are in, since no bracket promotion is applied. It writes
// SettlementData's Population and Breakdown fields via
// command.KindSetPopulation bookkeeping commands so the change is still
// audited as an effect; Disease, Environment, and Migration change the
// same fields through their own commands.
//
// Grounded on original_source/src/sim/demographics.rs's per-settlement
// birth/death roll, adapted to PopulationBreakdown's 16-cell layout.
package demographics

import (
	"math/rand"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/scheduler"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/stochastic"
	"github.com/historica/chronicle/internal/world"
)

const (
	baseBirthRate = 0.006
	baseDeathRate = 0.004
	plagueDeathBonus   = 0.02
	disasterDeathScale = 0.01
)

// System implements scheduler.System for population dynamics.
type System struct{}

func New() *System { return &System{} }

func (s *System) Name() string                 { return "demographics" }
func (s *System) Frequency() scheduler.Frequency { return scheduler.Monthly }

func (s *System) Update(w *world.World, rng *rand.Rand, app *command.Applicator) {
	for _, e := range w.LivingByKind(world.KindSettlement) {
		sd, ok := e.Data.(world.SettlementData)
		if !ok || sd.Population == 0 {
			continue
		}

		birthRate := baseBirthRate * seasonalFoodMultiplier(sd.Seasonal)
		deathRate := baseDeathRate
		if sd.ActiveDisease != nil {
			deathRate += plagueDeathBonus * sd.ActiveDisease.InfectionRate
		}
		if sd.ActiveDisaster != nil {
			deathRate += disasterDeathScale * sd.ActiveDisaster.Severity
		}

		remaining, _ := sd.Breakdown.SubtractFraction(deathRate, rng)
		births := stochastic.Round(float64(sd.Population)*birthRate, rng)

		cells := remaining.Cells()
		male := uint32(births / 2)
		female := uint32(births) - male
		cells[0] += male
		cells[1] += female
		newBreakdown := world.FromCells(cells)

		if newBreakdown.Total() == sd.Population {
			continue
		}
		app.Enqueue(command.Bookkeeping(command.KindSetPopulation).
			With(e.ID, world.RoleSubject).
			Set("breakdown", newBreakdown))
	}
}

// HandleSignals reacts to disasters and plagues landing mid-tick by
// nothing at present: Update already reads ActiveDisease/ActiveDisaster
// fresh every tick, so no additional state needs to change here.
func (s *System) HandleSignals(w *world.World, rng *rand.Rand, app *command.Applicator, signals []signal.Signal) {
}

// seasonalFoodMultiplier treats an unset (zero-value) Food field as
// neutral (1.0) rather than starving every settlement before Environment
// has run once.
func seasonalFoodMultiplier(m world.SeasonalModifiers) float64 {
	if m.Food == 0 {
		return 1.0
	}
	return m.Food
}
