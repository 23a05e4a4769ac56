// Package environment computes seasonal modifiers for every settlement
// and rolls for disaster onset/progression/end (spec §4.6). It is the
// sole writer of SettlementData.Seasonal and the ActiveDisaster lifecycle,
// via bookkeeping and event commands respectively.
//
// Grounded on original_source/src/sim/environment.rs's per-region season
// table and disaster roll, adapted to read RegionData.Y/Terrain instead
// of the original's explicit climate-zone enum.
package environment

import (
	"math/rand"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/scheduler"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

const (
	baseDisasterChance      = 0.002
	coastalDisasterBonus    = 0.001
	persistentDisasterYears = 3
)

var disasterTypes = []string{"drought", "flood", "wildfire"}
var instantDisasterTypes = []string{"earthquake", "storm"}

// System implements scheduler.System for seasonal and disaster effects.
type System struct{}

func New() *System { return &System{} }

func (s *System) Name() string                   { return "environment" }
func (s *System) Frequency() scheduler.Frequency { return scheduler.Monthly }

func (s *System) Update(w *world.World, rng *rand.Rand, app *command.Applicator) {
	for _, e := range w.LivingByKind(world.KindSettlement) {
		sd, ok := e.Data.(world.SettlementData)
		if !ok {
			continue
		}
		mods := seasonalModifiers(w, sd.RegionID, w.Current.Month)
		app.Enqueue(command.Bookkeeping(command.KindSetSeasonalModifiers).
			With(e.ID, world.RoleSubject).Set("modifiers", mods))

		if sd.ActiveDisaster != nil {
			progressDisaster(app, e.ID, sd, rng)
			continue
		}
		rollForDisaster(app, e.ID, sd, rng)
	}
}

func seasonalModifiers(w *world.World, regionID uint64, month uint32) world.SeasonalModifiers {
	mods := world.SeasonalModifiers{Food: 1.0, Trade: 1.0, Disease: 1.0, Army: 1.0}
	region, ok := w.Entity(regionID)
	if !ok {
		return mods
	}
	rd, ok := region.Data.(world.RegionData)
	if !ok {
		return mods
	}
	// Winter months (12, 1, 2) depress food and trade more at higher
	// absolute latitude (|Y|), and can block construction outright.
	winter := month == 12 || month == 1 || month == 2
	latitudeSeverity := float64(absInt(rd.Y)) / 100.0
	if latitudeSeverity > 1 {
		latitudeSeverity = 1
	}
	if winter {
		mods.Food = 1.0 - 0.3*latitudeSeverity
		mods.Trade = 1.0 - 0.15*latitudeSeverity
		mods.ConstructionBlocked = latitudeSeverity > 0.6
		mods.Army = 1.0 - 0.2*latitudeSeverity
	}
	if rd.Terrain == "arid" {
		mods.Food *= 0.9
	}
	return mods
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func rollForDisaster(app *command.Applicator, settlementID uint64, sd world.SettlementData, rng *rand.Rand) {
	chance := baseDisasterChance
	roll := rng.Float64()
	if roll >= chance {
		return
	}
	// 60% of rolls are instant shocks, 40% persistent.
	if rng.Float64() < 0.6 {
		kind := instantDisasterTypes[rng.Intn(len(instantDisasterTypes))]
		_, deaths := sd.Breakdown.SubtractFraction(0.01, rng)
		app.Enqueue(command.New(command.KindTriggerInstantDisaster, "disaster_struck", kind+" strikes").
			With(settlementID, world.RoleLocation).
			Set("type", kind).
			Set("deaths_breakdown", deaths).
			Set("prosperity_loss_fraction", 0.1))
		return
	}
	kind := disasterTypes[rng.Intn(len(disasterTypes))]
	app.Enqueue(command.New(command.KindBeginPersistentDisaster, "disaster_started", kind+" begins").
		With(settlementID, world.RoleLocation).
		Set("type", kind).
		Set("severity", 0.3+rng.Float64()*0.4).
		Set("months_duration", persistentDisasterYears*12))
}

func progressDisaster(app *command.Applicator, settlementID uint64, sd world.SettlementData, rng *rand.Rand) {
	if sd.ActiveDisaster.MonthsElapsed+1 >= sd.ActiveDisaster.MonthsDuration {
		app.Enqueue(command.Bookkeeping(command.KindEndDisaster).With(settlementID, world.RoleLocation))
		return
	}
	_, deaths := sd.Breakdown.SubtractFraction(sd.ActiveDisaster.Severity*0.002, rng)
	app.Enqueue(command.Bookkeeping(command.KindProgressDisaster).
		With(settlementID, world.RoleLocation).
		Set("deaths_breakdown", deaths))
}

// HandleSignals has nothing to react to at present: Environment's effects
// are driven entirely by its own Update roll, not by other subsystems'
// signals.
func (s *System) HandleSignals(w *world.World, rng *rand.Rand, app *command.Applicator, signals []signal.Signal) {
}
