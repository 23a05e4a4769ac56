// Package buildings constructs new buildings when a settlement's
// governing faction can afford one and ages existing buildings' condition
// (spec §4.11). Construction is gated by a treasury check alone;
// condition decays at a flat monthly rate, and no command restores it
// (UpgradeBuilding raises Level only).
package buildings

import (
	"math/rand"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/scheduler"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

const (
	monthlyDecay        = 0.004
	constructionChance  = 0.01
	constructionCost    = 50.0
)

var buildOrder = []world.BuildingType{
	world.BuildingMarket, world.BuildingWorkshop, world.BuildingTemple, world.BuildingLibrary, world.BuildingMine,
}

// System implements scheduler.System for building lifecycle.
type System struct{}

func New() *System { return &System{} }

func (s *System) Name() string                   { return "buildings" }
func (s *System) Frequency() scheduler.Frequency { return scheduler.Monthly }

func (s *System) Update(w *world.World, rng *rand.Rand, app *command.Applicator) {
	for _, e := range w.LivingByKind(world.KindBuilding) {
		if _, ok := e.Data.(world.BuildingData); !ok {
			continue
		}
		app.Enqueue(command.Bookkeeping(command.KindDamageBuilding).
			With(e.ID, world.RoleSubject).Set("amount", monthlyDecay))
	}

	for _, e := range w.LivingByKind(world.KindSettlement) {
		sd, ok := e.Data.(world.SettlementData)
		if !ok || sd.Seasonal.ConstructionBlocked {
			continue
		}
		rel, ok := w.ActiveRel(e.ID, world.RelMemberOf)
		if !ok {
			continue
		}
		fe, ok := w.Entity(rel.Target)
		if !ok {
			continue
		}
		fd, ok := fe.Data.(world.FactionData)
		if !ok || fd.Treasury < constructionCost {
			continue
		}
		if rng.Float64() >= constructionChance {
			continue
		}
		missing := missingBuildingType(w, e.ID)
		if missing == "" {
			continue
		}
		app.Enqueue(command.Bookkeeping(command.KindAdjustTreasury).
			With(rel.Target, world.RoleSubject).Set("delta", -constructionCost))
		app.Enqueue(command.New(command.KindConstructBuilding, "building_constructed", string(missing)+" constructed").
			With(e.ID, world.RoleLocation).Set("building_type", string(missing)).Set("name", e.Name+" "+string(missing)))
	}
}

func missingBuildingType(w *world.World, settlementID uint64) world.BuildingType {
	present := map[world.BuildingType]bool{}
	for _, b := range w.LivingByKind(world.KindBuilding) {
		bd, ok := b.Data.(world.BuildingData)
		if ok && bd.SettlementID == settlementID {
			present[bd.Type] = true
		}
	}
	for _, t := range buildOrder {
		if !present[t] {
			return t
		}
	}
	return ""
}

// HandleSignals has nothing to react to: a building whose condition
// reaches zero is ended by the DamageBuilding command Update enqueues.
func (s *System) HandleSignals(w *world.World, rng *rand.Rand, app *command.Applicator, signals []signal.Signal) {
}
