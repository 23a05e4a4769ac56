// Package items ages crafted goods, lets resonance build in whatever
// currently holds them, and has settlements with a workshop periodically
// turn out something new (spec §4.13).
//
// Grounded on original_source/src/sim/items.rs's condition/resonance
// model; material names are drawn from a small fixed table the way the
// teacher's pkg/pcg packages draw names from curated word lists.
package items

import (
	"math/rand"
	"sort"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/scheduler"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

const (
	monthlyConditionDecay  = 0.003
	craftChance            = 0.004
	resonanceGainBase      = 0.002
	resonancePrestigeBonus = 0.01
)

var itemTypes = []world.ItemType{
	world.ItemWeapon, world.ItemTool, world.ItemJewelry, world.ItemAmulet, world.ItemTablet, world.ItemPottery,
}

var materials = []string{"bronze", "iron", "oak", "silver", "clay", "obsidian"}

// System implements scheduler.System for item lifecycle.
type System struct{}

func New() *System { return &System{} }

func (s *System) Name() string                   { return "items" }
func (s *System) Frequency() scheduler.Frequency { return scheduler.Monthly }

func (s *System) Update(w *world.World, rng *rand.Rand, app *command.Applicator) {
	ageItems(w, app)
	accumulateResonance(w, app)
	craftNewItems(w, rng, app)
}

// ageItems decays every item's condition and destroys it outright once
// that decay would take it to zero or below.
func ageItems(w *world.World, app *command.Applicator) {
	for _, e := range sortedItems(w) {
		idata, ok := e.Data.(world.ItemData)
		if !ok {
			continue
		}
		if idata.Condition-monthlyConditionDecay <= 0 {
			app.Enqueue(command.New(command.KindDestroyItem, "item_destroyed", e.Name+" falls apart").
				With(e.ID, world.RoleSubject))
			continue
		}
		app.Enqueue(command.Bookkeeping(command.KindDecayItemCondition).
			With(e.ID, world.RoleSubject).Set("amount", monthlyConditionDecay))
	}
}

// accumulateResonance lets an item held by a person gain resonance faster
// the more prestigious its holder, reflecting the weight of the company
// it keeps.
func accumulateResonance(w *world.World, app *command.Applicator) {
	for _, e := range sortedItems(w) {
		if _, ok := e.Data.(world.ItemData); !ok {
			continue
		}
		rel, ok := w.ActiveRel(e.ID, world.RelHeldBy)
		if !ok {
			continue
		}
		holder, ok := w.Entity(rel.Target)
		if !ok {
			continue
		}
		pd, ok := holder.Data.(world.PersonData)
		if !ok {
			continue
		}
		gain := resonanceGainBase + pd.Prestige*resonancePrestigeBonus
		app.Enqueue(command.Bookkeeping(command.KindAccumulateResonance).
			With(e.ID, world.RoleSubject).Set("delta", gain))
	}
}

// craftNewItems rolls, per settlement with a workshop, a small chance that
// one of its resident persons forges something new.
func craftNewItems(w *world.World, rng *rand.Rand, app *command.Applicator) {
	workshopSettlements := settlementsWithWorkshop(w)
	for _, settlementID := range workshopSettlements {
		maker := firstResident(w, settlementID)
		if maker == 0 {
			continue
		}
		if rng.Float64() >= craftChance {
			continue
		}
		itemType := itemTypes[rng.Intn(len(itemTypes))]
		material := materials[rng.Intn(len(materials))]
		app.Enqueue(command.New(command.KindCraftItem, "item_crafted", "a new "+string(itemType)+" is forged").
			With(maker, world.RoleSubject).
			Set("item_type", string(itemType)).Set("material", material).
			Set("name", material+" "+string(itemType)))
	}
}

func sortedItems(w *world.World) []*world.Entity {
	items := w.LivingByKind(world.KindItem)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func settlementsWithWorkshop(w *world.World) []uint64 {
	present := map[uint64]bool{}
	for _, b := range w.LivingByKind(world.KindBuilding) {
		bd, ok := b.Data.(world.BuildingData)
		if ok && bd.Type == world.BuildingWorkshop {
			present[bd.SettlementID] = true
		}
	}
	ids := make([]uint64, 0, len(present))
	for id := range present {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// firstResident returns the lowest-id living Person located in
// settlementID, or 0 if none.
func firstResident(w *world.World, settlementID uint64) uint64 {
	people := w.LivingByKind(world.KindPerson)
	sort.Slice(people, func(i, j int) bool { return people[i].ID < people[j].ID })
	for _, p := range people {
		if rel, ok := w.ActiveRel(p.ID, world.RelLocatedIn); ok && rel.Target == settlementID {
			return p.ID
		}
	}
	return 0
}

// HandleSignals has nothing to react to: item state changes (transfer,
// destruction) are all driven from this system's own Update pass.
func (s *System) HandleSignals(w *world.World, rng *rand.Rand, app *command.Applicator, signals []signal.Signal) {
}
