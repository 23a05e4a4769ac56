// Package migration moves people out of distressed settlements and into
// a reachable settlement that can plausibly take them, relocates a
// trait-weighted share of a conquered settlement's residents outright,
// and clears a settlement off the map once its population is gone
// (spec §4.11).
//
// Grounded on original_source/src/sim/migration.rs's push/pull scoring
// and conquest-relocation pass; the random fraction of people that
// actually leave, and which individually-tracked residents relocate, is
// drawn from Migration's own rng, then carried on the command as a
// precomputed breakdown or a concrete NPC-by-NPC relocation list.
package migration

import (
	"math/rand"
	"sort"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/scheduler"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

const (
	minPopulationToMigrate = 20
	migrationRollScale     = 0.4
	migrationFraction      = 0.05
	maxMigrationHops       = 4

	conquestPush      = 0.7
	warZonePush       = 0.5
	disasterPushBonus = 0.3
	diseasePushBonus  = 0.25

	// migrationCapacityScale stands in for a settlement's carrying
	// capacity (no such field exists on SettlementData): room shrinks
	// linearly to zero at this population.
	migrationCapacityScale = 2500.0

	relocateCautious  = 0.6
	relocateDefault   = 0.3
	relocateAssertive = 0.15

	propRecentConquest = "recent_conquest_migration_push"
)

type sourceCategory int

const (
	categoryNone sourceCategory = iota
	categoryConquest
	categoryWarZone
	categoryEconomic
)

// System implements scheduler.System for refugee flows.
type System struct{}

func New() *System { return &System{} }

func (s *System) Name() string                   { return "migration" }
func (s *System) Frequency() scheduler.Frequency { return scheduler.Yearly }

func (s *System) Update(w *world.World, rng *rand.Rand, app *command.Applicator) {
	settlements := sortedSettlements(w)

	for _, e := range settlements {
		sd, ok := e.Data.(world.SettlementData)
		if !ok || sd.Population < minPopulationToMigrate {
			continue
		}
		conquestRisk := propertyFloat(e, propRecentConquest)
		if conquestRisk > 0 {
			app.Enqueue(command.Bookkeeping(command.KindSetProperty).
				With(e.ID, world.RoleSubject).Set("field", propRecentConquest).Set("value", 0.0))
		}

		push, category := pushFactor(w, e, sd, conquestRisk)
		if push <= 0 || rng.Float64() >= push*migrationRollScale {
			continue
		}
		dest := bestDestination(w, settlements, e, sd)
		if dest == 0 {
			continue
		}
		remaining, moving := sd.Breakdown.SubtractFraction(migrationFraction, rng)
		if moving.Total() == 0 {
			continue
		}
		app.Enqueue(command.New(command.KindMigratePopulation, "population_migrated", e.Name+" sends refugees").
			With(e.ID, world.RoleOrigin).With(dest, world.RoleDestination).
			Set("breakdown", moving))

		if category == categoryConquest {
			relocateConqueredResidents(w, rng, app, e.ID, dest)
		}

		if remaining.Total() == 0 {
			app.Enqueue(command.New(command.KindAbandonSettlement, "settlement_abandoned", e.Name+" is abandoned").
				With(e.ID, world.RoleSubject))
		}
	}
}

// pushFactor ranks a settlement's single strongest reason to emigrate:
// a just-conquered settlement first, an active war zone next, and
// plain economic distress last — mirroring spec §4.11's conquest →
// war-zone → economic-source precedence rather than stacking every
// factor additively.
func pushFactor(w *world.World, e *world.Entity, sd world.SettlementData, conquestRisk float64) (float64, sourceCategory) {
	if conquestRisk > 0 {
		return conquestPush, categoryConquest
	}
	if isWarZone(w, e.ID, sd) {
		return warZonePush, categoryWarZone
	}
	push := (1 - sd.Prosperity) * 0.5
	if sd.ActiveDisaster != nil {
		push += disasterPushBonus
	}
	if sd.ActiveDisease != nil {
		push += diseasePushBonus
	}
	if push > 1 {
		push = 1
	}
	if push <= 0.05 {
		return 0, categoryNone
	}
	return push, categoryEconomic
}

// isWarZone reports whether a settlement is actively under siege, or
// shares its region with an enemy army.
func isWarZone(w *world.World, settlementID uint64, sd world.SettlementData) bool {
	if sd.ActiveSiege != nil {
		return true
	}
	defRel, ok := w.ActiveRel(settlementID, world.RelMemberOf)
	if !ok {
		return false
	}
	for _, a := range w.LivingByKind(world.KindArmy) {
		ad, ok := a.Data.(world.ArmyData)
		if !ok || ad.RegionID != sd.RegionID {
			continue
		}
		if ad.FactionID != defRel.Target && w.HasGraphRelationship(ad.FactionID, defRel.Target, world.RelAtWar) {
			return true
		}
	}
	return false
}

// bestDestination picks the reachable settlement (within maxMigrationHops
// of region-adjacency) maximizing faction_affinity × 1/distance ×
// (0.3+prosperity) × capacity_room, breaking ties toward the lowest id.
func bestDestination(w *world.World, settlements []*world.Entity, origin *world.Entity, originSD world.SettlementData) uint64 {
	distances := reachableRegions(w, originSD.RegionID, maxMigrationHops)
	originFactionRel, _ := w.ActiveRel(origin.ID, world.RelMemberOf)

	var best uint64
	bestScore := -1.0
	for _, e := range settlements {
		if e.ID == origin.ID {
			continue
		}
		sd, ok := e.Data.(world.SettlementData)
		if !ok {
			continue
		}
		hops, reachable := distances[sd.RegionID]
		if !reachable {
			continue
		}
		capacity := capacityRoom(sd)
		if capacity <= 0 {
			continue
		}
		destFactionRel, _ := w.ActiveRel(e.ID, world.RelMemberOf)
		affinity := factionAffinity(w, originFactionRel.Target, destFactionRel.Target)
		distance := hops
		if distance < 1 {
			distance = 1
		}
		score := affinity * (1.0 / float64(distance)) * (0.3 + sd.Prosperity) * capacity
		if score > bestScore {
			bestScore = score
			best = e.ID
		}
	}
	return best
}

// reachableRegions BFS-walks the AdjacentTo graph from originRegion out
// to maxHops, returning each reached region's hop distance (0 for the
// origin itself).
func reachableRegions(w *world.World, originRegion uint64, maxHops int) map[uint64]int {
	dist := map[uint64]int{originRegion: 0}
	queue := []uint64{originRegion}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if dist[cur] >= maxHops {
			continue
		}
		for _, rel := range w.ActiveRels(cur, world.RelAdjacentTo) {
			if _, seen := dist[rel.Target]; seen {
				continue
			}
			dist[rel.Target] = dist[cur] + 1
			queue = append(queue, rel.Target)
		}
	}
	return dist
}

// factionAffinity scores how welcoming dest's faction is to origin's
// migrants: highest for its own people, lowest for an enemy at war,
// middling otherwise.
func factionAffinity(w *world.World, originFaction, destFaction uint64) float64 {
	if originFaction == destFaction {
		return 1.0
	}
	if originFaction == 0 || destFaction == 0 {
		return 0.5
	}
	if w.HasGraphRelationship(originFaction, destFaction, world.RelAtWar) {
		return 0.1
	}
	if w.HasGraphRelationship(originFaction, destFaction, world.RelAlly) {
		return 0.8
	}
	if w.HasGraphRelationship(originFaction, destFaction, world.RelEnemy) {
		return 0.3
	}
	return 0.5
}

func capacityRoom(sd world.SettlementData) float64 {
	room := 1 - float64(sd.Population)/migrationCapacityScale
	if room < 0 {
		return 0
	}
	return room
}

// relocateConqueredResidents moves a trait-weighted share of a just-
// conquered settlement's individually-tracked residents to the chosen
// destination: cautious NPCs flee at a much higher rate than the
// already-settled population bulk, aggressive or honorable ones dig in.
func relocateConqueredResidents(w *world.World, rng *rand.Rand, app *command.Applicator, originID, destID uint64) {
	for _, p := range w.LivingByKind(world.KindPerson) {
		rel, ok := w.ActiveRel(p.ID, world.RelLocatedIn)
		if !ok || rel.Target != originID {
			continue
		}
		pd, ok := p.Data.(world.PersonData)
		if !ok {
			continue
		}
		if rng.Float64() >= relocationChance(pd.Traits) {
			continue
		}
		app.Enqueue(command.Bookkeeping(command.KindEndRelationship).
			With(p.ID, world.RoleSubject).With(originID, world.RoleObject).
			Set("kind", string(world.RelLocatedIn)))
		app.Enqueue(command.Bookkeeping(command.KindAddRelationship).
			With(p.ID, world.RoleSubject).With(destID, world.RoleObject).
			Set("kind", string(world.RelLocatedIn)))
	}
}

func relocationChance(traits []world.Trait) float64 {
	for _, t := range traits {
		if t == world.TraitCautious {
			return relocateCautious
		}
	}
	for _, t := range traits {
		if t == world.TraitAggressive || t == world.TraitHonorable {
			return relocateAssertive
		}
	}
	return relocateDefault
}

func propertyFloat(e *world.Entity, key string) float64 {
	if v, ok := e.Properties[key].(float64); ok {
		return v
	}
	return 0
}

func sortedSettlements(w *world.World) []*world.Entity {
	s := w.LivingByKind(world.KindSettlement)
	sort.Slice(s, func(i, j int) bool { return s[i].ID < s[j].ID })
	return s
}

// HandleSignals watches for SettlementCaptured and marks the settlement
// with a one-tick elevated push factor, consumed and cleared the next
// time Update runs.
func (s *System) HandleSignals(w *world.World, rng *rand.Rand, app *command.Applicator, signals []signal.Signal) {
	for _, sig := range signals {
		if sig.Kind != signal.KindSettlementCaptured {
			continue
		}
		app.Enqueue(command.Bookkeeping(command.KindSetProperty).
			With(sig.EntityID, world.RoleSubject).Set("field", propRecentConquest).Set("value", 1.0))
	}
}
