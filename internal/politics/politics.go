// Package politics drives faction-level diplomacy: grievances decay or
// curdle into rivalries, low-legitimacy regimes tempt ambitious nobles
// into coups, vacant thrones get filled, and shattered factions can
// break apart (spec §4.9).
//
// Grounded on original_source/src/sim/politics.rs's grievance/coup model;
// coup and succession odds are weighted through internal/traits the same
// way Agency and Reputation read it, per spec §9's single-table design.
package politics

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
	grievanceDecayRate    = 0.015
	rivalryThreshold      = 0.6
	coupBaseChance        = 0.01
	coupSuccessFloor      = 0.35
	legitimacyCoupCeiling = 0.35
	allianceFormChance    = 0.003
	splitStabilityFloor   = 0.15
	splitChance           = 0.05
)

// System implements scheduler.System for diplomacy and succession.
type System struct{}

func New() *System { return &System{} }

func (s *System) Name() string                   { return "politics" }
func (s *System) Frequency() scheduler.Frequency { return scheduler.Monthly }

func (s *System) Update(w *world.World, rng *rand.Rand, app *command.Applicator) {
	decayGrievances(w, rng, app)
	evaluateCoups(w, rng, app)
	evaluateSplits(w, rng, app)
	formAlliances(w, rng, app)
}

// decayGrievances lets every faction's resentments fade monthly; one that
// has festered past rivalryThreshold also crystallizes into an open
// rivalry, and keeps decaying all the same.
func decayGrievances(w *world.World, rng *rand.Rand, app *command.Applicator) {
	for _, e := range sortedFactions(w) {
		fd, ok := e.Data.(world.FactionData)
		if !ok || len(fd.Grievances) == 0 {
			continue
		}
		targets := make([]uint64, 0, len(fd.Grievances))
		for t := range fd.Grievances {
			targets = append(targets, t)
		}
		sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

		for _, target := range targets {
			g := fd.Grievances[target]
			if g.Severity >= rivalryThreshold && w.Alive(target) &&
				!w.HasGraphRelationship(e.ID, target, world.RelEnemy) &&
				!w.HasGraphRelationship(e.ID, target, world.RelAlly) {
				app.Enqueue(command.New(command.KindFormRivalry, "rivalry_formed", "grievance hardens into rivalry").
					With(e.ID, world.RoleSubject).With(target, world.RoleObject))
			}
			if g.Severity > 0 {
				app.Enqueue(command.Bookkeeping(command.KindAdjustGrievance).
					With(e.ID, world.RoleSubject).With(target, world.RoleObject).
					Set("delta", -grievanceDecayRate))
			}
		}
	}
}

// evaluateCoups looks for an ambitious noble willing to move against a
// weakly-legitimate regime. Only one plotter per faction per tick is
// considered, in settlement/person id order, to keep the RNG stream shape
// stable.
func evaluateCoups(w *world.World, rng *rand.Rand, app *command.Applicator) {
	for _, e := range sortedFactions(w) {
		fd, ok := e.Data.(world.FactionData)
		if !ok || fd.Legitimacy >= legitimacyCoupCeiling {
			continue
		}
		plotter, plotterTraits, ok := findAmbitiousNoble(w, e.ID, fd.LeaderPersonID)
		if !ok {
			continue
		}
		eff := traits.Combine(plotterTraits)
		chance := coupBaseChance * eff.AmbitionWeight / eff.LoyaltyWeight
		if rng.Float64() >= chance {
			continue
		}
		successChance := coupSuccessFloor + (1-fd.Stability)*0.3
		succeeded := rng.Float64() < successChance
		app.Enqueue(command.New(command.KindAttemptCoup, "coup_attempted", "a noble moves against the throne").
			With(e.ID, world.RoleSubject).With(plotter, world.RoleInstigator).
			Set("succeeded", succeeded))
	}
}

// evaluateSplits lets a faction on the brink of collapse fracture, handing
// its lowest-cohesion settlements to a breakaway government.
func evaluateSplits(w *world.World, rng *rand.Rand, app *command.Applicator) {
	for _, e := range sortedFactions(w) {
		fd, ok := e.Data.(world.FactionData)
		if !ok || fd.Stability >= splitStabilityFloor {
			continue
		}
		if rng.Float64() >= splitChance {
			continue
		}
		members := memberSettlements(w, e.ID)
		if len(members) < 2 {
			continue
		}
		defecting := members[len(members)/2:]
		app.Enqueue(command.New(command.KindSplitFaction, "faction_split", e.Name+" fractures").
			With(e.ID, world.RoleSubject).
			Set("name", e.Name+" Remnant").
			Set("defecting_settlement_ids", defecting))
	}
}

// formAlliances rolls a small chance for any two unrelated, non-warring
// factions with no outstanding grievance against each other to ally.
func formAlliances(w *world.World, rng *rand.Rand, app *command.Applicator) {
	factions := sortedFactions(w)
	for i := 0; i < len(factions); i++ {
		for j := i + 1; j < len(factions); j++ {
			x, y := factions[i], factions[j]
			if w.HasGraphRelationship(x.ID, y.ID, world.RelAlly) ||
				w.HasGraphRelationship(x.ID, y.ID, world.RelEnemy) ||
				w.HasGraphRelationship(x.ID, y.ID, world.RelAtWar) {
				continue
			}
			xd, _ := x.Data.(world.FactionData)
			yd, _ := y.Data.(world.FactionData)
			if g := xd.Grievances[y.ID]; g != nil && g.Severity > 0 {
				continue
			}
			if g := yd.Grievances[x.ID]; g != nil && g.Severity > 0 {
				continue
			}
			if rng.Float64() >= allianceFormChance {
				continue
			}
			app.Enqueue(command.New(command.KindFormAlliance, "alliance_formed", "two powers ally").
				With(x.ID, world.RoleSubject).With(y.ID, world.RoleObject))
		}
	}
}

func sortedFactions(w *world.World) []*world.Entity {
	factions := w.LivingByKind(world.KindFaction)
	sort.Slice(factions, func(i, j int) bool { return factions[i].ID < factions[j].ID })
	return factions
}

// memberSettlements returns the living settlements currently member_of
// factionID, in id order.
func memberSettlements(w *world.World, factionID uint64) []uint64 {
	var ids []uint64
	for _, e := range w.LivingByKind(world.KindSettlement) {
		if rel, ok := w.ActiveRel(e.ID, world.RelMemberOf); ok && rel.Target == factionID {
			ids = append(ids, e.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// findAmbitiousNoble finds the lowest-id living Person located in one of
// factionID's settlements who carries the ambitious trait and isn't
// already its leader.
func findAmbitiousNoble(w *world.World, factionID, currentLeader uint64) (uint64, []world.Trait, bool) {
	members := memberSettlements(w, factionID)
	memberSet := make(map[uint64]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}
	people := w.LivingByKind(world.KindPerson)
	sort.Slice(people, func(i, j int) bool { return people[i].ID < people[j].ID })
	for _, p := range people {
		if p.ID == currentLeader {
			continue
		}
		pd, ok := p.Data.(world.PersonData)
		if !ok {
			continue
		}
		rel, ok := w.ActiveRel(p.ID, world.RelLocatedIn)
		if !ok || !memberSet[rel.Target] {
			continue
		}
		for _, t := range pd.Traits {
			if t == world.TraitAmbitious {
				return p.ID, pd.Traits, true
			}
		}
	}
	return 0, nil, false
}

// HandleSignals installs a successor the moment a sitting faction leader
// dies, so the throne is never vacant for longer than one tick's reaction
// pass.
func (s *System) HandleSignals(w *world.World, rng *rand.Rand, app *command.Applicator, signals []signal.Signal) {
	for _, sig := range signals {
		if sig.Kind != signal.KindEntityDied {
			continue
		}
		for _, e := range sortedFactions(w) {
			fd, ok := e.Data.(world.FactionData)
			if !ok || fd.LeaderPersonID != sig.EntityID {
				continue
			}
			successor, _, ok := findAmbitiousNoble(w, e.ID, sig.EntityID)
			if !ok {
				successor = nextHeir(w, e.ID, sig.EntityID)
			}
			app.Enqueue(command.New(command.KindInstallLeader, "leader_installed", "a new leader takes the seat").
				With(e.ID, world.RoleSubject).With(successor, world.RoleObject))
		}
	}
}

// nextHeir falls back to the highest-prestige living member of a faction's
// settlements when no ambitious noble is available to seize power outright.
func nextHeir(w *world.World, factionID, deadLeader uint64) uint64 {
	members := memberSettlements(w, factionID)
	memberSet := make(map[uint64]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}
	people := w.LivingByKind(world.KindPerson)
	sort.Slice(people, func(i, j int) bool { return people[i].ID < people[j].ID })
	var best uint64
	var bestPrestige float64 = -1
	for _, p := range people {
		if p.ID == deadLeader {
			continue
		}
		pd, ok := p.Data.(world.PersonData)
		if !ok {
			continue
		}
		rel, ok := w.ActiveRel(p.ID, world.RelLocatedIn)
		if !ok || !memberSet[rel.Target] {
			continue
		}
		if pd.Prestige > bestPrestige {
			bestPrestige = pd.Prestige
			best = p.ID
		}
	}
	return best
}
