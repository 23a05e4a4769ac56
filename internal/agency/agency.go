// Package agency gives individual Persons a small, trait-weighted chance
// each tick of acting on ambition: a noble ruthless and ambitious enough
// may move to eliminate their faction's sitting leader and open the
// succession (spec §4.15's EliminateRival desire).
//
// Grounded on original_source/src/sim/agency.rs's desire-scoring loop;
// weighted entirely through internal/traits so no trait combination is
// special-cased here, per spec §9's single-table design.
package agency

import (
	"math/rand"
	"sort"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/scheduler"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/traits"
	"github.com/historica/chronicle/internal/world"
)

const eliminateBaseChance = 0.0015

// System implements scheduler.System for individual desire-driven action.
type System struct{}

func New() *System { return &System{} }

func (s *System) Name() string                   { return "agency" }
func (s *System) Frequency() scheduler.Frequency { return scheduler.Monthly }

func (s *System) Update(w *world.World, rng *rand.Rand, app *command.Applicator) {
	for _, faction := range sortedFactions(w) {
		fd, ok := faction.Data.(world.FactionData)
		if !ok || fd.LeaderPersonID == 0 || !w.Alive(fd.LeaderPersonID) {
			continue
		}
		members := memberSettlementSet(w, faction.ID)
		for _, p := range sortedPeople(w) {
			if p.ID == fd.LeaderPersonID {
				continue
			}
			pd, ok := p.Data.(world.PersonData)
			if !ok {
				continue
			}
			rel, ok := w.ActiveRel(p.ID, world.RelLocatedIn)
			if !ok || !members[rel.Target] {
				continue
			}
			eff := traits.Combine(pd.Traits)
			chance := eliminateBaseChance * eff.AmbitionWeight * eff.AggressionWeight / eff.CautionWeight
			if rng.Float64() >= chance {
				continue
			}
			app.Enqueue(command.New(command.KindEliminatePerson, "person_eliminated", "a rival moves against the ruler").
				With(p.ID, world.RoleInstigator).With(fd.LeaderPersonID, world.RoleSubject))
		}
	}
}

func sortedFactions(w *world.World) []*world.Entity {
	f := w.LivingByKind(world.KindFaction)
	sort.Slice(f, func(i, j int) bool { return f[i].ID < f[j].ID })
	return f
}

func sortedPeople(w *world.World) []*world.Entity {
	p := w.LivingByKind(world.KindPerson)
	sort.Slice(p, func(i, j int) bool { return p[i].ID < p[j].ID })
	return p
}

func memberSettlementSet(w *world.World, factionID uint64) map[uint64]bool {
	set := map[uint64]bool{}
	for _, e := range w.LivingByKind(world.KindSettlement) {
		if rel, ok := w.ActiveRel(e.ID, world.RelMemberOf); ok && rel.Target == factionID {
			set[e.ID] = true
		}
	}
	return set
}

// HandleSignals has nothing to react to: elimination odds are read fresh
// from each person's traits and faction context every Update pass.
func (s *System) HandleSignals(w *world.World, rng *rand.Rand, app *command.Applicator, signals []signal.Signal) {
}
