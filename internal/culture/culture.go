// Package culture founds new religions, lets trade pull a settlement
// toward a trade partner's dominant culture, and occasionally
// splits a culture along its own internal drift (spec §4.13).
//
// Grounded on original_source/src/sim/culture.rs's assimilation-via-trade
// model; flavor text for founded religions and schisms is generated with
// github.com/mb-14/gomarkov the way the teacher's pkg/pcg/dialogue.go
// varies NPC dialogue, trained on small per-archetype corpora instead of
// personality corpora.
package culture

import (
	"math/rand"
	"sort"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/scheduler"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

const (
	foundReligionChance  = 0.01
	literacyFloorToFound = 0.3
	prestigeFloorToFound = 0.2
	conversionChance     = 0.015
	schismBaseChance     = 0.003
)

// System implements scheduler.System for cultural and religious change.
// It runs yearly: cultural drift is a slow-timescale process compared to
// the monthly economic and demographic systems.
type System struct {
	seed uint64
}

// New prepares the culture system, training its flavor-text generator
// from masterSeed so every run with the same seed produces identical text.
func New(masterSeed uint64) *System {
	seedChains(masterSeed)
	return &System{seed: masterSeed}
}

func (s *System) Name() string                   { return "culture" }
func (s *System) Frequency() scheduler.Frequency { return scheduler.Yearly }

func (s *System) Update(w *world.World, rng *rand.Rand, app *command.Applicator) {
	foundNewReligions(w, rng, app)
	convertCultures(w, rng, app)
	schismCultures(w, rng, app)
}

// foundNewReligions lets a literate, prestigious settlement's resident
// pious soul found a new tradition.
func foundNewReligions(w *world.World, rng *rand.Rand, app *command.Applicator) {
	for _, e := range sortedSettlements(w) {
		sd, ok := e.Data.(world.SettlementData)
		if !ok || sd.LiteracyRate < literacyFloorToFound || sd.Prestige < prestigeFloorToFound {
			continue
		}
		if rng.Float64() >= foundReligionChance {
			continue
		}
		founder := firstResidentWithTrait(w, e.ID, world.TraitPious)
		if founder == 0 {
			founder = firstResident(w, e.ID)
		}
		if founder == 0 {
			continue
		}
		name := capitalize(flavorName("pious", []string{"the", "faithful"}))
		significance := 0.3 + rng.Float64()*0.5
		app.Enqueue(command.New(command.KindFoundReligion, "religion_founded", name+" is founded in "+e.Name).
			With(founder, world.RoleSubject).
			Set("name", name).Set("significance", significance))
	}
}

// convertCultures pulls a settlement's dominant culture toward a trade
// partner's, modeling slow cultural assimilation along trade routes.
func convertCultures(w *world.World, rng *rand.Rand, app *command.Applicator) {
	for _, e := range sortedSettlements(w) {
		ownID, ok := e.Properties["dominant_culture_id"].(uint64)
		if !ok {
			continue
		}
		for _, rel := range w.ActiveRels(e.ID, world.RelTradeRoute) {
			partner, ok := w.Entity(rel.Target)
			if !ok {
				continue
			}
			partnerCultureID, ok := partner.Properties["dominant_culture_id"].(uint64)
			if !ok || partnerCultureID == ownID {
				continue
			}
			if rng.Float64() >= conversionChance {
				continue
			}
			app.Enqueue(command.New(command.KindConvertCulture, "culture_converted", e.Name+" adopts a neighboring culture").
				With(e.ID, world.RoleSubject).Set("culture_id", partnerCultureID))
			break
		}
	}
}

// schismCultures lets a culture fracture along its own drift: the more
// directions a culture has been pulled, the likelier a schism.
func schismCultures(w *world.World, rng *rand.Rand, app *command.Applicator) {
	for _, e := range sortedCultures(w) {
		cd, ok := e.Data.(world.CultureData)
		if !ok {
			continue
		}
		tension := float64(len(cd.DriftTarget)) * 0.05
		if tension > 0.5 {
			tension = 0.5
		}
		if rng.Float64() >= schismBaseChance*(1+tension) {
			continue
		}
		name := capitalize(flavorName("default", []string{"the", "old"}))
		app.Enqueue(command.New(command.KindSchism, "culture_schism", name+" splits from "+e.Name).
			With(e.ID, world.RoleSubject).Set("name", name))
	}
}

func sortedSettlements(w *world.World) []*world.Entity {
	s := w.LivingByKind(world.KindSettlement)
	sort.Slice(s, func(i, j int) bool { return s[i].ID < s[j].ID })
	return s
}

func sortedCultures(w *world.World) []*world.Entity {
	c := w.LivingByKind(world.KindCulture)
	sort.Slice(c, func(i, j int) bool { return c[i].ID < c[j].ID })
	return c
}

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

func firstResidentWithTrait(w *world.World, settlementID uint64, trait world.Trait) uint64 {
	people := w.LivingByKind(world.KindPerson)
	sort.Slice(people, func(i, j int) bool { return people[i].ID < people[j].ID })
	for _, p := range people {
		rel, ok := w.ActiveRel(p.ID, world.RelLocatedIn)
		if !ok || rel.Target != settlementID {
			continue
		}
		pd, ok := p.Data.(world.PersonData)
		if !ok {
			continue
		}
		for _, t := range pd.Traits {
			if t == trait {
				return p.ID
			}
		}
	}
	return 0
}

// HandleSignals has nothing to react to: religion founding, conversion,
// and schism odds are all read fresh from settlement and culture state
// each Update pass.
func (s *System) HandleSignals(w *world.World, rng *rand.Rand, app *command.Applicator, signals []signal.Signal) {
}
