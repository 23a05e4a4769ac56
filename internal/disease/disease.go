// Package disease models contagious outbreaks. A settlement's yearly
// outbreak risk compounds terrain, crowding, trade exposure, season,
// and one-tick bumps from refugees, conquest, sieges, and disasters;
// once seeded, a disease spreads along trade routes and to adjacent
// regions, ramps toward a virulence-scaled peak, declines, and ends,
// leaving behind a temporary immunity (spec §4.8).
//
// Grounded on original_source/src/sim/disease.rs's outbreak/spread/
// progression/mortality pipeline. Bracket-severity curves and the
// per-bracket mortality vector carry over directly; the `extra` map
// disease.rs uses for one-tick risk bumps is expressed here as Entity
// properties set through command.KindSetProperty, since Go's Entity
// has no open scratch map of its own outside Properties.
package disease

import (
	"math/rand"
	"sort"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/scheduler"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/stochastic"
	"github.com/historica/chronicle/internal/world"
)

const (
	baseOutbreakChance = 0.002

	// overcrowdingPopulation is an absolute stand-in for "over 80% of
	// carrying capacity": SettlementData carries no capacity field, so
	// a fixed population scale is used instead.
	overcrowdingPopulation = 2000
	overcrowdingBonus      = 0.003

	terrainBonus           = 0.002
	tradeRouteBonus        = 0.0005
	lowProsperityThreshold = 0.3
	lowProsperityBonus     = 0.001
	smallSettlementPop     = 100
	smallSettlementFactor  = 0.5

	initialInfectionRate = 0.05
	baseTransmission     = 0.3
	tradeTransmission    = 0.2
	adjacencyOnlyFactor  = 0.5

	rampTargetFraction = 0.6
	peakMinYears       = 2
	declineRate        = 0.30
	endThreshold       = 0.02
	recoveryImmunity   = 0.7
	immunityDecay      = 0.05
	npcDeathModifier   = 0.5

	propRefugeeRisk  = "refugee_disease_risk"
	propConquestRisk = "post_conquest_disease_risk"
	propSiegeRisk    = "siege_disease_bonus"
	propDisasterRisk = "post_disaster_disease_risk"
)

// profileSeverity is the bracket-severity curve catalog a new outbreak
// draws from (infant, child, young_adult, middle_age, elder, aged,
// ancient, centenarian).
var profileSeverity = map[world.DiseaseProfile]world.BracketSeverity{
	world.ProfileClassic:        {2.0, 0.5, 0.3, 0.5, 1.5, 2.5, 3.0, 4.0},
	world.ProfileYoungKiller:    {1.0, 0.5, 2.5, 2.0, 1.0, 0.8, 0.5, 0.3},
	world.ProfileChildKiller:    {3.0, 2.5, 0.3, 0.3, 0.5, 1.0, 1.5, 2.0},
	world.ProfileIndiscriminate: {1, 1, 1, 1, 1, 1, 1, 1},
}

var profileOrder = []world.DiseaseProfile{
	world.ProfileClassic, world.ProfileYoungKiller, world.ProfileChildKiller, world.ProfileIndiscriminate,
}

// bracketAgeCeiling is the exclusive upper age bound of each of the 8
// brackets, built from spec §4.5's widths {6,10,25,20,15,15,9,∞}.
var bracketAgeCeiling = [world.NumBrackets]int{6, 16, 41, 61, 76, 91, 100, -1}

// System implements scheduler.System for epidemic dynamics.
type System struct{}

func New() *System { return &System{} }

func (s *System) Name() string                   { return "disease" }
func (s *System) Frequency() scheduler.Frequency { return scheduler.Yearly }

func (s *System) Update(w *world.World, rng *rand.Rand, app *command.Applicator) {
	decayImmunity(w, app)
	checkOutbreaks(w, rng, app)
	spreadDisease(w, rng, app)
	progressAndKill(w, rng, app)
}

func decayImmunity(w *world.World, app *command.Applicator) {
	for _, e := range w.LivingByKind(world.KindSettlement) {
		sd, ok := e.Data.(world.SettlementData)
		if !ok || sd.PlagueImmunity <= 0 {
			continue
		}
		app.Enqueue(command.Bookkeeping(command.KindDecayPlagueImmunity).
			With(e.ID, world.RoleSubject).Set("amount", immunityDecay))
	}
}

// checkOutbreaks rolls a fresh outbreak for every settlement not
// already infected.
func checkOutbreaks(w *world.World, rng *rand.Rand, app *command.Applicator) {
	for _, e := range sortedSettlements(w) {
		sd, ok := e.Data.(world.SettlementData)
		if !ok || sd.ActiveDisease != nil {
			continue
		}
		if propertyFloat(e, propRefugeeRisk) != 0 {
			clearRisk(app, e.ID, propRefugeeRisk)
		}
		if propertyFloat(e, propConquestRisk) != 0 {
			clearRisk(app, e.ID, propConquestRisk)
		}
		chance := outbreakChance(w, e, sd)
		if rng.Float64() >= chance {
			continue
		}
		profile := profileOrder[rng.Intn(len(profileOrder))]
		app.Enqueue(command.New(command.KindStartPlague, "plague_started", "an outbreak strikes "+e.Name).
			With(e.ID, world.RoleLocation).
			Set("name", "Outbreak").
			Set("profile", string(profile)).
			Set("severity", profileSeverity[profile]).
			Set("virulence", 0.3+rng.Float64()*0.5).
			Set("lethality", 0.1+rng.Float64()*0.4).
			Set("duration", 2+rng.Intn(4)).
			Set("infection_rate", initialInfectionRate))
	}
}

// outbreakChance sums the additive risk factors disease.rs tracks, then
// applies the season, immunity, and small-settlement multipliers.
func outbreakChance(w *world.World, e *world.Entity, sd world.SettlementData) float64 {
	chance := baseOutbreakChance
	if sd.Population > overcrowdingPopulation {
		chance += overcrowdingBonus
	}
	if t := regionTerrain(w, sd.RegionID); t == "swamp" || t == "jungle" {
		chance += terrainBonus
	}
	chance += float64(len(w.ActiveRels(e.ID, world.RelTradeRoute))) * tradeRouteBonus
	if sd.Prosperity < lowProsperityThreshold {
		chance += lowProsperityBonus
	}
	chance += propertyFloat(e, propRefugeeRisk)
	chance += propertyFloat(e, propConquestRisk)
	chance += propertyFloat(e, propSiegeRisk)
	chance += propertyFloat(e, propDisasterRisk)

	chance *= seasonalDiseaseMultiplier(sd.Seasonal)
	chance *= 1 - sd.PlagueImmunity
	if sd.Population < smallSettlementPop {
		chance *= smallSettlementFactor
	}
	return chance
}

// spreadDisease transmits every active outbreak along trade routes
// (favored) and to settlements in an adjacent region (half as likely),
// skipping any target already infected.
func spreadDisease(w *world.World, rng *rand.Rand, app *command.Applicator) {
	for _, e := range sortedSettlements(w) {
		sd, ok := e.Data.(world.SettlementData)
		if !ok || sd.ActiveDisease == nil {
			continue
		}
		dd, ok := diseaseData(w, sd.ActiveDisease.DiseaseID)
		if !ok {
			continue
		}
		baseSpread := dd.Virulence * sd.ActiveDisease.InfectionRate * baseTransmission

		reached := map[uint64]bool{e.ID: true}
		for _, rel := range w.ActiveRels(e.ID, world.RelTradeRoute) {
			target, tsd, ok := settlementData(w, rel.Target)
			if !ok || tsd.ActiveDisease != nil || reached[target.ID] {
				continue
			}
			reached[target.ID] = true
			transmission := (baseSpread + tradeTransmission) * (1 - tsd.PlagueImmunity)
			if rng.Float64() < transmission {
				seedTransmission(app, target.ID, sd.ActiveDisease.DiseaseID)
			}
		}
		for _, targetID := range adjacentSettlements(w, sd.RegionID) {
			target, tsd, ok := settlementData(w, targetID)
			if !ok || tsd.ActiveDisease != nil || reached[target.ID] {
				continue
			}
			reached[target.ID] = true
			transmission := baseSpread * adjacencyOnlyFactor * (1 - tsd.PlagueImmunity)
			if rng.Float64() < transmission {
				seedTransmission(app, target.ID, sd.ActiveDisease.DiseaseID)
			}
		}
	}
}

func seedTransmission(app *command.Applicator, settlementID, diseaseID uint64) {
	app.Enqueue(command.New(command.KindStartPlague, "plague_started", "the disease spreads").
		With(settlementID, world.RoleLocation).With(diseaseID, world.RoleObject).
		Set("infection_rate", initialInfectionRate))
}

// progressAndKill ramps or declines every active outbreak's infection
// rate, ends it once it has run its course, and otherwise applies
// bracket-weighted mortality to both the population breakdown and any
// individually-named residents.
func progressAndKill(w *world.World, rng *rand.Rand, app *command.Applicator) {
	for _, e := range sortedSettlements(w) {
		sd, ok := e.Data.(world.SettlementData)
		if !ok || sd.ActiveDisease == nil {
			continue
		}
		dd, ok := diseaseData(w, sd.ActiveDisease.DiseaseID)
		if !ok {
			continue
		}
		ad := sd.ActiveDisease
		target := dd.Virulence * rampTargetFraction
		yearsElapsed := ad.YearsElapsed + 1

		var newRate float64
		peak := ad.Peak
		if !peak {
			newRate = ad.InfectionRate + (target-ad.InfectionRate)*0.6
			if newRate >= target*0.95 || yearsElapsed >= peakMinYears {
				peak = true
			}
		} else {
			newRate = ad.InfectionRate * (1 - declineRate)
		}

		if newRate < endThreshold || yearsElapsed >= dd.Duration {
			app.Enqueue(command.New(command.KindEndDisease, "plague_ended", "the outbreak in "+e.Name+" subsides").
				With(e.ID, world.RoleLocation).
				Set("immunity_gain", recoveryImmunity))
			continue
		}

		app.Enqueue(command.Bookkeeping(command.KindProgressDisease).
			With(e.ID, world.RoleLocation).
			Set("infection_rate", newRate).
			Set("peak", peak))

		applyMortality(w, rng, app, e, sd, dd, newRate)
	}
}

func applyMortality(w *world.World, rng *rand.Rand, app *command.Applicator, e *world.Entity, sd world.SettlementData, dd world.DiseaseData, rate float64) {
	cells := sd.Breakdown.Cells()
	var deathCells [world.NumBrackets * 2]uint32
	for bracket := 0; bracket < world.NumBrackets; bracket++ {
		mortality := clamp01(rate * dd.Lethality * dd.Severity[bracket])
		for _, idx := range [2]int{bracket * 2, bracket*2 + 1} {
			take := stochastic.Round(float64(cells[idx])*mortality, rng)
			if take > int(cells[idx]) {
				take = int(cells[idx])
			}
			deathCells[idx] = uint32(take)
		}
	}
	deaths := world.FromCells(deathCells)
	if deaths.Total() > 0 {
		app.Enqueue(command.Bookkeeping(command.KindApplyDiseaseDeaths).
			With(e.ID, world.RoleLocation).
			Set("deaths_breakdown", deaths))
	}

	currentYear := int(w.Current.Year)
	for _, p := range w.LivingByKind(world.KindPerson) {
		rel, ok := w.ActiveRel(p.ID, world.RelLocatedIn)
		if !ok || rel.Target != e.ID {
			continue
		}
		pd, ok := p.Data.(world.PersonData)
		if !ok {
			continue
		}
		bracket := ageBracket(int(pd.Born.Year), currentYear)
		deathChance := rate * dd.Lethality * dd.Severity[bracket] * npcDeathModifier
		if rng.Float64() < deathChance {
			app.Enqueue(command.New(command.KindPersonDied, "person_died", p.Name+" succumbs to the outbreak").
				With(p.ID, world.RoleSubject))
		}
	}
}

// ageBracket maps an age (in whole years) to one of the 8 brackets
// using the cumulative widths {6,10,25,20,15,15,9,∞}.
func ageBracket(birthYear, currentYear int) int {
	age := currentYear - birthYear
	if age < 0 {
		age = 0
	}
	for i, ceiling := range bracketAgeCeiling {
		if ceiling < 0 || age < ceiling {
			return i
		}
	}
	return world.NumBrackets - 1
}

// HandleSignals turns the transient events disease.rs tracked in a
// per-entity `extra` map into Entity properties: refugee arrivals and
// conquest are one-tick risk bumps (cleared the next time Update reads
// them), sieges and disasters persist for as long as they are active.
func (s *System) HandleSignals(w *world.World, rng *rand.Rand, app *command.Applicator, signals []signal.Signal) {
	for _, sig := range signals {
		switch sig.Kind {
		case signal.KindRefugeesArrived:
			bumpRisk(app, sig.EntityID, propRefugeeRisk, 0.0015)
		case signal.KindSettlementCaptured:
			bumpRisk(app, sig.EntityID, propConquestRisk, 0.003)
		case signal.KindSiegeStarted:
			bumpRisk(app, sig.EntityID, propSiegeRisk, 0.002)
		case signal.KindSiegeEnded:
			clearRisk(app, sig.EntityID, propSiegeRisk)
		case signal.KindDisasterStarted, signal.KindDisasterStruck:
			bumpRisk(app, sig.EntityID, propDisasterRisk, 0.002)
		case signal.KindDisasterEnded:
			clearRisk(app, sig.EntityID, propDisasterRisk)
		}
	}
}

func bumpRisk(app *command.Applicator, id uint64, field string, amount float64) {
	app.Enqueue(command.Bookkeeping(command.KindSetProperty).
		With(id, world.RoleSubject).Set("field", field).Set("value", amount))
}

func clearRisk(app *command.Applicator, id uint64, field string) {
	app.Enqueue(command.Bookkeeping(command.KindSetProperty).
		With(id, world.RoleSubject).Set("field", field).Set("value", 0.0))
}

func propertyFloat(e *world.Entity, key string) float64 {
	if v, ok := e.Properties[key].(float64); ok {
		return v
	}
	return 0
}

func seasonalDiseaseMultiplier(m world.SeasonalModifiers) float64 {
	if m.Disease == 0 {
		return 1.0
	}
	return m.Disease
}

func regionTerrain(w *world.World, regionID uint64) string {
	e, ok := w.Entity(regionID)
	if !ok {
		return ""
	}
	rd, ok := e.Data.(world.RegionData)
	if !ok {
		return ""
	}
	return rd.Terrain
}

func diseaseData(w *world.World, diseaseID uint64) (world.DiseaseData, bool) {
	e, ok := w.Entity(diseaseID)
	if !ok {
		return world.DiseaseData{}, false
	}
	dd, ok := e.Data.(world.DiseaseData)
	return dd, ok
}

func settlementData(w *world.World, id uint64) (*world.Entity, world.SettlementData, bool) {
	e, ok := w.Entity(id)
	if !ok || !e.Alive() {
		return nil, world.SettlementData{}, false
	}
	sd, ok := e.Data.(world.SettlementData)
	return e, sd, ok
}

// adjacentSettlements returns every living settlement located in a
// region adjacent to regionID.
func adjacentSettlements(w *world.World, regionID uint64) []uint64 {
	var targets []uint64
	for _, rel := range w.ActiveRels(regionID, world.RelAdjacentTo) {
		for _, e := range w.LivingByKind(world.KindSettlement) {
			sd, ok := e.Data.(world.SettlementData)
			if ok && sd.RegionID == rel.Target {
				targets = append(targets, e.ID)
			}
		}
	}
	return targets
}

func sortedSettlements(w *world.World) []*world.Entity {
	s := w.LivingByKind(world.KindSettlement)
	sort.Slice(s, func(i, j int) bool { return s[i].ID < s[j].ID })
	return s
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
