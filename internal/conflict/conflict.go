// Package conflict resolves war: armies colliding in the same region
// fight a battle, an army sharing a region with an enemy settlement
// either storms it outright or settles in for a siege, and an ongoing
// siege grinds the defenders down toward surrender or a decisive
// assault (spec §4.7, §4.9, and §4.6's conquest interplay).
//
// Grounded on original_source/src/sim/conflict.rs's battle-resolution
// formula (strength * morale * supply, with a random variance factor),
// translated from the original's explicit dice-roll helper to
// rng.Float64, and on original_source/src/sim/conflicts/siege.rs for
// siege initiation and progression (instant conquest against a
// fortification level of zero, prosperity decay and starvation losses
// while under siege, and the surrender/assault rolls that eventually
// decide it).
package conflict

import (
	"math/rand"
	"sort"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/scheduler"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

const (
	battleVarianceBand = 0.3

	siegeProsperityDecay      = 0.03
	siegeStarvationThreshold  = 0.2
	siegeStarvationPopLoss    = 0.01
	siegeSurrenderMinMonths   = 3
	siegeAssaultMinMonths     = 2
	siegeAssaultChance        = 0.10
	siegeAssaultMoraleMin     = 0.4
	siegeAssaultPowerRatio    = 1.5
	siegeAssaultCasualtyMin   = 0.15
	siegeAssaultCasualtyMax   = 0.30
	siegeAssaultMoralePenalty = 0.15
)

// System implements scheduler.System for war resolution.
type System struct{}

func New() *System { return &System{} }

func (s *System) Name() string                   { return "conflict" }
func (s *System) Frequency() scheduler.Frequency { return scheduler.Monthly }

func (s *System) Update(w *world.World, rng *rand.Rand, app *command.Applicator) {
	resolveBattles(w, rng, app)
	beginSieges(w, rng, app)
	resolveSieges(w, rng, app)
	payMercenaries(w, rng, app)
}

// resolveBattles finds armies sharing a region whose owning factions are
// at war, and resolves at most one battle per tick: the first at-war pair
// found, scanning regions and then armies in id order, to keep
// resolution deterministic.
func resolveBattles(w *world.World, rng *rand.Rand, app *command.Applicator) {
	armies := w.LivingByKind(world.KindArmy)
	byRegion := map[uint64][]*world.Entity{}
	for _, a := range armies {
		ad, ok := a.Data.(world.ArmyData)
		if !ok || ad.BesiegingSettlementID != 0 {
			continue
		}
		byRegion[ad.RegionID] = append(byRegion[ad.RegionID], a)
	}
	regions := make([]uint64, 0, len(byRegion))
	for r := range byRegion {
		regions = append(regions, r)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })

	for _, region := range regions {
		present := byRegion[region]
		for i := 0; i < len(present); i++ {
			for j := i + 1; j < len(present); j++ {
				x, y := present[i], present[j]
				xd := x.Data.(world.ArmyData)
				yd := y.Data.(world.ArmyData)
				if !w.HasGraphRelationship(xd.FactionID, yd.FactionID, world.RelAtWar) {
					continue
				}
				resolveOneBattle(w, rng, app, x, xd, y, yd)
				return // one battle per tick keeps the RNG stream shape stable
			}
		}
	}
}

func resolveOneBattle(w *world.World, rng *rand.Rand, app *command.Applicator, x *world.Entity, xd world.ArmyData, y *world.Entity, yd world.ArmyData) {
	xPower := float64(xd.Strength) * xd.Morale * xd.Supply
	yPower := float64(yd.Strength) * yd.Morale * yd.Supply
	variance := 1 + (rng.Float64()*2-1)*battleVarianceBand
	xPower *= variance

	var attackerLosses, defenderLosses uint32
	if xPower >= yPower {
		defenderLosses = yd.Strength
		attackerLosses = uint32(float64(xd.Strength) * (yPower / (xPower + 1)) * 0.3)
	} else {
		attackerLosses = xd.Strength
		defenderLosses = uint32(float64(yd.Strength) * (xPower / (yPower + 1)) * 0.3)
	}
	app.Enqueue(command.New(command.KindResolveBattle, "battle_resolved", "armies clash").
		With(x.ID, world.RoleAttacker).With(y.ID, world.RoleDefender).
		Set("attacker_losses", int(attackerLosses)).
		Set("defender_losses", int(defenderLosses)))
}

// beginSieges scans every living settlement not already under siege for
// an enemy army sharing its region, and either storms it outright (a
// fortification level of zero puts up no resistance worth a siege) or
// begins one. At most one army initiates per settlement per tick, in id
// order, to keep resolution deterministic.
func beginSieges(w *world.World, rng *rand.Rand, app *command.Applicator) {
	settlements := w.LivingByKind(world.KindSettlement)
	sort.Slice(settlements, func(i, j int) bool { return settlements[i].ID < settlements[j].ID })
	armies := w.LivingByKind(world.KindArmy)
	sort.Slice(armies, func(i, j int) bool { return armies[i].ID < armies[j].ID })

	for _, se := range settlements {
		sd, ok := se.Data.(world.SettlementData)
		if !ok || sd.ActiveSiege != nil {
			continue
		}
		defRel, ok := w.ActiveRel(se.ID, world.RelMemberOf)
		if !ok {
			continue
		}
		for _, ae := range armies {
			ad, ok := ae.Data.(world.ArmyData)
			if !ok || ad.BesiegingSettlementID != 0 || ad.RegionID != sd.RegionID {
				continue
			}
			if ad.FactionID == defRel.Target || !w.HasGraphRelationship(ad.FactionID, defRel.Target, world.RelAtWar) {
				continue
			}
			if sd.FortificationLevel == 0 {
				app.Enqueue(command.New(command.KindCaptureSettlement, "settlement_captured", se.Name+" falls without a fight").
					With(se.ID, world.RoleObject).With(ad.FactionID, world.RoleAttacker))
			} else {
				app.Enqueue(command.New(command.KindBeginSiege, "siege_started", ae.Name+" lays siege to "+se.Name).
					With(se.ID, world.RoleLocation).With(ae.ID, world.RoleAttacker))
			}
			break
		}
	}
}

// resolveSieges progresses every settlement currently under siege:
// prosperity decays and, once it falls below the starvation threshold,
// the population starts starving; from month 3 the defenders may
// surrender outright, and from month 2 the attacker may risk an
// assault, which either breaches the walls or costs the attacking army
// a chunk of its strength and morale.
func resolveSieges(w *world.World, rng *rand.Rand, app *command.Applicator) {
	for _, e := range w.LivingByKind(world.KindSettlement) {
		sd, ok := e.Data.(world.SettlementData)
		if !ok || sd.ActiveSiege == nil {
			continue
		}
		attackerArmy, ok := w.Entity(sd.ActiveSiege.AttackerArmyID)
		if !ok || !attackerArmy.Alive() {
			app.Enqueue(command.New(command.KindEndSiege, "siege_ended", "the siege collapses").
				With(e.ID, world.RoleLocation).Set("outcome", "abandoned"))
			continue
		}
		ad, _ := attackerArmy.Data.(world.ArmyData)

		defRel, hasDef := w.ActiveRel(e.ID, world.RelMemberOf)
		if ad.RegionID != sd.RegionID || !hasDef || !w.HasGraphRelationship(ad.FactionID, defRel.Target, world.RelAtWar) {
			app.Enqueue(command.New(command.KindEndSiege, "siege_ended", "the siege is abandoned").
				With(e.ID, world.RoleLocation).Set("outcome", "abandoned"))
			continue
		}

		newProsperity := sd.Prosperity - siegeProsperityDecay
		if newProsperity < 0.05 {
			newProsperity = 0.05
		}
		var popLoss world.PopulationBreakdown
		if sd.Prosperity < siegeStarvationThreshold {
			_, popLoss = sd.Breakdown.SubtractFraction(siegeStarvationPopLoss, rng)
		}
		app.Enqueue(command.Bookkeeping(command.KindProgressSiege).
			With(e.ID, world.RoleLocation).
			Set("prosperity_decay", sd.Prosperity-newProsperity).
			Set("population_loss", popLoss))

		months := sd.ActiveSiege.MonthsElapsed + 1

		if months >= siegeSurrenderMinMonths {
			chance := surrenderBaseChance(months) * (1 + (1 - newProsperity)) / (1 + 0.3*float64(sd.FortificationLevel))
			if rng.Float64() < chance {
				app.Enqueue(command.New(command.KindEndSiege, "siege_ended", "the defenders surrender").
					With(e.ID, world.RoleLocation).Set("outcome", "captured"))
				app.Enqueue(command.New(command.KindCaptureSettlement, "settlement_captured", e.Name+" surrenders").
					With(e.ID, world.RoleObject).With(ad.FactionID, world.RoleAttacker))
				continue
			}
		}

		if months < siegeAssaultMinMonths || ad.Morale < siegeAssaultMoraleMin || rng.Float64() >= siegeAssaultChance {
			continue
		}
		attackerPower := float64(ad.Strength) * ad.Morale
		defenderPower := float64(sd.Population) * 0.05 * float64(sd.FortificationLevel) * (1 + terrainDefenseBonus(w, sd.RegionID))
		if defenderPower <= 0 || attackerPower/defenderPower >= siegeAssaultPowerRatio {
			app.Enqueue(command.New(command.KindEndSiege, "siege_ended", "the walls are breached").
				With(e.ID, world.RoleLocation).Set("outcome", "captured"))
			app.Enqueue(command.New(command.KindCaptureSettlement, "settlement_captured", e.Name+" is stormed").
				With(e.ID, world.RoleObject).With(ad.FactionID, world.RoleAttacker))
			continue
		}
		casualtyRate := siegeAssaultCasualtyMin + rng.Float64()*(siegeAssaultCasualtyMax-siegeAssaultCasualtyMin)
		loss := uint32(float64(ad.Strength) * casualtyRate)
		app.Enqueue(command.New(command.KindSiegeAssaultFailed, "siege_assault_failed", "the assault on "+e.Name+" is repelled").
			With(attackerArmy.ID, world.RoleAttacker).With(e.ID, world.RoleLocation).
			Set("strength_loss", int(loss)).
			Set("morale_penalty", siegeAssaultMoralePenalty))
		if loss >= ad.Strength {
			app.Enqueue(command.New(command.KindEndSiege, "siege_ended", "the siege is lifted").
				With(e.ID, world.RoleLocation).Set("outcome", "lifted"))
		}
	}
}

// surrenderBaseChance gives the monthly base surrender roll for a siege
// that has run at least three months, before the prosperity and
// fortification modifiers are applied.
func surrenderBaseChance(months int) float64 {
	switch {
	case months >= 12:
		return 0.10
	case months >= 6:
		return 0.05
	default:
		return 0.02
	}
}

// terrainDefenseBonus gives a defender-favoring multiplier for regions
// whose terrain makes an assault harder.
func terrainDefenseBonus(w *world.World, regionID uint64) float64 {
	e, ok := w.Entity(regionID)
	if !ok {
		return 0
	}
	rd, ok := e.Data.(world.RegionData)
	if !ok {
		return 0
	}
	switch rd.Terrain {
	case "mountains":
		return 0.5
	case "hills":
		return 0.25
	default:
		return 0
	}
}

// HandleSignals has nothing to react to: once a war ends, resolveSieges
// finds no live at_war relationship behind a siege on its next Update
// pass and ends that siege as abandoned.
func (s *System) HandleSignals(w *world.World, rng *rand.Rand, app *command.Applicator, signals []signal.Signal) {
}
