// Package traits centralizes the Trait -> effect-multiplier table that
// Agency (desire weighting), Reputation (prestige drift), and Politics
// (coup/betrayal odds) all read from, per spec §9's design note that
// trait effects must live in one place rather than being re-encoded
// ad hoc in every subsystem that consults them.
//
// Grounded on the teacher's pkg/pcg/faction.go trait-weight tables,
// generalized from faction archetypes to the ten Person traits spec §3
// names.
package traits

import "github.com/historica/chronicle/internal/world"

// Effect is the multiplier set one trait contributes to a person's
// decision weights. All multipliers are centered on 1.0 (neutral); a
// subsystem combines them by multiplication across a person's Traits.
type Effect struct {
	AggressionWeight float64 // Agency: ExpandTerritory, EliminateRival desire
	AmbitionWeight    float64 // Agency: SeizePower desire
	LoyaltyWeight     float64 // Politics: betrayal / coup resistance
	PrestigeDrift     float64 // Reputation: passive prestige gain/decay rate
	CautionWeight     float64 // Agency: inverse gate on risky desires
}

var table = map[world.Trait]Effect{
	world.TraitAmbitious:   {AggressionWeight: 1.0, AmbitionWeight: 1.8, LoyaltyWeight: 0.7, PrestigeDrift: 1.2, CautionWeight: 0.8},
	world.TraitAggressive:  {AggressionWeight: 1.8, AmbitionWeight: 1.1, LoyaltyWeight: 0.9, PrestigeDrift: 1.0, CautionWeight: 0.6},
	world.TraitCautious:    {AggressionWeight: 0.5, AmbitionWeight: 0.7, LoyaltyWeight: 1.2, PrestigeDrift: 0.9, CautionWeight: 1.6},
	world.TraitHonorable:   {AggressionWeight: 0.7, AmbitionWeight: 0.8, LoyaltyWeight: 1.7, PrestigeDrift: 1.1, CautionWeight: 1.1},
	world.TraitCharismatic: {AggressionWeight: 0.9, AmbitionWeight: 1.3, LoyaltyWeight: 1.0, PrestigeDrift: 1.4, CautionWeight: 1.0},
	world.TraitCunning:     {AggressionWeight: 1.1, AmbitionWeight: 1.4, LoyaltyWeight: 0.6, PrestigeDrift: 1.0, CautionWeight: 1.2},
	world.TraitRuthless:    {AggressionWeight: 1.6, AmbitionWeight: 1.5, LoyaltyWeight: 0.4, PrestigeDrift: 0.9, CautionWeight: 0.5},
	world.TraitContent:     {AggressionWeight: 0.4, AmbitionWeight: 0.3, LoyaltyWeight: 1.3, PrestigeDrift: 0.8, CautionWeight: 1.3},
	world.TraitPious:       {AggressionWeight: 0.6, AmbitionWeight: 0.6, LoyaltyWeight: 1.4, PrestigeDrift: 1.0, CautionWeight: 1.2},
	world.TraitReclusive:   {AggressionWeight: 0.5, AmbitionWeight: 0.5, LoyaltyWeight: 1.1, PrestigeDrift: 0.7, CautionWeight: 1.4},
}

// neutral is returned for any trait not in the table, so an incomplete or
// future trait never zeroes out a multiplicative product.
var neutral = Effect{AggressionWeight: 1, AmbitionWeight: 1, LoyaltyWeight: 1, PrestigeDrift: 1, CautionWeight: 1}

// For looks up one trait's effect, defaulting to neutral.
func For(t world.Trait) Effect {
	if e, ok := table[t]; ok {
		return e
	}
	return neutral
}

// Combine multiplies a set of traits' effects together, used by Agency
// and Reputation to weight a person carrying several traits at once.
func Combine(traits []world.Trait) Effect {
	out := neutral
	for _, t := range traits {
		e := For(t)
		out.AggressionWeight *= e.AggressionWeight
		out.AmbitionWeight *= e.AmbitionWeight
		out.LoyaltyWeight *= e.LoyaltyWeight
		out.PrestigeDrift *= e.PrestigeDrift
		out.CautionWeight *= e.CautionWeight
	}
	return out
}
