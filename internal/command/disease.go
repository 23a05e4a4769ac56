package command

import (
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

func init() {
	register(KindStartPlague, applyStartPlague)
	register(KindProgressDisease, applyProgressDisease)
	register(KindEndDisease, applyEndDisease)
	register(KindApplyDiseaseDeaths, applyApplyDiseaseDeaths)
	register(KindDecayPlagueImmunity, applyDecayPlagueImmunity)
}

func applyStartPlague(a *Applicator, c Command, eventID uint64) {
	settlementID := c.Entity(world.RoleLocation)
	e, sd, ok := withSettlement(a, settlementID)
	if !ok || sd.ActiveDisease != nil {
		return
	}
	diseaseID := c.Entity(world.RoleObject)
	if diseaseID == 0 {
		data := world.DiseaseData{
			Profile:   world.DiseaseProfile(c.Str("profile")),
			Virulence: c.Float("virulence"),
			Lethality: c.Float("lethality"),
			Duration:  c.Int("duration"),
		}
		if severity, ok := c.Any("severity").(world.BracketSeverity); ok {
			data.Severity = severity
		}
		diseaseID = a.World.AddEntity(world.KindDisease, c.Str("name"), &a.World.Current, data, eventID)
		a.World.AddParticipant(eventID, diseaseID, world.RoleObject)
	}
	sd.ActiveDisease = &world.ActiveDisease{
		DiseaseID:     diseaseID,
		InfectionRate: c.Float("infection_rate"),
	}
	e.Data = sd
	a.Bus.Publish(signal.New(signal.KindPlagueStarted, settlementID).With("disease_id", diseaseID))
}

// applyProgressDisease advances an outbreak's year counter and infection
// rate (bookkeeping, both already computed by Disease for this tick).
func applyProgressDisease(a *Applicator, c Command, eventID uint64) {
	settlementID := c.Entity(world.RoleLocation)
	e, sd, ok := withSettlement(a, settlementID)
	if !ok || sd.ActiveDisease == nil {
		return
	}
	sd.ActiveDisease.YearsElapsed++
	sd.ActiveDisease.InfectionRate = c.Float("infection_rate")
	sd.ActiveDisease.Peak = c.Bool("peak")
	e.Data = sd
	if sd.ActiveDisease.Peak {
		a.Bus.Publish(signal.New(signal.KindPlagueSpreading, settlementID).
			With("infection_rate", sd.ActiveDisease.InfectionRate))
	}
}

func applyEndDisease(a *Applicator, c Command, eventID uint64) {
	settlementID := c.Entity(world.RoleLocation)
	e, sd, ok := withSettlement(a, settlementID)
	if !ok || sd.ActiveDisease == nil {
		return
	}
	oldImmunity := sd.PlagueImmunity
	sd.PlagueImmunity = clamp01(sd.PlagueImmunity + c.Float("immunity_gain"))
	sd.ActiveDisease = nil
	e.Data = sd
	a.World.RecordFieldChange(eventID, settlementID, "plague_immunity", oldImmunity, sd.PlagueImmunity)
	a.Bus.Publish(signal.New(signal.KindPlagueEnded, settlementID))
}

// applyApplyDiseaseDeaths subtracts the exact per-bracket death counts
// Disease rolled from its own RNG stream for this tick.
func applyApplyDiseaseDeaths(a *Applicator, c Command, eventID uint64) {
	settlementID := c.Entity(world.RoleLocation)
	e, sd, ok := withSettlement(a, settlementID)
	if !ok {
		return
	}
	deaths, ok := c.Any("deaths_breakdown").(world.PopulationBreakdown)
	if !ok {
		return
	}
	oldPop := sd.Population
	sd.Breakdown = subtractBreakdown(sd.Breakdown, deaths)
	sd.Population = sd.Breakdown.Total()
	e.Data = sd
	a.World.RecordFieldChange(eventID, settlementID, "population", oldPop, sd.Population)
}

// applyDecayPlagueImmunity reduces a settlement's residual plague
// immunity by a fixed yearly amount, floored at zero (bookkeeping, no
// event beyond the field change).
func applyDecayPlagueImmunity(a *Applicator, c Command, eventID uint64) {
	settlementID := c.Entity(world.RoleSubject)
	e, sd, ok := withSettlement(a, settlementID)
	if !ok || sd.PlagueImmunity <= 0 {
		return
	}
	old := sd.PlagueImmunity
	sd.PlagueImmunity = clamp01(sd.PlagueImmunity - c.Float("amount"))
	e.Data = sd
	a.World.RecordFieldChange(eventID, settlementID, "plague_immunity", old, sd.PlagueImmunity)
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
