package command

import "github.com/historica/chronicle/internal/world"

func init() {
	register(KindAdjustLiteracy, applyAdjustLiteracy)
	register(KindAdjustEducation, applyAdjustEducation)
}

// applyAdjustLiteracy drifts a settlement's literacy rate, bounded to
// [0,1] (spec §4.14, driven by Library buildings and Prosperity).
func applyAdjustLiteracy(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	e, sd, ok := withSettlement(a, id)
	if !ok {
		return
	}
	old := sd.LiteracyRate
	sd.LiteracyRate = clamp01(sd.LiteracyRate + c.Float("delta"))
	e.Data = sd
	a.World.RecordFieldChange(eventID, id, "literacy_rate", old, sd.LiteracyRate)
}

// applyAdjustEducation drifts one Person's individual education level
// toward their home settlement's literacy rate.
func applyAdjustEducation(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	e, ok := a.World.Entity(id)
	if !ok || !e.Alive() {
		return
	}
	pd, ok := e.Data.(world.PersonData)
	if !ok {
		return
	}
	old := pd.Education
	pd.Education = clamp01(pd.Education + c.Float("delta"))
	e.Data = pd
	a.World.RecordFieldChange(eventID, id, "education", old, pd.Education)
}
