package command

import (
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

func init() {
	register(KindAdjustPrestige, applyAdjustPrestige)
}

// applyAdjustPrestige is the one mutation point for the Prestige field on
// every entity kind that carries it (Person, Faction, Settlement). Bounded
// to [0,1] per spec §4.12; crossing a named threshold publishes
// PrestigeThresholdCrossed, which no subsystem's HandleSignals reads.
func applyAdjustPrestige(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	e, ok := a.World.Entity(id)
	if !ok || !e.Alive() {
		return
	}
	delta := c.Float("delta")
	var old, updated float64
	switch d := e.Data.(type) {
	case world.PersonData:
		old = d.Prestige
		d.Prestige = clamp01(d.Prestige + delta)
		updated = d.Prestige
		e.Data = d
	case world.FactionData:
		old = d.Prestige
		d.Prestige = clamp01(d.Prestige + delta)
		updated = d.Prestige
		e.Data = d
	case world.SettlementData:
		old = d.Prestige
		d.Prestige = clamp01(d.Prestige + delta)
		updated = d.Prestige
		e.Data = d
	default:
		return
	}
	a.World.RecordFieldChange(eventID, id, "prestige", old, updated)

	for _, threshold := range []float64{0.25, 0.5, 0.75, 0.9} {
		if old < threshold && updated >= threshold {
			a.Bus.Publish(signal.New(signal.KindPrestigeThresholdCrossed, id).With("threshold", threshold))
		}
	}
}
