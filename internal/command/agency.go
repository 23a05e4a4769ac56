package command

import (
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

func init() {
	register(KindEliminatePerson, applyEliminatePerson)
}

// applyEliminatePerson is Agency's assassination/elimination desire
// resolved against a rival Person (spec §4.15's EliminateRival action).
// It reuses the ordinary person-death path so Politics and Reputation
// react identically to a death by any other cause.
func applyEliminatePerson(a *Applicator, c Command, eventID uint64) {
	instigator := c.Entity(world.RoleInstigator)
	victim := c.Entity(world.RoleSubject)
	if !a.World.Alive(victim) {
		return
	}
	a.World.EndEntity(victim, a.World.Current, eventID)
	a.Bus.Publish(signal.New(signal.KindEntityDied, victim).
		With("kind", string(world.KindPerson)).
		With("cause", "eliminated").
		With("instigator_id", instigator))
}
