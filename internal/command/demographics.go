package command

import (
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

func init() {
	register(KindSetPopulation, applySetPopulation)
	register(KindPersonBorn, applyPersonBorn)
	register(KindPersonDied, applyPersonDied)
}

// applySetPopulation overwrites a settlement's population and age
// breakdown with a value Demographics has already computed (births,
// deaths, and migration net of the tick). Bookkeeping: no event, but the
// field change is still audited as an effect.
func applySetPopulation(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	e, ok := a.World.Entity(id)
	if !ok || !e.Alive() {
		return
	}
	sd, ok := e.Data.(world.SettlementData)
	if !ok {
		return
	}
	newBreakdown, ok := c.Any("breakdown").(world.PopulationBreakdown)
	if !ok {
		return
	}
	old := sd.Population
	sd.Population = newBreakdown.Total()
	sd.Breakdown = newBreakdown
	e.Data = sd
	a.World.RecordFieldChange(eventID, id, "population", old, sd.Population)
	if old != sd.Population {
		a.Bus.Publish(signal.New(signal.KindPopulationChanged, id).
			With("old_population", old).With("new_population", sd.Population))
	}
}

// applyPersonBorn creates a new Person entity located in a settlement.
func applyPersonBorn(a *Applicator, c Command, eventID uint64) {
	settlementID := c.Entity(world.RoleLocation)
	if !a.World.Alive(settlementID) {
		return
	}
	sex := world.Sex(c.Str("sex"))
	data := world.PersonData{
		Born: a.World.Current,
		Sex:  sex,
		Role: world.RoleCommoner,
	}
	if traits, ok := c.Any("traits").([]world.Trait); ok {
		data.Traits = traits
	}
	id := a.World.AddEntity(world.KindPerson, c.Str("name"), &a.World.Current, data, eventID)
	a.World.AddParticipant(eventID, id, world.RoleSubject)
	a.World.AddRelationship(id, settlementID, world.RelLocatedIn, a.World.Current, eventID)
}

// applyPersonDied ends a Person and publishes EntityDied so Politics can
// react (succession when the dead Person led a faction).
func applyPersonDied(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	if !a.World.Alive(id) {
		return
	}
	a.World.EndEntity(id, a.World.Current, eventID)
	a.Bus.Publish(signal.New(signal.KindEntityDied, id).With("kind", string(world.KindPerson)))
}
