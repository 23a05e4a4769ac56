package command

import (
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

func init() {
	register(KindMigratePopulation, applyMigratePopulation)
	register(KindAbandonSettlement, applyAbandonSettlement)
}

// applyMigratePopulation moves a breakdown of people from one settlement
// to another, conserving total population across the pair exactly (spec
// §8's population-conservation property).
func applyMigratePopulation(a *Applicator, c Command, eventID uint64) {
	origin := c.Entity(world.RoleOrigin)
	destination := c.Entity(world.RoleDestination)
	oe, od, ok := withSettlement(a, origin)
	if !ok {
		return
	}
	de, dd, ok := withSettlement(a, destination)
	if !ok {
		return
	}
	moving, ok := c.Any("breakdown").(world.PopulationBreakdown)
	if !ok {
		return
	}

	oldOriginPop := od.Population
	od.Breakdown = subtractBreakdown(od.Breakdown, moving)
	od.Population = od.Breakdown.Total()
	oe.Data = od
	a.World.RecordFieldChange(eventID, origin, "population", oldOriginPop, od.Population)

	oldDestPop := dd.Population
	dd.Breakdown = dd.Breakdown.Add(moving)
	dd.Population = dd.Breakdown.Total()
	de.Data = dd
	a.World.RecordFieldChange(eventID, destination, "population", oldDestPop, dd.Population)

	a.Bus.Publish(signal.New(signal.KindRefugeesArrived, destination).
		With("origin_id", origin).With("count", moving.Total()))
}

// subtractBreakdown removes a breakdown from another cell-wise, clamped
// at zero per cell (the caller guarantees moving never exceeds the
// source, but clamping keeps this helper total).
func subtractBreakdown(source, take world.PopulationBreakdown) world.PopulationBreakdown {
	sc, tc := source.Cells(), take.Cells()
	var out [16]uint32
	for i := range sc {
		if tc[i] > sc[i] {
			out[i] = 0
		} else {
			out[i] = sc[i] - tc[i]
		}
	}
	return world.FromCells(out)
}

// applyAbandonSettlement ends a settlement entity once its population
// reaches zero (spec §4.10's terminal migration case).
func applyAbandonSettlement(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	if !a.World.Alive(id) {
		return
	}
	a.World.EndEntity(id, a.World.Current, eventID)
}
