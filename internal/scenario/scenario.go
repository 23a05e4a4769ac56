// Package scenario is a minimal fluent test-fixture builder, standing in
// for the external worldgen/scenario-builder collaborator spec §6 says
// produces the runtime's starting world shape. It exists only to give
// package tests and the end-to-end scenarios (spec §8) a world to run
// against — it deliberately does not attempt terrain generation, name
// pools, or any of worldgen's actual concerns.
//
// Grounded on the teacher's pkg/game/default_world.go CreateDefaultWorld:
// a small constructor assembling just enough state for tests, generalized
// from a single fixed dungeon level to a fluent builder over the
// entity/relationship surface the runtime itself uses.
package scenario

import (
	"github.com/historica/chronicle/internal/world"
)

// Builder accumulates entities and relationships through the same
// AddEntity/AddRelationship surface subsystems use, anchored to a single
// "genesis" bootstrap event (eventID 0 is reserved for worldgen/scenario
// bootstrap per internal/world's documented convention).
type Builder struct {
	W         *world.World
	genesisID uint64
}

// New creates a Builder over a fresh World starting at start, with a
// genesis event every entity this builder creates is anchored to.
func New(start world.Timestamp) *Builder {
	w := world.New(start)
	genesis := w.AddEvent("worldgen", start, "scenario genesis")
	return &Builder{W: w, genesisID: genesis}
}

// Region adds a Region entity.
func (b *Builder) Region(name string) uint64 {
	return b.W.AddEntity(world.KindRegion, name, &b.W.Current, world.RegionData{}, b.genesisID)
}

// Settlement adds a Settlement entity with the given starting population,
// located in region (0 to leave unplaced).
func (b *Builder) Settlement(name string, region uint64, population uint32) uint64 {
	id := b.W.AddEntity(world.KindSettlement, name, &b.W.Current, world.SettlementData{
		Population: population,
		Breakdown:  world.FromTotal(population),
		Prosperity: 0.5,
	}, b.genesisID)
	if region != 0 {
		b.W.AddRelationship(id, region, world.RelLocatedIn, b.W.Current, b.genesisID)
	}
	return id
}

// Faction adds a Faction entity under the given government model.
func (b *Builder) Faction(name string, government world.GovernmentType) uint64 {
	return b.W.AddEntity(world.KindFaction, name, nil, world.FactionData{
		Government: government,
		Stability:  0.6, Happiness: 0.6, Legitimacy: 0.6, Prestige: 0.5,
	}, b.genesisID)
}

// JoinFaction adds a MemberOf edge from settlement to faction.
func (b *Builder) JoinFaction(settlement, faction uint64) {
	b.W.AddRelationship(settlement, faction, world.RelMemberOf, b.W.Current, b.genesisID)
}

// Person adds a Person entity with the given traits, located in settlement
// (0 to leave unplaced).
func (b *Builder) Person(name string, born world.Timestamp, role world.Role, traits []world.Trait, settlement uint64) uint64 {
	id := b.W.AddEntity(world.KindPerson, name, &b.W.Current, world.PersonData{
		Born: born, Role: role, Traits: traits,
	}, b.genesisID)
	if settlement != 0 {
		b.W.AddRelationship(id, settlement, world.RelLocatedIn, b.W.Current, b.genesisID)
	}
	return id
}

// SetLeader points a faction's LeaderPersonID at person and records a
// LeaderOf structural edge.
func (b *Builder) SetLeader(faction, person uint64) {
	e := b.W.MustEntity(faction)
	fd := e.Data.(world.FactionData)
	fd.LeaderPersonID = person
	e.Data = fd
	b.W.AddRelationship(person, faction, world.RelLeaderOf, b.W.Current, b.genesisID)
}

// River adds a River entity flowing through each of the given regions.
func (b *Builder) River(name string, regions ...uint64) uint64 {
	id := b.W.AddEntity(world.KindRiver, name, &b.W.Current, world.RiverData{}, b.genesisID)
	for _, r := range regions {
		b.W.AddRelationship(id, r, world.RelFlowsThrough, b.W.Current, b.genesisID)
	}
	return id
}

// Building adds a Building entity of type/level in settlement.
func (b *Builder) Building(name string, buildingType world.BuildingType, level uint8, settlement uint64) uint64 {
	id := b.W.AddEntity(world.KindBuilding, name, &b.W.Current, world.BuildingData{
		Type: buildingType, Level: level, Condition: 1.0, SettlementID: settlement,
	}, b.genesisID)
	b.W.AddRelationship(id, settlement, world.RelLocatedIn, b.W.Current, b.genesisID)
	return id
}

// Ally records a mutual Ally graph edge between two factions.
func (b *Builder) Ally(a, c uint64) {
	b.W.AddGraphRelationship(a, c, world.RelAlly, b.W.Current, b.genesisID)
}

// AtWar records a mutual AtWar graph edge between two factions.
func (b *Builder) AtWar(a, c uint64) {
	b.W.AddGraphRelationship(a, c, world.RelAtWar, b.W.Current, b.genesisID)
}
