package command

import (
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

func init() {
	register(KindConstructBuilding, applyConstructBuilding)
	register(KindUpgradeBuilding, applyUpgradeBuilding)
	register(KindDamageBuilding, applyDamageBuilding)
	register(KindDestroyBuilding, applyDestroyBuilding)
}

func withBuilding(a *Applicator, id uint64) (*world.Entity, world.BuildingData, bool) {
	e, ok := a.World.Entity(id)
	if !ok || !e.Alive() {
		return nil, world.BuildingData{}, false
	}
	bd, ok := e.Data.(world.BuildingData)
	return e, bd, ok
}

func applyConstructBuilding(a *Applicator, c Command, eventID uint64) {
	settlementID := c.Entity(world.RoleLocation)
	if !a.World.Alive(settlementID) {
		return
	}
	data := world.BuildingData{
		Type:         world.BuildingType(c.Str("building_type")),
		Level:        1,
		Condition:    1.0,
		SettlementID: settlementID,
	}
	id := a.World.AddEntity(world.KindBuilding, c.Str("name"), &a.World.Current, data, eventID)
	a.World.AddParticipant(eventID, id, world.RoleSubject)
	a.World.AddRelationship(id, settlementID, world.RelLocatedIn, a.World.Current, eventID)
	a.Bus.Publish(signal.New(signal.KindBuildingConstructed, id).With("settlement_id", settlementID))
}

func applyUpgradeBuilding(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	e, bd, ok := withBuilding(a, id)
	if !ok {
		return
	}
	old := bd.Level
	bd.Level++
	e.Data = bd
	a.World.RecordFieldChange(eventID, id, "level", old, bd.Level)
	a.Bus.Publish(signal.New(signal.KindBuildingUpgraded, id).With("level", bd.Level))
}

func applyDamageBuilding(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	e, bd, ok := withBuilding(a, id)
	if !ok {
		return
	}
	old := bd.Condition
	bd.Condition = clamp01(bd.Condition - c.Float("amount"))
	e.Data = bd
	a.World.RecordFieldChange(eventID, id, "condition", old, bd.Condition)
	if bd.Condition == 0 {
		a.World.EndEntity(id, a.World.Current, eventID)
		a.Bus.Publish(signal.New(signal.KindBuildingDestroyed, id))
	}
}

func applyDestroyBuilding(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	if !a.World.Alive(id) {
		return
	}
	a.World.EndEntity(id, a.World.Current, eventID)
	a.Bus.Publish(signal.New(signal.KindBuildingDestroyed, id))
}
