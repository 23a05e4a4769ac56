package command

import (
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

func init() {
	register(KindCraftItem, applyCraftItem)
	register(KindTransferItem, applyTransferItem)
	register(KindAccumulateResonance, applyAccumulateResonance)
	register(KindDecayItemCondition, applyDecayItemCondition)
	register(KindDestroyItem, applyDestroyItem)
}

func withItem(a *Applicator, id uint64) (*world.Entity, world.ItemData, bool) {
	e, ok := a.World.Entity(id)
	if !ok || !e.Alive() {
		return nil, world.ItemData{}, false
	}
	idata, ok := e.Data.(world.ItemData)
	return e, idata, ok
}

func applyCraftItem(a *Applicator, c Command, eventID uint64) {
	makerID := c.Entity(world.RoleSubject)
	if !a.World.Alive(makerID) {
		return
	}
	data := world.ItemData{
		ItemType:  world.ItemType(c.Str("item_type")),
		Material:  c.Str("material"),
		Condition: 1.0,
		Created:   a.World.Current,
	}
	id := a.World.AddEntity(world.KindItem, c.Str("name"), &a.World.Current, data, eventID)
	a.World.AddParticipant(eventID, id, world.RoleObject)
	a.World.AddRelationship(id, makerID, world.RelHeldBy, a.World.Current, eventID)
	a.Bus.Publish(signal.New(signal.KindItemCrafted, id).With("maker_id", makerID))
}

func applyTransferItem(a *Applicator, c Command, eventID uint64) {
	itemID := c.Entity(world.RoleSubject)
	from := c.Entity(world.RoleOrigin)
	to := c.Entity(world.RoleDestination)
	if !a.World.Alive(itemID) || !a.World.Alive(to) {
		return
	}
	if a.World.HasActiveRel(itemID, world.RelHeldBy, from) {
		a.World.EndRelationship(itemID, from, world.RelHeldBy, a.World.Current, eventID)
	}
	a.World.AddRelationship(itemID, to, world.RelHeldBy, a.World.Current, eventID)
	a.Bus.Publish(signal.New(signal.KindItemTransferred, itemID).With("from_id", from).With("to_id", to))
}

// applyAccumulateResonance raises an item's resonance toward a new tier
// and promotes it when it crosses a tier boundary (spec §4.13).
func applyAccumulateResonance(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	e, idata, ok := withItem(a, id)
	if !ok {
		return
	}
	oldResonance := idata.Resonance
	idata.Resonance = clamp01(idata.Resonance + c.Float("delta"))
	oldTier := idata.ResonanceTier
	newTier := uint8(idata.Resonance * 4)
	if newTier > 3 {
		newTier = 3
	}
	idata.ResonanceTier = newTier
	e.Data = idata
	a.World.RecordFieldChange(eventID, id, "resonance", oldResonance, idata.Resonance)
	if newTier != oldTier {
		a.World.RecordFieldChange(eventID, id, "resonance_tier", oldTier, newTier)
		a.Bus.Publish(signal.New(signal.KindItemTierPromoted, id).With("tier", newTier))
	}
}

func applyDecayItemCondition(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	e, idata, ok := withItem(a, id)
	if !ok {
		return
	}
	old := idata.Condition
	idata.Condition = clamp01(idata.Condition - c.Float("amount"))
	e.Data = idata
	a.World.RecordFieldChange(eventID, id, "condition", old, idata.Condition)
}

func applyDestroyItem(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	if !a.World.Alive(id) {
		return
	}
	a.World.EndEntity(id, a.World.Current, eventID)
}
