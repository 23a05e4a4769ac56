package command

import (
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

func init() {
	register(KindFoundReligion, applyFoundReligion)
	register(KindConvertCulture, applyConvertCulture)
	register(KindSchism, applySchism)
}

// applyFoundReligion creates a Knowledge-kind entity marking a new
// religious tradition's founding, with a LeaderOf edge from its founder.
// No Culture entity is changed.
func applyFoundReligion(a *Applicator, c Command, eventID uint64) {
	founderID := c.Entity(world.RoleSubject)
	if !a.World.Alive(founderID) {
		return
	}
	data := world.KnowledgeData{Significance: c.Float("significance")}
	id := a.World.AddEntity(world.KindKnowledge, c.Str("name"), &a.World.Current, data, eventID)
	a.World.AddParticipant(eventID, id, world.RoleObject)
	a.World.AddRelationship(founderID, id, world.RelLeaderOf, a.World.Current, eventID)
}

// applyConvertCulture sets a settlement's dominant_culture_id property to
// the culture Culture chose, outright, and publishes CulturalRebellion.
func applyConvertCulture(a *Applicator, c Command, eventID uint64) {
	settlementID := c.Entity(world.RoleSubject)
	if !a.World.Alive(settlementID) {
		return
	}
	a.World.SetProperty(settlementID, "dominant_culture_id", c.Uint64("culture_id"), eventID)
	a.Bus.Publish(signal.New(signal.KindCulturalRebellion, settlementID).
		With("culture_id", c.Uint64("culture_id")))
}

// applySchism splits a Culture entity into two (spec §4.13's cultural
// divergence path); the new one starts with copies of the parent's
// DominantTraits and DriftTarget, unchanged.
func applySchism(a *Applicator, c Command, eventID uint64) {
	parentID := c.Entity(world.RoleSubject)
	e, ok := a.World.Entity(parentID)
	if !ok || !e.Alive() {
		return
	}
	cd, ok := e.Data.(world.CultureData)
	if !ok {
		return
	}
	newData := world.CultureData{
		DominantTraits: cd.DominantTraits,
		DriftTarget:    map[string]float64{},
	}
	for k, v := range cd.DriftTarget {
		newData.DriftTarget[k] = v
	}
	id := a.World.AddEntity(world.KindCulture, c.Str("name"), &a.World.Current, newData, eventID)
	a.World.AddParticipant(eventID, id, world.RoleObject)
}
