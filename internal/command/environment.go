package command

import (
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

func init() {
	register(KindSetSeasonalModifiers, applySetSeasonalModifiers)
	register(KindTriggerInstantDisaster, applyTriggerInstantDisaster)
	register(KindBeginPersistentDisaster, applyBeginPersistentDisaster)
	register(KindProgressDisaster, applyProgressDisaster)
	register(KindEndDisaster, applyEndDisaster)
	register(KindSpawnGeographicFeature, applySpawnGeographicFeature)
}

// applySetSeasonalModifiers overwrites a settlement's seasonal multipliers
// (bookkeeping, recomputed monthly by Environment from region/season).
func applySetSeasonalModifiers(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	e, sd, ok := withSettlement(a, id)
	if !ok {
		return
	}
	if mods, ok := c.Any("modifiers").(world.SeasonalModifiers); ok {
		sd.Seasonal = mods
		e.Data = sd
	}
}

// applyTriggerInstantDisaster applies an immediate population/prosperity
// shock (earthquake, etc.) with no persistent ActiveDisaster state. The
// exact death count per bracket is computed by Environment from its own
// deterministic RNG stream before the command is enqueued; the applicator
// only performs the (non-stochastic) subtraction, keeping every random
// draw confined to the subsystem that owns its seed.
func applyTriggerInstantDisaster(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleLocation)
	e, sd, ok := withSettlement(a, id)
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
	oldProsperity := sd.Prosperity
	sd.Prosperity *= (1 - c.Float("prosperity_loss_fraction"))
	e.Data = sd
	a.World.RecordFieldChange(eventID, id, "population", oldPop, sd.Population)
	a.World.RecordFieldChange(eventID, id, "prosperity", oldProsperity, sd.Prosperity)
	a.Bus.Publish(signal.New(signal.KindDisasterStruck, id).With("type", c.Str("type")))
}

func applyBeginPersistentDisaster(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleLocation)
	e, sd, ok := withSettlement(a, id)
	if !ok || sd.ActiveDisaster != nil {
		return
	}
	sd.ActiveDisaster = &world.ActiveDisaster{
		Type:           c.Str("type"),
		Severity:       c.Float("severity"),
		MonthsDuration: c.Int("months_duration"),
	}
	e.Data = sd
	a.Bus.Publish(signal.New(signal.KindDisasterStarted, id).With("type", c.Str("type")))
}

// applyProgressDisaster advances an ongoing disaster one tick, applying
// the per-bracket death counts Environment already rolled from its own
// RNG stream.
func applyProgressDisaster(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleLocation)
	e, sd, ok := withSettlement(a, id)
	if !ok || sd.ActiveDisaster == nil {
		return
	}
	sd.ActiveDisaster.MonthsElapsed++
	if deaths, ok := c.Any("deaths_breakdown").(world.PopulationBreakdown); ok {
		sd.ActiveDisaster.TotalDeaths += deaths.Total()
		sd.Breakdown = subtractBreakdown(sd.Breakdown, deaths)
		sd.Population = sd.Breakdown.Total()
	}
	e.Data = sd
}

func applyEndDisaster(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleLocation)
	e, sd, ok := withSettlement(a, id)
	if !ok || sd.ActiveDisaster == nil {
		return
	}
	sd.ActiveDisaster = nil
	e.Data = sd
	a.Bus.Publish(signal.New(signal.KindDisasterEnded, id))
}

// applySpawnGeographicFeature creates a permanent scar left by a severe
// disaster (lava field, fault line, crater).
func applySpawnGeographicFeature(a *Applicator, c Command, eventID uint64) {
	regionID := c.Entity(world.RoleLocation)
	if !a.World.Alive(regionID) {
		return
	}
	data := world.GeographicFeatureData{
		Type:     world.FeatureType(c.Str("feature_type")),
		RegionID: regionID,
	}
	id := a.World.AddEntity(world.KindGeographicFeature, c.Str("name"), &a.World.Current, data, eventID)
	a.World.AddParticipant(eventID, id, world.RoleSubject)
}
