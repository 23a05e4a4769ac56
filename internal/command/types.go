// Package command implements the deferred-apply command queue and its
// single-writer applicator (spec §4.2). Subsystems never mutate structural
// relationships or entity lifecycle directly; they enqueue Commands here,
// and the Applicator, running in the scheduler's PostUpdate phase, is the
// sole writer of those concerns.
//
// Grounded on original_source/src/ecs/commands/mod.rs's SimCommand shape,
// translated into idiomatic Go: the Rust tagged enum SimCommandKind becomes
// a CommandKind string constant (matching the teacher's own loose-typed
// GameEvent.Data bag idiom in pkg/game/events.go) and EventData becomes a
// map[string]any rather than a serde_json::Value, since Go has no native
// JSON-value type.
package command

import "github.com/historica/chronicle/internal/world"

// CommandKind tags the intent of a Command. One constant per subsystem
// operation named in spec §4.2 and §4.5-§4.14.
type CommandKind string

const (
	// Core / lifecycle
	KindEndEntity            CommandKind = "end_entity"
	KindRenameEntity         CommandKind = "rename_entity"
	KindSetProperty          CommandKind = "set_property"
	KindAddRelationship      CommandKind = "add_relationship"
	KindEndRelationship      CommandKind = "end_relationship"
	KindAddGraphRelationship CommandKind = "add_graph_relationship"
	KindEndGraphRelationship CommandKind = "end_graph_relationship"

	// Demographics
	KindSetPopulation CommandKind = "set_population"
	KindPersonBorn    CommandKind = "person_born"
	KindPersonDied    CommandKind = "person_died"

	// Economy
	KindAdjustTreasury       CommandKind = "adjust_treasury"
	KindCollectTaxes         CommandKind = "collect_taxes"
	KindEstablishTradeRoute  CommandKind = "establish_trade_route"
	KindSeverTradeRoute      CommandKind = "sever_trade_route"
	KindSetProsperity        CommandKind = "set_prosperity"
	KindPayTribute           CommandKind = "pay_tribute"
	KindTributeDefaulted     CommandKind = "tribute_defaulted"
	KindTributeEnded         CommandKind = "tribute_ended"
	KindUpgradeFortification CommandKind = "upgrade_fortification"

	// Conflict
	KindDeclareWar         CommandKind = "declare_war"
	KindEndWar             CommandKind = "end_war"
	KindMusterArmy         CommandKind = "muster_army"
	KindMoveArmy           CommandKind = "move_army"
	KindResolveBattle      CommandKind = "resolve_battle"
	KindBeginSiege         CommandKind = "begin_siege"
	KindProgressSiege      CommandKind = "progress_siege"
	KindEndSiege           CommandKind = "end_siege"
	KindCaptureSettlement  CommandKind = "capture_settlement"
	KindDisbandArmy        CommandKind = "disband_army"
	KindSiegeAssaultFailed CommandKind = "siege_assault_failed"

	// Mercenaries
	KindFormMercenaryCompany    CommandKind = "form_mercenary_company"
	KindHireMercenary           CommandKind = "hire_mercenary"
	KindPayMercenary            CommandKind = "pay_mercenary"
	KindMercenaryDesert         CommandKind = "mercenary_desert"
	KindDisbandMercenaryCompany CommandKind = "disband_mercenary_company"

	// Politics & diplomacy
	KindFormAlliance     CommandKind = "form_alliance"
	KindDissolveAlliance CommandKind = "dissolve_alliance"
	KindFormRivalry      CommandKind = "form_rivalry"
	KindBetrayAlliance   CommandKind = "betray_alliance"
	KindAttemptCoup      CommandKind = "attempt_coup"
	KindInstallLeader    CommandKind = "install_leader"
	KindSplitFaction     CommandKind = "split_faction"
	KindAdjustGrievance  CommandKind = "adjust_grievance"

	// Migration
	KindMigratePopulation  CommandKind = "migrate_population"
	KindAbandonSettlement  CommandKind = "abandon_settlement"

	// Environment
	KindSetSeasonalModifiers   CommandKind = "set_seasonal_modifiers"
	KindTriggerInstantDisaster CommandKind = "trigger_instant_disaster"
	KindBeginPersistentDisaster CommandKind = "begin_persistent_disaster"
	KindProgressDisaster       CommandKind = "progress_disaster"
	KindEndDisaster            CommandKind = "end_disaster"
	KindSpawnGeographicFeature CommandKind = "spawn_geographic_feature"

	// Disease
	KindStartPlague         CommandKind = "start_plague"
	KindProgressDisease     CommandKind = "progress_disease"
	KindEndDisease          CommandKind = "end_disease"
	KindApplyDiseaseDeaths  CommandKind = "apply_disease_deaths"
	KindDecayPlagueImmunity CommandKind = "decay_plague_immunity"

	// Buildings
	KindConstructBuilding CommandKind = "construct_building"
	KindUpgradeBuilding   CommandKind = "upgrade_building"
	KindDamageBuilding    CommandKind = "damage_building"
	KindDestroyBuilding   CommandKind = "destroy_building"

	// Items
	KindCraftItem           CommandKind = "craft_item"
	KindTransferItem        CommandKind = "transfer_item"
	KindAccumulateResonance CommandKind = "accumulate_resonance"
	KindDecayItemCondition  CommandKind = "decay_item_condition"
	KindDestroyItem         CommandKind = "destroy_item"

	// Culture & religion
	KindFoundReligion  CommandKind = "found_religion"
	KindConvertCulture CommandKind = "convert_culture"
	KindSchism         CommandKind = "schism"

	// Reputation
	KindAdjustPrestige CommandKind = "adjust_prestige"

	// Education
	KindAdjustLiteracy CommandKind = "adjust_literacy"
	KindAdjustEducation CommandKind = "adjust_education"

	// Agency
	KindEliminatePerson CommandKind = "eliminate_person"
)

// Participant links an entity to the event this command will create, under
// a role.
type Participant struct {
	EntityID uint64
	Role     world.ParticipantRole
}

// Command is a tagged intent to change world state, enqueued by a
// subsystem and applied centrally in PostUpdate (spec §4.2).
type Command struct {
	Kind         CommandKind
	Description  string
	CausedBy     *uint64
	EventKind    world.EventKind
	Participants []Participant
	Data         map[string]any
	Bookkeeping  bool
}

// New creates a command that records a full Event in the log.
func New(kind CommandKind, eventKind world.EventKind, description string) Command {
	return Command{Kind: kind, EventKind: eventKind, Description: description, Data: map[string]any{}}
}

// Bookkeeping creates a command whose application produces effects but no
// Event entry.
func Bookkeeping(kind CommandKind) Command {
	return Command{Kind: kind, Bookkeeping: true, Data: map[string]any{}}
}

// WithCause sets the causal parent event id.
func (c Command) WithCause(eventID uint64) Command {
	c.CausedBy = &eventID
	return c
}

// With attaches a participant under a role.
func (c Command) With(entityID uint64, role world.ParticipantRole) Command {
	c.Participants = append(c.Participants, Participant{EntityID: entityID, Role: role})
	return c
}

// Set stores a scalar parameter in the command's event data.
func (c Command) Set(key string, value any) Command {
	if c.Data == nil {
		c.Data = map[string]any{}
	}
	c.Data[key] = value
	return c
}

// Entity returns the first participant entity id with the given role, or 0
// if none is present.
func (c Command) Entity(role world.ParticipantRole) uint64 {
	for _, p := range c.Participants {
		if p.Role == role {
			return p.EntityID
		}
	}
	return 0
}

// Entities returns every participant entity id with the given role.
func (c Command) Entities(role world.ParticipantRole) []uint64 {
	var out []uint64
	for _, p := range c.Participants {
		if p.Role == role {
			out = append(out, p.EntityID)
		}
	}
	return out
}

// Float reads a float64 parameter, defaulting to 0.
func (c Command) Float(key string) float64 {
	if v, ok := c.Data[key].(float64); ok {
		return v
	}
	return 0
}

// Int reads an int parameter, defaulting to 0.
func (c Command) Int(key string) int {
	switch v := c.Data[key].(type) {
	case int:
		return v
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Uint64 reads a uint64 parameter, defaulting to 0.
func (c Command) Uint64(key string) uint64 {
	switch v := c.Data[key].(type) {
	case uint64:
		return v
	case int:
		return uint64(v)
	case float64:
		return uint64(v)
	}
	return 0
}

// Str reads a string parameter, defaulting to "".
func (c Command) Str(key string) string {
	if v, ok := c.Data[key].(string); ok {
		return v
	}
	return ""
}

// Bool reads a bool parameter, defaulting to false.
func (c Command) Bool(key string) bool {
	if v, ok := c.Data[key].(bool); ok {
		return v
	}
	return false
}

// Any reads a raw parameter.
func (c Command) Any(key string) any { return c.Data[key] }
