// Package signal implements the transient per-tick signal bus (spec §4.3).
// Signals are not stored in the world log; they exist only to let
// subsystems react to each other within the same tick, across the
// Reactions loop, without introducing direct package-to-package calls.
//
// Grounded on the teacher's pkg/game/events.go EventSystem (a typed
// pub/sub dispatcher keyed by event type), adapted here to a buffered
// generation model that fits the scheduler's Update -> Reactions(loop<=K)
// -> PostUpdate phases (spec §4.4) instead of the teacher's immediate
// dispatch.
package signal

import "github.com/historica/chronicle/internal/world"

// Kind tags the meaning of a Signal. One constant per reactive trigger
// named in spec §4.3.
type Kind string

const (
	KindEntityDied              Kind = "entity_died"
	KindWarStarted               Kind = "war_started"
	KindWarEnded                 Kind = "war_ended"
	KindSettlementCaptured       Kind = "settlement_captured"
	KindSiegeStarted             Kind = "siege_started"
	KindSiegeEnded               Kind = "siege_ended"
	KindBuildingConstructed      Kind = "building_constructed"
	KindBuildingUpgraded         Kind = "building_upgraded"
	KindBuildingDestroyed        Kind = "building_destroyed"
	KindTradeRouteEstablished    Kind = "trade_route_established"
	KindTradeRouteSevered        Kind = "trade_route_severed"
	KindRefugeesArrived          Kind = "refugees_arrived"
	KindPlagueStarted            Kind = "plague_started"
	KindPlagueSpreading          Kind = "plague_spreading"
	KindPlagueEnded              Kind = "plague_ended"
	KindDisasterStarted          Kind = "disaster_started"
	KindDisasterStruck           Kind = "disaster_struck"
	KindDisasterEnded            Kind = "disaster_ended"
	KindFactionSplit             Kind = "faction_split"
	KindCulturalRebellion        Kind = "cultural_rebellion"
	KindTreasuryDepleted         Kind = "treasury_depleted"
	KindAllianceBetrayed         Kind = "alliance_betrayed"
	KindSuccessionCrisis         Kind = "succession_crisis"
	KindFailedCoup               Kind = "failed_coup"
	KindLeaderVacancy            Kind = "leader_vacancy"
	KindItemCrafted              Kind = "item_crafted"
	KindItemTransferred          Kind = "item_transferred"
	KindItemTierPromoted         Kind = "item_tier_promoted"
	KindMercenaryHired           Kind = "mercenary_hired"
	KindMercenaryDeserted        Kind = "mercenary_deserted"
	KindMercenaryContractEnded   Kind = "mercenary_contract_ended"
	KindBanditGangFormed         Kind = "bandit_gang_formed"
	KindBanditRaid               Kind = "bandit_raid"
	KindPrestigeThresholdCrossed Kind = "prestige_threshold_crossed"
	KindPopulationChanged        Kind = "population_changed"
)

// Signal is one transient fact published during a tick for other
// subsystems to react to in the Reactions phase.
type Signal struct {
	Kind       Kind
	EntityID   uint64 // primary subject, e.g. the settlement or faction
	RelatedID  uint64 // secondary subject, e.g. the other war party
	Role       world.ParticipantRole
	Data       map[string]any
}

// Float reads a float64 field from Data, defaulting to 0.
func (s Signal) Float(key string) float64 {
	if v, ok := s.Data[key].(float64); ok {
		return v
	}
	return 0
}

// Str reads a string field from Data, defaulting to "".
func (s Signal) Str(key string) string {
	if v, ok := s.Data[key].(string); ok {
		return v
	}
	return ""
}

// Bool reads a bool field from Data, defaulting to false.
func (s Signal) Bool(key string) bool {
	if v, ok := s.Data[key].(bool); ok {
		return v
	}
	return false
}

// Uint64 reads a uint64 field from Data, defaulting to 0.
func (s Signal) Uint64(key string) uint64 {
	if v, ok := s.Data[key].(uint64); ok {
		return v
	}
	return 0
}

// New builds a Signal with an initialized Data map.
func New(kind Kind, entityID uint64) Signal {
	return Signal{Kind: kind, EntityID: entityID, Data: map[string]any{}}
}

// With returns a copy of s with a data field set.
func (s Signal) With(key string, value any) Signal {
	if s.Data == nil {
		s.Data = map[string]any{}
	}
	s.Data[key] = value
	return s
}

// Bus is the transient per-tick buffer. It is drained and refilled every
// Reactions iteration; nothing here survives past PostUpdate.
type Bus struct {
	pending []Signal
}

// NewBus creates an empty bus.
func NewBus() *Bus { return &Bus{} }

// Publish queues a signal for delivery on the next Reactions iteration.
func (b *Bus) Publish(s Signal) { b.pending = append(b.pending, s) }

// Drain returns and clears every queued signal. Called once per
// Reactions iteration by the scheduler before dispatching to
// HandleSignals on every subsystem.
func (b *Bus) Drain() []Signal {
	out := b.pending
	b.pending = nil
	return out
}

// Pending reports whether any signal is queued, used by the scheduler to
// decide whether another Reactions iteration is warranted.
func (b *Bus) Pending() bool { return len(b.pending) > 0 }
