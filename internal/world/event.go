package world

// EventKind tags the category of an Event for audit and downstream
// interpretation. It is a free-form string (mirroring CommandKind/
// SignalKind) rather than a closed enum, because the applicator records one
// event kind per command kind (~50 variants) and new subsystems should be
// able to introduce new kinds without touching this package.
type EventKind string

// Event is a ground-truth chronicle entry: a single state change, narrated,
// timestamped, and optionally chained to the event that caused it.
type Event struct {
	ID          uint64
	Kind        EventKind
	Timestamp   Timestamp
	Description string
	CausedBy    *uint64
	Data        map[string]any
	// Bookkeeping marks events created for routine, non-narrative state
	// changes (population drift, treasury adjustments, building decay).
	// They still anchor effects for the audit trail but carry no
	// participants and are filtered out of narrative event streams.
	Bookkeeping bool
}

// EventParticipant links an entity to an event under a role.
type EventParticipant struct {
	EventID  uint64
	EntityID uint64
	Role     ParticipantRole
}

// Change is the tagged state-change payload of an EventEffect. Only the
// fields relevant to Type are populated; this flattened-struct-plus-
// discriminant shape mirrors the teacher's GameEvent.Data loose-bag idiom
// (pkg/game/events.go) rather than a Go interface-per-variant, since every
// field here is a JSON-serializable scalar or id and the set of shapes is
// small and closed.
type Change struct {
	Type ChangeType

	// EntityCreated
	CreatedKind EntityKind
	CreatedName string

	// NameChanged
	OldName string
	NewName string

	// RelationshipStarted / RelationshipEnded
	RelTarget uint64
	RelKind   RelationshipKind

	// PropertyChanged
	Field    string
	OldValue any
	NewValue any
}

// EventEffect is one atomic, audited state change tied to an event.
type EventEffect struct {
	EventID  uint64
	EntityID uint64
	Change   Change
}
