package world

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// World is the entity-relationship state store plus the event/effect log.
// It is mutated only through the operations below (structural mutation is
// additionally restricted, by convention, to internal/command's
// Applicator — see spec §4.2/§5). All precondition violations here are
// class-1 errors (spec §7): they panic rather than silently corrupt state.
type World struct {
	Current Timestamp

	entities map[uint64]*Entity
	events   map[uint64]*Event

	participants []EventParticipant
	effects      []EventEffect
	eventOrder   []uint64

	relPairs map[graphKey]*RelationshipMeta

	nextID uint64

	Log *logrus.Logger
}

// New creates an empty World starting at the given timestamp.
func New(start Timestamp) *World {
	return &World{
		Current:  start,
		entities: make(map[uint64]*Entity),
		events:   make(map[uint64]*Event),
		relPairs: make(map[graphKey]*RelationshipMeta),
		nextID:   1,
		Log:      logrus.StandardLogger(),
	}
}

func (w *World) allocID() uint64 {
	id := w.nextID
	w.nextID++
	return id
}

func (w *World) fatal(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	w.Log.WithFields(logrus.Fields{
		"component": "world",
		"tick":      w.Current.String(),
	}).Error(msg)
	panic(msg)
}

// --- Entities ---

// AddEntity allocates a new id, inserts the entity, and records an
// EntityCreated effect against eventID (0 means no event — used only by
// worldgen/scenario bootstrapping, never by subsystems at runtime).
func (w *World) AddEntity(kind EntityKind, name string, origin *Timestamp, data EntityData, eventID uint64) uint64 {
	id := w.allocID()
	w.entities[id] = &Entity{
		ID:         id,
		Kind:       kind,
		Name:       name,
		Origin:     origin,
		Properties: make(map[string]any),
		Data:       data,
	}
	if eventID != 0 {
		w.recordEffect(eventID, id, Change{Type: ChangeEntityCreated, CreatedKind: kind, CreatedName: name})
	}
	w.Log.WithFields(logrus.Fields{
		"component": "world", "entity_id": id, "kind": kind, "name": name,
	}).Debug("entity created")
	return id
}

// Entity looks up an entity by id.
func (w *World) Entity(id uint64) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// MustEntity looks up an entity, panicking (class 1) if it does not exist.
func (w *World) MustEntity(id uint64) *Entity {
	e, ok := w.entities[id]
	if !ok {
		w.fatal("precondition violated: entity %d does not exist", id)
	}
	return e
}

// Alive reports whether id names an entity that exists and has not ended.
func (w *World) Alive(id uint64) bool {
	e, ok := w.entities[id]
	return ok && e.Alive()
}

// RenameEntity changes an entity's name and records NameChanged.
func (w *World) RenameEntity(id uint64, newName string, eventID uint64) {
	e := w.MustEntity(id)
	old := e.Name
	e.Name = newName
	w.recordEffect(eventID, id, Change{Type: ChangeNameChanged, OldName: old, NewName: newName})
}

// EndEntity ends an entity at ts, recording EntityEnded. Re-ending an
// already-ended entity is a class-1 precondition violation. Persons and
// Factions additionally have all their active structural relationships
// ended as a side effect, matching spec §3's lifecycle invariant.
func (w *World) EndEntity(id uint64, ts Timestamp, eventID uint64) {
	e := w.MustEntity(id)
	if e.End != nil {
		w.fatal("precondition violated: entity %d already ended", id)
	}
	if e.Origin != nil && ts.Before(*e.Origin) {
		w.fatal("precondition violated: entity %d ended before its origin", id)
	}
	end := ts
	e.End = &end
	w.recordEffect(eventID, id, Change{Type: ChangeEntityEnded})

	if e.Kind == KindPerson || e.Kind == KindFaction {
		for i := range e.Relationships {
			rel := &e.Relationships[i]
			if rel.Active() {
				endTS := ts
				rel.End = &endTS
				w.recordEffect(eventID, id, Change{Type: ChangeRelationshipEnded, RelTarget: rel.Target, RelKind: rel.Kind})
			}
		}
	}
	w.Log.WithFields(logrus.Fields{"component": "world", "entity_id": id}).Debug("entity ended")
}

// SetProperty sets an open-map property and records PropertyChanged.
func (w *World) SetProperty(id uint64, field string, value any, eventID uint64) {
	e := w.MustEntity(id)
	old := e.Properties[field]
	e.Properties[field] = value
	w.recordEffect(eventID, id, Change{Type: ChangePropertyChanged, Field: field, OldValue: old, NewValue: value})
}

// EntitiesByKind returns every entity of the given kind, sorted by id for
// reproducible iteration order (Go map order is not stable across runs).
func (w *World) EntitiesByKind(kind EntityKind) []*Entity {
	var out []*Entity
	for _, e := range w.entities {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LivingByKind returns EntitiesByKind filtered to Alive().
func (w *World) LivingByKind(kind EntityKind) []*Entity {
	all := w.EntitiesByKind(kind)
	out := all[:0:0]
	for _, e := range all {
		if e.Alive() {
			out = append(out, e)
		}
	}
	return out
}

// AllEntities returns every entity, sorted by id.
func (w *World) AllEntities() []*Entity {
	out := make([]*Entity, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- Events ---

// AddEvent creates an event with no causal parent.
func (w *World) AddEvent(kind EventKind, ts Timestamp, description string) uint64 {
	id := w.allocID()
	ev := &Event{ID: id, Kind: kind, Timestamp: ts, Description: description}
	w.events[id] = ev
	w.eventOrder = append(w.eventOrder, id)
	return id
}

// AddCausedEvent creates an event chained to causedBy. The cause must
// already exist and its timestamp must be <= ts (class-1 otherwise).
func (w *World) AddCausedEvent(kind EventKind, ts Timestamp, description string, causedBy uint64) uint64 {
	cause, ok := w.events[causedBy]
	if !ok {
		w.fatal("precondition violated: cause event %d does not exist", causedBy)
	}
	if ts.Before(cause.Timestamp) {
		w.fatal("precondition violated: effect timestamp %s precedes cause %s", ts, cause.Timestamp)
	}
	id := w.allocID()
	ev := &Event{ID: id, Kind: kind, Timestamp: ts, Description: description, CausedBy: &causedBy}
	w.events[id] = ev
	w.eventOrder = append(w.eventOrder, id)
	return id
}

// AddBookkeepingEvent creates an event flagged as routine/non-narrative:
// it still anchors effects for the audit trail but is excluded from
// narrative event streams and never carries participants.
func (w *World) AddBookkeepingEvent(kind EventKind, ts Timestamp, description string) uint64 {
	id := w.allocID()
	ev := &Event{ID: id, Kind: kind, Timestamp: ts, Description: description, Bookkeeping: true}
	w.events[id] = ev
	w.eventOrder = append(w.eventOrder, id)
	return id
}

// Event looks up an event by id.
func (w *World) Event(id uint64) (*Event, bool) {
	e, ok := w.events[id]
	return e, ok
}

// Events returns every event in creation (and thus id) order.
func (w *World) Events() []*Event {
	out := make([]*Event, 0, len(w.eventOrder))
	for _, id := range w.eventOrder {
		out = append(out, w.events[id])
	}
	return out
}

// AddParticipant links an entity to an event under a role.
func (w *World) AddParticipant(eventID, entityID uint64, role ParticipantRole) {
	if _, ok := w.events[eventID]; !ok {
		w.fatal("precondition violated: event %d does not exist", eventID)
	}
	w.participants = append(w.participants, EventParticipant{EventID: eventID, EntityID: entityID, Role: role})
}

// Participants returns all recorded event participants in order.
func (w *World) Participants() []EventParticipant { return w.participants }

// recordEffect appends an effect. eventID of 0 is permitted only for
// worldgen/scenario bootstrapping paths that pass 0 to AddEntity.
func (w *World) recordEffect(eventID, entityID uint64, change Change) {
	if eventID == 0 {
		return
	}
	if _, ok := w.events[eventID]; !ok {
		w.fatal("precondition violated: effect references missing event %d", eventID)
	}
	w.effects = append(w.effects, EventEffect{EventID: eventID, EntityID: entityID, Change: change})
}

// Effects returns all recorded effects in order.
func (w *World) Effects() []EventEffect { return w.effects }

// RecordFieldChange logs a PropertyChanged effect for a typed component
// field mutated directly by a subsystem's command handler (e.g.
// SettlementData.Prosperity), as opposed to the open Properties map that
// SetProperty covers. This is the audit trail hook typed per-domain
// mutation helpers call after writing through an Entity.Data pointer.
func (w *World) RecordFieldChange(eventID, entityID uint64, field string, oldValue, newValue any) {
	w.recordEffect(eventID, entityID, Change{Type: ChangePropertyChanged, Field: field, OldValue: oldValue, NewValue: newValue})
}

// --- Structural relationships ---

// AddRelationship adds a structural edge from source to target. Preconditions
// (class 1): target must exist, source != target, and no duplicate active
// edge may exist for singleton kinds. Parent implies a mirrored Child edge.
func (w *World) AddRelationship(source, target uint64, kind RelationshipKind, start Timestamp, eventID uint64) {
	if kind.IsGraphPair() {
		w.fatal("programming error: %s is a graph-pair kind, use AddGraphRelationship", kind)
	}
	src := w.MustEntity(source)
	if _, ok := w.entities[target]; !ok {
		w.fatal("precondition violated: relationship target %d does not exist", target)
	}
	if source == target {
		w.fatal("precondition violated: self-relationship on entity %d", source)
	}
	if kind.IsSingleton() {
		for _, r := range src.Relationships {
			if r.Kind == kind && r.Active() {
				w.fatal("precondition violated: entity %d already has an active %s relationship", source, kind)
			}
		}
	}
	src.Relationships = append(src.Relationships, Relationship{Source: source, Target: target, Kind: kind, Start: start})
	w.recordEffect(eventID, source, Change{Type: ChangeRelationshipStarted, RelTarget: target, RelKind: kind})

	if kind == RelParent {
		child := w.MustEntity(target)
		child.Relationships = append(child.Relationships, Relationship{Source: target, Target: source, Kind: RelChild, Start: start})
		w.recordEffect(eventID, target, Change{Type: ChangeRelationshipStarted, RelTarget: source, RelKind: RelChild})
	}
}

func (w *World) hasActiveRelLocked(e *Entity, kind RelationshipKind, target uint64) bool {
	for _, r := range e.Relationships {
		if r.Kind == kind && r.Target == target && r.Active() {
			return true
		}
	}
	return false
}

// EndRelationship ends a matching active structural edge. Requires an
// active (source, target, kind) edge with end >= start (class 1 otherwise).
func (w *World) EndRelationship(source, target uint64, kind RelationshipKind, end Timestamp, eventID uint64) {
	src := w.MustEntity(source)
	idx := -1
	for i, r := range src.Relationships {
		if r.Kind == kind && r.Target == target && r.Active() {
			idx = i
			break
		}
	}
	if idx == -1 {
		w.fatal("precondition violated: no active %s relationship from %d to %d", kind, source, target)
	}
	if end.Before(src.Relationships[idx].Start) {
		w.fatal("precondition violated: relationship end %s precedes start %s", end, src.Relationships[idx].Start)
	}
	endCopy := end
	src.Relationships[idx].End = &endCopy
	w.recordEffect(eventID, source, Change{Type: ChangeRelationshipEnded, RelTarget: target, RelKind: kind})

	if kind == RelParent {
		if child, ok := w.entities[target]; ok {
			for i, r := range child.Relationships {
				if r.Kind == RelChild && r.Target == source && r.Active() {
					ec := end
					child.Relationships[i].End = &ec
					w.recordEffect(eventID, target, Change{Type: ChangeRelationshipEnded, RelTarget: source, RelKind: RelChild})
					break
				}
			}
		}
	}
}

// ActiveRel returns the first active relationship of kind on entityID, if
// any — used for singleton structural kinds.
func (w *World) ActiveRel(entityID uint64, kind RelationshipKind) (Relationship, bool) {
	e := w.MustEntity(entityID)
	for _, r := range e.Relationships {
		if r.Kind == kind && r.Active() {
			return r, true
		}
	}
	return Relationship{}, false
}

// ActiveRels returns every active relationship of kind on entityID.
func (w *World) ActiveRels(entityID uint64, kind RelationshipKind) []Relationship {
	e := w.MustEntity(entityID)
	var out []Relationship
	for _, r := range e.Relationships {
		if r.Kind == kind && r.Active() {
			out = append(out, r)
		}
	}
	return out
}

// HasActiveRel reports whether entityID has an active kind edge to target.
func (w *World) HasActiveRel(entityID uint64, kind RelationshipKind, target uint64) bool {
	e, ok := w.entities[entityID]
	if !ok {
		return false
	}
	return w.hasActiveRelLocked(e, kind, target)
}

// AllStructuralRelationships returns every structural relationship in the
// world (for flush/serialization), sorted by (source, target, kind, start).
func (w *World) AllStructuralRelationships() []Relationship {
	var out []Relationship
	for _, e := range w.AllEntities() {
		out = append(out, e.Relationships...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		if out[i].Target != out[j].Target {
			return out[i].Target < out[j].Target
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// --- Graph-pair relationships ---

// AddGraphRelationship records an undirected edge in the canonical-pair
// store. Duplicate active edges of the same kind for the same pair are a
// class-1 violation.
func (w *World) AddGraphRelationship(a, b uint64, kind RelationshipKind, start Timestamp, eventID uint64) {
	if !kind.IsGraphPair() {
		w.fatal("programming error: %s is not a graph-pair kind", kind)
	}
	if a == b {
		w.fatal("precondition violated: self-relationship on entity %d", a)
	}
	w.MustEntity(a)
	w.MustEntity(b)
	key := graphKey{Pair: Canon(a, b), Kind: kind}
	if existing, ok := w.relPairs[key]; ok && existing.Active() {
		w.fatal("precondition violated: duplicate active %s relationship between %d and %d", kind, a, b)
	}
	w.relPairs[key] = &RelationshipMeta{Kind: kind, Start: start}
	w.recordEffect(eventID, a, Change{Type: ChangeRelationshipStarted, RelTarget: b, RelKind: kind})
	w.recordEffect(eventID, b, Change{Type: ChangeRelationshipStarted, RelTarget: a, RelKind: kind})
}

// EndGraphRelationship ends an active undirected edge.
func (w *World) EndGraphRelationship(a, b uint64, kind RelationshipKind, end Timestamp, eventID uint64) {
	key := graphKey{Pair: Canon(a, b), Kind: kind}
	meta, ok := w.relPairs[key]
	if !ok || !meta.Active() {
		w.fatal("precondition violated: no active %s relationship between %d and %d", kind, a, b)
	}
	endCopy := end
	meta.End = &endCopy
	w.recordEffect(eventID, a, Change{Type: ChangeRelationshipEnded, RelTarget: b, RelKind: kind})
	w.recordEffect(eventID, b, Change{Type: ChangeRelationshipEnded, RelTarget: a, RelKind: kind})
}

// HasGraphRelationship reports whether an active kind edge exists between
// a and b.
func (w *World) HasGraphRelationship(a, b uint64, kind RelationshipKind) bool {
	meta, ok := w.relPairs[graphKey{Pair: Canon(a, b), Kind: kind}]
	return ok && meta.Active()
}

// GraphPartners returns every other entity id with an active kind edge to
// entityID, sorted.
func (w *World) GraphPartners(entityID uint64, kind RelationshipKind) []uint64 {
	var out []uint64
	for key, meta := range w.relPairs {
		if key.Kind != kind || !meta.Active() {
			continue
		}
		if key.Pair.A == entityID {
			out = append(out, key.Pair.B)
		} else if key.Pair.B == entityID {
			out = append(out, key.Pair.A)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AllGraphRelationships returns every graph-pair edge (active and ended)
// for flush/serialization, sorted by pair then kind.
func (w *World) AllGraphRelationships() []Relationship {
	var out []Relationship
	for key, meta := range w.relPairs {
		out = append(out, Relationship{Source: key.Pair.A, Target: key.Pair.B, Kind: key.Kind, Start: meta.Start, End: meta.End})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		if out[i].Target != out[j].Target {
			return out[i].Target < out[j].Target
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// --- Clock ---

// AdvanceMonth moves the clock forward one tick (one month), wrapping the
// year at month 13.
func (w *World) AdvanceMonth() {
	w.Current = w.Current.AddMonths(1)
}

// IsYearlyBoundary reports whether the current tick is month 12 — the tick
// that gates yearly-cadence subsystems.
func (w *World) IsYearlyBoundary() bool { return w.Current.Month == 12 }
