package command

import (
	"github.com/sirupsen/logrus"

	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

// Applicator is the single writer of structural world state. It drains a
// tick's queued Commands in FIFO order, and for each one: creates an Event
// (unless the command is pure bookkeeping), attaches participants, invokes
// the typed per-kind mutation, records effects, and publishes any signals
// that mutation produces (spec §4.2, §5).
//
// Grounded on original_source/src/ecs/commands/apply.rs's single apply_all
// function, restructured as a Go map of per-kind handler functions to match
// the teacher's handler-registry idiom in pkg/server/handlers.go.
type Applicator struct {
	World *world.World
	Bus   *signal.Bus
	Log   *logrus.Logger

	queue []Command
}

// NewApplicator builds an Applicator bound to a world and signal bus.
func NewApplicator(w *world.World, bus *signal.Bus, log *logrus.Logger) *Applicator {
	return &Applicator{World: w, Bus: bus, Log: log}
}

// Enqueue queues a command for the next Drain. Subsystems call this during
// Update and Reactions; nothing here mutates the world immediately.
func (a *Applicator) Enqueue(c Command) { a.queue = append(a.queue, c) }

// Pending reports whether any command awaits application.
func (a *Applicator) Pending() bool { return len(a.queue) > 0 }

// Drain applies every queued command in FIFO order and clears the queue.
// Called once per tick by the scheduler's PostUpdate phase. A command
// whose target preconditions are no longer satisfied (e.g. a settlement
// already destroyed by an earlier command this tick) is a class-2 silent
// no-op (spec §7): its Event is still recorded, but the handler returns
// without mutating anything else and without logging; it never panics.
func (a *Applicator) Drain() {
	queue := a.queue
	a.queue = nil
	for _, c := range queue {
		a.apply(c)
	}
}

func (a *Applicator) apply(c Command) {
	handler, ok := handlers[c.Kind]
	if !ok {
		a.Log.WithFields(logrus.Fields{"component": "applicator", "kind": c.Kind}).
			Warn("unhandled command kind, dropping")
		return
	}

	var eventID uint64
	if c.Bookkeeping {
		// Still anchor a real event so handlers can call
		// World.RecordFieldChange without effects silently vanishing;
		// AddBookkeepingEvent flags it so narrative streams skip it and
		// no participants are attached to it.
		eventID = a.World.AddBookkeepingEvent(c.EventKind, a.World.Current, c.Description)
	} else {
		if c.CausedBy != nil {
			eventID = a.World.AddCausedEvent(c.EventKind, a.World.Current, c.Description, *c.CausedBy)
		} else {
			eventID = a.World.AddEvent(c.EventKind, a.World.Current, c.Description)
		}
		for _, p := range c.Participants {
			a.World.AddParticipant(eventID, p.EntityID, p.Role)
		}
	}

	handler(a, c, eventID)
}

type handlerFunc func(a *Applicator, c Command, eventID uint64)

var handlers = map[CommandKind]handlerFunc{
	KindEndEntity:            applyEndEntity,
	KindRenameEntity:         applyRenameEntity,
	KindSetProperty:          applySetProperty,
	KindAddRelationship:      applyAddRelationship,
	KindEndRelationship:      applyEndRelationship,
	KindAddGraphRelationship: applyAddGraphRelationship,
	KindEndGraphRelationship: applyEndGraphRelationship,
}

// register adds (or overrides) a handler for kind. Domain files in this
// package call this from an init() to populate the dispatch table.
func register(kind CommandKind, fn handlerFunc) { handlers[kind] = fn }

func applyEndEntity(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	if !a.World.Alive(id) {
		return // class-2: already gone, silent no-op
	}
	a.World.EndEntity(id, a.World.Current, eventID)
	a.Bus.Publish(signal.New(signal.KindEntityDied, id))
}

func applyRenameEntity(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	if !a.World.Alive(id) {
		return
	}
	a.World.RenameEntity(id, c.Str("new_name"), eventID)
}

func applySetProperty(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	if _, ok := a.World.Entity(id); !ok {
		return
	}
	a.World.SetProperty(id, c.Str("field"), c.Any("value"), eventID)
}

func applyAddRelationship(a *Applicator, c Command, eventID uint64) {
	source := c.Entity(world.RoleSubject)
	target := c.Entity(world.RoleObject)
	kind := world.RelationshipKind(c.Str("kind"))
	if !a.World.Alive(source) || !a.World.Alive(target) {
		return
	}
	if kind.IsSingleton() && a.World.HasActiveRel(source, kind, target) {
		return
	}
	a.World.AddRelationship(source, target, kind, a.World.Current, eventID)
}

func applyEndRelationship(a *Applicator, c Command, eventID uint64) {
	source := c.Entity(world.RoleSubject)
	target := c.Entity(world.RoleObject)
	kind := world.RelationshipKind(c.Str("kind"))
	if !a.World.HasActiveRel(source, kind, target) {
		return
	}
	a.World.EndRelationship(source, target, kind, a.World.Current, eventID)
}

func applyAddGraphRelationship(a *Applicator, c Command, eventID uint64) {
	x := c.Entity(world.RoleSubject)
	y := c.Entity(world.RoleObject)
	kind := world.RelationshipKind(c.Str("kind"))
	if !a.World.Alive(x) || !a.World.Alive(y) || a.World.HasGraphRelationship(x, y, kind) {
		return
	}
	a.World.AddGraphRelationship(x, y, kind, a.World.Current, eventID)
}

func applyEndGraphRelationship(a *Applicator, c Command, eventID uint64) {
	x := c.Entity(world.RoleSubject)
	y := c.Entity(world.RoleObject)
	kind := world.RelationshipKind(c.Str("kind"))
	if !a.World.HasGraphRelationship(x, y, kind) {
		return
	}
	a.World.EndGraphRelationship(x, y, kind, a.World.Current, eventID)
}
