// Package worldlog implements the runtime's output contract (spec §6): a
// flush of the World's entity/event/effect/relationship state to four (plus
// relationships, five total) JSONL streams, one record per line, snake_case
// tags, empty/null optional fields omitted.
//
// Grounded on pkg/persistence/filestore.go's atomic-write + directory-
// management idiom and pkg/persistence/atomic.go's temp-file-then-rename
// mechanism, generalized from a single YAML file per save to one JSONL file
// per stream. Flush is a one-shot batch write at the end of a run (or at a
// checkpoint boundary), not an incremental append, so the per-process file
// locking pkg/persistence/lock.go adds for concurrent saves has no
// analog here: a single goroutine produces the whole world, once.
package worldlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/historica/chronicle/internal/world"
)

// entityRecord is entities.jsonl's line shape.
type entityRecord struct {
	ID         uint64           `json:"id"`
	Kind       world.EntityKind `json:"kind"`
	Name       string           `json:"name"`
	Origin     *world.Timestamp `json:"origin,omitempty"`
	End        *world.Timestamp `json:"end,omitempty"`
	Properties map[string]any   `json:"properties,omitempty"`
	Data       world.EntityData `json:"data,omitempty"`
}

// eventRecord is events.jsonl's line shape.
type eventRecord struct {
	ID          uint64          `json:"id"`
	Kind        world.EventKind `json:"kind"`
	Timestamp   world.Timestamp `json:"timestamp"`
	Description string          `json:"description"`
	CausedBy    *uint64         `json:"caused_by,omitempty"`
	Bookkeeping bool            `json:"bookkeeping,omitempty"`
}

// participantRecord is event_participants.jsonl's line shape.
type participantRecord struct {
	EventID  uint64               `json:"event_id"`
	EntityID uint64               `json:"entity_id"`
	Role     world.ParticipantRole `json:"role"`
}

// changeRecord is the tagged StateChange variant embedded in an effect
// record. Only the fields relevant to Type are populated, matching
// world.Change's flattened-struct idiom.
type changeRecord struct {
	Type world.ChangeType `json:"type"`

	CreatedKind world.EntityKind `json:"created_kind,omitempty"`
	CreatedName string           `json:"created_name,omitempty"`

	OldName string `json:"old_name,omitempty"`
	NewName string `json:"new_name,omitempty"`

	RelTarget uint64                 `json:"rel_target,omitempty"`
	RelKind   world.RelationshipKind `json:"rel_kind,omitempty"`

	Field    string `json:"field,omitempty"`
	OldValue any    `json:"old_value,omitempty"`
	NewValue any    `json:"new_value,omitempty"`
}

// effectRecord is event_effects.jsonl's line shape.
type effectRecord struct {
	EventID  uint64       `json:"event_id"`
	EntityID uint64       `json:"entity_id"`
	Effect   changeRecord `json:"effect"`
}

// relationshipRecord is relationships.jsonl's line shape.
type relationshipRecord struct {
	SourceEntityID uint64                 `json:"source_entity_id"`
	TargetEntityID uint64                 `json:"target_entity_id"`
	Kind           world.RelationshipKind `json:"kind"`
	Start          world.Timestamp        `json:"start"`
	End            *world.Timestamp       `json:"end,omitempty"`
}

// Flush serializes every entity, event, participant, effect, and
// relationship in w to dir, writing five JSONL files atomically.
func Flush(w *world.World, dir string, log *logrus.Logger) error {
	log.WithFields(logrus.Fields{"component": "worldlog", "dir": dir}).Info("flushing world log")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	if err := writeJSONL(filepath.Join(dir, "entities.jsonl"), entityRecords(w)); err != nil {
		return err
	}
	if err := writeJSONL(filepath.Join(dir, "events.jsonl"), eventRecords(w)); err != nil {
		return err
	}
	if err := writeJSONL(filepath.Join(dir, "event_participants.jsonl"), participantRecords(w)); err != nil {
		return err
	}
	if err := writeJSONL(filepath.Join(dir, "event_effects.jsonl"), effectRecords(w)); err != nil {
		return err
	}
	if err := writeJSONL(filepath.Join(dir, "relationships.jsonl"), relationshipRecords(w)); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{"component": "worldlog", "dir": dir}).Info("world log flushed")
	return nil
}

func entityRecords(w *world.World) []entityRecord {
	entities := w.AllEntities()
	out := make([]entityRecord, 0, len(entities))
	for _, e := range entities {
		out = append(out, entityRecord{
			ID: e.ID, Kind: e.Kind, Name: e.Name, Origin: e.Origin, End: e.End,
			Properties: e.Properties, Data: e.Data,
		})
	}
	return out
}

func eventRecords(w *world.World) []eventRecord {
	events := w.Events()
	out := make([]eventRecord, 0, len(events))
	for _, ev := range events {
		out = append(out, eventRecord{
			ID: ev.ID, Kind: ev.Kind, Timestamp: ev.Timestamp, Description: ev.Description,
			CausedBy: ev.CausedBy, Bookkeeping: ev.Bookkeeping,
		})
	}
	return out
}

func participantRecords(w *world.World) []participantRecord {
	parts := w.Participants()
	out := make([]participantRecord, 0, len(parts))
	for _, p := range parts {
		out = append(out, participantRecord{EventID: p.EventID, EntityID: p.EntityID, Role: p.Role})
	}
	return out
}

func effectRecords(w *world.World) []effectRecord {
	effects := w.Effects()
	out := make([]effectRecord, 0, len(effects))
	for _, eff := range effects {
		out = append(out, effectRecord{
			EventID: eff.EventID, EntityID: eff.EntityID,
			Effect: changeRecord{
				Type: eff.Change.Type, CreatedKind: eff.Change.CreatedKind, CreatedName: eff.Change.CreatedName,
				OldName: eff.Change.OldName, NewName: eff.Change.NewName,
				RelTarget: eff.Change.RelTarget, RelKind: eff.Change.RelKind,
				Field: eff.Change.Field, OldValue: eff.Change.OldValue, NewValue: eff.Change.NewValue,
			},
		})
	}
	return out
}

func relationshipRecords(w *world.World) []relationshipRecord {
	rels := append(w.AllStructuralRelationships(), w.AllGraphRelationships()...)
	out := make([]relationshipRecord, 0, len(rels))
	for _, r := range rels {
		out = append(out, relationshipRecord{
			SourceEntityID: r.Source, TargetEntityID: r.Target, Kind: r.Kind, Start: r.Start, End: r.End,
		})
	}
	return out
}

func writeJSONL[T any](path string, records []T) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode record for %s: %w", path, err)
		}
	}
	return atomicWriteFile(path, buf.Bytes(), 0644)
}

// atomicWriteFile writes data to a file via a temp-file-then-rename, the
// same mechanism as pkg/persistence/atomic.go's AtomicWriteFile, trimmed of
// its cross-process file locking: a world flush is a single batch write
// from the one simulation goroutine, not a concurrently-saved game file.
func atomicWriteFile(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tmpFile = nil

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
