// Package runlog wires up the logrus logger a simulation run uses for its
// whole lifetime, tagging every line with a per-run correlation id the way
// the teacher tags every HTTP request (pkg/server/middleware.go,
// pkg/server/session.go), adapted from a per-request id to a per-run id
// since there is no request boundary in a batch simulation process.
package runlog

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Run bundles a logger pre-populated with this run's correlation id.
type Run struct {
	ID  string
	Log *logrus.Logger
}

// New creates a Run: a fresh UUID and a logrus.Logger configured at level,
// formatted as JSON (matching the teacher's production logging posture —
// pkg/server reads LOG_LEVEL but always emits structured fields, never
// plain text, to keep log lines machine-parseable).
func New(level logrus.Level) *Run {
	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.JSONFormatter{})
	return &Run{ID: uuid.New().String(), Log: log}
}

// WithFields returns an entry pre-tagged with this run's correlation id,
// ready for component/tick/year/month/entity_id/event_id fields to be
// layered on by the caller.
func (r *Run) WithFields(fields logrus.Fields) *logrus.Entry {
	tagged := logrus.Fields{"run_id": r.ID}
	for k, v := range fields {
		tagged[k] = v
	}
	return r.Log.WithFields(tagged)
}
