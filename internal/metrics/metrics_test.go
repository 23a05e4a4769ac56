package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordingMethodsDoNotPanic(t *testing.T) {
	m := New()

	assert.NotPanics(t, func() {
		m.ObserveTick(0.012)
		m.ObserveSubsystem("economy", 0.003)
		m.RecordCommandApplied("adjust_treasury")
		m.RecordEffects(3)
		m.RecordSignalDelivered("entity_died")
		m.ObserveCascadeIterations(2)
		m.SetEntitiesAlive("person", 42)
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	m := New()
	m.RecordCommandApplied("adjust_treasury")
	assert.NotNil(t, m.Handler())
}
