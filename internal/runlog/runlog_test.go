package runlog

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewAssignsDistinctRunIDs(t *testing.T) {
	a := New(logrus.InfoLevel)
	b := New(logrus.InfoLevel)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestWithFieldsIncludesRunID(t *testing.T) {
	r := New(logrus.InfoLevel)
	entry := r.WithFields(logrus.Fields{"component": "scheduler"})
	assert.Equal(t, r.ID, entry.Data["run_id"])
	assert.Equal(t, "scheduler", entry.Data["component"])
}
