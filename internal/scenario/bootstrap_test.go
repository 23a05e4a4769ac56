package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/historica/chronicle/internal/world"
)

func TestBootstrapIsDeterministicForSameSeed(t *testing.T) {
	a := Bootstrap(42, world.Timestamp{Year: 1, Month: 1})
	b := Bootstrap(42, world.Timestamp{Year: 1, Month: 1})

	factionsA := a.W.LivingByKind(world.KindFaction)
	factionsB := b.W.LivingByKind(world.KindFaction)
	assert.Equal(t, len(factionsA), len(factionsB))
	for i := range factionsA {
		assert.Equal(t, factionsA[i].Name, factionsB[i].Name)
		fdA := factionsA[i].Data.(world.FactionData)
		fdB := factionsB[i].Data.(world.FactionData)
		assert.Equal(t, fdA.LeaderPersonID, fdB.LeaderPersonID)
	}
}

func TestBootstrapProducesSettlementsAndAFactionEach(t *testing.T) {
	b := Bootstrap(7, world.Timestamp{Year: 1, Month: 1})
	factions := b.W.LivingByKind(world.KindFaction)
	assert.NotEmpty(t, factions)
	for _, f := range factions {
		fd := f.Data.(world.FactionData)
		assert.NotZero(t, fd.LeaderPersonID)
		assert.True(t, b.W.Alive(fd.LeaderPersonID))
	}
	assert.NotEmpty(t, b.W.LivingByKind(world.KindSettlement))
}
