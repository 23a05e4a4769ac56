package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/historica/chronicle/internal/world"
)

func TestBuilderAssemblesAConnectedWorld(t *testing.T) {
	b := New(world.Timestamp{Year: 1, Month: 1})

	region := b.Region("Heartland")
	faction := b.Faction("Kingdom of Ash", world.GovernmentMonarchy)
	settlement := b.Settlement("Ashford", region, 500)
	b.JoinFaction(settlement, faction)
	ruler := b.Person("Queen Mara", world.Timestamp{Year: -30, Month: 1}, world.RoleRulerPerson, nil, settlement)
	b.SetLeader(faction, ruler)
	b.Building("Grand Library", world.BuildingLibrary, 2, settlement)
	b.River("Ashwater", region)

	fd := b.W.MustEntity(faction).Data.(world.FactionData)
	require.Equal(t, ruler, fd.LeaderPersonID)

	sd := b.W.MustEntity(settlement).Data.(world.SettlementData)
	assert.EqualValues(t, 500, sd.Population)
	assert.EqualValues(t, 500, sd.Breakdown.Total())

	rel, ok := b.W.ActiveRel(settlement, world.RelMemberOf)
	require.True(t, ok)
	assert.Equal(t, faction, rel.Target)
}

func TestAllyAndAtWarAreMutualGraphEdges(t *testing.T) {
	b := New(world.Timestamp{Year: 1, Month: 1})
	a := b.Faction("A", world.GovernmentTribal)
	c := b.Faction("C", world.GovernmentTribal)
	b.Ally(a, c)
	assert.True(t, b.W.HasGraphRelationship(a, c, world.RelAlly))
	assert.True(t, b.W.HasGraphRelationship(c, a, world.RelAlly))
}
