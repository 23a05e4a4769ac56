package scenario

import (
	"fmt"
	"math/rand"

	"github.com/historica/chronicle/internal/world"
)

// regionNames, settlementNames, and factionNames are small fixed pools a
// deterministic bootstrap draws from — not a real name generator (spec §6
// defers those to worldgen), just enough variety for a zero-configuration
// starting world.
var (
	regionNames     = []string{"Heartland", "Frostmere", "Sunreach", "Ashvale"}
	settlementNames = []string{"Ashford", "Brackwater", "Cindermoor", "Dunholt", "Eastgate", "Farrow"}
	factionNames    = []string{"Kingdom of Ash", "Brackwater Republic", "Cinder Theocracy"}
	governments     = []world.GovernmentType{world.GovernmentMonarchy, world.GovernmentRepublic, world.GovernmentTheocracy}
)

// Bootstrap builds a small, deterministic starting world from seed alone:
// a handful of regions, one faction per region with a ruling Person, and
// two settlements per faction. It stands in for the external worldgen
// collaborator (spec §6) when no worldgen output is supplied, mirroring
// the teacher's zero-configuration bootstrap path
// (pcg.DefaultBootstrapConfig + Bootstrap.GenerateCompleteGame in
// cmd/server/main.go) adapted from dungeon generation to a starting
// historical world.
func Bootstrap(seed uint64, start world.Timestamp) *Builder {
	rng := rand.New(rand.NewSource(int64(seed)))
	b := New(start)

	numFactions := len(factionNames)
	for i := 0; i < numFactions; i++ {
		region := b.Region(regionNames[i%len(regionNames)])
		faction := b.Faction(factionNames[i], governments[i%len(governments)])

		rulerBorn := world.Timestamp{Year: start.Year - uint32(30+rng.Intn(20)), Month: 1}
		settlementA := b.Settlement(fmt.Sprintf("%s (capital)", settlementNames[(2*i)%len(settlementNames)]), region, 400+uint32(rng.Intn(400)))
		b.JoinFaction(settlementA, faction)
		ruler := b.Person(fmt.Sprintf("Ruler of %s", factionNames[i]), rulerBorn, world.RoleRulerPerson, rulerTraits(rng), settlementA)
		b.SetLeader(faction, ruler)

		settlementB := b.Settlement(settlementNames[(2*i+1)%len(settlementNames)], region, 200+uint32(rng.Intn(300)))
		b.JoinFaction(settlementB, faction)
	}

	return b
}

func rulerTraits(rng *rand.Rand) []world.Trait {
	pool := []world.Trait{
		world.TraitAmbitious, world.TraitAggressive, world.TraitCautious, world.TraitHonorable,
		world.TraitCharismatic, world.TraitCunning, world.TraitRuthless, world.TraitContent,
		world.TraitPious, world.TraitReclusive,
	}
	a := pool[rng.Intn(len(pool))]
	b := pool[rng.Intn(len(pool))]
	if a == b {
		return []world.Trait{a}
	}
	return []world.Trait{a, b}
}
