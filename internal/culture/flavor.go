package culture

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/mb-14/gomarkov"
)

const markovOrder = 2

// trainingCorpora holds a handful of short, archetype-flavored sentences
// per dominant trait. Real corpora would be far larger; this is enough
// to give gomarkov's order-2 chain something to recombine (spec's
// flavor-text component, not a language model).
var trainingCorpora = map[string][]string{
	"pious": {
		"the faithful gather to honor the sacred flame",
		"pilgrims seek blessing at the ancient shrine",
		"devotion to the unseen guides every harvest",
		"the sacred flame burns through the longest winter",
	},
	"aggressive": {
		"the warband marches beneath the iron banner",
		"steel and discipline forge the clan glory",
		"the iron banner never touches the ground",
		"every foe learns to fear the shieldwall",
	},
	"cunning": {
		"caravans carry silver through the mountain pass",
		"the guild ledger records every honest trade",
		"prosperity follows the merchant careful bargain",
		"silver flows where the mountain pass allows",
	},
	"cautious": {
		"the scribes copy each fragile scroll by candlelight",
		"knowledge kept in stone outlives its keepers",
		"the academy debates the nature of the stars",
		"fragile scroll and careful hand preserve the past",
	},
	"default": {
		"the people remember what the old stories taught",
		"custom binds the village tighter than any wall",
		"the old stories taught patience before glory",
		"every generation adds a verse to the same song",
	},
}

var (
	chainsOnce sync.Once
	chains     = map[string]*gomarkov.Chain{}
)

// seedChains trains one Markov chain per archetype, seeding the package
// global math/rand exactly once from the world's master seed. gomarkov
// carries no per-instance RNG of its own (the teacher's pkg/pcg/dialogue.go
// notes the same constraint), so determinism depends on this seeding
// happening once, before any Generate call, and on Generate only ever
// being invoked from the single simulation goroutine in command order.
func seedChains(masterSeed uint64) {
	chainsOnce.Do(func() {
		rand.Seed(int64(masterSeed))
		for archetype, corpus := range trainingCorpora {
			chain := gomarkov.NewChain(markovOrder)
			for _, sentence := range corpus {
				words := strings.Fields(sentence)
				if len(words) > markovOrder {
					chain.Add(words)
				}
			}
			chains[archetype] = chain
		}
	})
}

// flavorName generates a short phrase for the given archetype, falling
// back to the seed words themselves if generation fails or the archetype
// is unknown.
func flavorName(archetype string, seedWords []string) string {
	chain, ok := chains[archetype]
	if !ok {
		chain = chains["default"]
	}
	generated, err := chain.Generate(seedWords)
	if err != nil || generated == "" {
		return strings.Join(seedWords, " ")
	}
	return strings.Join(seedWords, " ") + " " + generated
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
