// Package education drifts settlement literacy and individual education
// toward what local institutions can support: a library lifts the rate,
// its absence lets it slowly erode (spec §4.14).
//
// Grounded on original_source/src/sim/education.rs's library/literacy
// coupling; person-level education chases the home settlement's literacy
// rate the same way Reputation's prestige chases a target.
package education

import (
	"math/rand"
	"sort"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/scheduler"
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

const (
	libraryGrowthRate = 0.01
	noLibraryDecay    = 0.002
	personDriftRate   = 0.03
)

// System implements scheduler.System for literacy and education.
type System struct{}

func New() *System { return &System{} }

func (s *System) Name() string                   { return "education" }
func (s *System) Frequency() scheduler.Frequency { return scheduler.Monthly }

func (s *System) Update(w *world.World, rng *rand.Rand, app *command.Applicator) {
	settlements := w.LivingByKind(world.KindSettlement)
	sort.Slice(settlements, func(i, j int) bool { return settlements[i].ID < settlements[j].ID })

	libraries := settlementsWithLibrary(w)
	literacyByID := map[uint64]float64{}

	for _, e := range settlements {
		sd, ok := e.Data.(world.SettlementData)
		if !ok {
			continue
		}
		literacyByID[e.ID] = sd.LiteracyRate
		var delta float64
		if libraries[e.ID] {
			delta = libraryGrowthRate * (1 - sd.LiteracyRate)
		} else {
			delta = -noLibraryDecay * sd.LiteracyRate
		}
		if delta == 0 {
			continue
		}
		app.Enqueue(command.Bookkeeping(command.KindAdjustLiteracy).
			With(e.ID, world.RoleSubject).Set("delta", delta))
	}

	for _, e := range w.LivingByKind(world.KindPerson) {
		pd, ok := e.Data.(world.PersonData)
		if !ok {
			continue
		}
		rel, ok := w.ActiveRel(e.ID, world.RelLocatedIn)
		if !ok {
			continue
		}
		localLiteracy, ok := literacyByID[rel.Target]
		if !ok {
			continue
		}
		delta := (localLiteracy - pd.Education) * personDriftRate
		if delta == 0 {
			continue
		}
		app.Enqueue(command.Bookkeeping(command.KindAdjustEducation).
			With(e.ID, world.RoleSubject).Set("delta", delta))
	}
}

func settlementsWithLibrary(w *world.World) map[uint64]bool {
	present := map[uint64]bool{}
	for _, b := range w.LivingByKind(world.KindBuilding) {
		bd, ok := b.Data.(world.BuildingData)
		if ok && bd.Type == world.BuildingLibrary {
			present[bd.SettlementID] = true
		}
	}
	return present
}

// HandleSignals has nothing to react to: literacy and education both
// drift purely from state Update already reads fresh every tick.
func (s *System) HandleSignals(w *world.World, rng *rand.Rand, app *command.Applicator, signals []signal.Signal) {
}
