package conflict

import (
	"math/rand"

	"github.com/historica/chronicle/internal/command"
	"github.com/historica/chronicle/internal/world"
)

const mercenaryUpkeepFraction = 0.02

// payMercenaries charges every faction currently employing a mercenary
// company its monthly upkeep (2% of the company's treasury, at least 1).
// In the first month the employer cannot cover it, every army of the
// company deserts; no loyalty score or count of unpaid months is kept.
// Called from Update alongside battle/siege resolution since
// mercenary retention is conflict's concern, not economy's (spec §4.9).
func payMercenaries(w *world.World, rng *rand.Rand, app *command.Applicator) {
	for _, e := range w.LivingByKind(world.KindFaction) {
		fd, ok := e.Data.(world.FactionData)
		if !ok || fd.Government != world.GovernmentMercenaryCompany || fd.EmployerFactionID == 0 {
			continue
		}
		employer, ok := w.Entity(fd.EmployerFactionID)
		if !ok {
			continue
		}
		ed, ok := employer.Data.(world.FactionData)
		if !ok {
			continue
		}
		upkeep := fd.Treasury * mercenaryUpkeepFraction
		if upkeep < 1 {
			upkeep = 1
		}
		if ed.Treasury < upkeep {
			desertingArmies(w, e.ID, fd.EmployerFactionID, app)
			continue
		}
		app.Enqueue(command.Bookkeeping(command.KindPayMercenary).
			With(fd.EmployerFactionID, world.RoleSubject).With(e.ID, world.RoleObject).
			Set("amount", upkeep))
	}
}

func desertingArmies(w *world.World, companyID, employerID uint64, app *command.Applicator) {
	for _, a := range w.LivingByKind(world.KindArmy) {
		ad, ok := a.Data.(world.ArmyData)
		if !ok || ad.FactionID != companyID {
			continue
		}
		app.Enqueue(command.New(command.KindMercenaryDesert, "mercenary_deserted", "unpaid mercenaries desert").
			With(a.ID, world.RoleSubject).With(employerID, world.RoleObject))
	}
}
