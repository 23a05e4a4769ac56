package command

import (
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

func init() {
	register(KindFormMercenaryCompany, applyFormMercenaryCompany)
	register(KindHireMercenary, applyHireMercenary)
	register(KindPayMercenary, applyPayMercenary)
	register(KindMercenaryDesert, applyMercenaryDesert)
	register(KindDisbandMercenaryCompany, applyDisbandMercenaryCompany)
}

// applyFormMercenaryCompany creates a faction of government
// MercenaryCompany, a common sink for demobilized soldiers (spec §4.6).
func applyFormMercenaryCompany(a *Applicator, c Command, eventID uint64) {
	data := world.FactionData{
		Government:      world.GovernmentMercenaryCompany,
		Stability:       0.5,
		Happiness:       0.5,
		Legitimacy:      0.5,
		DiplomaticTrust: 0.5,
		Tributes:        map[uint64]world.Tribute{},
		Grievances:      map[uint64]*world.Grievance{},
	}
	id := a.World.AddEntity(world.KindFaction, c.Str("name"), &a.World.Current, data, eventID)
	a.World.AddParticipant(eventID, id, world.RoleSubject)
	a.Bus.Publish(signal.New(signal.KindBanditGangFormed, id))
}

func applyHireMercenary(a *Applicator, c Command, eventID uint64) {
	armyID := c.Entity(world.RoleSubject)
	employerID := c.Entity(world.RoleObject)
	e, ad, ok := withArmy(a, armyID)
	if !ok || !a.World.Alive(employerID) {
		return
	}
	ad.IsMercenary = true
	e.Data = ad
	if companyID := ad.FactionID; companyID != 0 {
		ce, cd, ok := withFaction(a, companyID)
		if ok {
			cd.EmployerFactionID = employerID
			ce.Data = cd
		}
	}
	if a.World.HasActiveRel(armyID, world.RelHiredBy, employerID) {
		return
	}
	a.World.AddRelationship(armyID, employerID, world.RelHiredBy, a.World.Current, eventID)
	a.Bus.Publish(signal.New(signal.KindMercenaryHired, armyID).With("employer_id", employerID))
}

// applyPayMercenary transfers an upkeep payment from employer to
// mercenary company treasury; bookkeeping only.
func applyPayMercenary(a *Applicator, c Command, eventID uint64) {
	employerID := c.Entity(world.RoleSubject)
	companyID := c.Entity(world.RoleObject)
	ee, ed, ok := withFaction(a, employerID)
	if !ok {
		return
	}
	amount := c.Float("amount")
	if amount > ed.Treasury {
		amount = ed.Treasury
	}
	ed.Treasury -= amount
	ee.Data = ed

	ce, cd, ok := withFaction(a, companyID)
	if ok {
		cd.Treasury += amount
		ce.Data = cd
	}
}

func applyMercenaryDesert(a *Applicator, c Command, eventID uint64) {
	armyID := c.Entity(world.RoleSubject)
	employerID := c.Entity(world.RoleObject)
	if a.World.HasActiveRel(armyID, world.RelHiredBy, employerID) {
		a.World.EndRelationship(armyID, employerID, world.RelHiredBy, a.World.Current, eventID)
	}
	a.Bus.Publish(signal.New(signal.KindMercenaryDeserted, armyID).With("former_employer_id", employerID))
}

func applyDisbandMercenaryCompany(a *Applicator, c Command, eventID uint64) {
	companyID := c.Entity(world.RoleSubject)
	if !a.World.Alive(companyID) {
		return
	}
	a.World.EndEntity(companyID, a.World.Current, eventID)
	a.Bus.Publish(signal.New(signal.KindMercenaryContractEnded, companyID))
}
