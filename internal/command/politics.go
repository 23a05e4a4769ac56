package command

import (
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

func init() {
	register(KindFormAlliance, applyFormAlliance)
	register(KindDissolveAlliance, applyDissolveAlliance)
	register(KindFormRivalry, applyFormRivalry)
	register(KindBetrayAlliance, applyBetrayAlliance)
	register(KindAttemptCoup, applyAttemptCoup)
	register(KindInstallLeader, applyInstallLeader)
	register(KindSplitFaction, applySplitFaction)
	register(KindAdjustGrievance, applyAdjustGrievance)
}

func applyFormAlliance(a *Applicator, c Command, eventID uint64) {
	x := c.Entity(world.RoleSubject)
	y := c.Entity(world.RoleObject)
	if !a.World.Alive(x) || !a.World.Alive(y) || a.World.HasGraphRelationship(x, y, world.RelAlly) {
		return
	}
	a.World.AddGraphRelationship(x, y, world.RelAlly, a.World.Current, eventID)
}

func applyDissolveAlliance(a *Applicator, c Command, eventID uint64) {
	x := c.Entity(world.RoleSubject)
	y := c.Entity(world.RoleObject)
	if !a.World.HasGraphRelationship(x, y, world.RelAlly) {
		return
	}
	a.World.EndGraphRelationship(x, y, world.RelAlly, a.World.Current, eventID)
}

func applyFormRivalry(a *Applicator, c Command, eventID uint64) {
	x := c.Entity(world.RoleSubject)
	y := c.Entity(world.RoleObject)
	if !a.World.Alive(x) || !a.World.Alive(y) || a.World.HasGraphRelationship(x, y, world.RelEnemy) {
		return
	}
	a.World.AddGraphRelationship(x, y, world.RelEnemy, a.World.Current, eventID)
}

// applyBetrayAlliance dissolves an existing alliance and applies the trust
// penalty spec §4.9 prescribes for the betraying faction.
func applyBetrayAlliance(a *Applicator, c Command, eventID uint64) {
	betrayer := c.Entity(world.RoleInstigator)
	victim := c.Entity(world.RoleSubject)
	if a.World.HasGraphRelationship(betrayer, victim, world.RelAlly) {
		a.World.EndGraphRelationship(betrayer, victim, world.RelAlly, a.World.Current, eventID)
	}
	e, fd, ok := withFaction(a, betrayer)
	if ok {
		old := fd.DiplomaticTrust
		fd.DiplomaticTrust *= 0.5
		e.Data = fd
		a.World.RecordFieldChange(eventID, betrayer, "diplomatic_trust", old, fd.DiplomaticTrust)
	}
	a.Bus.Publish(signal.New(signal.KindAllianceBetrayed, betrayer).With("victim_id", victim))
}

// applyAttemptCoup either installs the plotter as leader at a 30%
// legitimacy cost (success) or cuts the faction's stability by 20%
// (failure), per the already-rolled outcome.
func applyAttemptCoup(a *Applicator, c Command, eventID uint64) {
	factionID := c.Entity(world.RoleSubject)
	plotter := c.Entity(world.RoleInstigator)
	e, fd, ok := withFaction(a, factionID)
	if !ok {
		return
	}
	if c.Bool("succeeded") {
		old := fd.LeaderPersonID
		fd.LeaderPersonID = plotter
		fd.Legitimacy *= 0.7
		e.Data = fd
		a.World.RecordFieldChange(eventID, factionID, "leader_person_id", old, plotter)
		a.Bus.Publish(signal.New(signal.KindSuccessionCrisis, factionID).With("new_leader_id", plotter))
		return
	}
	oldStability := fd.Stability
	fd.Stability *= 0.8
	e.Data = fd
	a.World.RecordFieldChange(eventID, factionID, "stability", oldStability, fd.Stability)
	a.Bus.Publish(signal.New(signal.KindFailedCoup, factionID).With("plotter_id", plotter))
}

// applyInstallLeader handles ordinary succession (death, retirement) as
// distinct from a coup: no legitimacy penalty unless the seat was vacant.
func applyInstallLeader(a *Applicator, c Command, eventID uint64) {
	factionID := c.Entity(world.RoleSubject)
	newLeader := c.Entity(world.RoleObject)
	e, fd, ok := withFaction(a, factionID)
	if !ok {
		return
	}
	wasVacant := fd.LeaderPersonID == 0
	old := fd.LeaderPersonID
	fd.LeaderPersonID = newLeader
	if wasVacant {
		fd.Legitimacy *= 0.9
	}
	e.Data = fd
	a.World.RecordFieldChange(eventID, factionID, "leader_person_id", old, newLeader)
	if newLeader == 0 {
		a.Bus.Publish(signal.New(signal.KindLeaderVacancy, factionID))
	}
}

// applySplitFaction creates a breakaway faction and transfers the member
// settlements named in Data["defecting_settlement_ids"].
func applySplitFaction(a *Applicator, c Command, eventID uint64) {
	parentID := c.Entity(world.RoleSubject)
	if !a.World.Alive(parentID) {
		return
	}
	pe, pd, ok := withFaction(a, parentID)
	if !ok {
		return
	}
	data := world.FactionData{
		Government:      pd.Government,
		Stability:       pd.Stability * 0.6,
		Happiness:       0.6,
		Legitimacy:      0.4,
		DiplomaticTrust: 0.5,
		Tributes:        map[uint64]world.Tribute{},
		Grievances:      map[uint64]*world.Grievance{},
	}
	newID := a.World.AddEntity(world.KindFaction, c.Str("name"), &a.World.Current, data, eventID)
	a.World.AddParticipant(eventID, newID, world.RoleSubject)

	oldStability := pd.Stability
	pd.Stability *= 0.7
	pe.Data = pd
	a.World.RecordFieldChange(eventID, parentID, "stability", oldStability, pd.Stability)

	if ids, ok := c.Any("defecting_settlement_ids").([]uint64); ok {
		for _, sid := range ids {
			if rel, ok := a.World.ActiveRel(sid, world.RelMemberOf); ok && rel.Target == parentID {
				a.World.EndRelationship(sid, parentID, world.RelMemberOf, a.World.Current, eventID)
				a.World.AddRelationship(sid, newID, world.RelMemberOf, a.World.Current, eventID)
			}
		}
	}
	a.Bus.Publish(signal.New(signal.KindFactionSplit, parentID).With("breakaway_id", newID))
}

// applyAdjustGrievance accumulates or decays one faction's resentment
// toward another (bookkeeping, spec §4.9).
func applyAdjustGrievance(a *Applicator, c Command, eventID uint64) {
	holderID := c.Entity(world.RoleSubject)
	targetID := c.Entity(world.RoleObject)
	e, fd, ok := withFaction(a, holderID)
	if !ok {
		return
	}
	if fd.Grievances == nil {
		fd.Grievances = map[uint64]*world.Grievance{}
	}
	g, has := fd.Grievances[targetID]
	if !has {
		g = &world.Grievance{}
		fd.Grievances[targetID] = g
	}
	g.Severity += c.Float("delta")
	if g.Severity < 0 {
		g.Severity = 0
	}
	if g.Severity > 1 {
		g.Severity = 1
	}
	if g.Severity > g.Peak {
		g.Peak = g.Severity
	}
	if src := c.Str("source"); src != "" {
		g.Sources = append(g.Sources, src)
		if len(g.Sources) > 5 {
			g.Sources = g.Sources[len(g.Sources)-5:]
		}
	}
	g.Updated = a.World.Current
	e.Data = fd
}
