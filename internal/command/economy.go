package command

import (
	"github.com/historica/chronicle/internal/signal"
	"github.com/historica/chronicle/internal/world"
)

func init() {
	register(KindAdjustTreasury, applyAdjustTreasury)
	register(KindCollectTaxes, applyCollectTaxes)
	register(KindEstablishTradeRoute, applyEstablishTradeRoute)
	register(KindSeverTradeRoute, applySeverTradeRoute)
	register(KindSetProsperity, applySetProsperity)
	register(KindPayTribute, applyPayTribute)
	register(KindTributeDefaulted, applyTributeDefaulted)
	register(KindTributeEnded, applyTributeEnded)
	register(KindUpgradeFortification, applyUpgradeFortification)
}

func withFaction(a *Applicator, id uint64) (*world.Entity, world.FactionData, bool) {
	e, ok := a.World.Entity(id)
	if !ok || !e.Alive() {
		return nil, world.FactionData{}, false
	}
	fd, ok := e.Data.(world.FactionData)
	return e, fd, ok
}

func withSettlement(a *Applicator, id uint64) (*world.Entity, world.SettlementData, bool) {
	e, ok := a.World.Entity(id)
	if !ok || !e.Alive() {
		return nil, world.SettlementData{}, false
	}
	sd, ok := e.Data.(world.SettlementData)
	return e, sd, ok
}

// applyAdjustTreasury applies a signed delta (positive or negative) to a
// faction's treasury, clamped at zero, and signals depletion.
func applyAdjustTreasury(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	e, fd, ok := withFaction(a, id)
	if !ok {
		return
	}
	old := fd.Treasury
	fd.Treasury += c.Float("delta")
	if fd.Treasury < 0 {
		fd.Treasury = 0
	}
	e.Data = fd
	a.World.RecordFieldChange(eventID, id, "treasury", old, fd.Treasury)
	if old > 0 && fd.Treasury == 0 {
		a.Bus.Publish(signal.New(signal.KindTreasuryDepleted, id))
	}
}

// applyCollectTaxes adds a settlement's already-computed tax yield to its
// governing faction's treasury. The settlement itself is not changed.
func applyCollectTaxes(a *Applicator, c Command, eventID uint64) {
	settlementID := c.Entity(world.RoleSubject)
	factionID := c.Entity(world.RoleObject)
	_, _, ok := withSettlement(a, settlementID)
	if !ok {
		return
	}
	fe, fd, ok := withFaction(a, factionID)
	if !ok {
		return
	}
	amount := c.Float("amount")
	old := fd.Treasury
	fd.Treasury += amount
	fe.Data = fd
	a.World.RecordFieldChange(eventID, factionID, "treasury", old, fd.Treasury)
}

func applyEstablishTradeRoute(a *Applicator, c Command, eventID uint64) {
	x := c.Entity(world.RoleSubject)
	y := c.Entity(world.RoleObject)
	if !a.World.Alive(x) || !a.World.Alive(y) {
		return
	}
	if a.World.HasActiveRel(x, world.RelTradeRoute, y) {
		return
	}
	a.World.AddRelationship(x, y, world.RelTradeRoute, a.World.Current, eventID)
	a.World.AddRelationship(y, x, world.RelTradeRoute, a.World.Current, eventID)
	a.Bus.Publish(signal.New(signal.KindTradeRouteEstablished, x).With("partner_id", y))
}

func applySeverTradeRoute(a *Applicator, c Command, eventID uint64) {
	x := c.Entity(world.RoleSubject)
	y := c.Entity(world.RoleObject)
	if a.World.HasActiveRel(x, world.RelTradeRoute, y) {
		a.World.EndRelationship(x, y, world.RelTradeRoute, a.World.Current, eventID)
	}
	if a.World.HasActiveRel(y, world.RelTradeRoute, x) {
		a.World.EndRelationship(y, x, world.RelTradeRoute, a.World.Current, eventID)
	}
	a.Bus.Publish(signal.New(signal.KindTradeRouteSevered, x).With("partner_id", y))
}

// applySetProsperity overwrites a settlement's prosperity, clamped to
// spec's [0.05, 0.95] band.
func applySetProsperity(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	e, sd, ok := withSettlement(a, id)
	if !ok {
		return
	}
	v := c.Float("value")
	if v < 0.05 {
		v = 0.05
	}
	if v > 0.95 {
		v = 0.95
	}
	old := sd.Prosperity
	sd.Prosperity = v
	e.Data = sd
	a.World.RecordFieldChange(eventID, id, "prosperity", old, v)
}

// applyPayTribute moves one year's tribute payment from payer to payee
// and counts down the obligation's remaining term, ending it once the
// term is spent.
func applyPayTribute(a *Applicator, c Command, eventID uint64) {
	payer := c.Entity(world.RoleSubject)
	payee := c.Entity(world.RoleObject)
	pe, pd, ok := withFaction(a, payer)
	if !ok {
		return
	}
	t, has := pd.Tributes[payee]
	if !has {
		return
	}
	amount := t.Amount
	if amount > pd.Treasury {
		amount = pd.Treasury
	}
	oldTreasury := pd.Treasury
	pd.Treasury -= amount

	t.YearsRemaining--
	if t.YearsRemaining <= 0 {
		delete(pd.Tributes, payee)
	} else {
		pd.Tributes[payee] = t
	}
	pe.Data = pd
	a.World.RecordFieldChange(eventID, payer, "treasury", oldTreasury, pd.Treasury)

	ye, yd, ok := withFaction(a, payee)
	if ok {
		oldPayeeTreasury := yd.Treasury
		yd.Treasury += amount
		ye.Data = yd
		a.World.RecordFieldChange(eventID, payee, "treasury", oldPayeeTreasury, yd.Treasury)
	}
}

// applyTributeDefaulted removes a tribute obligation after the payer fails
// to pay, penalizing legitimacy.
func applyTributeDefaulted(a *Applicator, c Command, eventID uint64) {
	payer := c.Entity(world.RoleSubject)
	payee := c.Entity(world.RoleObject)
	e, fd, ok := withFaction(a, payer)
	if !ok {
		return
	}
	delete(fd.Tributes, payee)
	old := fd.Legitimacy
	fd.Legitimacy *= 0.85
	e.Data = fd
	a.World.RecordFieldChange(eventID, payer, "legitimacy", old, fd.Legitimacy)
}

func applyTributeEnded(a *Applicator, c Command, eventID uint64) {
	payer := c.Entity(world.RoleSubject)
	payee := c.Entity(world.RoleObject)
	e, fd, ok := withFaction(a, payer)
	if !ok {
		return
	}
	delete(fd.Tributes, payee)
	e.Data = fd
}

// applyUpgradeFortification bumps a settlement's fortification level by
// one, capped at 5, consuming faction treasury via a preceding
// AdjustTreasury command emitted by the same subsystem tick.
func applyUpgradeFortification(a *Applicator, c Command, eventID uint64) {
	id := c.Entity(world.RoleSubject)
	e, sd, ok := withSettlement(a, id)
	if !ok {
		return
	}
	if sd.FortificationLevel >= 5 {
		return
	}
	old := sd.FortificationLevel
	sd.FortificationLevel++
	e.Data = sd
	a.World.RecordFieldChange(eventID, id, "fortification_level", old, sd.FortificationLevel)
}
