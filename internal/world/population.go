package world

import (
	"math/rand"

	"github.com/historica/chronicle/internal/stochastic"
)

// SubtractFraction removes a fraction f of each bracket (stochastically
// rounded so small counts are not biased to zero), returning the remaining
// breakdown and the removed breakdown. remaining.Total()+removed.Total()
// always equals the original Total() exactly, by construction: each
// removed cell is bounded by its source cell and the remainder is whatever
// is left over.
func (p PopulationBreakdown) SubtractFraction(f float64, rng *rand.Rand) (remaining, removed PopulationBreakdown) {
	src := p.asSlice()
	var remCells, outCells [16]uint32
	for i, v := range src {
		take := stochastic.Round(float64(v)*f, rng)
		if take > int(v) {
			take = int(v)
		}
		outCells[i] = uint32(take)
		remCells[i] = v - uint32(take)
	}
	return breakdownFromSlice(remCells), breakdownFromSlice(outCells)
}

// Add combines two breakdowns cell-wise.
func (p PopulationBreakdown) Add(other PopulationBreakdown) PopulationBreakdown {
	a, b := p.asSlice(), other.asSlice()
	var sum [16]uint32
	for i := range a {
		sum[i] = a[i] + b[i]
	}
	return breakdownFromSlice(sum)
}

// Cells exposes the 16 (sex x bracket) counts in bracket order for
// subsystems that need to iterate per-bracket (demographics, disease).
// Index i*2 is male, i*2+1 is female, for bracket i in
// {infant,child,young_adult,middle_age,elder,aged,ancient,centenarian}.
func (p PopulationBreakdown) Cells() [16]uint32 { return p.asSlice() }

// FromCells rebuilds a breakdown from the Cells() layout.
func FromCells(cells [16]uint32) PopulationBreakdown { return breakdownFromSlice(cells) }
