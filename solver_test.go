/*
Copyright © 2026 the ionmc authors.
This file is part of ionmc.

ionmc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ionmc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ionmc.  If not, see <http://www.gnu.org/licenses/>.
*/

package ionmc

import (
	"math"
	"testing"

	"github.com/spatialmodel/ionmc/science/atomic"
)

// newSolverTestGrid builds a single-cell unit grid so that jfac reduces
// to Q/totweight.
func newSolverTestGrid(t *testing.T, n float64, ab atomic.Abundances) *RegularGrid {
	t.Helper()
	g, err := NewRegularGrid(Vector3{}, Vector3{1, 1, 1}, [3]int{1, 1, 1}, [3]bool{})
	if err != nil {
		t.Fatal(err)
	}
	err = g.Initialize(FullBlock(g), Homogeneous{NumberDensity: n, Temperature: 8000.}, ab)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestIonizationBalanceHydrogenOnly(t *testing.T) {
	const n = 1.e8
	g := newSolverTestGrid(t, n, atomic.Abundances{})
	rec := atomic.VernerRecombinationRates{}

	// choose the intensity so the balance sits at x = 0.5:
	// x/(1-x) = alpha*ne/j = 1 for j = alpha*n/2
	alpha := rec.RecombinationRate(atomic.HI, 8000.)
	c := g.Cell(0)
	c.MeanIntensity[atomic.HI] = alpha * n / 2.

	ic := &IonizationStateCalculator{
		Luminosity:     1.,
		Abundances:     atomic.Abundances{},
		Recombination:  rec,
		ChargeTransfer: atomic.KingdonFerlandChargeTransferRates{},
	}
	ic.Calculate(1., g, FullBlock(g))

	if x := c.IonFrac[atomic.HI]; math.Abs(x-0.5) > 1.e-3 {
		t.Errorf("neutral fraction %g, want 0.5 within 1e-3", x)
	}
	if c.Unconverged {
		t.Error("cell flagged unconverged")
	}
}

func TestIonizationBalanceUnlitCell(t *testing.T) {
	g := newSolverTestGrid(t, 1.e8, atomic.DefaultAbundances())
	ic := &IonizationStateCalculator{
		Luminosity:     1.,
		Abundances:     atomic.DefaultAbundances(),
		Recombination:  atomic.VernerRecombinationRates{},
		ChargeTransfer: atomic.KingdonFerlandChargeTransferRates{},
	}
	ic.Calculate(1., g, FullBlock(g))

	// a cell the radiation field never reached relaxes to neutral
	c := g.Cell(0)
	if x := c.IonFrac[atomic.HI]; x < 0.99 {
		t.Errorf("unlit cell neutral fraction %g, want near 1", x)
	}
	if x := c.IonFrac[atomic.HeI]; x < 0.99 {
		t.Errorf("unlit cell helium neutral fraction %g, want near 1", x)
	}
}

func TestIonizationBalanceElementSums(t *testing.T) {
	const n = 1.e8
	ab := atomic.DefaultAbundances()
	g := newSolverTestGrid(t, n, ab)
	rec := atomic.VernerRecombinationRates{}

	c := g.Cell(0)
	alpha := rec.RecombinationRate(atomic.HI, 8000.)
	for ion := atomic.Ion(0); ion < atomic.NumIons; ion++ {
		c.MeanIntensity[ion] = alpha * n / 2.
	}

	ic := &IonizationStateCalculator{
		Luminosity:     1.,
		Abundances:     ab,
		Recombination:  rec,
		ChargeTransfer: atomic.KingdonFerlandChargeTransferRates{},
	}
	ic.Calculate(1., g, FullBlock(g))

	// every tracked stage in [0,1] and per-element sums bounded by 1
	for e := atomic.Element(0); e < atomic.NumElements; e++ {
		var sum float64
		for _, ion := range e.Ions() {
			x := c.IonFrac[ion]
			if x < 0 || x > 1 {
				t.Errorf("%v fraction %g outside [0,1]", ion, x)
			}
			sum += x
		}
		if sum > 1.+1.e-6 {
			t.Errorf("element %v stage sum %g > 1", e, sum)
		}
	}
}

func TestTemperatureCalculator(t *testing.T) {
	const n = 1.e8
	ab := atomic.DefaultAbundances()
	rec := atomic.VernerRecombinationRates{}

	solve := func(heating float64) *Cell {
		g := newSolverTestGrid(t, n, ab)
		c := g.Cell(0)
		alpha := rec.RecombinationRate(atomic.HI, 8000.)
		c.MeanIntensity[atomic.HI] = alpha * n
		c.MeanIntensity[atomic.HeI] = alpha * n / 10.
		c.HeatingH = heating
		tc := &TemperatureCalculator{
			Luminosity:     1.,
			PAHFac:         1.,
			Abundances:     ab,
			LineCooling:    atomic.TabulatedLineCoolingData{},
			Recombination:  rec,
			ChargeTransfer: atomic.KingdonFerlandChargeTransferRates{},
		}
		tc.Calculate(1., g, FullBlock(g))
		return c
	}

	// a tiny heating integral: cooling wins and the cell settles at
	// the bracket floor
	c1 := solve(1.e-2)
	if c1.Temperature < minSolverTemp || c1.Temperature > 2.e3 {
		t.Errorf("weakly heated cell at %g K, want near the %g K floor",
			c1.Temperature, minSolverTemp)
	}
	if c1.PHeEm[3] != 1. {
		t.Error("reemission probabilities not refreshed after the temperature solve")
	}
	c1.CheckInvariants()

	// an enormous heating integral drives the cell hot
	c2 := solve(1.e12)
	if c2.Temperature <= 10.*c1.Temperature {
		t.Errorf("temperature does not grow with heating: %g -> %g",
			c1.Temperature, c2.Temperature)
	}
	if c2.Temperature > maxSolverTemp {
		t.Errorf("temperature %g above the solver ceiling", c2.Temperature)
	}
	c2.CheckInvariants()
}
