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
	"fmt"
	"math"

	"github.com/spatialmodel/ionmc/science/atomic"
)

// Cell holds the gas state and the radiation accumulators of one grid
// cell.
type Cell struct {
	Midpoint Vector3 `desc:"Cell midpoint" units:"m"`
	Volume   float64 `desc:"Cell volume" units:"m³"`
	Index    int     // cell index within the grid

	NumberDensity float64 `desc:"Hydrogen number density" units:"m⁻³"`
	Temperature   float64 `desc:"Gas temperature" units:"K"`

	// IonFrac holds, for each tracked ion, the fraction of its element
	// that is in that ionization stage. The fraction of the stage above
	// the highest tracked one is the remainder.
	IonFrac [atomic.NumIons]float64 `desc:"Ionic fractions" units:"dimensionless"`

	// MeanIntensity accumulates sigma_i(nu)*pathlength*weight over all
	// packet crossings during one outer iteration.
	MeanIntensity [atomic.NumIons]float64 `desc:"Mean intensity integrals" units:"m³/s"`
	// HeatingH and HeatingHe accumulate the excess-energy integrals
	// (nu - nu_ion)*sigma*pathlength*weight for the two heating species.
	HeatingH  float64 `desc:"Hydrogen heating integral" units:"m³ Hz/s"`
	HeatingHe float64 `desc:"Helium heating integral" units:"m³ Hz/s"`

	// PHion is the probability that a hydrogen-absorbed photon is
	// reemitted as a hydrogen Lyman-continuum photon.
	PHion float64 `desc:"H reemission probability" units:"dimensionless"`
	// PHeEm are the cumulative probabilities of the four helium
	// reemission channels.
	PHeEm [4]float64 `desc:"Cumulative He reemission probabilities" units:"dimensionless"`

	// Unconverged is set when the per-cell equilibrium solve did not
	// reach its tolerance; the last iterate is retained.
	Unconverged bool
}

// SetReemissionProbabilities recomputes PHion and PHeEm for temperature
// T [K]. It must be called every time the cell temperature changes.
func (c *Cell) SetReemissionProbabilities(T float64) {
	t4 := T * 1.e-4
	alpha1H := 1.58e-13 * math.Pow(t4, -0.53)
	alphaA := 4.18e-13 * math.Pow(t4, -0.7)
	c.PHion = alpha1H / alphaA

	alpha1He := 1.54e-13 * math.Pow(t4, -0.486)
	alpha2tS := 2.1e-13 * math.Pow(t4, -0.381)
	alpha2sS := 2.06e-14 * math.Pow(t4, -0.451)
	alpha2sP := 4.17e-14 * math.Pow(t4, -0.695)
	// Summing the four channels instead of using a literature total
	// makes the cumulative end at 1; the last entry is set to exactly 1
	// so that round-off cannot leave it just below.
	alphaHe := alpha1He + alpha2tS + alpha2sS + alpha2sP

	c.PHeEm[0] = alpha1He / alphaHe
	c.PHeEm[1] = c.PHeEm[0] + alpha2tS/alphaHe
	c.PHeEm[2] = c.PHeEm[1] + alpha2sS/alphaHe
	c.PHeEm[3] = 1.
}

// ResetAccumulators zeroes the radiation accumulators for a new outer
// iteration.
func (c *Cell) ResetAccumulators() {
	for i := range c.MeanIntensity {
		c.MeanIntensity[i] = 0.
	}
	c.HeatingH = 0.
	c.HeatingHe = 0.
}

// CheckInvariants panics when the cell state violates a physical
// invariant. It is a programming error for a solver or transport pass to
// leave a cell in such a state.
func (c *Cell) CheckInvariants() {
	if c.NumberDensity < 0. {
		panic(fmt.Sprintf("ionmc: cell %d has negative density %g", c.Index, c.NumberDensity))
	}
	if c.Temperature <= 0. {
		panic(fmt.Sprintf("ionmc: cell %d has non-positive temperature %g", c.Index, c.Temperature))
	}
	for e := atomic.Element(0); e < atomic.NumElements; e++ {
		var sum float64
		for _, ion := range e.Ions() {
			x := c.IonFrac[ion]
			if x < 0. || x > 1. {
				panic(fmt.Sprintf("ionmc: cell %d has ion fraction %v = %g outside [0,1]",
					c.Index, ion, x))
			}
			sum += x
		}
		if sum > 1.+1.e-6 {
			panic(fmt.Sprintf("ionmc: cell %d element %v stage fractions sum to %g > 1",
				c.Index, e, sum))
		}
	}
	for i, j := range c.MeanIntensity {
		if j < 0. {
			panic(fmt.Sprintf("ionmc: cell %d has negative intensity accumulator %v = %g",
				c.Index, atomic.Ion(i), j))
		}
	}
}
