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

	"github.com/spatialmodel/ionmc/science/atomic"
)

const (
	// bounds of the thermal balance bracket [K]
	minSolverTemp = 500.
	maxSolverTemp = 1.e6

	// per-cell iteration limits and tolerances
	maxIonIterations  = 20
	ionTolerance      = 1.e-4
	maxTempIterations = 50
	tempTolerance     = 1.e-3

	// ionic fractions are clamped into [minIonFrac, 1]
	minIonFrac = 1.e-20
)

func clampFrac(x float64) float64 {
	if x < minIonFrac {
		return minIonFrac
	}
	if x > 1. {
		return 1.
	}
	return x
}

// IonizationStateCalculator solves the per-cell ionization balance at
// fixed temperature from the accumulated mean intensity integrals.
type IonizationStateCalculator struct {
	// Luminosity is the total source luminosity Q [s⁻¹].
	Luminosity float64
	// Abundances are the element abundances.
	Abundances atomic.Abundances
	// Recombination and ChargeTransfer supply the rate coefficients.
	Recombination  atomic.RecombinationRates
	ChargeTransfer atomic.ChargeTransferRates
}

// Calculate solves the ionization balance of every cell in block.
// totweight is the total emitted packet weight of the iteration.
func (ic *IonizationStateCalculator) Calculate(totweight float64, g Grid, block CellBlock) {
	for i := block.First; i < block.Last; i++ {
		c := g.Cell(i)
		c.Unconverged = false
		if c.Volume <= 0 {
			panic("ionmc: cell with non-positive volume")
		}
		ic.solveCell(c, ic.Luminosity/totweight/c.Volume)
		c.CheckInvariants()
	}
}

// electronDensity returns the electron density [m⁻³] under local charge
// neutrality, counting hydrogen, helium and the metal stages.
func (ic *IonizationStateCalculator) electronDensity(c *Cell) float64 {
	n := c.NumberDensity
	ne := n * (1. - c.IonFrac[atomic.HI])
	ne += n * ic.Abundances.AHe * (1. - c.IonFrac[atomic.HeI])
	for e := atomic.C; e < atomic.NumElements; e++ {
		a := ic.Abundances.Abundance(e)
		ions := e.Ions()
		// stage k of an element has freed k more electrons than its
		// lowest tracked stage
		var sum float64
		for k, ion := range ions {
			if k == 0 {
				continue
			}
			sum += float64(k) * c.IonFrac[ion]
		}
		ne += n * a * sum
	}
	if ne < 0 {
		ne = 0
	}
	return ne
}

// solveCell solves the ionization balance of one cell at its current
// temperature. jfac is Q/(totweight*volume); multiplying it with a mean
// intensity integral gives the photoionization rate per atom [s⁻¹].
func (ic *IonizationStateCalculator) solveCell(c *Cell, jfac float64) {
	T := c.Temperature
	n := c.NumberDensity
	if n <= 0 {
		return
	}

	jH := jfac * c.MeanIntensity[atomic.HI]
	jHe := jfac * c.MeanIntensity[atomic.HeI]
	alphaH := ic.Recombination.RecombinationRate(atomic.HI, T)
	alphaHe := ic.Recombination.RecombinationRate(atomic.HeI, T)

	// Iterate the neutral fractions against the electron density with
	// under-relaxation: x/(1-x) = alpha*ne/j.
	xH := c.IonFrac[atomic.HI]
	xHe := c.IonFrac[atomic.HeI]
	converged := false
	for it := 0; it < maxIonIterations; it++ {
		ne := n * ((1. - xH) + ic.Abundances.AHe*(1.-xHe))
		var xHnew, xHenew float64
		if jH > 0 {
			r := alphaH * ne / jH
			xHnew = r / (1. + r)
		} else {
			xHnew = 1.
		}
		if jHe > 0 {
			r := alphaHe * ne / jHe
			xHenew = r / (1. + r)
		} else {
			xHenew = 1.
		}
		xHnew = 0.5 * (xH + xHnew)
		xHenew = 0.5 * (xHe + xHenew)
		dH := math.Abs(xHnew - xH)
		dHe := math.Abs(xHenew - xHe)
		xH, xHe = xHnew, xHenew
		if dH < ionTolerance && dHe < ionTolerance {
			converged = true
			break
		}
	}
	if !converged {
		c.Unconverged = true
	}
	c.IonFrac[atomic.HI] = clampFrac(xH)
	c.IonFrac[atomic.HeI] = clampFrac(xHe)

	ne := n * ((1. - xH) + ic.Abundances.AHe*(1.-xHe))
	nH0 := n * xH
	nHe0 := n * ic.Abundances.AHe * xHe
	ic.solveMetals(c, jfac, ne, nH0, nHe0)
}

// solveMetals solves the stage balance of the heavier elements. The
// ratio of consecutive stages is the photoionization rate of the lower
// stage over its recombination rate, which couples to the electron
// density and, through charge transfer, to the neutral hydrogen and
// helium densities.
func (ic *IonizationStateCalculator) solveMetals(c *Cell, jfac, ne, nH0, nHe0 float64) {
	T := c.Temperature
	for e := atomic.C; e < atomic.NumElements; e++ {
		ions := e.Ions()
		fr := make([]float64, len(ions)+1)
		fr[0] = 1.
		for k, ion := range ions {
			j := jfac * c.MeanIntensity[ion]
			denom := ne*ic.Recombination.RecombinationRate(ion, T) +
				nH0*ic.ChargeTransfer.TransferRateH(ion, T) +
				nHe0*ic.ChargeTransfer.TransferRateHe(ion, T)
			var r float64
			switch {
			case denom > 0:
				r = j / denom
			case j > 0:
				r = 1.e20
			}
			fr[k+1] = fr[k] * r
			if fr[k+1] > 1.e20 {
				// rescale to keep the products finite
				for l := 0; l <= k+1; l++ {
					fr[l] /= fr[k+1]
				}
			}
		}
		var tot float64
		for _, f := range fr {
			tot += f
		}
		for k, ion := range ions {
			c.IonFrac[ion] = clampFrac(fr[k] / tot)
		}
	}
}

// TemperatureCalculator solves the coupled thermal and ionization
// balance of each cell from the accumulated intensity and heating
// integrals.
type TemperatureCalculator struct {
	// Luminosity is the total source luminosity Q [s⁻¹].
	Luminosity float64
	// PAHFac scales the PAH photoelectric heating contribution.
	PAHFac float64
	// Abundances are the element abundances.
	Abundances atomic.Abundances
	// LineCooling, Recombination and ChargeTransfer supply the cooling
	// and rate coefficients.
	LineCooling    atomic.LineCoolingData
	Recombination  atomic.RecombinationRates
	ChargeTransfer atomic.ChargeTransferRates
}

// Calculate solves the thermal balance of every cell in block, then
// recomputes its ionization state and reemission probabilities at the
// new temperature.
func (tc *TemperatureCalculator) Calculate(totweight float64, g Grid, block CellBlock) {
	ion := &IonizationStateCalculator{
		Luminosity:     tc.Luminosity,
		Abundances:     tc.Abundances,
		Recombination:  tc.Recombination,
		ChargeTransfer: tc.ChargeTransfer,
	}
	for i := block.First; i < block.Last; i++ {
		c := g.Cell(i)
		c.Unconverged = false
		tc.solveCell(c, ion, tc.Luminosity/totweight/c.Volume)
		c.CheckInvariants()
	}
}

// netBalance sets the cell temperature to T, re-solves the ionization
// balance there, and returns heating minus cooling [W/m³].
func (tc *TemperatureCalculator) netBalance(c *Cell, ion *IonizationStateCalculator, jfac, T float64) float64 {
	c.Temperature = T
	ion.solveCell(c, jfac)

	n := c.NumberDensity
	aHe := tc.Abundances.AHe
	xH := c.IonFrac[atomic.HI]
	xHe := c.IonFrac[atomic.HeI]
	ne := ion.electronDensity(c)

	heating := atomic.Planck * jfac *
		(n*xH*c.HeatingH + n*aHe*xHe*c.HeatingHe)
	// PAH photoelectric heating
	heating += 1.e-39 * tc.PAHFac * ne * n

	nHII := n * (1. - xH)
	nHeII := n * aHe * (1. - xHe)
	cooling := atomic.Boltzmann * T * ne *
		(nHII*tc.Recombination.RecombinationRate(atomic.HI, T) +
			nHeII*tc.Recombination.RecombinationRate(atomic.HeI, T))
	// free-free
	cooling += 1.42e-40 * math.Sqrt(T) * ne * (nHII + nHeII)

	var nIon [atomic.NumIons]float64
	for i := atomic.Ion(0); i < atomic.NumIons; i++ {
		a := tc.Abundances.Abundance(atomic.ElementOf(i))
		nIon[i] = n * a * c.IonFrac[i]
	}
	cooling += tc.LineCooling.LineCooling(T, ne, &nIon)

	return heating - cooling
}

// solveCell finds the temperature in [minSolverTemp, maxSolverTemp]
// where heating balances cooling, by bisection in log T. Cells the
// radiation field never reached are solved at their current
// temperature. When the balance pins at a bracket edge the edge value
// is retained; only a pin at the ceiling flags the cell unconverged.
func (tc *TemperatureCalculator) solveCell(c *Cell, ion *IonizationStateCalculator, jfac float64) {
	if c.MeanIntensity[atomic.HI] <= 0 {
		ion.solveCell(c, jfac)
		return
	}

	lo, hi := minSolverTemp, maxSolverTemp
	if tc.netBalance(c, ion, jfac, lo) <= 0 {
		// cooling wins even at the floor
		c.Temperature = lo
		ion.solveCell(c, jfac)
		c.SetReemissionProbabilities(lo)
		return
	}
	if tc.netBalance(c, ion, jfac, hi) >= 0 {
		// heating wins even at the ceiling
		c.Temperature = hi
		ion.solveCell(c, jfac)
		c.SetReemissionProbabilities(hi)
		c.Unconverged = true
		return
	}
	for it := 0; it < maxTempIterations && hi/lo-1. > tempTolerance; it++ {
		mid := math.Sqrt(lo * hi)
		if tc.netBalance(c, ion, jfac, mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	if hi/lo-1. > tempTolerance {
		c.Unconverged = true
	}
	T := math.Sqrt(lo * hi)
	c.Temperature = T
	ion.solveCell(c, jfac)
	c.SetReemissionProbabilities(T)
}
