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

package spectrum

import (
	"math"

	"github.com/spatialmodel/ionmc/science/atomic"
)

const (
	// ionizing frequency range covered by the input spectra:
	// 13.6 eV up to the HeII ionization threshold at 54.4 eV.
	minIonizingFrequency = atomic.HIonizingFrequency
	maxIonizingFrequency = 4. * atomic.HIonizingFrequency

	planckNumBins = 1000
	speedOfLight  = 2.99792458e8
)

// Planck is the ionizing part of a blackbody photon spectrum at a fixed
// effective temperature.
type Planck struct {
	teff float64
	tab  *table
	flux float64
}

// NewPlanck builds the tabulated ionizing Planck spectrum for effective
// temperature teff [K].
func NewPlanck(teff float64) *Planck {
	freq := frequencyGrid(minIonizingFrequency, maxIonizingFrequency, planckNumBins)
	weights := make([]float64, planckNumBins)
	var flux float64
	for i := range weights {
		nu := 0.5 * (freq[i] + freq[i+1])
		dnu := freq[i+1] - freq[i]
		// photon number emissivity, B_nu/(h*nu)
		n := nu * nu / (math.Exp(atomic.Planck*nu/(atomic.Boltzmann*teff)) - 1.)
		weights[i] = n * dnu
		flux += n * dnu
	}
	// 2 pi / c² converts the photon emissivity integral to an
	// isotropic surface flux [m⁻² s⁻¹].
	flux *= 2. * math.Pi / (speedOfLight * speedOfLight)
	return &Planck{teff: teff, tab: newTable(freq, weights), flux: flux}
}

// RandomFrequency draws a random ionizing frequency [Hz].
func (p *Planck) RandomFrequency(u Uniform) float64 {
	return p.tab.sample(u)
}

// TotalFlux returns the ionizing photon flux per unit emitting surface
// area [m⁻² s⁻¹].
func (p *Planck) TotalFlux() float64 {
	return p.flux
}
