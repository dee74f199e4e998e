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
	lycNumTemps = 64
	lycMinTemp  = 1.5e3
	lycMaxTemp  = 1.5e5
	lycNumBins  = 500
)

// lymanContinuum is a recombination continuum spectrum tabulated on a grid
// of gas temperatures. The emissivity in each frequency bin follows the
// Milne relation, nu² sigma(nu) exp(-h(nu-nu_th)/kT).
type lymanContinuum struct {
	temps []float64
	tabs  []*table
}

func newLymanContinuum(ion atomic.Ion, xs atomic.CrossSections) *lymanContinuum {
	nuth := atomic.IonizationThreshold(ion)
	freq := frequencyGrid(nuth, maxIonizingFrequency, lycNumBins)

	l := &lymanContinuum{
		temps: make([]float64, lycNumTemps),
		tabs:  make([]*table, lycNumTemps),
	}
	lmin := math.Log(lycMinTemp)
	lmax := math.Log(lycMaxTemp)
	for j := range l.temps {
		T := math.Exp(lmin + float64(j)*(lmax-lmin)/float64(lycNumTemps-1))
		l.temps[j] = T
		weights := make([]float64, lycNumBins)
		for i := range weights {
			nu := 0.5 * (freq[i] + freq[i+1])
			sigma := xs.CrossSection(ion, nu)
			weights[i] = nu * nu * sigma *
				math.Exp(-atomic.Planck*(nu-nuth)/(atomic.Boltzmann*T))
		}
		l.tabs[j] = newTable(freq, weights)
	}
	return l
}

// RandomFrequencyAt draws a random frequency [Hz] from the continuum at
// gas temperature T [K]. Temperatures outside the tabulated range use the
// nearest tabulated spectrum.
func (l *lymanContinuum) RandomFrequencyAt(u Uniform, T float64) float64 {
	if T < lycMinTemp {
		T = lycMinTemp
	}
	if T > lycMaxTemp {
		T = lycMaxTemp
	}
	f := math.Log(T/lycMinTemp) / math.Log(lycMaxTemp/lycMinTemp) *
		float64(lycNumTemps-1)
	j := int(f + 0.5)
	if j >= lycNumTemps {
		j = lycNumTemps - 1
	}
	return l.tabs[j].sample(u)
}

// HydrogenLymanContinuum is the temperature-dependent spectrum of photons
// emitted by recombination of ionized hydrogen directly to the ground
// state.
type HydrogenLymanContinuum struct {
	*lymanContinuum
}

// NewHydrogenLymanContinuum tabulates the hydrogen Lyman continuum using
// the given cross sections.
func NewHydrogenLymanContinuum(xs atomic.CrossSections) *HydrogenLymanContinuum {
	return &HydrogenLymanContinuum{newLymanContinuum(atomic.HI, xs)}
}

// HeliumLymanContinuum is the temperature-dependent spectrum of photons
// emitted by recombination of ionized helium directly to the ground state.
type HeliumLymanContinuum struct {
	*lymanContinuum
}

// NewHeliumLymanContinuum tabulates the helium Lyman continuum using the
// given cross sections.
func NewHeliumLymanContinuum(xs atomic.CrossSections) *HeliumLymanContinuum {
	return &HeliumLymanContinuum{newLymanContinuum(atomic.HeI, xs)}
}
