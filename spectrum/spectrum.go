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

// Package spectrum holds the photon source spectra: the input spectra for
// discrete and continuous sources, and the temperature-dependent diffuse
// reemission spectra. All spectra hand out random frequencies in Hz.
package spectrum

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Uniform is a source of uniform random numbers in [0,1). *math/rand.Rand
// satisfies it.
type Uniform interface {
	Float64() float64
}

// Spectrum is a photon frequency distribution.
type Spectrum interface {
	// RandomFrequency draws a random frequency [Hz] from the spectrum.
	RandomFrequency(u Uniform) float64
	// TotalFlux returns the ionizing photon flux of the spectrum per
	// unit emitting surface area [m⁻² s⁻¹]. It is only meaningful for
	// spectra attached to a continuous surface source; others return 0.
	TotalFlux() float64
}

// TemperatureSpectrum is a frequency distribution that depends on the gas
// temperature of the emitting cell.
type TemperatureSpectrum interface {
	// RandomFrequencyAt draws a random frequency [Hz] from the
	// spectrum at gas temperature T [K].
	RandomFrequencyAt(u Uniform, T float64) float64
}

// table is a tabulated inverse cumulative distribution over frequency.
type table struct {
	freq []float64 // bin edges [Hz], ascending
	cum  []float64 // cumulative distribution, cum[0] = 0, last = 1
}

// newTable builds a cumulative table from unnormalised bin weights.
// weights[i] is the probability mass between freq[i] and freq[i+1], so
// len(weights) = len(freq)-1.
func newTable(freq, weights []float64) *table {
	cum := make([]float64, len(freq))
	floats.CumSum(cum[1:], weights)
	tot := cum[len(cum)-1]
	if tot > 0 {
		floats.Scale(1./tot, cum)
	}
	cum[len(cum)-1] = 1.
	return &table{freq: freq, cum: cum}
}

// sample draws a frequency by inverting the cumulative distribution,
// interpolating linearly inside the selected bin.
func (t *table) sample(u Uniform) float64 {
	x := u.Float64()
	i := sort.SearchFloat64s(t.cum, x)
	if i <= 0 {
		return t.freq[0]
	}
	if i >= len(t.cum) {
		return t.freq[len(t.freq)-1]
	}
	dc := t.cum[i] - t.cum[i-1]
	if dc <= 0 {
		return t.freq[i]
	}
	f := (x - t.cum[i-1]) / dc
	return t.freq[i-1] + f*(t.freq[i]-t.freq[i-1])
}

// frequencyGrid returns n+1 evenly spaced frequencies spanning [lo, hi].
func frequencyGrid(lo, hi float64, n int) []float64 {
	freq := make([]float64, n+1)
	for i := range freq {
		freq[i] = lo + float64(i)*(hi-lo)/float64(n)
	}
	return freq
}
