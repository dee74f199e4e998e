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

import "github.com/spatialmodel/ionmc/science/atomic"

// he2pcEmissionFrequency is the total frequency of the HeI 2s->1s
// two-photon decay [Hz]; the two photons share it.
const he2pcEmissionFrequency = 4.98e15

const he2pcNumBins = 1000

// Tabulated two-photon emissivity A(y) with y the fraction of the total
// transition frequency carried by one photon. Symmetric around y = 0.5,
// zero at the endpoints; 41 points, y spacing 0.025.
var he2pcEmissivity = [41]float64{
	0.0000, 0.3278, 0.5816, 0.8446, 1.1142,
	1.3859, 1.6556, 1.9195, 2.1744, 2.4176,
	2.6468, 2.8598, 3.0547, 3.2302, 3.3848,
	3.5175, 3.6272, 3.7133, 3.7752, 3.8125,
	3.8250, 3.8125, 3.7752, 3.7133, 3.6272,
	3.5175, 3.3848, 3.2302, 3.0547, 2.8598,
	2.6468, 2.4176, 2.1744, 1.9195, 1.6556,
	1.3859, 1.1142, 0.8446, 0.5816, 0.3278,
	0.0000,
}

// he2pcAt interpolates the tabulated emissivity at y; zero outside [0,1].
func he2pcAt(y float64) float64 {
	if y <= 0. || y >= 1. {
		return 0.
	}
	f := y / 0.025
	i := int(f)
	if i >= 40 {
		return he2pcEmissivity[40]
	}
	return he2pcEmissivity[i] + (f-float64(i))*(he2pcEmissivity[i+1]-he2pcEmissivity[i])
}

// HeliumTwoPhotonContinuum is the hydrogen-ionising part of the HeI
// two-photon continuum, covering [1, 1.6] times the hydrogen ionization
// frequency. The shape does not depend on the gas temperature; the
// TemperatureSpectrum signature is kept for symmetry with the Lyman
// continua.
type HeliumTwoPhotonContinuum struct {
	tab *table
}

// NewHeliumTwoPhotonContinuum tabulates the cumulative distribution of
// the H-ionising two-photon continuum.
func NewHeliumTwoPhotonContinuum() *HeliumTwoPhotonContinuum {
	freq := frequencyGrid(atomic.HIonizingFrequency,
		1.6*atomic.HIonizingFrequency, he2pcNumBins)
	weights := make([]float64, he2pcNumBins)
	for i := range weights {
		y1 := freq[i] / he2pcEmissionFrequency
		y2 := freq[i+1] / he2pcEmissionFrequency
		weights[i] = 0.5 * (he2pcAt(y1) + he2pcAt(y2)) * (freq[i+1] - freq[i])
	}
	return &HeliumTwoPhotonContinuum{tab: newTable(freq, weights)}
}

// RandomFrequencyAt draws a random frequency [Hz]; T is unused.
func (h *HeliumTwoPhotonContinuum) RandomFrequencyAt(u Uniform, T float64) float64 {
	return h.tab.sample(u)
}
