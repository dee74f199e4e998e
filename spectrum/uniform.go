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

// Flat is a spectrum that is uniform in frequency over the ionizing range
// [13.6, 54.4] eV. It is mostly useful for testing.
type Flat struct{}

// RandomFrequency draws a uniform random ionizing frequency [Hz].
func (f Flat) RandomFrequency(u Uniform) float64 {
	return minIonizingFrequency +
		u.Float64()*(maxIonizingFrequency-minIonizingFrequency)
}

// TotalFlux returns 0; the flat spectrum carries no surface flux
// normalisation.
func (f Flat) TotalFlux() float64 {
	return 0.
}
