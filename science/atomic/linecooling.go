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

package atomic

import "math"

// LineCoolingData returns the collisionally excited line cooling rate.
type LineCoolingData interface {
	// LineCooling returns the total line cooling rate [W/m³] at
	// temperature T [K] and electron density ne [m⁻³] for the given
	// per-ion number densities [m⁻³].
	LineCooling(T, ne float64, nIon *[NumIons]float64) float64
}

// TabulatedLineCoolingData implements LineCoolingData with a fixed set of
// the strongest forbidden and fine-structure transitions, treated as
// two-level systems in the coronal limit.
type TabulatedLineCoolingData struct{}

// coolingLine is one two-level transition: the absorbing ion, the
// velocity-averaged collision strength omega, the statistical weight of
// the lower level, and the excitation energy expressed as a temperature
// deltaE/k [K].
type coolingLine struct {
	ion    Ion
	omega  float64
	weight float64
	dek    float64
}

var coolingLines = []coolingLine{
	{CII, 1.80, 2., 9.12e1},   // [CII] 158 μm
	{CII, 0.88, 2., 6.18e4},   // CII] 2326 Å
	{NI, 0.35, 4., 2.76e4},    // [NI] 5200 Å
	{NII, 2.64, 9., 2.19e4},   // [NII] 6583 Å
	{NII, 0.27, 9., 6.21e2},   // [NII] 122 μm
	{OI, 0.55, 9., 2.28e4},    // [OI] 6300 Å
	{OI, 0.27, 9., 2.28e2},    // [OI] 63 μm
	{OII, 1.34, 4., 3.86e4},   // [OII] 3727 Å
	{NeII, 0.30, 4., 1.12e3},  // [NeII] 12.8 μm
	{SII, 4.66, 4., 2.14e4},   // [SII] 6716+6731 Å
	{SIII, 3.98, 9., 1.58e4},  // [SIII] 9069+9532 Å
	{SIV, 8.54, 2., 1.37e3},   // [SIV] 10.5 μm
}

// q0 is the prefactor of the electron-impact excitation rate,
// 8.629e-6 cm³ s⁻¹ K^½ converted to m³ s⁻¹ K^½.
const q0 = 8.629e-12

// LineCooling returns the total line cooling rate [W/m³]. Each line
// contributes ne * n_ion * q(T) * deltaE with
// q(T) = q0/sqrt(T) * omega/weight * exp(-deltaE/kT).
func (d TabulatedLineCoolingData) LineCooling(T, ne float64, nIon *[NumIons]float64) float64 {
	if T <= 0. || ne <= 0. {
		return 0.
	}
	st := math.Sqrt(T)
	var cool float64
	for i := range coolingLines {
		l := &coolingLines[i]
		n := nIon[l.ion]
		if n <= 0. {
			continue
		}
		q := q0 / st * l.omega / l.weight * math.Exp(-l.dek/T)
		cool += ne * n * q * l.dek * Boltzmann
	}
	return cool
}
