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

// RecombinationRates returns radiative recombination rates.
type RecombinationRates interface {
	// RecombinationRate returns the rate of the recombination that
	// undoes the photoionization of ion i (e.g. for CII it is the
	// CIII -> CII recombination), at temperature T [K], in m³/s.
	RecombinationRate(i Ion, T float64) float64
}

// VernerRecombinationRates implements RecombinationRates with the
// Verner & Ferland (1996) fits for H and He and power-law fits for the
// heavier ions.
type VernerRecombinationRates struct{}

// vfFit holds Verner & Ferland fit parameters: a [m³/s], b, T0, T1 [K].
type vfFit struct {
	a, b, t0, t1 float64
}

var vfFits = map[Ion]vfFit{
	HI:  {7.982e-17, 0.7480, 3.148, 7.036e5},
	HeI: {9.356e-16, 0.7892, 4.266e-2, 4.677e6},
}

// powFit holds a power-law recombination fit a*(T/1e4 K)^-b, a in m³/s.
type powFit struct {
	a, b float64
}

var recombPowFits = [NumIons]powFit{
	CII:  {4.66e-19, 0.62},
	CIII: {2.45e-18, 0.80},
	NI:   {4.10e-19, 0.61},
	NII:  {2.20e-18, 0.64},
	NIII: {5.00e-18, 0.70},
	OI:   {3.10e-19, 0.68},
	OII:  {2.00e-18, 0.65},
	NeI:  {2.20e-19, 0.67},
	NeII: {1.50e-18, 0.69},
	SII:  {4.10e-19, 0.63},
	SIII: {1.80e-18, 0.69},
	SIV:  {2.70e-18, 0.75},
}

// RecombinationRate returns the total radiative recombination rate for
// ion i at temperature T [K], in m³/s.
func (v VernerRecombinationRates) RecombinationRate(i Ion, T float64) float64 {
	if f, ok := vfFits[i]; ok {
		s0 := math.Sqrt(T / f.t0)
		s1 := math.Sqrt(T / f.t1)
		return f.a / (s0 * math.Pow(1.+s0, 1.-f.b) * math.Pow(1.+s1, 1.+f.b))
	}
	f := recombPowFits[i]
	return f.a * math.Pow(T*1.e-4, -f.b)
}
