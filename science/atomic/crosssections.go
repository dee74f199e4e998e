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

// CrossSections returns photoionization cross sections for tracked ions.
type CrossSections interface {
	// CrossSection returns the photoionization cross section of ion i
	// at frequency nu [Hz], in m².
	CrossSection(i Ion, nu float64) float64
}

// VernerCrossSections implements CrossSections using the analytic ground
// state fits of Verner et al. (1996).
type VernerCrossSections struct{}

// vernerFit holds the fit parameters for one ion. Energies are in eV,
// sigma0 is in Mb (1 Mb = 1e-22 m²).
type vernerFit struct {
	eth, emax         float64
	e0, sigma0        float64
	ya, p, yw, y0, y1 float64
}

var vernerFits = [NumIons]vernerFit{
	HI:   {13.598, 5.0e4, 4.298e-1, 5.475e4, 3.288e1, 2.963, 0, 0, 0},
	HeI:  {24.587, 5.0e4, 1.361e1, 9.492e2, 1.469, 3.188, 2.039, 4.434e-1, 2.136},
	CII:  {24.383, 3.076e2, 4.614, 1.539e4, 1.737, 1.593e1, 5.922, 4.378e-3, 2.528e-2},
	CIII: {47.888, 3.289e2, 4.616e1, 2.030e1, 1.692e2, 6.591, 1.836, 1.824, 8.277e-1},
	NI:   {14.534, 4.048e2, 4.034, 8.235e2, 8.033e1, 3.928, 9.097e-2, 8.598e-1, 2.325},
	NII:  {29.601, 4.236e2, 6.128e-2, 1.944, 8.163e2, 8.773, 1.043e1, 4.280e-1, 2.030e1},
	NIII: {47.449, 4.473e2, 2.420e-1, 9.375e-1, 2.788e2, 9.156, 1.850, 1.877, 3.999},
	OI:   {13.618, 5.380e2, 1.240, 1.745e3, 3.784, 1.764e1, 7.589e-2, 8.698e-2, 1.271e-1},
	OII:  {35.121, 5.581e2, 1.386, 5.967e1, 3.175e1, 8.943, 1.934e-2, 2.131e1, 1.503e-2},
	NeI:  {21.565, 1.196e3, 4.870, 4.287e3, 5.798, 8.355, 2.434e-1, 4.236e-2, 5.873},
	NeII: {40.963, 1.246e3, 1.247e1, 1.583e3, 3.935, 7.810, 6.558e-1, 1.520, 1.084},
	SII:  {23.338, 2.777e2, 8.787, 3.136e2, 3.442, 1.281e1, 7.354e-1, 2.782, 1.788e-1},
	SIII: {34.790, 3.107e2, 1.808e1, 4.564e4, 1.000e-2, 1.313e1, 9.766e-1, 7.659e-1, 6.774e-1},
	SIV:  {47.222, 3.467e2, 1.526e1, 1.613, 1.141e2, 7.344, 2.555, 2.555e-1, 4.379e-1},
}

// CrossSection returns the Verner et al. (1996) fit for ion i at
// frequency nu [Hz], in m². Zero below threshold and above the fit range.
func (v VernerCrossSections) CrossSection(i Ion, nu float64) float64 {
	f := &vernerFits[i]
	e := nu * Planck / ElectronVolt
	if e < f.eth || e > f.emax {
		return 0.
	}
	x := e/f.e0 - f.y0
	y := math.Sqrt(x*x + f.y1*f.y1)
	fy := ((x-1.)*(x-1.) + f.yw*f.yw) *
		math.Pow(y, 0.5*f.p-5.5) *
		math.Pow(1.+math.Sqrt(y/f.ya), -f.p)
	// sigma0 is in Mb.
	return f.sigma0 * fy * 1.e-22
}
