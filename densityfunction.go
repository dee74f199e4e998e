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

import "github.com/spatialmodel/ionmc/science/atomic"

// DensityProfile is the initial gas state at one position.
type DensityProfile struct {
	// NumberDensity is the hydrogen number density [m⁻³].
	NumberDensity float64
	// Temperature is the initial gas temperature [K].
	Temperature float64
	// IonFrac optionally overrides the default initial ionic
	// fractions; nil selects the defaults (1e-6 for every tracked
	// stage).
	IonFrac *[atomic.NumIons]float64
}

// DensityFunction maps positions to initial gas states. Implementations
// must be safe for concurrent use; the grid queries them once per cell
// during initialization.
type DensityFunction interface {
	Density(p Vector3) DensityProfile
}

// Homogeneous is a DensityFunction with the same state everywhere.
type Homogeneous struct {
	// NumberDensity is the hydrogen number density [m⁻³].
	NumberDensity float64
	// Temperature is the initial gas temperature [K].
	Temperature float64
}

// Density returns the homogeneous profile; the position is ignored.
func (h Homogeneous) Density(p Vector3) DensityProfile {
	return DensityProfile{
		NumberDensity: h.NumberDensity,
		Temperature:   h.Temperature,
	}
}
