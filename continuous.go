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
	"math/rand"
)

// IsotropicContinuousPhotonSource produces photons entering the domain
// from an external isotropic radiation field.
type IsotropicContinuousPhotonSource interface {
	// Sample draws an entry position [m] and an inward unit direction.
	Sample(rng *rand.Rand) (pos, dir Vector3)
	// SurfaceArea returns the emitting surface area [m²].
	SurfaceArea() float64
}

// EmittingSphere is an isotropic continuous source on a spherical
// surface enclosing the domain.
type EmittingSphere struct {
	// Center is the sphere center [m].
	Center Vector3
	// Radius is the sphere radius [m].
	Radius float64
}

// SurfaceArea returns the sphere surface area [m²].
func (s EmittingSphere) SurfaceArea() float64 {
	return 4. * math.Pi * s.Radius * s.Radius
}

// Sample draws a uniform random point on the sphere and a
// cosine-weighted inward direction, the distribution of an isotropic
// external field crossing the surface.
func (s EmittingSphere) Sample(rng *rand.Rand) (Vector3, Vector3) {
	// uniform point on the sphere
	cost := 2.*rng.Float64() - 1.
	sint := math.Sqrt(1. - cost*cost)
	phi := 2. * math.Pi * rng.Float64()
	normal := Vector3{sint * math.Cos(phi), sint * math.Sin(phi), cost}
	pos := s.Center.Add(normal.Scale(s.Radius))

	// cosine-weighted direction around the inward normal
	inward := normal.Scale(-1.)
	cosa := math.Sqrt(rng.Float64())
	sina := math.Sqrt(1. - cosa*cosa)
	beta := 2. * math.Pi * rng.Float64()

	// local frame around the inward normal
	var t1 Vector3
	if math.Abs(inward.X) < 0.9 {
		t1 = Vector3{1, 0, 0}
	} else {
		t1 = Vector3{0, 1, 0}
	}
	t1 = t1.Sub(inward.Scale(t1.Dot(inward)))
	t1 = t1.Scale(1. / t1.Norm())
	t2 := Vector3{
		inward.Y*t1.Z - inward.Z*t1.Y,
		inward.Z*t1.X - inward.X*t1.Z,
		inward.X*t1.Y - inward.Y*t1.X,
	}

	dir := inward.Scale(cosa).
		Add(t1.Scale(sina * math.Cos(beta))).
		Add(t2.Scale(sina * math.Sin(beta)))
	return pos, dir
}
