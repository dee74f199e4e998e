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

// Package ionmc implements a 3D Monte Carlo photoionization code: photon
// packets are traced through a density grid, per-cell absorption
// statistics are accumulated, and the ionization state (and optionally
// the gas temperature) of each cell is solved for until the radiation
// field and the gas state are mutually consistent.
package ionmc

import (
	"math"

	"github.com/spatialmodel/ionmc/science/atomic"
)

// Vector3 is a position or direction in 3D space.
type Vector3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vector3) Add(w Vector3) Vector3 {
	return Vector3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns v - w.
func (v Vector3) Sub(w Vector3) Vector3 {
	return Vector3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Scale returns a*v.
func (v Vector3) Scale(a float64) Vector3 {
	return Vector3{a * v.X, a * v.Y, a * v.Z}
}

// Dot returns the dot product of v and w.
func (v Vector3) Dot(w Vector3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Norm returns the Euclidean length of v.
func (v Vector3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// PhotonType tags how a photon packet was (last) produced, and marks
// packets that were absorbed without reemission.
type PhotonType int

// Photon type tags.
const (
	// PhotonPrimary is a packet as emitted by a source.
	PhotonPrimary PhotonType = iota
	// PhotonDiffuseHI is a packet reemitted by recombining hydrogen.
	PhotonDiffuseHI
	// PhotonDiffuseHeI is a packet reemitted by recombining helium.
	PhotonDiffuseHeI
	// PhotonAbsorbed is a packet that was absorbed and reemitted as a
	// non-ionizing photon, removing it from the simulation.
	PhotonAbsorbed

	// NumPhotonTypes is the number of photon type tags.
	NumPhotonTypes
)

var photonTypeNames = []string{"primary", "diffuse HI", "diffuse HeI", "absorbed"}

func (t PhotonType) String() string {
	if t < 0 || t >= NumPhotonTypes {
		return "invalid photon type"
	}
	return photonTypeNames[t]
}

// Photon is a single photon packet. It only lives inside one traversal:
// created by the source, mutated by the transport kernel, and dropped
// when it is absorbed or escapes the domain.
type Photon struct {
	// Position is the current position [m].
	Position Vector3
	// Direction is the unit propagation direction.
	Direction Vector3
	// Frequency is the photon frequency [Hz].
	Frequency float64
	// Type tags the current production channel of the packet.
	Type PhotonType
	// Weight is the statistical weight of the packet [photons/s].
	Weight float64

	// CrossSections caches the photoionization cross section of every
	// tracked ion at the current frequency [m²].
	CrossSections [atomic.NumIons]float64
	// CrossSectionHeCorr caches the helium abundance times the neutral
	// helium cross section [m²], the quantity the optical depth and the
	// absorption branching actually need.
	CrossSectionHeCorr float64
}
