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

// PhotonSourceDistribution enumerates the discrete ionizing sources.
type PhotonSourceDistribution interface {
	// NumSources returns the number of discrete sources.
	NumSources() int
	// Position returns the position of source i [m].
	Position(i int) Vector3
	// Weight returns the luminosity weight of source i; the weights of
	// all sources must sum to 1 within 1e-9.
	Weight(i int) float64
	// Luminosity returns the total ionizing luminosity of all sources
	// [s⁻¹].
	Luminosity() float64
}

// SingleStar is a PhotonSourceDistribution with one source.
type SingleStar struct {
	// Pos is the source position [m].
	Pos Vector3
	// Lum is the ionizing luminosity [s⁻¹].
	Lum float64
}

// NumSources returns 1.
func (s SingleStar) NumSources() int { return 1 }

// Position returns the star position.
func (s SingleStar) Position(i int) Vector3 { return s.Pos }

// Weight returns 1.
func (s SingleStar) Weight(i int) float64 { return 1. }

// Luminosity returns the star luminosity [s⁻¹].
func (s SingleStar) Luminosity() float64 { return s.Lum }

// SourceTable is a PhotonSourceDistribution backed by explicit position
// and weight slices.
type SourceTable struct {
	// Positions are the source positions [m].
	Positions []Vector3
	// Weights are the per-source luminosity weights; they must sum to
	// 1 within 1e-9.
	Weights []float64
	// TotalLuminosity is the combined ionizing luminosity [s⁻¹].
	TotalLuminosity float64
}

// NumSources returns the number of sources.
func (t *SourceTable) NumSources() int { return len(t.Positions) }

// Position returns the position of source i.
func (t *SourceTable) Position(i int) Vector3 { return t.Positions[i] }

// Weight returns the weight of source i.
func (t *SourceTable) Weight(i int) float64 { return t.Weights[i] }

// Luminosity returns the combined ionizing luminosity [s⁻¹].
func (t *SourceTable) Luminosity() float64 { return t.TotalLuminosity }
