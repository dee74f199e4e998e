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

	"gonum.org/v1/gonum/floats"

	"github.com/spatialmodel/ionmc/science/atomic"
)

// Accumulators is a worker-local shadow of the per-cell radiation
// accumulators. Each worker records path contributions into its own
// shadow while shooting photons; the dispatcher reduces the shadows into
// the grid in ascending worker order at the end of every substep, which
// keeps the float sums bit-reproducible for a fixed worker count.
type Accumulators struct {
	heat   bool
	j      []float64 // numCells * NumIons
	heatH  []float64
	heatHe []float64
}

// NewAccumulators creates a zeroed shadow for a grid with numCells
// cells. When heat is set, the heating integrals are recorded too.
func NewAccumulators(numCells int, heat bool) *Accumulators {
	a := &Accumulators{
		heat: heat,
		j:    make([]float64, numCells*int(atomic.NumIons)),
	}
	if heat {
		a.heatH = make([]float64, numCells)
		a.heatHe = make([]float64, numCells)
	}
	return a
}

// accumulate records one path segment of length ds [m] of photon p
// through cell index cell.
func (a *Accumulators) accumulate(cell int, p *Photon, ds float64) {
	if ds == 0 {
		return
	}
	w := p.Weight
	base := cell * int(atomic.NumIons)
	for i := 0; i < int(atomic.NumIons); i++ {
		a.j[base+i] += w * p.CrossSections[i] * ds
	}
	if a.heat {
		if ex := p.Frequency - atomic.IonizationThreshold(atomic.HI); ex > 0 {
			a.heatH[cell] += w * p.CrossSections[atomic.HI] * ds * ex
		}
		if ex := p.Frequency - atomic.IonizationThreshold(atomic.HeI); ex > 0 {
			a.heatHe[cell] += w * p.CrossSections[atomic.HeI] * ds * ex
		}
	}
}

// Reduce adds the shadow into the grid accumulators and zeroes it for
// the next substep.
func (a *Accumulators) Reduce(g Grid) {
	ni := int(atomic.NumIons)
	for i := 0; i < g.NumCells(); i++ {
		c := g.Cell(i)
		floats.Add(c.MeanIntensity[:], a.j[i*ni:(i+1)*ni])
		if a.heat {
			c.HeatingH += a.heatH[i]
			c.HeatingHe += a.heatHe[i]
		}
	}
	for i := range a.j {
		a.j[i] = 0
	}
	if a.heat {
		for i := range a.heatH {
			a.heatH[i] = 0
			a.heatHe[i] = 0
		}
	}
}

// ShootPhoton propagates one photon packet until it is absorbed without
// reemission or escapes the domain, recording path contributions into
// acc and counting the packet's weight under its terminal type in
// counts.
func ShootPhoton(g Grid, src *PhotonSource, p *Photon, rng *rand.Rand,
	acc *Accumulators, counts *[NumPhotonTypes]float64) {
	for {
		// optical depth to the next interaction; 1-u keeps the
		// argument in (0, 1]
		tau := -math.Log(1. - rng.Float64())
		cell, escaped := g.Traverse(p, tau, acc)
		if escaped {
			counts[p.Type] += p.Weight
			return
		}
		if !src.Reemit(p, g.Cell(cell), rng) {
			counts[PhotonAbsorbed] += p.Weight
			return
		}
	}
}
