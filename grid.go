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
	"fmt"
	"math"

	"github.com/spatialmodel/ionmc/science/atomic"
)

// Outside is returned by CellOf for positions outside the grid domain.
const Outside = -1

// CellBlock is a half-open range [First, Last) of cell indices. Solver
// passes and grid initialization are restricted to a block so that an
// outer distributed driver can shard cells over ranks; the in-process
// default is the full range.
type CellBlock struct {
	First, Last int
}

// FullBlock returns the block covering all cells of g.
func FullBlock(g Grid) CellBlock {
	return CellBlock{0, g.NumCells()}
}

// Grid is the density grid contract: it maps positions to cells, traces
// photon rays cell by cell, and owns the per-cell gas state and
// radiation accumulators.
type Grid interface {
	// NumCells returns the number of cells.
	NumCells() int
	// Cell returns the cell with the given index.
	Cell(i int) *Cell
	// CellOf returns the index of the cell containing p, or Outside.
	CellOf(p Vector3) int
	// Traverse walks p through the grid, consuming optical depth until
	// tau is reached inside a cell or the ray leaves the domain. Path
	// contributions are recorded into acc. It returns the index of the
	// interaction cell and whether the photon escaped instead.
	Traverse(p *Photon, tau float64, acc *Accumulators) (int, bool)
	// ResetAccumulators zeroes the radiation accumulators of every
	// cell for a new outer iteration.
	ResetAccumulators()
	// Initialize sets the initial gas state of the cells in block from
	// the density function.
	Initialize(block CellBlock, df DensityFunction, ab atomic.Abundances) error
	// Abundances returns the element abundances the grid was
	// initialized with.
	Abundances() atomic.Abundances
	// Periodic returns the per-axis periodicity flags.
	Periodic() [3]bool
}

// RegularGrid is a regular Cartesian grid.
type RegularGrid struct {
	anchor, sides Vector3
	n             [3]int
	periodic      [3]bool
	delta         [3]float64
	ab            atomic.Abundances
	cells         []Cell
	initialized   bool
}

// NewRegularGrid creates a regular Cartesian grid covering the box with
// the given anchor (minimum corner) and side lengths [m], with n cells
// along each axis.
func NewRegularGrid(anchor, sides Vector3, n [3]int, periodic [3]bool) (*RegularGrid, error) {
	for a := 0; a < 3; a++ {
		if n[a] < 1 {
			return nil, fmt.Errorf("ionmc: grid needs at least one cell per axis, got %v", n)
		}
	}
	if sides.X <= 0 || sides.Y <= 0 || sides.Z <= 0 {
		return nil, fmt.Errorf("ionmc: grid box sides must be positive, got %+v", sides)
	}
	g := &RegularGrid{
		anchor:   anchor,
		sides:    sides,
		n:        n,
		periodic: periodic,
	}
	s := [3]float64{sides.X, sides.Y, sides.Z}
	for a := 0; a < 3; a++ {
		g.delta[a] = s[a] / float64(n[a])
	}
	g.cells = make([]Cell, n[0]*n[1]*n[2])
	vol := g.delta[0] * g.delta[1] * g.delta[2]
	for ix := 0; ix < n[0]; ix++ {
		for iy := 0; iy < n[1]; iy++ {
			for iz := 0; iz < n[2]; iz++ {
				i := g.index(ix, iy, iz)
				c := &g.cells[i]
				c.Index = i
				c.Volume = vol
				c.Midpoint = Vector3{
					anchor.X + (float64(ix)+0.5)*g.delta[0],
					anchor.Y + (float64(iy)+0.5)*g.delta[1],
					anchor.Z + (float64(iz)+0.5)*g.delta[2],
				}
			}
		}
	}
	return g, nil
}

func (g *RegularGrid) index(ix, iy, iz int) int {
	return (ix*g.n[1]+iy)*g.n[2] + iz
}

// NumCells returns the number of cells.
func (g *RegularGrid) NumCells() int { return len(g.cells) }

// Cell returns the cell with index i.
func (g *RegularGrid) Cell(i int) *Cell { return &g.cells[i] }

// Abundances returns the element abundances the grid was initialized
// with.
func (g *RegularGrid) Abundances() atomic.Abundances { return g.ab }

// Periodic returns the per-axis periodicity flags.
func (g *RegularGrid) Periodic() [3]bool { return g.periodic }

// CellOf returns the index of the cell containing p, or Outside.
// Positions on the minimum face of a cell belong to that cell.
func (g *RegularGrid) CellOf(p Vector3) int {
	pos := [3]float64{p.X - g.anchor.X, p.Y - g.anchor.Y, p.Z - g.anchor.Z}
	var idx [3]int
	for a := 0; a < 3; a++ {
		i := int(math.Floor(pos[a] / g.delta[a]))
		if i < 0 || i >= g.n[a] {
			if !g.periodic[a] {
				return Outside
			}
			i = ((i % g.n[a]) + g.n[a]) % g.n[a]
		}
		idx[a] = i
	}
	return g.index(idx[0], idx[1], idx[2])
}

// Initialize sets the initial gas state of the cells in block: density
// and temperature from the density function, every tracked ion stage at
// fraction 1e-6, and the reemission probabilities for the initial
// temperature.
func (g *RegularGrid) Initialize(block CellBlock, df DensityFunction, ab atomic.Abundances) error {
	g.ab = ab
	for i := block.First; i < block.Last; i++ {
		c := &g.cells[i]
		prof := df.Density(c.Midpoint)
		if prof.NumberDensity < 0 {
			return fmt.Errorf("ionmc: negative density %g at %+v",
				prof.NumberDensity, c.Midpoint)
		}
		if prof.Temperature <= 0 {
			return fmt.Errorf("ionmc: non-positive initial temperature %g at %+v",
				prof.Temperature, c.Midpoint)
		}
		c.NumberDensity = prof.NumberDensity
		c.Temperature = prof.Temperature
		if prof.IonFrac != nil {
			c.IonFrac = *prof.IonFrac
		} else {
			for ion := atomic.Ion(0); ion < atomic.NumIons; ion++ {
				c.IonFrac[ion] = 1.e-6
			}
		}
		c.SetReemissionProbabilities(c.Temperature)
		c.ResetAccumulators()
		c.Unconverged = false
	}
	g.initialized = true
	return nil
}

// Initialized reports whether Initialize has run.
func (g *RegularGrid) Initialized() bool { return g.initialized }

// ResetAccumulators zeroes the radiation accumulators of every cell.
func (g *RegularGrid) ResetAccumulators() {
	for i := range g.cells {
		g.cells[i].ResetAccumulators()
	}
}

// opacity returns the total absorption coefficient [1/m] of cell c for
// photon p.
func (g *RegularGrid) opacity(c *Cell, p *Photon) float64 {
	n := c.NumberDensity
	chi := n * c.IonFrac[atomic.HI] * p.CrossSections[atomic.HI]
	chi += n * c.IonFrac[atomic.HeI] * p.CrossSectionHeCorr
	for ion := atomic.HeI + 1; ion < atomic.NumIons; ion++ {
		sigma := p.CrossSections[ion]
		if sigma == 0 {
			continue
		}
		a := g.ab.Abundance(atomic.ElementOf(ion))
		chi += n * a * c.IonFrac[ion] * sigma
	}
	return chi
}

// Traverse walks photon p along its direction, consuming optical depth
// until tau is reached inside a cell (returning that cell's index) or
// the ray exits the domain through a non-periodic boundary (returning
// escaped). Periodic axes wrap the position by the domain extent. Every
// crossed path segment is recorded into acc.
func (g *RegularGrid) Traverse(p *Photon, tau float64, acc *Accumulators) (int, bool) {
	const machEps = 2.220446049250313e-16

	pos := [3]float64{p.Position.X, p.Position.Y, p.Position.Z}
	dir := [3]float64{p.Direction.X, p.Direction.Y, p.Direction.Z}
	anchor := [3]float64{g.anchor.X, g.anchor.Y, g.anchor.Z}
	sides := [3]float64{g.sides.X, g.sides.Y, g.sides.Z}

	// Locate the starting cell. A ray exactly on a face belongs to the
	// cell it is heading into.
	var ix [3]int
	for a := 0; a < 3; a++ {
		f := (pos[a] - anchor[a]) / g.delta[a]
		i := int(math.Floor(f))
		if f == math.Floor(f) && dir[a] < 0 {
			i--
		}
		if i < 0 || i >= g.n[a] {
			if !g.periodic[a] {
				p.Position = Vector3{pos[0], pos[1], pos[2]}
				return Outside, true
			}
			w := float64(g.n[a]) * g.delta[a]
			shift := math.Floor(float64(i)/float64(g.n[a])) * w
			pos[a] -= shift
			i = ((i % g.n[a]) + g.n[a]) % g.n[a]
		}
		ix[a] = i
	}

	for {
		// Distance to the nearest cell face along the ray. A direction
		// component of zero means the ray advances parallel to those
		// faces and never crosses them.
		ds := math.Inf(1)
		axis := -1
		var face float64
		for a := 0; a < 3; a++ {
			if dir[a] == 0 {
				continue
			}
			var fc float64
			if dir[a] > 0 {
				fc = anchor[a] + float64(ix[a]+1)*g.delta[a]
			} else {
				fc = anchor[a] + float64(ix[a])*g.delta[a]
			}
			t := (fc - pos[a]) / dir[a]
			if t < ds {
				ds = t
				axis = a
				face = fc
			}
		}
		if axis < 0 {
			panic("ionmc: photon with zero direction")
		}
		if ds < 0 {
			ds = 0
		}

		c := &g.cells[g.index(ix[0], ix[1], ix[2])]
		chi := g.opacity(c, p)
		dtau := chi * ds

		if chi > 0 && dtau >= tau {
			dsInt := tau / chi
			// If the remaining depth puts the interaction within
			// round-off of the far face, snap to the face.
			if ds-dsInt < machEps*ds {
				dsInt = ds
			}
			acc.accumulate(c.Index, p, dsInt)
			for a := 0; a < 3; a++ {
				pos[a] += dsInt * dir[a]
			}
			p.Position = Vector3{pos[0], pos[1], pos[2]}
			return c.Index, false
		}

		// Full crossing: record the whole segment and step through the
		// face into the next cell.
		acc.accumulate(c.Index, p, ds)
		tau -= dtau
		for a := 0; a < 3; a++ {
			if a == axis {
				pos[a] = face
			} else {
				pos[a] += ds * dir[a]
			}
		}
		if dir[axis] > 0 {
			ix[axis]++
			if ix[axis] >= g.n[axis] {
				if !g.periodic[axis] {
					p.Position = Vector3{pos[0], pos[1], pos[2]}
					return Outside, true
				}
				ix[axis] = 0
				pos[axis] -= sides[axis]
			}
		} else {
			ix[axis]--
			if ix[axis] < 0 {
				if !g.periodic[axis] {
					p.Position = Vector3{pos[0], pos[1], pos[2]}
					return Outside, true
				}
				ix[axis] = g.n[axis] - 1
				pos[axis] += sides[axis]
			}
		}
	}
}
