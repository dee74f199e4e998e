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

	"gonum.org/v1/gonum/stat"

	"github.com/spatialmodel/ionmc/science/atomic"
)

// PhotonNumberConvergenceChecker decides when enough photons have been
// shot within one outer iteration, and sizes the substeps.
type PhotonNumberConvergenceChecker interface {
	// Reset starts a new outer iteration.
	Reset()
	// Converged reports whether the intensity field has stopped
	// changing after tot photons.
	Converged(tot int) bool
	// NextSubstep returns the photon count of the next substep, given
	// the last substep size and the running total.
	NextSubstep(last, tot int) int
	// NewNumberOfPhotons returns the initial photon budget for the
	// next outer iteration, given the total needed by the last one.
	NewNumberOfPhotons(tot int) int
}

// ChiSquaredPhotonNumberConvergenceChecker compares the per-photon
// normalised hydrogen intensity field between consecutive substeps and
// declares convergence when the mean squared relative change drops
// below the tolerance.
type ChiSquaredPhotonNumberConvergenceChecker struct {
	// Grid supplies the intensity field.
	Grid Grid
	// Tolerance on the chi-squared statistic.
	Tolerance float64
	// MinimumPhotons must be shot before convergence can be declared.
	MinimumPhotons int

	prev    []float64
	prevTot int
}

// Reset starts a new outer iteration.
func (ck *ChiSquaredPhotonNumberConvergenceChecker) Reset() {
	ck.prev = nil
	ck.prevTot = 0
}

// Converged snapshots the per-photon hydrogen intensity field and
// compares it with the previous substep's snapshot.
func (ck *ChiSquaredPhotonNumberConvergenceChecker) Converged(tot int) bool {
	if tot <= 0 {
		return false
	}
	cur := make([]float64, ck.Grid.NumCells())
	for i := range cur {
		cur[i] = ck.Grid.Cell(i).MeanIntensity[atomic.HI] / float64(tot)
	}
	if ck.prev == nil {
		ck.prev = cur
		ck.prevTot = tot
		return false
	}
	var diffs []float64
	for i := range cur {
		sum := cur[i] + ck.prev[i]
		if sum > 0 {
			d := (cur[i] - ck.prev[i]) / sum
			diffs = append(diffs, d*d)
		}
	}
	ck.prev = cur
	ck.prevTot = tot
	if len(diffs) == 0 || tot < ck.MinimumPhotons {
		return false
	}
	return stat.Mean(diffs, nil) < ck.Tolerance
}

// NextSubstep keeps the substep size constant.
func (ck *ChiSquaredPhotonNumberConvergenceChecker) NextSubstep(last, tot int) int {
	return last
}

// NewNumberOfPhotons proposes the total the last iteration needed as the
// starting budget of the next one.
func (ck *ChiSquaredPhotonNumberConvergenceChecker) NewNumberOfPhotons(tot int) int {
	return tot
}

// IterationConvergenceChecker decides when the outer iteration has
// converged and how many photons the next iteration should start with.
type IterationConvergenceChecker interface {
	// Converged reports whether the grid state has stopped changing
	// between outer iterations.
	Converged(g Grid) bool
	// NextNumberOfPhotons returns the photon budget for the coming
	// iteration.
	NextNumberOfPhotons(current int) int
}

// PassiveIterationConvergenceChecker never declares convergence and
// keeps the photon budget unchanged; the run ends at the iteration cap.
type PassiveIterationConvergenceChecker struct{}

// Converged returns false.
func (PassiveIterationConvergenceChecker) Converged(g Grid) bool { return false }

// NextNumberOfPhotons returns current unchanged.
func (PassiveIterationConvergenceChecker) NextNumberOfPhotons(current int) int {
	return current
}

// NeutralFractionIterationConvergenceChecker tracks the neutral hydrogen
// fraction field between outer iterations. It converges when the largest
// change drops below the tolerance, and doubles the photon budget when
// the population of unconverged solver cells grows.
type NeutralFractionIterationConvergenceChecker struct {
	// Tolerance on the largest per-cell change in neutral fraction.
	Tolerance float64

	prev            []float64
	prevUnconverged int
	grew            bool
}

// Converged compares the neutral fraction field against the previous
// iteration and tracks the unconverged-cell population.
func (ck *NeutralFractionIterationConvergenceChecker) Converged(g Grid) bool {
	cur := make([]float64, g.NumCells())
	unconverged := 0
	for i := range cur {
		c := g.Cell(i)
		cur[i] = c.IonFrac[atomic.HI]
		if c.Unconverged {
			unconverged++
		}
	}
	ck.grew = unconverged > ck.prevUnconverged
	ck.prevUnconverged = unconverged

	if ck.prev == nil {
		ck.prev = cur
		return false
	}
	var maxd float64
	for i := range cur {
		if d := math.Abs(cur[i] - ck.prev[i]); d > maxd {
			maxd = d
		}
	}
	ck.prev = cur
	return maxd < ck.Tolerance && unconverged == 0
}

// NextNumberOfPhotons doubles the budget while the unconverged solver
// population is growing.
func (ck *NeutralFractionIterationConvergenceChecker) NextNumberOfPhotons(current int) int {
	if ck.grew {
		return 2 * current
	}
	return current
}
