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
	"time"

	"github.com/spatialmodel/ionmc/science/atomic"
)

// InitGrid returns a function that initializes the grid cells of the
// simulation's block from the density function.
func InitGrid(df DensityFunction, ab atomic.Abundances) DomainManipulator {
	return func(s *Simulation) error {
		return s.Grid.Initialize(s.Block, df, ab)
	}
}

// NextPhotonBudget returns a function that asks the iteration
// convergence checker for the photon budget of the coming iteration.
func NextPhotonBudget(ck IterationConvergenceChecker) DomainManipulator {
	return func(s *Simulation) error {
		s.NumPhotons = ck.NextNumberOfPhotons(s.NumPhotons)
		s.statusf("starting loop %d with %d photons", s.Loop, s.NumPhotons)
		return nil
	}
}

// ResetAccumulators returns a function that zeroes the radiation
// accumulators and the per-iteration counters for a new outer
// iteration.
func ResetAccumulators() DomainManipulator {
	return func(s *Simulation) error {
		s.Grid.ResetAccumulators()
		s.TotalWeight = 0
		for t := range s.TypeCounts {
			s.TypeCounts[t] = 0
		}
		return nil
	}
}

// ShootPhotons returns a function that shoots the iteration's photons
// in substeps through the work distributor, letting the photon-number
// convergence checker size the substeps and decide when to stop.
func ShootPhotons(d *WorkDistributor, ck PhotonNumberConvergenceChecker) DomainManipulator {
	return func(s *Simulation) error {
		ck.Reset()
		actual := s.Source.SetPhotonBudget(s.NumPhotons)
		s.debugf("photon budget %d (requested %d)", actual, s.NumPhotons)

		heat := s.temperatureActive()
		start := time.Now()
		substep := 0
		lnum := actual
		tot := 0
		for !ck.Converged(tot) && !s.stopped() {
			n := lnum / s.NumRanks
			if n < 1 {
				n = 1
			}
			w, counts := d.Shoot(s.Grid, s.Source, n, heat)
			s.TotalWeight += w
			for t := range counts {
				s.TypeCounts[t] += counts[t]
			}
			tot += lnum
			lnum = ck.NextSubstep(lnum, tot)
			s.debugf("substep %d done, %d photons total", substep, tot)
			substep++
		}
		s.ShootTime += time.Since(start)
		s.NumPhotons = ck.NewNumberOfPhotons(tot)

		if tw := s.TotalWeight; tw > 0 {
			absorbed := s.TypeCounts[PhotonAbsorbed]
			escape := (tw - absorbed) / tw
			// the counters update per photon while the weight updates
			// per batch; round-off can push the difference below zero
			if escape < 0 {
				escape = 0
			}
			s.statusf("%.2f%% of photon weight reemitted as non-ionizing photons", 100.*absorbed/tw)
			s.statusf("escape fraction: %.2f%%", 100.*escape)
			s.statusf("diffuse HI escape fraction: %.2f%%", 100.*s.TypeCounts[PhotonDiffuseHI]/tw)
			s.statusf("diffuse HeI escape fraction: %.2f%%", 100.*s.TypeCounts[PhotonDiffuseHeI]/tw)
		}
		return nil
	}
}

// SolveState returns a function that runs the per-cell equilibrium
// solve: the fixed-temperature ionization balance during warm-up, the
// coupled ionization and thermal balance afterwards when the
// temperature solve is enabled.
func SolveState(ic *IonizationStateCalculator, tc *TemperatureCalculator) DomainManipulator {
	return func(s *Simulation) error {
		if s.TotalWeight <= 0 {
			return fmt.Errorf("no photon weight accumulated before solve")
		}
		if s.temperatureActive() {
			tc.Calculate(s.TotalWeight, s.Grid, s.Block)
		} else {
			ic.Calculate(s.TotalWeight, s.Grid, s.Block)
		}
		unconverged := 0
		s.EachCell(func(c *Cell) {
			if c.Unconverged {
				unconverged++
			}
		})
		if unconverged > 0 {
			s.statusf("%d cells did not converge in the equilibrium solve", unconverged)
		}
		return nil
	}
}

// WriteSnapshot returns a function that writes a snapshot of the
// current iteration through the given writer. A nil writer disables
// output.
func WriteSnapshot(w DensityGridWriter) DomainManipulator {
	return func(s *Simulation) error {
		if w == nil {
			return nil
		}
		return w.Write(s.Loop, s)
	}
}

// IterationCheck returns a function that advances the loop counter and
// ends the run when the iteration convergence checker is satisfied, the
// iteration cap is reached, or a stop was requested.
func IterationCheck(ck IterationConvergenceChecker, maxLoops int) DomainManipulator {
	return func(s *Simulation) error {
		s.Loop++
		switch {
		case ck.Converged(s.Grid):
			s.statusf("simulation converged after %d iterations", s.Loop)
			s.Done = true
		case s.Loop >= maxLoops:
			s.statusf("maximum number of iterations (%d) reached, stopping", maxLoops)
			s.Done = true
		case s.stopped():
			s.statusf("stop requested, ending after %d iterations", s.Loop)
			s.Done = true
		}
		return nil
	}
}
