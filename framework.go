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
	stdatomic "sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// warmupLoops is the number of initial outer iterations during which
// the temperature is held fixed so the ionization field can stabilise
// before thermal balance is enabled.
const warmupLoops = 4

// DomainManipulator is a function that changes the state of the whole
// simulation.
type DomainManipulator func(s *Simulation) error

// CellManipulator is a function that changes the state of one cell.
type CellManipulator func(c *Cell)

// Simulation holds the current state of a photoionization run. The
// functions in InitFuncs, RunFuncs and CleanupFuncs define what the run
// does: Init runs the InitFuncs once, Run cycles the RunFuncs until Done
// is set, Cleanup runs the CleanupFuncs once.
type Simulation struct {
	// Grid is the density grid.
	Grid Grid
	// Source is the photon source.
	Source *PhotonSource
	// Log receives run progress; nil disables logging.
	Log *logrus.Logger

	InitFuncs    []DomainManipulator
	RunFuncs     []DomainManipulator
	CleanupFuncs []DomainManipulator

	// Done is set by a convergence-checking manipulator to end the run.
	Done bool
	// Loop is the outer iteration index.
	Loop int
	// NumPhotons is the photon budget of the current outer iteration.
	NumPhotons int
	// TotalWeight is the emitted packet weight accumulated during the
	// current outer iteration.
	TotalWeight float64
	// TypeCounts accumulates terminal packet weight per photon type
	// during the current outer iteration.
	TypeCounts [NumPhotonTypes]float64

	// CalcTemperature enables the self-consistent temperature solve
	// after the warm-up iterations.
	CalcTemperature bool

	// Block is the cell range this process is responsible for; solver
	// passes are restricted to it.
	Block CellBlock
	// NumRanks is the number of processes in an outer distributed run;
	// each rank shoots 1/NumRanks of every substep budget. Single
	// process runs use 1.
	NumRanks int

	// ShootTime accumulates the wall time spent shooting photons.
	ShootTime time.Duration

	stop int32
}

// Init runs the initialization functions.
func (s *Simulation) Init() error {
	if s.NumRanks < 1 {
		s.NumRanks = 1
	}
	for _, f := range s.InitFuncs {
		if err := f(s); err != nil {
			return fmt.Errorf("ionmc: initialization: %v", err)
		}
	}
	return nil
}

// Run cycles the run functions until Done is set.
func (s *Simulation) Run() error {
	for !s.Done {
		for _, f := range s.RunFuncs {
			if err := f(s); err != nil {
				return fmt.Errorf("ionmc: loop %d: %v", s.Loop, err)
			}
		}
	}
	return nil
}

// Cleanup runs the cleanup functions.
func (s *Simulation) Cleanup() error {
	for _, f := range s.CleanupFuncs {
		if err := f(s); err != nil {
			return fmt.Errorf("ionmc: cleanup: %v", err)
		}
	}
	return nil
}

// Stop requests a cooperative stop. The request is polled between
// substeps; no partial substep is cancelled.
func (s *Simulation) Stop() {
	stdatomic.StoreInt32(&s.stop, 1)
}

func (s *Simulation) stopped() bool {
	return stdatomic.LoadInt32(&s.stop) != 0
}

// temperatureActive reports whether the current iteration runs the
// self-consistent temperature solve.
func (s *Simulation) temperatureActive() bool {
	return s.CalcTemperature && s.Loop >= warmupLoops
}

// EachCell applies f to every cell in this process's block.
func (s *Simulation) EachCell(f CellManipulator) {
	for i := s.Block.First; i < s.Block.Last; i++ {
		f(s.Grid.Cell(i))
	}
}

func (s *Simulation) statusf(format string, args ...interface{}) {
	if s.Log != nil {
		s.Log.Infof(format, args...)
	}
}

func (s *Simulation) debugf(format string, args ...interface{}) {
	if s.Log != nil {
		s.Log.Debugf(format, args...)
	}
}
