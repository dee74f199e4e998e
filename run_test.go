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
	"testing"

	"github.com/spatialmodel/ionmc/science/atomic"
	"github.com/spatialmodel/ionmc/spectrum"
)

// fixedPhotonChecker shoots a fixed photon count per outer iteration.
type fixedPhotonChecker struct{ n int }

func (c fixedPhotonChecker) Reset()                         {}
func (c fixedPhotonChecker) Converged(tot int) bool         { return tot >= c.n }
func (c fixedPhotonChecker) NextSubstep(last, tot int) int  { return last }
func (c fixedPhotonChecker) NewNumberOfPhotons(tot int) int { return tot }

// stromgrenSim builds a uniform hydrogen-only simulation with a central
// monochromatic source: n = 100 cm⁻³, T = 8000 K, L = 1e49 s⁻¹ at
// 13.6 eV.
func stromgrenSim(t *testing.T, ncell, threads, photons, loops int, seed int64,
	calcTemp bool) (*Simulation, *RegularGrid) {
	t.Helper()

	const side = 2.4e17 // m
	g, err := NewRegularGrid(
		Vector3{-side / 2, -side / 2, -side / 2},
		Vector3{side, side, side},
		[3]int{ncell, ncell, ncell}, [3]bool{})
	if err != nil {
		t.Fatal(err)
	}

	ab := atomic.Abundances{}
	xs := atomic.VernerCrossSections{}
	rec := atomic.VernerRecombinationRates{}
	ct := atomic.KingdonFerlandChargeTransferRates{}

	src, err := NewPhotonSource(
		SingleStar{Pos: Vector3{}, Lum: 1.e49},
		spectrum.Monochromatic{Frequency: atomic.HIonizingFrequency},
		nil, nil, ab, xs)
	if err != nil {
		t.Fatal(err)
	}

	ic := &IonizationStateCalculator{
		Luminosity:     src.TotalLuminosity(),
		Abundances:     ab,
		Recombination:  rec,
		ChargeTransfer: ct,
	}
	tc := &TemperatureCalculator{
		Luminosity:     src.TotalLuminosity(),
		PAHFac:         1.,
		Abundances:     ab,
		LineCooling:    atomic.TabulatedLineCoolingData{},
		Recombination:  rec,
		ChargeTransfer: ct,
	}

	d := NewWorkDistributor(threads, seed, 0, g)
	iterCheck := PassiveIterationConvergenceChecker{}

	s := &Simulation{
		Grid:            g,
		Source:          src,
		CalcTemperature: calcTemp,
		NumPhotons:      photons,
		Block:           CellBlock{0, g.NumCells()},
		NumRanks:        1,
	}
	s.InitFuncs = []DomainManipulator{
		InitGrid(Homogeneous{NumberDensity: 1.e8, Temperature: 8000.}, ab),
	}
	s.RunFuncs = []DomainManipulator{
		NextPhotonBudget(iterCheck),
		ResetAccumulators(),
		ShootPhotons(d, fixedPhotonChecker{n: photons}),
		SolveState(ic, tc),
		IterationCheck(iterCheck, loops),
	}
	return s, g
}

func TestStromgrenSphere(t *testing.T) {
	if testing.Short() {
		t.Skip("full transport test")
	}
	s, g := stromgrenSim(t, 32, 2, 200000, 5, 42, false)
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}

	// ionized volume and equivalent radius
	var vion float64
	for i := 0; i < g.NumCells(); i++ {
		c := g.Cell(i)
		vion += (1. - c.IonFrac[atomic.HI]) * c.Volume
	}
	r := math.Cbrt(3. * vion / (4. * math.Pi))

	// analytic Strömgren radius with the case B rate: the diffuse
	// reemission puts the case 1 recombinations back into the field,
	// so the front settles at the case B solution
	var rec atomic.VernerRecombinationRates
	var probe Cell
	probe.SetReemissionProbabilities(8000.)
	alphaB := rec.RecombinationRate(atomic.HI, 8000.) * (1. - probe.PHion)
	const n = 1.e8
	rs := math.Cbrt(3. * 1.e49 / (4. * math.Pi * alphaB * n * n))

	if d := math.Abs(r-rs) / rs; d > 0.05 {
		t.Errorf("ionization front at %g m, analytic Strömgren radius %g m (off by %.1f%%)",
			r, rs, 100*d)
	}
}

func TestWarmupSwitchover(t *testing.T) {
	if testing.Short() {
		t.Skip("full transport test")
	}
	s, g := stromgrenSim(t, 8, 2, 2000, 6, 42, true)

	center := 0
	var temps []float64
	record := func(sim *Simulation) error {
		temps = append(temps, g.Cell(center).Temperature)
		return nil
	}
	// record after each solve, before the loop counter advances
	last := s.RunFuncs[len(s.RunFuncs)-1]
	s.RunFuncs = append(s.RunFuncs[:len(s.RunFuncs)-1], record, last)

	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	center = g.CellOf(Vector3{1, 1, 1})
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}

	if len(temps) != 6 {
		t.Fatalf("recorded %d iterations, want 6", len(temps))
	}
	// loops 0-3 run the fixed-temperature solver
	for l := 0; l < 4; l++ {
		if temps[l] != 8000. {
			t.Errorf("loop %d changed the temperature to %g during warm-up", l, temps[l])
		}
	}
}

func TestBitwiseReproducibility(t *testing.T) {
	if testing.Short() {
		t.Skip("full transport test")
	}
	run := func() *RegularGrid {
		s, g := stromgrenSim(t, 16, 3, 20000, 2, 77, false)
		if err := s.Init(); err != nil {
			t.Fatal(err)
		}
		if err := s.Run(); err != nil {
			t.Fatal(err)
		}
		return g
	}
	g1 := run()
	g2 := run()

	for i := 0; i < g1.NumCells(); i++ {
		c1, c2 := g1.Cell(i), g2.Cell(i)
		if c1.IonFrac != c2.IonFrac {
			t.Fatalf("cell %d: ionic fractions differ between identical runs", i)
		}
		if c1.Temperature != c2.Temperature {
			t.Fatalf("cell %d: temperatures differ between identical runs", i)
		}
		if c1.MeanIntensity != c2.MeanIntensity {
			t.Fatalf("cell %d: accumulators differ between identical runs", i)
		}
	}
}
