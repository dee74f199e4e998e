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
	"testing"

	"github.com/GaryBoone/GoStats/stats"

	"github.com/spatialmodel/ionmc/science/atomic"
	"github.com/spatialmodel/ionmc/spectrum"
)

func newTestSource(t *testing.T) *PhotonSource {
	t.Helper()
	src, err := NewPhotonSource(
		SingleStar{Pos: Vector3{0.5, 0.5, 0.5}, Lum: 1.},
		spectrum.Flat{},
		nil, nil,
		atomic.Abundances{AHe: 0.1},
		atomic.VernerCrossSections{})
	if err != nil {
		t.Fatal(err)
	}
	return src
}

func TestSourceIsotropy(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}
	rng := rand.New(rand.NewSource(42))
	src := newTestSource(t)
	src.SetPhotonBudget(1000000)

	var dx, dy, dz, energy stats.Stats
	const n = 1000000
	for i := 0; i < n; i++ {
		p := src.Sample(rng)
		if p.Position != (Vector3{0.5, 0.5, 0.5}) {
			t.Fatalf("photon emitted at %+v, want the star position", p.Position)
		}
		if math.Abs(p.Direction.Norm()-1.) > 1.e-12 {
			t.Fatalf("direction not normalised: %+v", p.Direction)
		}
		dx.Update(p.Direction.X)
		dy.Update(p.Direction.Y)
		dz.Update(p.Direction.Z)
		energy.Update(p.Frequency)
	}

	for _, d := range []*stats.Stats{&dx, &dy, &dz} {
		if m := math.Abs(d.Mean()); m > 2.e-3 {
			t.Errorf("mean direction component %g, want < 2e-3", m)
		}
	}
	// flat spectrum in [13.6, 54.4] eV: mean energy 34 eV
	want := atomic.FrequencyFromEnergy(34.)
	if d := math.Abs(energy.Mean()-want) / want; d > 0.01 {
		t.Errorf("mean photon frequency off by %g%%, want < 1%%", 100*d)
	}
}

func TestSetPhotonBudget(t *testing.T) {
	src := newTestSource(t)

	// the discrete channel enforces 10 photons per source
	if n := src.SetPhotonBudget(3); n != 10 {
		t.Errorf("budget 3 with one source: got %d photons, want 10", n)
	}
	if n := src.SetPhotonBudget(1000); n != 1000 {
		t.Errorf("budget 1000: got %d photons", n)
	}
	// per-packet weight is L/N
	p := src.Sample(rand.New(rand.NewSource(1)))
	if want := 1. / 1000.; math.Abs(p.Weight-want)/want > 1.e-12 {
		t.Errorf("packet weight %g, want %g", p.Weight, want)
	}
}

func TestSourceWeightValidation(t *testing.T) {
	_, err := NewPhotonSource(
		&SourceTable{
			Positions:       []Vector3{{0.2, 0.5, 0.5}, {0.8, 0.5, 0.5}},
			Weights:         []float64{0.5, 0.4},
			TotalLuminosity: 1.,
		},
		spectrum.Flat{},
		nil, nil,
		atomic.Abundances{AHe: 0.1},
		atomic.VernerCrossSections{})
	if err == nil {
		t.Error("weights summing to 0.9 were accepted")
	}
}

func TestSourcePairValidation(t *testing.T) {
	_, err := NewPhotonSource(
		SingleStar{Pos: Vector3{0.5, 0.5, 0.5}, Lum: 1.},
		nil, nil, nil,
		atomic.Abundances{}, atomic.VernerCrossSections{})
	if err == nil {
		t.Error("discrete sources without a spectrum were accepted")
	}
}

func TestReemissionBranching(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}
	rng := rand.New(rand.NewSource(42))
	src := newTestSource(t)

	cell := Cell{NumberDensity: 1.e8, Temperature: 8000.}
	cell.IonFrac[atomic.HI] = 0.5
	cell.IonFrac[atomic.HeI] = 0.5
	cell.SetReemissionProbabilities(cell.Temperature)

	// at 13.6 eV the helium cross section vanishes, so every
	// absorption is a hydrogen absorption
	const n = 1000000
	reemitted := 0
	for i := 0; i < n; i++ {
		p := Photon{Weight: 1., Type: PhotonPrimary}
		src.setCrossSections(&p, atomic.HIonizingFrequency)
		if src.Reemit(&p, &cell, rng) {
			if p.Type != PhotonDiffuseHI {
				t.Fatalf("hydrogen reemission produced type %v", p.Type)
			}
			reemitted++
		} else if p.Type != PhotonAbsorbed {
			t.Fatalf("failed reemission left type %v", p.Type)
		}
	}
	frac := float64(reemitted) / float64(n)
	if d := math.Abs(frac - cell.PHion); d > 2.e-3 {
		t.Errorf("DIFFUSE_HI fraction %g, want pHion %g within 2e-3", frac, cell.PHion)
	}
}

func TestReemissionMassBalance(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	src := newTestSource(t)

	cell := Cell{NumberDensity: 1.e8, Temperature: 8000.}
	cell.IonFrac[atomic.HI] = 0.5
	cell.IonFrac[atomic.HeI] = 0.5
	cell.SetReemissionProbabilities(cell.Temperature)

	// 30 eV opens the helium channels too
	const n = 100000
	var counts [NumPhotonTypes]int
	for i := 0; i < n; i++ {
		p := Photon{Weight: 1., Type: PhotonPrimary}
		src.setCrossSections(&p, atomic.FrequencyFromEnergy(30.))
		src.Reemit(&p, &cell, rng)
		counts[p.Type]++
	}
	if counts[PhotonPrimary] != 0 {
		t.Errorf("%d packets still tagged primary after reemission", counts[PhotonPrimary])
	}
	total := counts[PhotonDiffuseHI] + counts[PhotonDiffuseHeI] + counts[PhotonAbsorbed]
	if total != n {
		t.Errorf("outcome classes sum to %d, want %d", total, n)
	}
	// every class is populated at this frequency
	if counts[PhotonDiffuseHI] == 0 || counts[PhotonDiffuseHeI] == 0 || counts[PhotonAbsorbed] == 0 {
		t.Errorf("outcome counts %v, want all three classes populated", counts)
	}
}
