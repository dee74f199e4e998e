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

package spectrum

import (
	"math/rand"
	"testing"

	"github.com/spatialmodel/ionmc/science/atomic"
)

func TestPlanckRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := NewPlanck(4.e4)
	if p.TotalFlux() <= 0 {
		t.Fatalf("Planck flux not positive: %g", p.TotalFlux())
	}
	for i := 0; i < 10000; i++ {
		nu := p.RandomFrequency(rng)
		if nu < minIonizingFrequency || nu > maxIonizingFrequency {
			t.Fatalf("Planck frequency %g outside ionizing range", nu)
		}
	}
}

func TestPlanckHardensWithTemperature(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cool := NewPlanck(2.e4)
	hot := NewPlanck(8.e4)
	var meanCool, meanHot float64
	const n = 200000
	for i := 0; i < n; i++ {
		meanCool += cool.RandomFrequency(rng)
		meanHot += hot.RandomFrequency(rng)
	}
	if meanHot/float64(n) <= meanCool/float64(n) {
		t.Errorf("hotter blackbody should emit harder ionizing photons: %g vs %g",
			meanHot/float64(n), meanCool/float64(n))
	}
}

func TestFlatMeanEnergy(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var f Flat
	var mean float64
	const n = 1000000
	for i := 0; i < n; i++ {
		mean += f.RandomFrequency(rng)
	}
	mean /= n
	// flat in [13.6, 54.4] eV: the mean is 34 eV
	want := atomic.FrequencyFromEnergy(34.)
	if d := (mean - want) / want; d > 0.01 || d < -0.01 {
		t.Errorf("flat spectrum mean frequency %g, want %g within 1%%", mean, want)
	}
}

func TestLymanContinuumNearThreshold(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var xs atomic.VernerCrossSections
	h := NewHydrogenLymanContinuum(xs)
	nuth := atomic.IonizationThreshold(atomic.HI)
	var mean float64
	const n = 100000
	for i := 0; i < n; i++ {
		nu := h.RandomFrequencyAt(rng, 8000.)
		if nu < nuth {
			t.Fatalf("Lyman continuum frequency %g below threshold %g", nu, nuth)
		}
		mean += nu
	}
	mean /= n
	// at 8000 K the continuum hugs the threshold: kT/h is about 5% of
	// the threshold frequency
	if mean > 1.2*nuth {
		t.Errorf("Lyman continuum mean %g too far above threshold %g", mean, nuth)
	}
}

func TestHeliumLymanContinuumRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var xs atomic.VernerCrossSections
	he := NewHeliumLymanContinuum(xs)
	nuth := atomic.IonizationThreshold(atomic.HeI)
	for i := 0; i < 10000; i++ {
		if nu := he.RandomFrequencyAt(rng, 1.e4); nu < nuth {
			t.Fatalf("He Lyman continuum frequency %g below threshold %g", nu, nuth)
		}
	}
}

func TestHeliumTwoPhotonRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := NewHeliumTwoPhotonContinuum()
	lo := atomic.HIonizingFrequency
	hi := 1.6 * atomic.HIonizingFrequency
	for i := 0; i < 10000; i++ {
		nu := h.RandomFrequencyAt(rng, 8000.)
		if nu < lo || nu > hi {
			t.Fatalf("two-photon frequency %g outside [%g, %g]", nu, lo, hi)
		}
	}
}

func TestTableCumulativeMonotonic(t *testing.T) {
	freq := frequencyGrid(1., 2., 10)
	weights := []float64{1, 2, 3, 4, 5, 4, 3, 2, 1, 1}
	tab := newTable(freq, weights)
	for i := 1; i < len(tab.cum); i++ {
		if tab.cum[i] < tab.cum[i-1] {
			t.Fatalf("cumulative distribution not monotonic at %d", i)
		}
	}
	if tab.cum[len(tab.cum)-1] != 1 {
		t.Errorf("cumulative distribution ends at %g, want 1", tab.cum[len(tab.cum)-1])
	}
}
