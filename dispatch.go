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
	"math/rand"
	"sync"
)

// WorkDistributor spreads photon batches over a fixed set of workers.
// Each worker owns a dedicated RNG seeded from (seed, rank, workerID)
// and a shadow accumulator; shadows are reduced into the grid in
// ascending worker order, so a run is bitwise reproducible for a fixed
// (seed, worker count, rank count).
type WorkDistributor struct {
	workers int
	rngs    []*rand.Rand
	shadows []*Accumulators
}

// NewWorkDistributor creates a distributor with the given number of
// workers for the given grid. rank is the index of this process in an
// outer distributed run; single-process runs pass 0.
func NewWorkDistributor(workers int, seed int64, rank int, g Grid) *WorkDistributor {
	if workers < 1 {
		workers = 1
	}
	d := &WorkDistributor{
		workers: workers,
		rngs:    make([]*rand.Rand, workers),
		shadows: make([]*Accumulators, workers),
	}
	for i := 0; i < workers; i++ {
		d.rngs[i] = NewWorkerRNG(seed, rank, workers, i)
		d.shadows[i] = NewAccumulators(g.NumCells(), true)
	}
	return d
}

// Workers returns the worker count.
func (d *WorkDistributor) Workers() int { return d.workers }

// Shoot samples and propagates n photon packets in parallel, reduces
// the worker shadows into the grid, and returns the total emitted
// weight and the per-terminal-type weight counters for this batch.
// Heating integrals are recorded only when heat is set.
func (d *WorkDistributor) Shoot(g Grid, src *PhotonSource, n int, heat bool) (float64, [NumPhotonTypes]float64) {
	weights := make([]float64, d.workers)
	counts := make([][NumPhotonTypes]float64, d.workers)

	var wg sync.WaitGroup
	wg.Add(d.workers)
	for w := 0; w < d.workers; w++ {
		// worker w shoots its share of the batch
		nw := n / d.workers
		if w < n%d.workers {
			nw++
		}
		go func(w, nw int) {
			defer wg.Done()
			rng := d.rngs[w]
			acc := d.shadows[w]
			acc.heat = heat
			for i := 0; i < nw; i++ {
				p := src.Sample(rng)
				weights[w] += p.Weight
				ShootPhoton(g, src, &p, rng, acc, &counts[w])
			}
		}(w, nw)
	}
	wg.Wait()

	// fixed reduction order: ascending worker index
	var weight float64
	var total [NumPhotonTypes]float64
	for w := 0; w < d.workers; w++ {
		d.shadows[w].Reduce(g)
		weight += weights[w]
		for t := range total {
			total[t] += counts[w][t]
		}
	}
	return weight, total
}
