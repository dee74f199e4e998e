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

import "math/rand"

// NewWorkerRNG returns the random number generator for one worker. The
// stream is a deterministic function of (seed, rank, workerID): two runs
// with the same seed, worker count and rank count draw identical
// numbers. Workers never share a generator and are never re-seeded
// mid-run.
func NewWorkerRNG(seed int64, rank, workers, workerID int) *rand.Rand {
	return rand.New(rand.NewSource(seed + int64(rank*workers+workerID)))
}
