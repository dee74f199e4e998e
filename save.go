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
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Knetic/govaluate"

	"github.com/spatialmodel/ionmc/science/atomic"
)

// DensityGridWriter writes a snapshot of the grid state. The bytes it
// produces are its own business; the driver only hands it the iteration
// number.
type DensityGridWriter interface {
	Write(iteration int, s *Simulation) error
}

// CellSnapshot is the per-cell record a GobGridWriter stores.
type CellSnapshot struct {
	Midpoint      Vector3
	Volume        float64
	NumberDensity float64
	Temperature   float64
	IonFrac       [atomic.NumIons]float64
	// Derived holds the values of the configured output expressions.
	Derived map[string]float64
}

// GobGridWriter writes one gob-encoded snapshot file per call. Output
// expressions are evaluated per cell against the ion fraction fields
// (by ion name), Temperature and NumberDensity, and stored alongside
// the raw state.
type GobGridWriter struct {
	folder string
	prefix string
	exprs  map[string]*govaluate.EvaluableExpression
}

// NewGobGridWriter creates a writer that stores snapshots under folder
// with the given file name prefix. outputs maps derived variable names
// to expressions over the cell fields, e.g. {"HIonized": "1 - HI"}.
func NewGobGridWriter(folder, prefix string, outputs map[string]string) (*GobGridWriter, error) {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("ionmc: creating snapshot folder: %v", err)
	}
	w := &GobGridWriter{
		folder: folder,
		prefix: prefix,
		exprs:  make(map[string]*govaluate.EvaluableExpression),
	}
	for name, expr := range outputs {
		e, err := govaluate.NewEvaluableExpression(expr)
		if err != nil {
			return nil, fmt.Errorf("ionmc: output expression %q: %v", name, err)
		}
		w.exprs[name] = e
	}
	return w, nil
}

// Write stores the snapshot for the given iteration. The file is
// written completely or not at all: output goes to a temporary file
// that is renamed into place after a successful encode.
func (w *GobGridWriter) Write(iteration int, s *Simulation) error {
	snaps := make([]CellSnapshot, s.Grid.NumCells())
	for i := range snaps {
		c := s.Grid.Cell(i)
		snap := CellSnapshot{
			Midpoint:      c.Midpoint,
			Volume:        c.Volume,
			NumberDensity: c.NumberDensity,
			Temperature:   c.Temperature,
			IonFrac:       c.IonFrac,
		}
		if len(w.exprs) > 0 {
			params := map[string]interface{}{
				"Temperature":   c.Temperature,
				"NumberDensity": c.NumberDensity,
			}
			for ion := atomic.Ion(0); ion < atomic.NumIons; ion++ {
				params[ion.String()] = c.IonFrac[ion]
			}
			snap.Derived = make(map[string]float64, len(w.exprs))
			for name, e := range w.exprs {
				v, err := e.Evaluate(params)
				if err != nil {
					return fmt.Errorf("ionmc: evaluating output %q: %v", name, err)
				}
				f, ok := v.(float64)
				if !ok {
					return fmt.Errorf("ionmc: output %q is not numeric", name)
				}
				snap.Derived[name] = f
			}
		}
		snaps[i] = snap
	}

	name := filepath.Join(w.folder, fmt.Sprintf("%s_%03d.gob", w.prefix, iteration))
	tmp := name + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("ionmc: creating snapshot: %v", err)
	}
	if err := gob.NewEncoder(f).Encode(snaps); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("ionmc: encoding snapshot: %v", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ionmc: closing snapshot: %v", err)
	}
	return os.Rename(tmp, name)
}
