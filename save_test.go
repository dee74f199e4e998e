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
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spatialmodel/ionmc/science/atomic"
)

func TestGobGridWriter(t *testing.T) {
	dir, err := ioutil.TempDir("", "ionmc")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	g := newNeutralTestGrid(t, [3]int{2, 2, 2}, [3]bool{}, 1.e8)
	g.Cell(3).IonFrac[atomic.HI] = 0.25

	w, err := NewGobGridWriter(dir, "snapshot", map[string]string{"HIonized": "1 - HI"})
	if err != nil {
		t.Fatal(err)
	}
	s := &Simulation{Grid: g}
	if err := w.Write(4, s); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "snapshot_004.gob"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var snaps []CellSnapshot
	if err := gob.NewDecoder(f).Decode(&snaps); err != nil {
		t.Fatal(err)
	}
	if len(snaps) != g.NumCells() {
		t.Fatalf("snapshot has %d cells, want %d", len(snaps), g.NumCells())
	}
	for i, snap := range snaps {
		c := g.Cell(i)
		if snap.Temperature != c.Temperature || snap.IonFrac != c.IonFrac {
			t.Errorf("cell %d state not preserved in snapshot", i)
		}
		want := 1. - c.IonFrac[atomic.HI]
		if got := snap.Derived["HIonized"]; math.Abs(got-want) > 1.e-12 {
			t.Errorf("cell %d derived output %g, want %g", i, got, want)
		}
	}
}

func TestGobGridWriterBadExpression(t *testing.T) {
	dir, err := ioutil.TempDir("", "ionmc")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	if _, err := NewGobGridWriter(dir, "snapshot", map[string]string{"bad": "1 +"}); err == nil {
		t.Error("malformed output expression was accepted")
	}
}
