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

package ionmcutil

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spatialmodel/ionmc/science/atomic"
)

func writeParamFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "test.param")
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadParamsDefaults(t *testing.T) {
	dir, err := ioutil.TempDir("", "ionmc")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := writeParamFile(t, dir, "number of photons: 57\n")
	cfg, err := LoadParams(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := cfg.GetInt("number of photons"); n != 57 {
		t.Errorf("number of photons = %d, want 57", n)
	}
	// defaulted keys
	if s := cfg.GetInt("random_seed"); s != 42 {
		t.Errorf("random_seed default = %d, want 42", s)
	}
	if n := cfg.GetInt("max_number_iterations"); n != 10 {
		t.Errorf("max_number_iterations default = %d, want 10", n)
	}
	if f := cfg.GetFloat64("pahfac"); f != 1.0 {
		t.Errorf("pahfac default = %g, want 1.0", f)
	}
	if !cfg.GetBool("calculate_temperature") {
		t.Error("calculate_temperature default = false, want true")
	}
}

func TestLoadParamsUnknownKey(t *testing.T) {
	dir, err := ioutil.TempDir("", "ionmc")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := writeParamFile(t, dir, "random_sede: 17\n")
	if _, err := LoadParams(path); err == nil {
		t.Error("unknown parameter key was accepted")
	}
}

func TestWriteUsedValues(t *testing.T) {
	dir, err := ioutil.TempDir("", "ionmc")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := writeParamFile(t, dir, "random_seed: 7\n")
	cfg, err := LoadParams(path)
	if err != nil {
		t.Fatal(err)
	}
	dump, err := WriteUsedValues(cfg, dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(dump) != "parameters-usedvalues.param" {
		t.Errorf("dump file name %q", dump)
	}
	b, err := ioutil.ReadFile(dump)
	if err != nil {
		t.Fatal(err)
	}
	content := string(b)
	if !strings.Contains(content, "random_seed: 7") {
		t.Errorf("dump is missing the explicitly set value:\n%s", content)
	}
	if !strings.Contains(content, "max_number_iterations: 10") {
		t.Errorf("dump is missing a defaulted value:\n%s", content)
	}
	if !strings.Contains(content, "densitygridwriter:folder") {
		t.Errorf("dump is missing the nested writer key:\n%s", content)
	}
}

func TestNewSimulationLeavesGridUntouched(t *testing.T) {
	dir, err := ioutil.TempDir("", "ionmc")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := writeParamFile(t, dir,
		"densitygridwriter:\n  folder: "+dir+"\n")
	cfg, err := LoadParams(path)
	if err != nil {
		t.Fatal(err)
	}
	log, err := NewLogger(false, filepath.Join(dir, "test.log"))
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSimulation(cfg, 1, log)
	if err != nil {
		t.Fatal(err)
	}
	// construction must not initialize the grid or touch accumulators
	for i := 0; i < s.Grid.NumCells(); i++ {
		c := s.Grid.Cell(i)
		if c.NumberDensity != 0 || c.Temperature != 0 {
			t.Fatalf("cell %d initialized during construction", i)
		}
		for ion := atomic.Ion(0); ion < atomic.NumIons; ion++ {
			if c.MeanIntensity[ion] != 0 {
				t.Fatalf("cell %d accumulator touched during construction", i)
			}
		}
	}
}

func TestDryRun(t *testing.T) {
	dir, err := ioutil.TempDir("", "ionmc")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := writeParamFile(t, dir,
		"number of photons: 50\ndensitygridwriter:\n  folder: "+dir+"\n")
	err = Run(RunOptions{
		Params:  path,
		Threads: 1,
		LogFile: filepath.Join(dir, "dry.log"),
		DryRun:  true,
	})
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	// the used-values dump exists
	if _, err := os.Stat(filepath.Join(dir, "parameters-usedvalues.param")); err != nil {
		t.Errorf("dry run did not write the used-values dump: %v", err)
	}
	// no snapshots were written
	matches, err := filepath.Glob(filepath.Join(dir, "snapshot_*.gob"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("dry run wrote snapshots: %v", matches)
	}
}

func TestRunMissingParams(t *testing.T) {
	if err := Run(RunOptions{}); err == nil {
		t.Error("run without a parameter file was accepted")
	}
}
