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

// Package ionmcutil holds the configuration and command-line layer of
// the ionmc photoionization code: parameter file handling, collaborator
// construction, logging setup and the cobra commands.
package ionmcutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/spatialmodel/ionmc"
	"github.com/spatialmodel/ionmc/science/atomic"
	"github.com/spatialmodel/ionmc/spectrum"
)

// paramOption is one recognised parameter file key.
type paramOption struct {
	name       string
	usage      string
	defaultVal interface{}
}

// paramOptions are the recognised parameter file keys. Their order is
// the order of the used-values dump. Keys not in this list are a
// configuration error.
var paramOptions = []paramOption{
	{"random_seed", "Seed for the per-worker random number generators.", 42},
	{"max_number_iterations", "Cap on the number of outer iterations.", 10},
	{"number of photons", "Initial photon budget per outer iteration.", 100},
	{"pahfac", "Scaling factor for PAH photoelectric heating.", 1.0},
	{"calculate_temperature", "Enable the self-consistent temperature solve after warm-up.", true},
	{"densitygrid.ncell", "Number of grid cells along each axis.", []interface{}{32, 32, 32}},
	{"densitygrid.box_anchor", "Minimum corner of the simulation box [m].", []interface{}{0., 0., 0.}},
	{"densitygrid.box_sides", "Side lengths of the simulation box [m].", []interface{}{1., 1., 1.}},
	{"densitygrid.periodic", "Per-axis periodicity flags.", []interface{}{false, false, false}},
	{"densityfunction.type", "Density function type (homogeneous).", "homogeneous"},
	{"densityfunction.density", "Hydrogen number density [m^-3].", 1.e8},
	{"densityfunction.temperature", "Initial gas temperature [K].", 8000.},
	{"abundances.helium", "Helium abundance by number relative to hydrogen.", 0.1},
	{"abundances.carbon", "Carbon abundance.", 2.2e-4},
	{"abundances.nitrogen", "Nitrogen abundance.", 4.0e-5},
	{"abundances.oxygen", "Oxygen abundance.", 3.3e-4},
	{"abundances.neon", "Neon abundance.", 5.0e-5},
	{"abundances.sulphur", "Sulphur abundance.", 9.0e-6},
	{"photonsourcedistribution.type", "Discrete source distribution type (singlestar, none).", "singlestar"},
	{"photonsourcedistribution.position", "Single star position [m].", []interface{}{0.5, 0.5, 0.5}},
	{"photonsourcedistribution.luminosity", "Single star ionizing luminosity [s^-1].", 4.26e49},
	{"photonsourcespectrum.type", "Discrete source spectrum type (planck, monochromatic, flat, none).", "planck"},
	{"photonsourcespectrum.temperature", "Effective temperature of the Planck spectrum [K].", 4.e4},
	{"photonsourcespectrum.frequency", "Frequency of the monochromatic spectrum [Hz].", 3.289e15},
	{"continuousphotonsource.type", "Continuous source type (sphere, none).", "none"},
	{"continuousphotonsource.radius", "Radius of the emitting sphere [m].", 0.},
	{"continuousphotonsourcespectrum.type", "Continuous source spectrum type (planck, none).", "none"},
	{"continuousphotonsourcespectrum.temperature", "Effective temperature of the continuous Planck spectrum [K].", 4.e4},
	{"photonnumberconvergence.tolerance", "Chi-squared tolerance on the intensity field between substeps.", 0.01},
	{"photonnumberconvergence.minimum_photons", "Minimum photons per iteration before convergence can be declared.", 0},
	{"iterationconvergence.type", "Iteration convergence checker type (passive, neutralfraction).", "passive"},
	{"iterationconvergence.tolerance", "Tolerance on the neutral fraction field between iterations.", 0.01},
	{"densitygridwriter.type", "Snapshot writer type (gob, none).", "gob"},
	{"densitygridwriter.folder", "Output directory for snapshots and the used-values dump.", "."},
	{"densitygridwriter.prefix", "Snapshot file name prefix.", "snapshot"},
}

// LoadParams reads the parameter file at path, applies the defaults and
// rejects unknown keys.
func LoadParams(path string) (*viper.Viper, error) {
	cfg := viper.New()
	for _, o := range paramOptions {
		cfg.SetDefault(o.name, o.defaultVal)
	}
	cfg.SetConfigFile(path)
	cfg.SetConfigType("yaml")
	if err := cfg.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("ionmcutil: reading parameter file %s: %v", path, err)
	}

	// a second viper without defaults sees only the keys the file
	// actually contains
	raw := viper.New()
	raw.SetConfigFile(path)
	raw.SetConfigType("yaml")
	if err := raw.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("ionmcutil: reading parameter file %s: %v", path, err)
	}
	known := make(map[string]bool, len(paramOptions))
	for _, o := range paramOptions {
		known[o.name] = true
	}
	for _, k := range raw.AllKeys() {
		if !known[k] {
			return nil, fmt.Errorf("ionmcutil: unknown parameter %q in %s",
				strings.Replace(k, ".", ":", -1), path)
		}
	}
	return cfg, nil
}

// WriteUsedValues dumps every recognised parameter with the value the
// run actually uses (including defaulted ones) to
// <folder>/parameters-usedvalues.param, and returns the file path.
func WriteUsedValues(cfg *viper.Viper, folder string) (string, error) {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", fmt.Errorf("ionmcutil: creating output folder: %v", err)
	}
	path := filepath.Join(folder, "parameters-usedvalues.param")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("ionmcutil: writing used values: %v", err)
	}
	defer f.Close()
	for _, o := range paramOptions {
		name := strings.Replace(o.name, ".", ":", -1)
		if _, err := fmt.Fprintf(f, "%s: %v\n", name, cfg.Get(o.name)); err != nil {
			return "", fmt.Errorf("ionmcutil: writing used values: %v", err)
		}
	}
	return path, nil
}

// vector3 reads a 3-component float slice parameter.
func vector3(cfg *viper.Viper, key string) (ionmc.Vector3, error) {
	raw, err := cast.ToSliceE(cfg.Get(key))
	if err != nil || len(raw) != 3 {
		return ionmc.Vector3{}, fmt.Errorf("ionmcutil: parameter %q must be a 3-vector", key)
	}
	var v [3]float64
	for i, r := range raw {
		if v[i], err = cast.ToFloat64E(r); err != nil {
			return ionmc.Vector3{}, fmt.Errorf("ionmcutil: parameter %q: %v", key, err)
		}
	}
	return ionmc.Vector3{X: v[0], Y: v[1], Z: v[2]}, nil
}

// intTriple reads a 3-component int slice parameter.
func intTriple(cfg *viper.Viper, key string) ([3]int, error) {
	var out [3]int
	raw, err := cast.ToSliceE(cfg.Get(key))
	if err != nil || len(raw) != 3 {
		return out, fmt.Errorf("ionmcutil: parameter %q must have 3 components", key)
	}
	for i, r := range raw {
		if out[i], err = cast.ToIntE(r); err != nil {
			return out, fmt.Errorf("ionmcutil: parameter %q: %v", key, err)
		}
	}
	return out, nil
}

// boolTriple reads a 3-component bool slice parameter.
func boolTriple(cfg *viper.Viper, key string) ([3]bool, error) {
	var out [3]bool
	raw, err := cast.ToSliceE(cfg.Get(key))
	if err != nil || len(raw) != 3 {
		return out, fmt.Errorf("ionmcutil: parameter %q must have 3 components", key)
	}
	for i, r := range raw {
		if out[i], err = cast.ToBoolE(r); err != nil {
			return out, fmt.Errorf("ionmcutil: parameter %q: %v", key, err)
		}
	}
	return out, nil
}

func abundances(cfg *viper.Viper) atomic.Abundances {
	return atomic.Abundances{
		AHe: cfg.GetFloat64("abundances.helium"),
		AC:  cfg.GetFloat64("abundances.carbon"),
		AN:  cfg.GetFloat64("abundances.nitrogen"),
		AO:  cfg.GetFloat64("abundances.oxygen"),
		ANe: cfg.GetFloat64("abundances.neon"),
		AS:  cfg.GetFloat64("abundances.sulphur"),
	}
}

// NewSimulation builds the full simulation from the parameter file
// configuration: grid, density function, photon source, solvers,
// convergence checkers, snapshot writer and work dispatcher. The grid
// is NOT initialized; the returned simulation's InitFuncs do that when
// Init is called.
func NewSimulation(cfg *viper.Viper, threads int, log *logrus.Logger) (*ionmc.Simulation, error) {
	xs := atomic.VernerCrossSections{}
	rec := atomic.VernerRecombinationRates{}
	ct := atomic.KingdonFerlandChargeTransferRates{}
	lines := atomic.TabulatedLineCoolingData{}
	ab := abundances(cfg)

	anchor, err := vector3(cfg, "densitygrid.box_anchor")
	if err != nil {
		return nil, err
	}
	sides, err := vector3(cfg, "densitygrid.box_sides")
	if err != nil {
		return nil, err
	}
	ncell, err := intTriple(cfg, "densitygrid.ncell")
	if err != nil {
		return nil, err
	}
	periodic, err := boolTriple(cfg, "densitygrid.periodic")
	if err != nil {
		return nil, err
	}
	grid, err := ionmc.NewRegularGrid(anchor, sides, ncell, periodic)
	if err != nil {
		return nil, err
	}

	var df ionmc.DensityFunction
	switch t := cfg.GetString("densityfunction.type"); t {
	case "homogeneous":
		df = ionmc.Homogeneous{
			NumberDensity: cfg.GetFloat64("densityfunction.density"),
			Temperature:   cfg.GetFloat64("densityfunction.temperature"),
		}
	default:
		return nil, fmt.Errorf("ionmcutil: unknown density function type %q", t)
	}

	var dist ionmc.PhotonSourceDistribution
	switch t := cfg.GetString("photonsourcedistribution.type"); t {
	case "singlestar":
		pos, err := vector3(cfg, "photonsourcedistribution.position")
		if err != nil {
			return nil, err
		}
		dist = ionmc.SingleStar{
			Pos: pos,
			Lum: cfg.GetFloat64("photonsourcedistribution.luminosity"),
		}
	case "none":
	default:
		return nil, fmt.Errorf("ionmcutil: unknown photon source distribution type %q", t)
	}

	var discreteSpec spectrum.Spectrum
	switch t := cfg.GetString("photonsourcespectrum.type"); t {
	case "planck":
		discreteSpec = spectrum.NewPlanck(cfg.GetFloat64("photonsourcespectrum.temperature"))
	case "monochromatic":
		discreteSpec = spectrum.Monochromatic{Frequency: cfg.GetFloat64("photonsourcespectrum.frequency")}
	case "flat":
		discreteSpec = spectrum.Flat{}
	case "none":
	default:
		return nil, fmt.Errorf("ionmcutil: unknown photon source spectrum type %q", t)
	}
	if dist == nil && discreteSpec != nil {
		log.Warn("discrete photon source spectrum provided without discrete sources; the spectrum will be ignored")
		discreteSpec = nil
	}

	var cont ionmc.IsotropicContinuousPhotonSource
	switch t := cfg.GetString("continuousphotonsource.type"); t {
	case "sphere":
		center := anchor.Add(sides.Scale(0.5))
		cont = ionmc.EmittingSphere{
			Center: center,
			Radius: cfg.GetFloat64("continuousphotonsource.radius"),
		}
	case "none":
	default:
		return nil, fmt.Errorf("ionmcutil: unknown continuous photon source type %q", t)
	}

	var contSpec spectrum.Spectrum
	switch t := cfg.GetString("continuousphotonsourcespectrum.type"); t {
	case "planck":
		contSpec = spectrum.NewPlanck(cfg.GetFloat64("continuousphotonsourcespectrum.temperature"))
	case "none":
	default:
		return nil, fmt.Errorf("ionmcutil: unknown continuous photon source spectrum type %q", t)
	}
	if cont == nil && contSpec != nil {
		log.Warn("continuous photon source spectrum provided without a continuous source; the spectrum will be ignored")
		contSpec = nil
	}

	src, err := ionmc.NewPhotonSource(dist, discreteSpec, cont, contSpec, ab, xs)
	if err != nil {
		return nil, err
	}
	log.Infof("total luminosity of discrete sources: %g s^-1", src.TotalLuminosity()*src.DiscreteFraction())
	log.Infof("%.1f%% of the ionizing radiation is emitted by discrete sources", 100.*src.DiscreteFraction())

	q := src.TotalLuminosity()
	ic := &ionmc.IonizationStateCalculator{
		Luminosity:     q,
		Abundances:     ab,
		Recombination:  rec,
		ChargeTransfer: ct,
	}
	tc := &ionmc.TemperatureCalculator{
		Luminosity:     q,
		PAHFac:         cfg.GetFloat64("pahfac"),
		Abundances:     ab,
		LineCooling:    lines,
		Recombination:  rec,
		ChargeTransfer: ct,
	}

	photonCheck := &ionmc.ChiSquaredPhotonNumberConvergenceChecker{
		Grid:           grid,
		Tolerance:      cfg.GetFloat64("photonnumberconvergence.tolerance"),
		MinimumPhotons: cfg.GetInt("photonnumberconvergence.minimum_photons"),
	}
	var iterCheck ionmc.IterationConvergenceChecker
	switch t := cfg.GetString("iterationconvergence.type"); t {
	case "passive":
		iterCheck = ionmc.PassiveIterationConvergenceChecker{}
	case "neutralfraction":
		iterCheck = &ionmc.NeutralFractionIterationConvergenceChecker{
			Tolerance: cfg.GetFloat64("iterationconvergence.tolerance"),
		}
	default:
		return nil, fmt.Errorf("ionmcutil: unknown iteration convergence checker type %q", t)
	}

	var writer ionmc.DensityGridWriter
	switch t := cfg.GetString("densitygridwriter.type"); t {
	case "gob":
		writer, err = ionmc.NewGobGridWriter(
			cfg.GetString("densitygridwriter.folder"),
			cfg.GetString("densitygridwriter.prefix"),
			map[string]string{"HIonized": "1 - HI"})
		if err != nil {
			return nil, err
		}
	case "none":
	default:
		return nil, fmt.Errorf("ionmcutil: unknown density grid writer type %q", t)
	}

	dispatcher := ionmc.NewWorkDistributor(threads, int64(cfg.GetInt("random_seed")), 0, grid)
	log.Infof("program will use %d threads for photon shooting", dispatcher.Workers())

	s := &ionmc.Simulation{
		Grid:            grid,
		Source:          src,
		Log:             log,
		CalcTemperature: cfg.GetBool("calculate_temperature"),
		NumPhotons:      cfg.GetInt("number of photons"),
		Block:           ionmc.CellBlock{First: 0, Last: grid.NumCells()},
		NumRanks:        1,
	}
	s.InitFuncs = []ionmc.DomainManipulator{
		ionmc.InitGrid(df, ab),
		ionmc.WriteSnapshot(writer),
	}
	s.RunFuncs = []ionmc.DomainManipulator{
		ionmc.NextPhotonBudget(iterCheck),
		ionmc.ResetAccumulators(),
		ionmc.ShootPhotons(dispatcher, photonCheck),
		ionmc.SolveState(ic, tc),
		ionmc.IterationCheck(iterCheck, cfg.GetInt("max_number_iterations")),
	}
	s.CleanupFuncs = []ionmc.DomainManipulator{
		ionmc.WriteSnapshot(writer),
	}
	return s, nil
}
