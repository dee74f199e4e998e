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

// Package atomic holds the atomic physics used by the photoionization
// code: the ion enumeration, photoionization cross sections, recombination
// rates, charge-transfer recombination rates, and collisionally excited
// line cooling. Everything in this package is a pure function of frequency,
// temperature and density; no state is carried between calls.
package atomic

// Ion enumerates the photoionization targets tracked by the radiation
// field. The order is fixed: per-cell arrays are indexed by it.
type Ion int

// Tracked ions. The name is the absorbing stage: ionizing CII produces CIII.
const (
	HI Ion = iota
	HeI
	CII
	CIII
	NI
	NII
	NIII
	OI
	OII
	NeI
	NeII
	SII
	SIII
	SIV

	// NumIons is the number of tracked ions.
	NumIons
)

var ionNames = []string{
	"HI", "HeI",
	"CII", "CIII",
	"NI", "NII", "NIII",
	"OI", "OII",
	"NeI", "NeII",
	"SII", "SIII", "SIV",
}

func (i Ion) String() string {
	if i < 0 || i >= NumIons {
		return "invalid ion"
	}
	return ionNames[i]
}

// Element enumerates the chemical elements with tracked ions.
type Element int

// Tracked elements.
const (
	H Element = iota
	He
	C
	N
	O
	Ne
	S

	// NumElements is the number of tracked elements.
	NumElements
)

var elementNames = []string{"H", "He", "C", "N", "O", "Ne", "S"}

func (e Element) String() string {
	if e < 0 || e >= NumElements {
		return "invalid element"
	}
	return elementNames[e]
}

// Ions returns the tracked ions of element e, ordered by increasing
// ionization stage. Each element has one more stage than tracked ions;
// the fraction of the final stage is the remainder after the tracked ones.
func (e Element) Ions() []Ion {
	return elementIons[e]
}

var elementIons = [NumElements][]Ion{
	H:  {HI},
	He: {HeI},
	C:  {CII, CIII},
	N:  {NI, NII, NIII},
	O:  {OI, OII},
	Ne: {NeI, NeII},
	S:  {SII, SIII, SIV},
}

// ElementOf returns the element ion i belongs to.
func ElementOf(i Ion) Element {
	return ionElements[i]
}

var ionElements = [NumIons]Element{
	HI:   H,
	HeI:  He,
	CII:  C,
	CIII: C,
	NI:   N,
	NII:  N,
	NIII: N,
	OI:   O,
	OII:  O,
	NeI:  Ne,
	NeII: Ne,
	SII:  S,
	SIII: S,
	SIV:  S,
}

// Physical constants (SI).
const (
	// Planck is the Planck constant [J s].
	Planck = 6.62607015e-34
	// Boltzmann is the Boltzmann constant [J/K].
	Boltzmann = 1.380649e-23
	// ElectronVolt is one electron volt [J].
	ElectronVolt = 1.602176634e-19
	// HIonizingFrequency is the hydrogen ionization threshold [Hz].
	HIonizingFrequency = 3.289e15
)

// FrequencyFromEnergy converts a photon energy in eV to a frequency in Hz.
func FrequencyFromEnergy(eV float64) float64 {
	return eV * ElectronVolt / Planck
}

// IonizationThreshold returns the ionization threshold frequency of ion i
// [Hz].
func IonizationThreshold(i Ion) float64 {
	return FrequencyFromEnergy(ionizationEnergies[i])
}

// Ionization threshold energies [eV].
var ionizationEnergies = [NumIons]float64{
	HI:   13.598,
	HeI:  24.587,
	CII:  24.383,
	CIII: 47.888,
	NI:   14.534,
	NII:  29.601,
	NIII: 47.449,
	OI:   13.618,
	OII:  35.121,
	NeI:  21.565,
	NeII: 40.963,
	SII:  23.338,
	SIII: 34.790,
	SIV:  47.222,
}

// Abundances holds number abundances relative to hydrogen.
type Abundances struct {
	AHe, AC, AN, AO, ANe, AS float64
}

// DefaultAbundances are the solar-neighbourhood values used when the
// parameter file does not override them.
func DefaultAbundances() Abundances {
	return Abundances{
		AHe: 0.1,
		AC:  2.2e-4,
		AN:  4.0e-5,
		AO:  3.3e-4,
		ANe: 5.0e-5,
		AS:  9.0e-6,
	}
}

// Abundance returns the number abundance of element e relative to hydrogen.
func (a Abundances) Abundance(e Element) float64 {
	switch e {
	case H:
		return 1.
	case He:
		return a.AHe
	case C:
		return a.AC
	case N:
		return a.AN
	case O:
		return a.AO
	case Ne:
		return a.ANe
	case S:
		return a.AS
	}
	panic("atomic: abundance of invalid element")
}
