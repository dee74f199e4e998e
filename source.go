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
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/spatialmodel/ionmc/science/atomic"
	"github.com/spatialmodel/ionmc/spectrum"
)

// he19_8eVFrequency is the frequency of the HeI 19.8 eV line [Hz].
const he19_8eVFrequency = 4.788e15

// PhotonSource samples new photon packets from the discrete and
// continuous sources, and decides the fate of absorbed packets. Its
// sampling state is read-only during a substep; only SetPhotonBudget
// mutates it, between substeps.
type PhotonSource struct {
	positions []Vector3
	weights   []float64
	cumProbs  []float64

	discreteSpectrum   spectrum.Spectrum
	continuous         IsotropicContinuousPhotonSource
	continuousSpectrum spectrum.Spectrum

	abundances atomic.Abundances
	xs         atomic.CrossSections

	hLyc  spectrum.TemperatureSpectrum
	heLyc spectrum.TemperatureSpectrum
	he2pc spectrum.TemperatureSpectrum

	discreteLuminosity   float64
	continuousLuminosity float64

	numDiscrete   int
	numContinuous int

	discreteWeight   float64
	continuousWeight float64
}

// NewPhotonSource wires a photon source from its collaborators. dist and
// discreteSpec may both be nil (no discrete sources); the same holds for
// cont and continuousSpec. A distribution without a spectrum (or a
// continuous source without one) is a configuration error.
func NewPhotonSource(dist PhotonSourceDistribution, discreteSpec spectrum.Spectrum,
	cont IsotropicContinuousPhotonSource, continuousSpec spectrum.Spectrum,
	ab atomic.Abundances, xs atomic.CrossSections) (*PhotonSource, error) {

	if dist != nil && discreteSpec == nil {
		return nil, fmt.Errorf("ionmc: discrete photon sources configured without a discrete spectrum")
	}
	if cont != nil && continuousSpec == nil {
		return nil, fmt.Errorf("ionmc: continuous photon source configured without a continuous spectrum")
	}
	if dist == nil && cont == nil {
		return nil, fmt.Errorf("ionmc: no photon sources configured")
	}

	s := &PhotonSource{
		discreteSpectrum:   discreteSpec,
		continuous:         cont,
		continuousSpectrum: continuousSpec,
		abundances:         ab,
		xs:                 xs,
		hLyc:               spectrum.NewHydrogenLymanContinuum(xs),
		heLyc:              spectrum.NewHeliumLymanContinuum(xs),
		he2pc:              spectrum.NewHeliumTwoPhotonContinuum(),
	}

	if dist != nil {
		ns := dist.NumSources()
		s.positions = make([]Vector3, ns)
		s.weights = make([]float64, ns)
		s.cumProbs = make([]float64, ns)
		var cum float64
		for i := 0; i < ns; i++ {
			s.positions[i] = dist.Position(i)
			s.weights[i] = dist.Weight(i)
			cum += s.weights[i]
			s.cumProbs[i] = cum
		}
		if math.Abs(cum-1.) > 1.e-9 {
			return nil, fmt.Errorf("ionmc: discrete source weights sum to %g, not 1", cum)
		}
		s.cumProbs[ns-1] = 1.
		s.discreteLuminosity = dist.Luminosity()
	}
	if cont != nil {
		s.continuousLuminosity = cont.SurfaceArea() * continuousSpec.TotalFlux()
	}
	if s.TotalLuminosity() <= 0 {
		return nil, fmt.Errorf("ionmc: total source luminosity is not positive")
	}
	return s, nil
}

// TotalLuminosity returns the combined luminosity of the discrete and
// continuous channels [s⁻¹].
func (s *PhotonSource) TotalLuminosity() float64 {
	return s.discreteLuminosity + s.continuousLuminosity
}

// DiscreteFraction returns the fraction of the luminosity emitted by the
// discrete sources.
func (s *PhotonSource) DiscreteFraction() float64 {
	return s.discreteLuminosity / s.TotalLuminosity()
}

// SetPhotonBudget partitions n photon packets between the discrete and
// continuous channels (half each when both are present) and sets the
// per-packet statistical weights. The actual budget is returned; it can
// exceed n because each channel enforces a minimum packet count.
func (s *PhotonSource) SetPhotonBudget(n int) int {
	s.numDiscrete = 0
	s.numContinuous = 0
	if s.discreteLuminosity > 0 && s.continuousLuminosity > 0 {
		s.numDiscrete = n / 2
		s.numContinuous = n - s.numDiscrete
	} else if s.discreteLuminosity > 0 {
		s.numDiscrete = n
	} else {
		s.numContinuous = n
	}

	if s.numDiscrete > 0 {
		if min := 10 * len(s.positions); s.numDiscrete < min {
			s.numDiscrete = min
		}
		s.discreteWeight = s.discreteLuminosity / float64(s.numDiscrete)
	}
	if s.numContinuous > 0 {
		if s.numContinuous < 100 {
			s.numContinuous = 100
		}
		s.continuousWeight = s.continuousLuminosity / float64(s.numContinuous)
	}
	return s.numDiscrete + s.numContinuous
}

// randomDirection draws an isotropic unit vector.
func randomDirection(rng *rand.Rand) Vector3 {
	cost := 2.*rng.Float64() - 1.
	sint := math.Sqrt(1. - cost*cost)
	phi := 2. * math.Pi * rng.Float64()
	return Vector3{sint * math.Cos(phi), sint * math.Sin(phi), cost}
}

// setCrossSections fills the photon's cross-section cache for frequency
// nu.
func (s *PhotonSource) setCrossSections(p *Photon, nu float64) {
	p.Frequency = nu
	for ion := atomic.Ion(0); ion < atomic.NumIons; ion++ {
		p.CrossSections[ion] = s.xs.CrossSection(ion, nu)
	}
	p.CrossSectionHeCorr = s.abundances.AHe * p.CrossSections[atomic.HeI]
}

// Sample draws a new primary photon packet: from a discrete source with
// an isotropic direction, or from the continuous surface source with an
// inward direction, each with its channel's frequency spectrum and
// statistical weight.
func (s *PhotonSource) Sample(rng *rand.Rand) Photon {
	discrete := s.numDiscrete > 0
	if discrete && s.numContinuous > 0 {
		nd := float64(s.numDiscrete)
		nc := float64(s.numContinuous)
		discrete = rng.Float64()*(nd+nc) < nd
	}

	var p Photon
	p.Type = PhotonPrimary
	if discrete {
		x := rng.Float64()
		i := sort.SearchFloat64s(s.cumProbs, x)
		if i >= len(s.positions) {
			i = len(s.positions) - 1
		}
		p.Position = s.positions[i]
		p.Direction = randomDirection(rng)
		p.Weight = s.discreteWeight
		s.setCrossSections(&p, s.discreteSpectrum.RandomFrequency(rng))
	} else {
		pos, dir := s.continuous.Sample(rng)
		p.Position = pos
		p.Direction = dir
		p.Weight = s.continuousWeight
		s.setCrossSections(&p, s.continuousSpectrum.RandomFrequency(rng))
	}
	return p
}

// Reemit decides the absorption channel of photon p in cell c and
// whether it is reemitted as an ionizing photon. On reemission the
// photon gets a new frequency, a new isotropic direction and a rebuilt
// cross-section cache, and true is returned. Otherwise the photon is
// tagged PhotonAbsorbed and false is returned.
func (s *PhotonSource) Reemit(p *Photon, c *Cell, rng *rand.Rand) bool {
	xHn := c.IonFrac[atomic.HI]
	xHen := c.IonFrac[atomic.HeI]
	T := c.Temperature

	pHabs := 1. / (1. + xHen*p.CrossSectionHeCorr/(xHn*p.CrossSections[atomic.HI]))

	var nu float64
	if rng.Float64() <= pHabs {
		// absorbed by hydrogen
		if rng.Float64() <= c.PHion {
			nu = s.hLyc.RandomFrequencyAt(rng, T)
			p.Type = PhotonDiffuseHI
		} else {
			p.Type = PhotonAbsorbed
			return false
		}
	} else {
		// absorbed by helium
		switch x := rng.Float64(); {
		case x <= c.PHeEm[0]:
			nu = s.heLyc.RandomFrequencyAt(rng, T)
			p.Type = PhotonDiffuseHeI
		case x <= c.PHeEm[1]:
			nu = he19_8eVFrequency
			p.Type = PhotonDiffuseHeI
		case x <= c.PHeEm[2]:
			if rng.Float64() < 0.56 {
				nu = s.he2pc.RandomFrequencyAt(rng, T)
				p.Type = PhotonDiffuseHeI
			} else {
				p.Type = PhotonAbsorbed
				return false
			}
		case x <= c.PHeEm[3]:
			// HeI Lyman-alpha: absorbed on the spot by hydrogen, or
			// converted to two-photon continuum.
			pSpot := 1. / (1. + 77.*xHen/(math.Sqrt(T)*xHn))
			if rng.Float64() < pSpot {
				if rng.Float64() <= c.PHion {
					nu = s.hLyc.RandomFrequencyAt(rng, T)
					p.Type = PhotonDiffuseHI
				} else {
					p.Type = PhotonAbsorbed
					return false
				}
			} else {
				if rng.Float64() < 0.56 {
					nu = s.he2pc.RandomFrequencyAt(rng, T)
					p.Type = PhotonDiffuseHeI
				} else {
					p.Type = PhotonAbsorbed
					return false
				}
			}
		default:
			// cumulative probabilities end at exactly 1
			p.Type = PhotonAbsorbed
			return false
		}
	}

	p.Direction = randomDirection(rng)
	s.setCrossSections(p, nu)
	return true
}
