package gmm

import (
	"math"

	"github.com/arloliu/fluomix/spectrum"
)

// FitScale returns the ratio of measured to fitted energy over the causal
// cells of s, those whose outgoing wavelength exceeds the incident one.
// Negative measured values count as zero.
//
// The second result is false when the mixture carries no energy over those
// cells; the scale is then 0.
func (g *FittedGMM) FitScale(s *spectrum.Spectrum) (float64, bool) {
	measured, fitted := causalEnergy(s, g.Density())
	if !(fitted > 0) || math.IsInf(fitted, 0) {
		return 0, false
	}

	return measured / fitted, true
}

// causalEnergy sums max(0, pureFluo) and the unscaled density over the causal cells.
func causalEnergy(s *spectrum.Spectrum, d *Density) (float64, float64) {
	fluo := s.PureFluo()

	var measured, fitted float64
	for o := range s.Outgoing.Count {
		wlO := s.Outgoing.At(o)
		for i := range s.Incident.Count {
			wlI := s.Incident.At(i)
			if wlO <= wlI {
				continue
			}
			measured += math.Max(0, fluo.At(o, i))
			fitted += d.Eval(wlI, wlO)
		}
	}

	return measured, fitted
}
