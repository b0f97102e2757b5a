package quality

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/fluomix/gmm"
	"github.com/arloliu/fluomix/internal/pool"
	"github.com/arloliu/fluomix/spectrum"
)

// ErrNoCells reports a spectrum without causal cells to compare.
var ErrNoCells = errors.New("quality: spectrum has no cells above the diagonal")

// Analyze compares fitted against the pure fluorescence of s.
func Analyze(s *spectrum.Spectrum, fitted *gmm.FittedGMM) (*Report, error) {
	if s == nil || fitted == nil {
		return nil, errors.New("quality: nil spectrum or fit")
	}

	cells := causalCells(s)
	if cells == 0 {
		return nil, ErrNoCells
	}

	measured, releaseMeasured := pool.GetFloat64Slice(cells)
	defer releaseMeasured()
	predicted, releasePredicted := pool.GetFloat64Slice(cells)
	defer releasePredicted()

	fluo := s.PureFluo()
	density := fitted.Density()
	n := 0
	for o := range s.Outgoing.Count {
		wlO := s.Outgoing.At(o)
		for i := range s.Incident.Count {
			wlI := s.Incident.At(i)
			if wlO <= wlI {
				continue
			}
			measured[n] = math.Max(0, fluo.At(o, i))
			predicted[n] = fitted.ScaleAttenuation * density.Eval(wlI, wlO)
			n++
		}
	}

	report := &Report{
		Cells:          cells,
		MeasuredEnergy: floats.Sum(measured),
		FittedEnergy:   floats.Sum(predicted),
		RMSE:           floats.Distance(measured, predicted, 2) / math.Sqrt(float64(cells)),
		MaxAbsError:    floats.Distance(measured, predicted, math.Inf(1)),
	}
	if stat.Variance(measured, nil) > 0 {
		report.RSquared = stat.RSquaredFrom(predicted, measured, nil)
	}

	return report, nil
}

func causalCells(s *spectrum.Spectrum) int {
	n := 0
	for o := range s.Outgoing.Count {
		wlO := s.Outgoing.At(o)
		for i := range s.Incident.Count {
			if wlO > s.Incident.At(i) {
				n++
			}
		}
	}

	return n
}
