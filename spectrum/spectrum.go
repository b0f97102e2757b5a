package spectrum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// FluorescenceThreshold is the filtered energy below which a spectrum is
// treated as non-fluorescent.
const FluorescenceThreshold = 1e-4

// Spectrum is a reradiation matrix: one row per outgoing wavelength, one
// column per incident wavelength.
//
// A Spectrum is immutable after New; every view returns a fresh copy.
type Spectrum struct {
	Incident Axis
	Outgoing Axis
	// IntegerAxes is set when the source file declared its wavelengths as
	// integers, as BFC files do.
	IntegerAxes bool

	data *mat.Dense
}

// New creates a Spectrum from row-major values (outgoing rows, incident columns).
//
// Negative values on the diagonal are clamped to zero, since reflectance
// cannot be negative.
//
// Returns:
//   - *Spectrum: the spectrum
//   - error: ErrSamplingMismatch when the axes have different steps, ErrShape
//     when len(values) differs from Outgoing.Count*Incident.Count
func New(incident, outgoing Axis, values []float64) (*Spectrum, error) {
	if incident.Step != outgoing.Step {
		return nil, fmt.Errorf("%w: incident step %v, outgoing step %v",
			ErrSamplingMismatch, incident.Step, outgoing.Step)
	}

	if !(incident.Step > 0) || incident.Count < 1 || outgoing.Count < 1 {
		return nil, fmt.Errorf("%w: %d×%d samples with step %v",
			ErrShape, outgoing.Count, incident.Count, incident.Step)
	}

	if len(values) != incident.Count*outgoing.Count {
		return nil, fmt.Errorf("%w: expected %d×%d values, got %d",
			ErrShape, outgoing.Count, incident.Count, len(values))
	}

	s := &Spectrum{
		Incident: incident,
		Outgoing: outgoing,
		data:     mat.NewDense(outgoing.Count, incident.Count, append([]float64(nil), values...)),
	}

	s.eachDiagonal(func(o, i int) {
		if s.data.At(o, i) < 0 {
			s.data.Set(o, i, 0)
		}
	})

	return s, nil
}

// Data returns the reradiation grid.
func (s *Spectrum) Data() mat.Matrix {
	return mat.DenseCopyOf(s.data)
}

// At returns the value at outgoing sample o and incident sample i.
func (s *Spectrum) At(o, i int) float64 {
	return s.data.At(o, i)
}

// DiagonalStart returns the first wavelength present on both axes.
func (s *Spectrum) DiagonalStart() float64 {
	return math.Max(s.Incident.Start, s.Outgoing.Start)
}

// eachDiagonal visits the diagonal cells in increasing wavelength order.
func (s *Spectrum) eachDiagonal(fn func(o, i int)) {
	start := s.DiagonalStart()
	i := s.Incident.Index(start)
	o := s.Outgoing.Index(start)

	for ; i < s.Incident.Count && o < s.Outgoing.Count; i, o = i+1, o+1 {
		if i >= 0 && o >= 0 {
			fn(o, i)
		}
	}
}

// PureFluo returns the grid with the diagonal zeroed.
func (s *Spectrum) PureFluo() *mat.Dense {
	out := mat.DenseCopyOf(s.data)
	s.eachDiagonal(func(o, i int) { out.Set(o, i, 0) })

	return out
}

// PureFluoFiltered returns PureFluo with negative values and cells where the
// incident wavelength is not below the outgoing wavelength zeroed.
func (s *Spectrum) PureFluoFiltered() *mat.Dense {
	out := s.PureFluo()
	out.Apply(func(o, i int, v float64) float64 {
		if v < 0 || s.Incident.At(i) >= s.Outgoing.At(o) {
			return 0
		}

		return v
	}, out)

	return out
}

// NonFluo returns the diagonal values starting at DiagonalStart.
func (s *Spectrum) NonFluo() []float64 {
	var out []float64
	s.eachDiagonal(func(o, i int) { out = append(out, s.data.At(o, i)) })

	return out
}

// HasFluorescence reports whether the filtered fluorescent energy reaches
// FluorescenceThreshold.
func (s *Spectrum) HasFluorescence() bool {
	return floats.Sum(s.PureFluoFiltered().RawMatrix().Data) >= FluorescenceThreshold
}

// WeightedPoints returns the (incident, outgoing) wavelength pair of every
// strictly positive PureFluo cell, in row-major order, with the cell values
// as weights.
func (s *Spectrum) WeightedPoints() ([][2]float64, []float64) {
	fluo := s.PureFluo()

	var points [][2]float64
	var weights []float64
	for o := range s.Outgoing.Count {
		for i, v := range fluo.RawRowView(o) {
			if v > 0 {
				points = append(points, [2]float64{s.Incident.At(i), s.Outgoing.At(o)})
				weights = append(weights, v)
			}
		}
	}

	return points, weights
}
