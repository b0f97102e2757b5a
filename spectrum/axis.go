package spectrum

import "math"

// Axis is a uniformly sampled wavelength axis in nanometers.
type Axis struct {
	Start float64
	Step  float64
	Count int
}

// At returns the wavelength of sample i.
func (a Axis) At(i int) float64 {
	return a.Start + float64(i)*a.Step
}

// End returns the wavelength of the last sample.
func (a Axis) End() float64 {
	return a.At(a.Count - 1)
}

// Index returns the sample index of a wavelength, floor(floor(wl-start)/step).
// The result may lie outside [0, Count).
func (a Axis) Index(wl float64) int {
	return int(math.Floor(math.Floor(wl-a.Start) / a.Step))
}

// Values returns the wavelength of every sample.
func (a Axis) Values() []float64 {
	out := make([]float64, a.Count)
	for i := range out {
		out[i] = a.At(i)
	}

	return out
}
