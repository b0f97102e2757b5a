package gmm

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Component is one weighted bivariate Gaussian over (incident, outgoing) wavelength.
type Component struct {
	Mean       [2]float64
	Covariance [2][2]float64
	Weight     float64
}

// Diagonal is the non-fluorescent part of a spectrum, sampled from Start with Step.
type Diagonal struct {
	Start  float64
	Step   float64
	Values []float64
	// Integral marks Start and Step as integer wavelengths. It only affects
	// the ASCII layout.
	Integral bool
}

// FittedGMM is the compact representation of a reradiation spectrum.
type FittedGMM struct {
	Components       []Component
	ScaleAttenuation float64
	Diagonal         Diagonal
}

// NumComponents returns the number of mixture components.
func (g *FittedGMM) NumComponents() int {
	return len(g.Components)
}

// Eval returns the mixture density at (wlI, wlO), without ScaleAttenuation.
//
// Components whose covariance is not positive-definite contribute nothing.
// Use Density when evaluating many points.
func (g *FittedGMM) Eval(wlI, wlO float64) float64 {
	return g.Density().Eval(wlI, wlO)
}

// Density prepares the mixture for repeated evaluation.
func (g *FittedGMM) Density() *Density {
	d := &Density{terms: make([]densityTerm, 0, len(g.Components))}
	for _, c := range g.Components {
		cov := mat.NewSymDense(2, []float64{
			c.Covariance[0][0], c.Covariance[0][1],
			c.Covariance[0][1], c.Covariance[1][1],
		})
		normal, ok := distmv.NewNormal(c.Mean[:], cov, nil)
		if !ok {
			continue
		}
		d.terms = append(d.terms, densityTerm{weight: c.Weight, normal: normal})
	}

	return d
}

// Density evaluates a FittedGMM.
type Density struct {
	terms []densityTerm
}

type densityTerm struct {
	weight float64
	normal *distmv.Normal
}

// Eval returns Σ weight·N(x | mean, cov) at x = (wlI, wlO).
func (d *Density) Eval(wlI, wlO float64) float64 {
	x := []float64{wlI, wlO}

	var sum float64
	for _, t := range d.terms {
		sum += t.weight * t.normal.Prob(x)
	}

	return sum
}

// Skipped returns how many components were left out for a non-positive-definite covariance.
func (g *FittedGMM) Skipped() int {
	return len(g.Components) - len(g.Density().terms)
}
