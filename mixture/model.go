package mixture

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Component is one fitted Gaussian with its covariance expanded to 2×2.
type Component struct {
	Mean       [Features]float64
	Covariance [Features][Features]float64
	Weight     float64
}

// Mixture is a fitted Gaussian mixture.
//
// For variational fits Weights are the expected posterior weights and
// Posterior holds the full variational state; it is nil for EM fits.
type Mixture struct {
	Method            Method
	CovarianceType    CovarianceType
	Weights           []float64
	Means             *mat.Dense
	Covariances       *Covariances
	PrecisionCholesky *PrecisionCholesky
	Posterior         *Posterior
}

// NumComponents returns the number of components, including unused ones.
func (m *Mixture) NumComponents() int {
	return len(m.Weights)
}

// Mean returns the mean of component k.
func (m *Mixture) Mean(k int) [Features]float64 {
	return [Features]float64{m.Means.At(k, 0), m.Means.At(k, 1)}
}

// Covariance returns the covariance of component k expanded to 2×2.
func (m *Mixture) Covariance(k int) *mat.SymDense {
	return m.Covariances.Matrix(k)
}

// Precision returns the precision matrix of component k.
func (m *Mixture) Precision(k int) *mat.SymDense {
	return m.PrecisionCholesky.Precision(k)
}

// Components returns the listed components in the given order, or every
// component when none is listed.
func (m *Mixture) Components(indices ...int) []Component {
	if len(indices) == 0 {
		indices = make([]int, m.NumComponents())
		for k := range indices {
			indices[k] = k
		}
	}

	out := make([]Component, len(indices))
	for i, k := range indices {
		cov := m.Covariance(k)
		out[i] = Component{
			Mean: m.Mean(k),
			Covariance: [Features][Features]float64{
				{cov.At(0, 0), cov.At(0, 1)},
				{cov.At(1, 0), cov.At(1, 1)},
			},
			Weight: m.Weights[k],
		}
	}

	return out
}

func (m *Mixture) weightedLogProb(x mat.Matrix) *mat.Dense {
	if m.Posterior != nil {
		return bayesWeightedLogProb(x, m.Posterior)
	}

	return emWeightedLogProb(x, &Parameters{
		Weights:           m.Weights,
		Means:             m.Means,
		Covariances:       m.Covariances,
		PrecisionCholesky: m.PrecisionCholesky,
	})
}

// Predict returns the most probable component of every point.
// Ties resolve to the lowest component index.
func (m *Mixture) Predict(s *Sample) []int {
	return argmaxRows(m.weightedLogProb(s.points))
}

// PredictProba returns the N×K posterior component probabilities.
func (m *Mixture) PredictProba(s *Sample) *mat.Dense {
	_, logResp := logProbResp(m.weightedLogProb(s.points))
	return expResp(logResp)
}

// ScoreSamples returns the weighted log-likelihood of every point.
func (m *Mixture) ScoreSamples(s *Sample) []float64 {
	norm, _ := logProbResp(m.weightedLogProb(s.points))
	floats.Mul(norm, s.weights)

	return norm
}

// Score returns the mean weighted log-likelihood of the sample.
func (m *Mixture) Score(s *Sample) float64 {
	return stat.Mean(m.ScoreSamples(s), nil)
}

// NumParameters returns the number of free parameters of the mixture.
func (m *Mixture) NumParameters() int {
	k := m.NumComponents()

	var cov int
	switch m.CovarianceType {
	case CovarianceFull:
		cov = k * Features * (Features + 1) / 2
	case CovarianceTied:
		cov = Features * (Features + 1) / 2
	case CovarianceDiag:
		cov = k * Features
	case CovarianceSpherical:
		cov = k
	}

	return cov + k*Features + k - 1
}

// BIC returns the Bayesian information criterion of the mixture on the sample.
// Lower is better.
func (m *Mixture) BIC(s *Sample) float64 {
	return -2*m.Score(s)*float64(s.Len()) + float64(m.NumParameters())*math.Log(s.TotalWeight())
}

// AIC returns the Akaike information criterion of the mixture on the sample.
// Lower is better.
func (m *Mixture) AIC(s *Sample) float64 {
	return -2*m.Score(s)*float64(s.Len()) + 2*float64(m.NumParameters())
}

// Sample draws n points from the mixture.
//
// Points are grouped by component in index order; the returned labels give
// the component of every point.
func (m *Mixture) Sample(n int, rng *rand.Rand) (*mat.Dense, []int, error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("%w: cannot draw %d samples", ErrInvalidSample, n)
	}

	k := m.NumComponents()
	cumulative := make([]float64, k)
	floats.CumSum(cumulative, m.Weights)
	total := cumulative[k-1]

	counts := make([]int, k)
	for range n {
		u := rng.Float64() * total
		c := 0
		for c < k-1 && u >= cumulative[c] {
			c++
		}
		counts[c]++
	}

	out := mat.NewDense(n, Features, nil)
	labels := make([]int, 0, n)
	row := 0
	for c, count := range counts {
		if count == 0 {
			continue
		}

		var chol mat.Cholesky
		if !chol.Factorize(m.Covariance(c)) {
			return nil, nil, &DegenerateComponentError{
				Covariance: m.CovarianceType, Component: c, Restart: -1,
			}
		}
		var lower mat.TriDense
		chol.LTo(&lower)

		mean := m.Mean(c)
		z := mat.NewVecDense(Features, nil)
		var x mat.VecDense
		for range count {
			for j := range Features {
				z.SetVec(j, rng.NormFloat64())
			}
			x.MulVec(&lower, z)
			for j := range Features {
				out.Set(row, j, mean[j]+x.AtVec(j))
			}
			labels = append(labels, c)
			row++
		}
	}

	return out, labels, nil
}
