package mixture

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Parameters is the state of the EM estimator.
type Parameters struct {
	// Weights are the mixing proportions, summing to 1.
	Weights []float64
	// Means is the K×2 matrix of component means.
	Means *mat.Dense
	// Covariances are the regularized component covariances.
	Covariances *Covariances
	// PrecisionCholesky are the Cholesky factors of the precision matrices.
	PrecisionCholesky *PrecisionCholesky
}

// emStrategy is weighted maximum-likelihood expectation-maximization.
type emStrategy struct {
	cfg *Config
}

var _ strategy[*Parameters] = emStrategy{}

func (e emStrategy) initialize(s *Sample, resp *mat.Dense) (*Parameters, error) {
	stats := estimateGaussianParameters(s, resp, e.cfg.RegCovar, e.cfg.CovarianceType)

	weights := make([]float64, len(stats.nk))
	floats.ScaleTo(weights, 1/s.TotalWeight(), stats.nk)
	if e.cfg.WeightsInit != nil {
		copy(weights, e.cfg.WeightsInit)
	}

	means := stats.means
	if e.cfg.MeansInit != nil {
		means = mat.DenseCopyOf(e.cfg.MeansInit)
	}

	p := &Parameters{Weights: weights, Means: means, Covariances: stats.cov}

	var err error
	if e.cfg.precisionsInit == nil {
		p.PrecisionCholesky, err = computePrecisionCholesky(stats.cov)
		return p, err
	}

	if p.PrecisionCholesky, err = precisionCholeskyFromPrecisions(e.cfg.precisionsInit); err != nil {
		return nil, err
	}
	if p.Covariances, err = covariancesFromPrecisions(e.cfg.precisionsInit); err != nil {
		return nil, err
	}

	return p, nil
}

func (e emStrategy) weightedLogProb(x mat.Matrix, p *Parameters) *mat.Dense {
	return emWeightedLogProb(x, p)
}

func (e emStrategy) mStep(s *Sample, logResp *mat.Dense, _ *Parameters) (*Parameters, error) {
	stats := estimateGaussianParameters(s, expResp(logResp), e.cfg.RegCovar, e.cfg.CovarianceType)

	weights := make([]float64, len(stats.nk))
	floats.ScaleTo(weights, 1/floats.Sum(stats.nk), stats.nk)

	pc, err := computePrecisionCholesky(stats.cov)
	if err != nil {
		return nil, err
	}

	return &Parameters{
		Weights:           weights,
		Means:             stats.means,
		Covariances:       stats.cov,
		PrecisionCholesky: pc,
	}, nil
}

// lowerBound of EM is the mean per-point log-likelihood.
func (e emStrategy) lowerBound(_ *Parameters, _ *mat.Dense, meanLogProbNorm float64) float64 {
	return meanLogProbNorm
}

func (e emStrategy) mixture(p *Parameters) *Mixture {
	return &Mixture{
		Method:            MethodEM,
		CovarianceType:    e.cfg.CovarianceType,
		Weights:           p.Weights,
		Means:             p.Means,
		Covariances:       p.Covariances,
		PrecisionCholesky: p.PrecisionCholesky,
	}
}

// emWeightedLogProb returns log N(x_i | μ_k, Σ_k) + log π_k.
func emWeightedLogProb(x mat.Matrix, p *Parameters) *mat.Dense {
	out := estimateLogGaussianProb(x, p.Means, p.PrecisionCholesky)
	n, k := out.Dims()

	logW := make([]float64, k)
	for c, w := range p.Weights {
		logW[c] = math.Log(w)
	}

	for i := range n {
		floats.Add(out.RawRowView(i), logW)
	}

	return out
}
