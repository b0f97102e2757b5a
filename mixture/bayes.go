package mixture

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"
)

// Priors are the resolved priors of the variational estimator.
type Priors struct {
	Type                WeightPriorType
	WeightConcentration float64
	MeanPrecision       float64
	Mean                []float64
	DegreesOfFreedom    float64
	// Covariance is the prior of full and tied fits.
	Covariance *mat.SymDense
	// Variance is the per-feature prior of diag fits.
	Variance []float64
	// SphericalVariance is the prior of spherical fits.
	SphericalVariance float64
}

// Posterior is the state of the variational estimator.
//
// Weights and precisions are derived from it on demand.
type Posterior struct {
	Type WeightPriorType
	// WeightConcentration holds the Dirichlet parameters, or the first Beta
	// parameter of every stick for the Dirichlet process.
	WeightConcentration []float64
	// WeightConcentrationBeta holds the second Beta parameter of every stick;
	// nil for the Dirichlet distribution.
	WeightConcentrationBeta []float64
	MeanPrecision           []float64
	Means                   *mat.Dense
	DegreesOfFreedom        []float64
	Covariances             *Covariances
	PrecisionCholesky       *PrecisionCholesky
}

// Weights returns the expected mixing proportions.
func (p *Posterior) Weights() []float64 {
	k := len(p.WeightConcentration)
	w := make([]float64, k)

	if p.Type == PriorDirichletProcess {
		remaining := 1.0
		for c := range k {
			a, b := p.WeightConcentration[c], p.WeightConcentrationBeta[c]
			w[c] = a / (a + b) * remaining
			remaining *= b / (a + b)
		}
	} else {
		copy(w, p.WeightConcentration)
	}

	floats.Scale(1/floats.Sum(w), w)

	return w
}

// ExpectedLogWeights returns E[log π_k] under the posterior.
func (p *Posterior) ExpectedLogWeights() []float64 {
	k := len(p.WeightConcentration)
	out := make([]float64, k)

	if p.Type == PriorDirichletProcess {
		var stick float64
		for c := range k {
			a, b := p.WeightConcentration[c], p.WeightConcentrationBeta[c]
			digammaSum := mathext.Digamma(a + b)
			out[c] = mathext.Digamma(a) - digammaSum + stick
			stick += mathext.Digamma(b) - digammaSum
		}

		return out
	}

	digammaTotal := mathext.Digamma(floats.Sum(p.WeightConcentration))
	for c, a := range p.WeightConcentration {
		out[c] = mathext.Digamma(a) - digammaTotal
	}

	return out
}

// bayesStrategy is weighted variational inference with conjugate
// Dirichlet (process), Normal and Wishart posteriors.
type bayesStrategy struct {
	cfg    *Config
	priors *Priors
}

var _ strategy[*Posterior] = bayesStrategy{}

// resolvePriors fills every prior the configuration leaves unset from the data.
func resolvePriors(cfg *Config, s *Sample) *Priors {
	pr := &Priors{
		Type:                cfg.WeightPriorType,
		WeightConcentration: 1 / float64(cfg.Components),
		MeanPrecision:       1,
		DegreesOfFreedom:    Features,
	}

	if cfg.WeightConcentrationPrior != nil {
		pr.WeightConcentration = *cfg.WeightConcentrationPrior
	}
	if cfg.MeanPrecisionPrior != nil {
		pr.MeanPrecision = *cfg.MeanPrecisionPrior
	}
	if cfg.DegreesOfFreedomPrior != nil {
		pr.DegreesOfFreedom = *cfg.DegreesOfFreedomPrior
	}

	cols := [Features][]float64{mat.Col(nil, 0, s.points), mat.Col(nil, 1, s.points)}

	if cfg.MeanPrior != nil {
		pr.Mean = append([]float64(nil), cfg.MeanPrior...)
	} else {
		pr.Mean = []float64{stat.Mean(cols[0], nil), stat.Mean(cols[1], nil)}
	}

	variance := []float64{stat.Variance(cols[0], nil), stat.Variance(cols[1], nil)}

	switch cfg.CovarianceType {
	case CovarianceFull, CovarianceTied:
		if cfg.covariancePrior != nil {
			pr.Covariance = cfg.covariancePrior
		} else {
			pr.Covariance = mat.NewSymDense(Features, nil)
			stat.CovarianceMatrix(pr.Covariance, s.points, nil)
		}
	case CovarianceDiag:
		if cfg.DiagCovariancePrior != nil {
			pr.Variance = append([]float64(nil), cfg.DiagCovariancePrior...)
		} else {
			pr.Variance = variance
		}
	case CovarianceSpherical:
		if cfg.SphericalCovariancePrior != nil {
			pr.SphericalVariance = *cfg.SphericalCovariancePrior
		} else {
			pr.SphericalVariance = floats.Sum(variance) / Features
		}
	}

	return pr
}

func (b bayesStrategy) initialize(s *Sample, resp *mat.Dense) (*Posterior, error) {
	return b.posterior(estimateGaussianParameters(s, resp, b.cfg.RegCovar, b.cfg.CovarianceType))
}

func (b bayesStrategy) mStep(s *Sample, logResp *mat.Dense, _ *Posterior) (*Posterior, error) {
	return b.posterior(estimateGaussianParameters(s, expResp(logResp), b.cfg.RegCovar, b.cfg.CovarianceType))
}

// posterior applies the conjugate updates to the sufficient statistics.
func (b bayesStrategy) posterior(stats gaussianStats) (*Posterior, error) {
	pr := b.priors
	nk := stats.nk
	k := len(nk)

	post := &Posterior{Type: pr.Type}

	// weights
	if pr.Type == PriorDirichletProcess {
		post.WeightConcentration = make([]float64, k)
		post.WeightConcentrationBeta = make([]float64, k)
		var tail float64
		for c := k - 1; c >= 0; c-- {
			post.WeightConcentration[c] = 1 + nk[c]
			post.WeightConcentrationBeta[c] = pr.WeightConcentration + tail
			tail += nk[c]
		}
	} else {
		post.WeightConcentration = make([]float64, k)
		for c := range k {
			post.WeightConcentration[c] = pr.WeightConcentration + nk[c]
		}
	}

	// means
	post.MeanPrecision = make([]float64, k)
	post.Means = mat.NewDense(k, Features, nil)
	for c := range k {
		post.MeanPrecision[c] = pr.MeanPrecision + nk[c]
		for j := range Features {
			v := (pr.MeanPrecision*pr.Mean[j] + nk[c]*stats.means.At(c, j)) / post.MeanPrecision[c]
			post.Means.Set(c, j, v)
		}
	}

	// precisions
	switch stats.cov.Type {
	case CovarianceFull:
		b.wishartFull(post, stats)
	case CovarianceTied:
		b.wishartTied(post, stats)
	case CovarianceDiag:
		b.wishartDiag(post, stats)
	case CovarianceSpherical:
		b.wishartSpherical(post, stats)
	}

	pc, err := computePrecisionCholesky(post.Covariances)
	if err != nil {
		return nil, err
	}
	post.PrecisionCholesky = pc

	return post, nil
}

// diffFromPrior returns x̄_k - m₀ for component c.
func (b bayesStrategy) diffFromPrior(stats gaussianStats, c int) (float64, float64) {
	return stats.means.At(c, 0) - b.priors.Mean[0], stats.means.At(c, 1) - b.priors.Mean[1]
}

func (b bayesStrategy) wishartFull(post *Posterior, stats gaussianStats) {
	pr := b.priors
	k := len(stats.nk)
	post.DegreesOfFreedom = make([]float64, k)
	full := make([]*mat.SymDense, k)

	for c, n := range stats.nk {
		dof := pr.DegreesOfFreedom + n
		post.DegreesOfFreedom[c] = dof

		d0, d1 := b.diffFromPrior(stats, c)
		shrink := n * pr.MeanPrecision / post.MeanPrecision[c]
		sk := stats.cov.Full[c]

		diff := [Features]float64{d0, d1}
		cov := mat.NewSymDense(Features, nil)
		for i := range Features {
			for j := i; j < Features; j++ {
				v := pr.Covariance.At(i, j) + n*sk.At(i, j) + shrink*diff[i]*diff[j]
				cov.SetSym(i, j, v/dof)
			}
		}
		full[c] = cov
	}

	post.Covariances = &Covariances{Type: CovarianceFull, Full: full}
}

func (b bayesStrategy) wishartTied(post *Posterior, stats gaussianStats) {
	pr := b.priors
	k := len(stats.nk)
	avgCount := floats.Sum(stats.nk) / float64(k)
	dof := pr.DegreesOfFreedom + avgCount

	post.DegreesOfFreedom = make([]float64, k)
	for c := range k {
		post.DegreesOfFreedom[c] = dof
	}

	var s00, s01, s11 float64
	for c, n := range stats.nk {
		d0, d1 := b.diffFromPrior(stats, c)
		f := n / post.MeanPrecision[c]
		s00 += f * d0 * d0
		s01 += f * d0 * d1
		s11 += f * d1 * d1
	}
	scale := pr.MeanPrecision / float64(k)
	sk := stats.cov.Tied

	tied := mat.NewSymDense(Features, []float64{
		(pr.Covariance.At(0, 0) + sk.At(0, 0)*avgCount + scale*s00) / dof,
		(pr.Covariance.At(0, 1) + sk.At(0, 1)*avgCount + scale*s01) / dof,
		(pr.Covariance.At(1, 0) + sk.At(1, 0)*avgCount + scale*s01) / dof,
		(pr.Covariance.At(1, 1) + sk.At(1, 1)*avgCount + scale*s11) / dof,
	})

	post.Covariances = &Covariances{Type: CovarianceTied, Tied: tied}
}

func (b bayesStrategy) wishartDiag(post *Posterior, stats gaussianStats) {
	pr := b.priors
	k := len(stats.nk)
	post.DegreesOfFreedom = make([]float64, k)
	diag := mat.NewDense(k, Features, nil)

	for c, n := range stats.nk {
		dof := pr.DegreesOfFreedom + n
		post.DegreesOfFreedom[c] = dof

		d0, d1 := b.diffFromPrior(stats, c)
		shrink := pr.MeanPrecision / post.MeanPrecision[c]
		diff2 := [Features]float64{d0 * d0, d1 * d1}
		for j := range Features {
			v := pr.Variance[j] + n*(stats.cov.Diag.At(c, j)+shrink*diff2[j])
			diag.Set(c, j, v/dof)
		}
	}

	post.Covariances = &Covariances{Type: CovarianceDiag, Diag: diag}
}

func (b bayesStrategy) wishartSpherical(post *Posterior, stats gaussianStats) {
	pr := b.priors
	k := len(stats.nk)
	post.DegreesOfFreedom = make([]float64, k)
	sph := make([]float64, k)

	for c, n := range stats.nk {
		dof := pr.DegreesOfFreedom + n
		post.DegreesOfFreedom[c] = dof

		d0, d1 := b.diffFromPrior(stats, c)
		shrink := pr.MeanPrecision / post.MeanPrecision[c]
		meanDiff2 := (d0*d0 + d1*d1) / Features
		sph[c] = (pr.SphericalVariance + n*(stats.cov.Spherical[c]+shrink*meanDiff2)) / dof
	}

	post.Covariances = &Covariances{Type: CovarianceSpherical, Spherical: sph}
}

func (b bayesStrategy) weightedLogProb(x mat.Matrix, p *Posterior) *mat.Dense {
	return bayesWeightedLogProb(x, p)
}

// lowerBound is the evidence lower bound without its constant terms.
func (b bayesStrategy) lowerBound(p *Posterior, logResp *mat.Dense, _ float64) float64 {
	k := len(p.MeanPrecision)
	logDet := p.PrecisionCholesky.logDet(k)

	var logWishart float64
	for c := range k {
		dof := p.DegreesOfFreedom[c]
		logDet[c] -= 0.5 * Features * math.Log(dof)
		logWishart += logWishartNorm(dof, logDet[c])
	}

	var logNormWeight float64
	if p.Type == PriorDirichletProcess {
		for c := range k {
			logNormWeight -= mathext.Lbeta(p.WeightConcentration[c], p.WeightConcentrationBeta[c])
		}
	} else {
		logNormWeight = logDirichletNorm(p.WeightConcentration)
	}

	var entropy float64
	for _, v := range logResp.RawMatrix().Data {
		if r := math.Exp(v); r > 0 {
			entropy -= r * v
		}
	}

	var logMeanPrecision float64
	for _, v := range p.MeanPrecision {
		logMeanPrecision += math.Log(v)
	}

	return entropy - logWishart - logNormWeight - 0.5*Features*logMeanPrecision
}

func (b bayesStrategy) mixture(p *Posterior) *Mixture {
	return &Mixture{
		Method:            MethodBayes,
		CovarianceType:    b.cfg.CovarianceType,
		Weights:           p.Weights(),
		Means:             p.Means,
		Covariances:       p.Covariances,
		PrecisionCholesky: p.PrecisionCholesky,
		Posterior:         p,
	}
}

// bayesWeightedLogProb returns the expected log-density under the posterior
// plus the expected log weights.
func bayesWeightedLogProb(x mat.Matrix, p *Posterior) *mat.Dense {
	out := estimateLogGaussianProb(x, p.Means, p.PrecisionCholesky)
	n, k := out.Dims()
	logW := p.ExpectedLogWeights()

	shift := make([]float64, k)
	for c := range k {
		dof := p.DegreesOfFreedom[c]
		logLambda := Features * math.Ln2
		for j := range Features {
			logLambda += mathext.Digamma(0.5 * (dof - float64(j)))
		}
		shift[c] = -0.5*Features*math.Log(dof) + 0.5*(logLambda-Features/p.MeanPrecision[c]) + logW[c]
	}

	for i := range n {
		floats.Add(out.RawRowView(i), shift)
	}

	return out
}

// logWishartNorm is the log normalization of a Wishart distribution without the log π term.
func logWishartNorm(dof, logDetPrecisionChol float64) float64 {
	v := dof*logDetPrecisionChol + dof*Features*0.5*math.Ln2
	for j := range Features {
		lg, _ := math.Lgamma(0.5 * (dof - float64(j)))
		v += lg
	}

	return -v
}

// logDirichletNorm is the log normalization of a Dirichlet distribution.
func logDirichletNorm(alpha []float64) float64 {
	v, _ := math.Lgamma(floats.Sum(alpha))
	for _, a := range alpha {
		lg, _ := math.Lgamma(a)
		v -= lg
	}

	return v
}
