package mixture

import (
	"io"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/fluomix/internal/options"
)

// Default hyperparameters.
const (
	DefaultComponents      = 1
	DefaultTol             = 1e-3
	DefaultRegCovar        = 1e-6
	DefaultMaxIter         = 100
	DefaultRestarts        = 1
	DefaultVerboseInterval = 10
)

// Precisions are user-supplied initial precision matrices (inverse covariances).
//
// The populated field must match Type: Full holds one 2×2 matrix per
// component, Tied a single 2×2 matrix, Diag a K×2 matrix of per-feature
// precisions and Spherical one precision per component.
type Precisions struct {
	Type      CovarianceType
	Full      []mat.Matrix
	Tied      mat.Matrix
	Diag      mat.Matrix
	Spherical []float64
}

// precisionSet is a validated Precisions value in the Covariances layout.
type precisionSet Covariances

// Config holds the fitting hyperparameters.
type Config struct {
	Method          Method
	Components      int
	CovarianceType  CovarianceType
	Tol             float64
	RegCovar        float64
	MaxIter         int
	Restarts        int
	Init            InitMethod
	Seed            uint64
	Parallelism     int
	VerboseInterval int
	Logger          logrus.FieldLogger

	// EM initial parameters, nil means estimated from the initial partition.
	WeightsInit    []float64
	MeansInit      mat.Matrix
	PrecisionsInit *Precisions

	// Variational Bayes priors, nil means derived from the data.
	WeightPriorType          WeightPriorType
	WeightConcentrationPrior *float64
	MeanPrecisionPrior       *float64
	MeanPrior                []float64
	DegreesOfFreedomPrior    *float64
	CovariancePrior          mat.Matrix
	DiagCovariancePrior      []float64
	SphericalCovariancePrior *float64

	precisionsInit  *precisionSet
	covariancePrior *mat.SymDense
}

// Option configures a Config.
type Option = options.Option[*Config]

// DefaultConfig returns the default configuration: one full-covariance EM
// component, k-means initialization, a single restart and a discarding logger.
func DefaultConfig() *Config {
	return &Config{
		Method:          MethodEM,
		Components:      DefaultComponents,
		CovarianceType:  CovarianceFull,
		Tol:             DefaultTol,
		RegCovar:        DefaultRegCovar,
		MaxIter:         DefaultMaxIter,
		Restarts:        DefaultRestarts,
		Init:            InitKMeans,
		Parallelism:     1,
		VerboseInterval: DefaultVerboseInterval,
		Logger:          discardLogger(),
		WeightPriorType: PriorDirichletProcess,
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

// WithMethod selects EM or variational Bayes.
func WithMethod(m Method) Option {
	return options.NoError(func(cfg *Config) { cfg.Method = m })
}

// WithComponents sets the number of mixture components.
func WithComponents(n int) Option {
	return options.NoError(func(cfg *Config) { cfg.Components = n })
}

// WithCovarianceType sets the covariance structure.
func WithCovarianceType(c CovarianceType) Option {
	return options.NoError(func(cfg *Config) { cfg.CovarianceType = c })
}

// WithCovarianceTypeName sets the covariance structure by name.
func WithCovarianceTypeName(name string) Option {
	return options.New(func(cfg *Config) error {
		c, err := ParseCovarianceType(name)
		if err != nil {
			return err
		}
		cfg.CovarianceType = c

		return nil
	})
}

// WithTol sets the lower-bound change below which a restart is converged.
func WithTol(tol float64) Option {
	return options.NoError(func(cfg *Config) { cfg.Tol = tol })
}

// WithRegCovar sets the positive regularization added to every variance.
func WithRegCovar(reg float64) Option {
	return options.NoError(func(cfg *Config) { cfg.RegCovar = reg })
}

// WithMaxIter sets the iteration limit of every restart.
func WithMaxIter(n int) Option {
	return options.NoError(func(cfg *Config) { cfg.MaxIter = n })
}

// WithRestarts sets the number of independent restarts (n_init).
func WithRestarts(n int) Option {
	return options.NoError(func(cfg *Config) { cfg.Restarts = n })
}

// WithInit selects the responsibility initialization.
func WithInit(m InitMethod) Option {
	return options.NoError(func(cfg *Config) { cfg.Init = m })
}

// WithSeed seeds the generator from which every restart derives its randomness.
func WithSeed(seed uint64) Option {
	return options.NoError(func(cfg *Config) { cfg.Seed = seed })
}

// WithParallelism sets how many restarts may run concurrently.
func WithParallelism(n int) Option {
	return options.NoError(func(cfg *Config) { cfg.Parallelism = n })
}

// WithLogger sets the logger receiving fit progress.
func WithLogger(l logrus.FieldLogger) Option {
	return options.NoError(func(cfg *Config) {
		if l != nil {
			cfg.Logger = l
		}
	})
}

// WithVerboseInterval sets how many iterations pass between progress messages.
func WithVerboseInterval(n int) Option {
	return options.NoError(func(cfg *Config) { cfg.VerboseInterval = n })
}

// WithInitialWeights overrides the initial EM weights.
func WithInitialWeights(w []float64) Option {
	return options.NoError(func(cfg *Config) { cfg.WeightsInit = append([]float64(nil), w...) })
}

// WithInitialMeans overrides the initial EM means (K×2).
func WithInitialMeans(m mat.Matrix) Option {
	return options.NoError(func(cfg *Config) { cfg.MeansInit = m })
}

// WithInitialPrecisions overrides the initial EM precisions.
func WithInitialPrecisions(p Precisions) Option {
	return options.NoError(func(cfg *Config) { cfg.PrecisionsInit = &p })
}

// WithWeightPriorType selects the weight prior of the variational estimator.
func WithWeightPriorType(t WeightPriorType) Option {
	return options.NoError(func(cfg *Config) { cfg.WeightPriorType = t })
}

// WithWeightConcentrationPrior sets the Dirichlet concentration (default 1/K).
func WithWeightConcentrationPrior(v float64) Option {
	return options.NoError(func(cfg *Config) { cfg.WeightConcentrationPrior = &v })
}

// WithMeanPrecisionPrior sets the precision prior on the means (default 1).
func WithMeanPrecisionPrior(v float64) Option {
	return options.NoError(func(cfg *Config) { cfg.MeanPrecisionPrior = &v })
}

// WithMeanPrior sets the prior mean (default: unweighted sample mean).
func WithMeanPrior(m []float64) Option {
	return options.NoError(func(cfg *Config) { cfg.MeanPrior = append([]float64(nil), m...) })
}

// WithDegreesOfFreedomPrior sets the Wishart degrees of freedom prior (default 2).
func WithDegreesOfFreedomPrior(v float64) Option {
	return options.NoError(func(cfg *Config) { cfg.DegreesOfFreedomPrior = &v })
}

// WithCovariancePrior sets the covariance prior of full and tied fits
// (default: unbiased sample covariance).
func WithCovariancePrior(m mat.Matrix) Option {
	return options.NoError(func(cfg *Config) { cfg.CovariancePrior = m })
}

// WithDiagCovariancePrior sets the variance prior of diag fits
// (default: unbiased per-feature sample variance).
func WithDiagCovariancePrior(v []float64) Option {
	return options.NoError(func(cfg *Config) { cfg.DiagCovariancePrior = append([]float64(nil), v...) })
}

// WithSphericalCovariancePrior sets the variance prior of spherical fits
// (default: mean unbiased per-feature sample variance).
func WithSphericalCovariancePrior(v float64) Option {
	return options.NoError(func(cfg *Config) { cfg.SphericalCovariancePrior = &v })
}

// Validate checks every hyperparameter and returns a *ConfigurationError
// listing all violations.
func (cfg *Config) Validate() error {
	var p problems

	if _, ok := methodNames[cfg.Method]; !ok {
		p.addf("method must be em or bayes, got %d", cfg.Method)
	}
	if cfg.Components < 1 {
		p.addf("n_components must be >= 1, got %d", cfg.Components)
	}
	if !cfg.CovarianceType.Valid() {
		p.addf("covariance_type must be one of full, tied, diag, spherical, got %d", cfg.CovarianceType)
	}
	if math.IsNaN(cfg.Tol) || math.IsInf(cfg.Tol, 0) || cfg.Tol < 0 {
		p.addf("tol must be non-negative and finite, got %v", cfg.Tol)
	}
	if math.IsNaN(cfg.RegCovar) || math.IsInf(cfg.RegCovar, 0) || cfg.RegCovar <= 0 {
		p.addf("reg_covar must be positive and finite, got %v", cfg.RegCovar)
	}
	if cfg.MaxIter < 1 {
		p.addf("max_iter must be >= 1, got %d", cfg.MaxIter)
	}
	if cfg.Restarts < 1 {
		p.addf("n_init must be >= 1, got %d", cfg.Restarts)
	}
	if _, ok := initMethodNames[cfg.Init]; !ok {
		p.addf("init must be kmeans or random, got %d", cfg.Init)
	}
	if cfg.Parallelism < 1 {
		p.addf("parallelism must be >= 1, got %d", cfg.Parallelism)
	}
	if cfg.VerboseInterval < 1 {
		p.addf("verbose_interval must be >= 1, got %d", cfg.VerboseInterval)
	}

	if cfg.Components >= 1 && cfg.CovarianceType.Valid() {
		cfg.validateInitial(&p)
		if cfg.Method == MethodBayes {
			cfg.validatePriors(&p)
		}
	}

	return p.err()
}

func (cfg *Config) validateInitial(p *problems) {
	k := cfg.Components

	if cfg.WeightsInit != nil {
		switch {
		case len(cfg.WeightsInit) != k:
			p.addf("weights_init must have shape (%d,), got (%d,)", k, len(cfg.WeightsInit))
		case !allFinite(cfg.WeightsInit):
			p.addf("weights_init must be finite")
		case floats.Min(cfg.WeightsInit) < 0 || floats.Max(cfg.WeightsInit) > 1:
			p.addf("weights_init must be in [0, 1], got min %.5f max %.5f",
				floats.Min(cfg.WeightsInit), floats.Max(cfg.WeightsInit))
		case math.Abs(1-floats.Sum(cfg.WeightsInit)) > 1e-8:
			p.addf("weights_init must sum to 1, got %.5f", floats.Sum(cfg.WeightsInit))
		}
	}

	if cfg.MeansInit != nil {
		if r, c := cfg.MeansInit.Dims(); r != k || c != Features {
			p.addf("means_init must have shape (%d, %d), got (%d, %d)", k, Features, r, c)
		} else if !allFinite(mat.DenseCopyOf(cfg.MeansInit).RawMatrix().Data) {
			p.addf("means_init must be finite")
		}
	}

	if cfg.PrecisionsInit != nil {
		set, err := validatePrecisions(cfg.PrecisionsInit, cfg.CovarianceType, k)
		if err != "" {
			p.addf("precisions_init: %s", err)
		} else {
			cfg.precisionsInit = set
		}
	}
}

func validatePrecisions(in *Precisions, ct CovarianceType, k int) (*precisionSet, string) {
	if in.Type != ct {
		return nil, "type " + in.Type.String() + " does not match covariance_type " + ct.String()
	}

	out := &precisionSet{Type: ct}

	switch ct {
	case CovarianceFull:
		if len(in.Full) != k {
			return nil, "full precisions must hold one matrix per component"
		}
		out.Full = make([]*mat.SymDense, k)
		for i, m := range in.Full {
			sym, ok := symmetricPositiveDefinite(m)
			if !ok {
				return nil, "full precision should be symmetric, positive-definite"
			}
			out.Full[i] = sym
		}
	case CovarianceTied:
		sym, ok := symmetricPositiveDefinite(in.Tied)
		if !ok {
			return nil, "tied precision should be symmetric, positive-definite"
		}
		out.Tied = sym
	case CovarianceDiag:
		if in.Diag == nil {
			return nil, "diag precisions are missing"
		}
		if r, c := in.Diag.Dims(); r != k || c != Features {
			return nil, "diag precisions must have shape (n_components, 2)"
		}
		d := mat.DenseCopyOf(in.Diag)
		if !allFinite(d.RawMatrix().Data) || floats.Min(d.RawMatrix().Data) <= 0 {
			return nil, "diag precision should be positive"
		}
		out.Diag = d
	case CovarianceSpherical:
		if len(in.Spherical) != k {
			return nil, "spherical precisions must hold one value per component"
		}
		if !allFinite(in.Spherical) || floats.Min(in.Spherical) <= 0 {
			return nil, "spherical precision should be positive"
		}
		out.Spherical = append([]float64(nil), in.Spherical...)
	}

	return out, ""
}

// symmetricPositiveDefinite checks that m is a 2×2 symmetric matrix with
// strictly positive eigenvalues.
func symmetricPositiveDefinite(m mat.Matrix) (*mat.SymDense, bool) {
	if m == nil {
		return nil, false
	}
	if r, c := m.Dims(); r != Features || c != Features {
		return nil, false
	}
	if !isClose(m.At(0, 1), m.At(1, 0)) {
		return nil, false
	}

	sym := mat.NewSymDense(Features, []float64{m.At(0, 0), m.At(0, 1), m.At(0, 1), m.At(1, 1)})

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, false); !ok {
		return nil, false
	}
	for _, v := range eig.Values(nil) {
		if !(v > 0) {
			return nil, false
		}
	}

	return sym, true
}

// allFinite reports whether no value is NaN or infinite.
func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

// isClose mirrors the default relative and absolute tolerances used for symmetry checks.
func isClose(a, b float64) bool {
	return math.Abs(a-b) <= 1e-8+1e-5*math.Abs(b)
}

func (cfg *Config) validatePriors(p *problems) {
	if _, ok := weightPriorTypeNames[cfg.WeightPriorType]; !ok {
		p.addf("weight_concentration_prior_type must be dirichlet_process or dirichlet_distribution, got %d",
			cfg.WeightPriorType)
	}
	if v := cfg.WeightConcentrationPrior; v != nil && (!(*v > 0) || math.IsInf(*v, 1)) {
		p.addf("weight_concentration_prior must be positive and finite, got %.3f", *v)
	}
	if v := cfg.MeanPrecisionPrior; v != nil && (!(*v > 0) || math.IsInf(*v, 1)) {
		p.addf("mean_precision_prior must be positive and finite, got %.3f", *v)
	}
	if cfg.MeanPrior != nil {
		if len(cfg.MeanPrior) != Features {
			p.addf("mean_prior must have shape (%d,), got (%d,)", Features, len(cfg.MeanPrior))
		} else if !allFinite(cfg.MeanPrior) {
			p.addf("mean_prior must be finite")
		}
	}
	if v := cfg.DegreesOfFreedomPrior; v != nil && (!(*v > Features-1) || math.IsInf(*v, 1)) {
		p.addf("degrees_of_freedom_prior must be > %d, got %.3f", Features-1, *v)
	}

	ct := cfg.CovarianceType
	if cfg.CovariancePrior != nil {
		if ct != CovarianceFull && ct != CovarianceTied {
			p.addf("covariance_prior matrix requires full or tied covariance, got %s", ct)
		} else if sym, ok := symmetricPositiveDefinite(cfg.CovariancePrior); !ok {
			p.addf("%s covariance_prior should be a symmetric, positive-definite 2x2 matrix", ct)
		} else {
			cfg.covariancePrior = sym
		}
	}
	if cfg.DiagCovariancePrior != nil {
		switch {
		case ct != CovarianceDiag:
			p.addf("diag covariance_prior requires diag covariance, got %s", ct)
		case len(cfg.DiagCovariancePrior) != Features:
			p.addf("diag covariance_prior must have shape (%d,), got (%d,)", Features, len(cfg.DiagCovariancePrior))
		case !allFinite(cfg.DiagCovariancePrior) || floats.Min(cfg.DiagCovariancePrior) <= 0:
			p.addf("diag covariance_prior should be positive and finite")
		}
	}
	if v := cfg.SphericalCovariancePrior; v != nil {
		if ct != CovarianceSpherical {
			p.addf("spherical covariance_prior requires spherical covariance, got %s", ct)
		} else if !(*v > 0) || math.IsInf(*v, 1) {
			p.addf("spherical covariance_prior must be > 0, got %.3f", *v)
		}
	}
}
