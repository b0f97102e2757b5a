package mixture

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/fluomix/internal/options"
)

// strategy is one fitting method. Implementations are stateless: every step
// receives the current state and returns a new one.
type strategy[S any] interface {
	// initialize runs the seeding M-step on the initial responsibilities.
	initialize(s *Sample, resp *mat.Dense) (S, error)
	// weightedLogProb returns the N×K log-probabilities including the log weights.
	weightedLogProb(x mat.Matrix, state S) *mat.Dense
	// mStep re-estimates the state from the log responsibilities.
	mStep(s *Sample, logResp *mat.Dense, state S) (S, error)
	// lowerBound returns the convergence statistic of the state.
	lowerBound(state S, logResp *mat.Dense, meanLogProbNorm float64) float64
	// mixture exposes the state as a fitted Mixture.
	mixture(state S) *Mixture
}

// Fitter fits Gaussian mixtures with a fixed, validated configuration.
//
// A Fitter holds no per-fit state and is safe for concurrent use.
type Fitter struct {
	cfg *Config
}

// NewFitter creates a Fitter from the default configuration and the given options.
//
// Returns:
//   - *Fitter: the validated fitter
//   - error: *ConfigurationError listing every invalid hyperparameter
func NewFitter(opts ...Option) (*Fitter, error) {
	cfg := DefaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Fitter{cfg: cfg}, nil
}

// Config returns a copy of the fitter configuration.
func (f *Fitter) Config() Config {
	return *f.cfg
}

// Run is the outcome of a single restart.
type Run struct {
	Restart    int
	Seed       uint64
	LowerBound float64
	Iterations int
	Converged  bool
	// History holds the lower bound after every iteration.
	History []float64
	// Err is set when the restart was discarded.
	Err error
}

// Result is the outcome of a fit.
type Result struct {
	// Mixture is the winning restart with all requested components.
	Mixture *Mixture
	// Labels is the most probable component of every training point.
	Labels []int
	// Responsibilities is the N×K matrix of the final E-step.
	Responsibilities *mat.Dense
	// Active lists the components kept in the output, in output order.
	// EM keeps every component; Bayes keeps those assigned at least one
	// point, in order of first appearance among Labels.
	Active     []int
	LowerBound float64
	Iterations int
	// Converged is false when any restart reached the iteration limit.
	Converged bool
	Best      int
	Runs      []Run
}

// Components returns the active components in output order.
//
// Weights are those of the full mixture and are not renormalized after pruning.
func (r *Result) Components() []Component {
	return r.Mixture.Components(r.Active...)
}

// Fit fits the configured mixture to the sample.
//
// Returns:
//   - *Result: the best restart, finalized by one more E-step
//   - error: ErrInvalidSample when the sample is too small, the
//     *DegenerateComponentError of the first restart when every restart is
//     degenerate, or a *ConvergenceWarning accompanying a valid Result
func (f *Fitter) Fit(s *Sample) (*Result, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil sample", ErrInvalidSample)
	}

	if n := s.Len(); n < 2 || n < f.cfg.Components {
		return nil, fmt.Errorf("%w: need at least max(2, n_components=%d) points, got %d",
			ErrInvalidSample, f.cfg.Components, n)
	}

	switch f.cfg.Method {
	case MethodBayes:
		return fitWith(f.cfg, s, bayesStrategy{cfg: f.cfg, priors: resolvePriors(f.cfg, s)})
	default:
		return fitWith(f.cfg, s, emStrategy{cfg: f.cfg})
	}
}

func fitWith[S any](cfg *Config, s *Sample, st strategy[S]) (*Result, error) {
	logger := cfg.Logger.WithFields(logrus.Fields{
		"action":     "fit",
		"method":     cfg.Method.String(),
		"covariance": cfg.CovarianceType.String(),
		"components": cfg.Components,
	})

	rng := rand.New(rand.NewSource(cfg.Seed))
	seeds := make([]uint64, cfg.Restarts)
	for i := range seeds {
		seeds[i] = rng.Uint64()
	}

	runs := make([]Run, cfg.Restarts)
	states := make([]S, cfg.Restarts)

	var g errgroup.Group
	g.SetLimit(cfg.Parallelism)
	for r := range cfg.Restarts {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					runs[r] = Run{Restart: r, Seed: seeds[r], LowerBound: math.Inf(-1),
						Err: fmt.Errorf("mixture: restart %d panicked: %v", r, p)}
				}
			}()
			states[r], runs[r] = runRestart(cfg, s, st, r, seeds[r], logger)

			return nil
		})
	}
	_ = g.Wait()

	best := -1
	var notConverged []int
	for r, run := range runs {
		if run.Err != nil {
			logger.WithField("restart", r).WithError(run.Err).Warn("restart discarded")
			continue
		}
		if !run.Converged {
			notConverged = append(notConverged, r)
		}
		if best < 0 || run.LowerBound > runs[best].LowerBound {
			best = r
		}
	}

	if best < 0 {
		return nil, runs[0].Err
	}

	mix := st.mixture(states[best])
	_, logResp := logProbResp(mix.weightedLogProb(s.points))
	labels := argmaxRows(logResp)

	res := &Result{
		Mixture:          mix,
		Labels:           labels,
		Responsibilities: expResp(logResp),
		LowerBound:       runs[best].LowerBound,
		Iterations:       runs[best].Iterations,
		Converged:        len(notConverged) == 0,
		Best:             best,
		Runs:             runs,
	}

	if cfg.Method == MethodBayes {
		res.Active = firstAppearance(labels)
	} else {
		res.Active = make([]int, cfg.Components)
		for c := range res.Active {
			res.Active[c] = c
		}
	}

	logger.WithFields(logrus.Fields{
		"best":        best,
		"lower_bound": res.LowerBound,
		"iterations":  res.Iterations,
		"active":      len(res.Active),
	}).Debug("fit finished")

	if len(notConverged) > 0 {
		w := &ConvergenceWarning{Restarts: notConverged, MaxIter: cfg.MaxIter}
		logger.Warn(w.Error())

		return res, w
	}

	return res, nil
}

// runRestart runs one independent restart from its own seed.
func runRestart[S any](cfg *Config, s *Sample, st strategy[S], restart int, seed uint64,
	logger logrus.FieldLogger,
) (S, Run) {
	var zero S
	run := Run{Restart: restart, Seed: seed, LowerBound: math.Inf(-1)}
	log := logger.WithField("restart", restart)

	rng := rand.New(rand.NewSource(seed))
	state, err := st.initialize(s, initialResponsibilities(cfg, s, rng))
	if err != nil {
		run.Err = annotateDegenerate(err, restart, 0)
		return zero, run
	}

	lowerBound := math.Inf(-1)
	for iter := 1; iter <= cfg.MaxIter; iter++ {
		prev := lowerBound

		norm, logResp := logProbResp(st.weightedLogProb(s.points, state))
		next, err := st.mStep(s, logResp, state)
		if err != nil {
			run.Err = annotateDegenerate(err, restart, iter)
			return zero, run
		}
		state = next
		lowerBound = st.lowerBound(state, logResp, stat.Mean(norm, nil))

		run.History = append(run.History, lowerBound)
		run.Iterations = iter

		change := lowerBound - prev
		if iter%cfg.VerboseInterval == 0 {
			log.WithFields(logrus.Fields{"iter": iter, "change": change}).Debug("iteration")
		}

		if math.Abs(change) < cfg.Tol {
			run.Converged = true
			break
		}
	}

	run.LowerBound = lowerBound
	log.WithFields(logrus.Fields{
		"lower_bound": lowerBound,
		"iterations":  run.Iterations,
		"converged":   run.Converged,
	}).Debug("restart finished")

	return state, run
}

func annotateDegenerate(err error, restart, iter int) error {
	var dce *DegenerateComponentError
	if errors.As(err, &dce) {
		annotated := *dce
		annotated.Restart = restart
		annotated.Iteration = iter

		return &annotated
	}

	return err
}

// initialResponsibilities seeds the N×K responsibilities of a restart.
func initialResponsibilities(cfg *Config, s *Sample, rng *rand.Rand) *mat.Dense {
	n, k := s.Len(), cfg.Components
	resp := mat.NewDense(n, k, nil)

	switch cfg.Init {
	case InitRandom:
		for i := range n {
			row := resp.RawRowView(i)
			for c := range row {
				row[c] = rng.Float64()
			}
			floats.Scale(1/floats.Sum(row), row)
		}
	default:
		for i, c := range kmeansLabels(s, k, rng) {
			resp.Set(i, c, 1)
		}
	}

	return resp
}

// firstAppearance lists the distinct labels in order of first occurrence.
func firstAppearance(labels []int) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}

	return out
}
