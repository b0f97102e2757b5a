package mixture

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var allCovarianceTypes = []CovarianceType{CovarianceFull, CovarianceTied, CovarianceDiag, CovarianceSpherical}

func TestFit_EMTwoClusters(t *testing.T) {
	s := twoClusters(t, 200, 11)

	for _, ct := range allCovarianceTypes {
		t.Run(ct.String(), func(t *testing.T) {
			f := mustFitter(t, WithComponents(2), WithCovarianceType(ct), WithSeed(42))

			res, err := f.Fit(s)
			require.NoError(t, err)
			require.True(t, res.Converged)
			require.Equal(t, []int{0, 1}, res.Active)

			m := res.Mixture
			require.InDelta(t, 1.0, floats.Sum(m.Weights), 1e-9)

			order := byMeanX(m)
			low, high := m.Mean(order[0]), m.Mean(order[1])
			require.InDelta(t, 0.0, low[0], 0.5)
			require.InDelta(t, 0.0, low[1], 0.5)
			require.InDelta(t, 20.0, high[0], 0.5)
			require.InDelta(t, 20.0, high[1], 0.5)
			require.InDelta(t, 0.5, m.Weights[order[0]], 0.01)

			for _, c := range res.Components() {
				require.Equal(t, c.Covariance[0][1], c.Covariance[1][0])
				det := c.Covariance[0][0]*c.Covariance[1][1] - c.Covariance[0][1]*c.Covariance[1][0]
				require.Greater(t, c.Covariance[0][0], 0.0)
				require.Greater(t, det, 0.0)
			}
		})
	}
}

func TestFit_LowerBoundIsMonotone(t *testing.T) {
	s := twoClusters(t, 150, 3)

	for _, method := range []Method{MethodEM, MethodBayes} {
		for _, ct := range allCovarianceTypes {
			t.Run(method.String()+"/"+ct.String(), func(t *testing.T) {
				f := mustFitter(t, WithMethod(method), WithComponents(3), WithCovarianceType(ct),
					WithInit(InitRandom), WithSeed(5), WithTol(1e-6), WithMaxIter(50))

				res, err := f.Fit(s)
				if err != nil {
					require.ErrorIs(t, err, ErrNotConverged)
				}

				history := res.Runs[res.Best].History
				require.Equal(t, res.Iterations, len(history))
				for i := 1; i < len(history); i++ {
					require.GreaterOrEqual(t, history[i], history[i-1]-DefaultTol, "iteration %d", i+1)
				}
			})
		}
	}
}

func TestFit_PredictMatchesLabels(t *testing.T) {
	s := twoClusters(t, 100, 21)

	for _, method := range []Method{MethodEM, MethodBayes} {
		t.Run(method.String(), func(t *testing.T) {
			res, err := mustFitter(t, WithMethod(method), WithComponents(3), WithSeed(9)).Fit(s)
			if err != nil {
				require.ErrorIs(t, err, ErrNotConverged)
			}

			require.Equal(t, res.Labels, res.Mixture.Predict(s))

			proba := res.Mixture.PredictProba(s)
			r, c := proba.Dims()
			require.Equal(t, 200, r)
			require.Equal(t, 3, c)
			for i := range r {
				require.InDelta(t, 1.0, floats.Sum(proba.RawRowView(i)), 1e-9)
			}
			require.True(t, mat.EqualApprox(proba, res.Responsibilities, 1e-12))
		})
	}
}

func TestFit_SingleClusterSpherical(t *testing.T) {
	points := make([][2]float64, 50)
	for i := range points {
		points[i] = [2]float64{10, 20}
	}
	s, err := NewSampleFromPoints(points, nil)
	require.NoError(t, err)

	res, err := mustFitter(t, WithCovarianceType(CovarianceSpherical)).Fit(s)
	require.NoError(t, err)

	comps := res.Components()
	require.Len(t, comps, 1)
	require.InDelta(t, 10.0, comps[0].Mean[0], 1e-9)
	require.InDelta(t, 20.0, comps[0].Mean[1], 1e-9)
	require.InDelta(t, 1e-6, comps[0].Covariance[0][0], 1e-9)
	require.InDelta(t, 1e-6, comps[0].Covariance[1][1], 1e-9)
	require.Equal(t, 0.0, comps[0].Covariance[0][1])
	require.InDelta(t, 1.0, comps[0].Weight, 1e-12)
	require.Equal(t, make([]int, 50), res.Labels)
}

func TestFit_BayesPrunesUnusedComponents(t *testing.T) {
	s := twoClusters(t, 200, 13)

	res, err := mustFitter(t, WithMethod(MethodBayes), WithComponents(8), WithSeed(42), WithMaxIter(500)).Fit(s)
	if err != nil {
		require.ErrorIs(t, err, ErrNotConverged)
	}

	require.Len(t, res.Active, 2)
	require.Equal(t, res.Labels[0], res.Active[0])

	used := make(map[int]bool)
	for _, l := range res.Labels {
		used[l] = true
	}
	require.Len(t, used, len(res.Active))
	for _, k := range res.Active {
		require.True(t, used[k])
	}

	// pruned weights keep their values
	comps := res.Components()
	for i, k := range res.Active {
		require.Equal(t, res.Mixture.Weights[k], comps[i].Weight)
	}
	require.InDelta(t, 1.0, floats.Sum(res.Mixture.Weights), 1e-9)
}

func TestFit_BayesDirichletDistribution(t *testing.T) {
	s := twoClusters(t, 200, 17)

	res, err := mustFitter(t, WithMethod(MethodBayes), WithWeightPriorType(PriorDirichletDistribution),
		WithComponents(2), WithSeed(1)).Fit(s)
	require.NoError(t, err)
	require.NotNil(t, res.Mixture.Posterior)

	order := byMeanX(res.Mixture)
	low, high := res.Mixture.Mean(order[0]), res.Mixture.Mean(order[1])
	require.InDelta(t, 0.0, low[0], 0.5)
	require.InDelta(t, 20.0, high[1], 0.5)
	require.InDelta(t, 0.5, res.Mixture.Weights[order[0]], 0.02)
}

func TestFit_Deterministic(t *testing.T) {
	s := twoClusters(t, 100, 2)
	opts := []Option{WithComponents(3), WithRestarts(4), WithSeed(99), WithInit(InitRandom)}

	serial := fitAllowingWarning(t, s, opts...)
	again := fitAllowingWarning(t, s, opts...)
	parallel := fitAllowingWarning(t, s, append(opts, WithParallelism(4))...)

	require.Equal(t, serial.Labels, again.Labels)
	require.Equal(t, serial.Best, parallel.Best)
	require.Equal(t, serial.LowerBound, parallel.LowerBound)
	require.Equal(t, serial.Mixture.Weights, parallel.Mixture.Weights)
	require.Len(t, parallel.Runs, 4)

	// the best restart has the highest lower bound, first on ties
	for r, run := range serial.Runs {
		if r < serial.Best {
			require.Less(t, run.LowerBound, serial.LowerBound)
		} else {
			require.LessOrEqual(t, run.LowerBound, serial.LowerBound)
		}
	}
}

func TestFit_ConvergenceWarning(t *testing.T) {
	s := twoClusters(t, 50, 4)
	logger, hook := test.NewNullLogger()

	res, err := mustFitter(t, WithComponents(2), WithMaxIter(1), WithTol(0), WithLogger(logger)).Fit(s)
	require.ErrorIs(t, err, ErrNotConverged)
	require.NotNil(t, res)
	require.False(t, res.Converged)
	require.Equal(t, 1, res.Iterations)

	var w *ConvergenceWarning
	require.True(t, errors.As(err, &w))
	require.Equal(t, []int{0}, w.Restarts)
	require.Equal(t, 1, w.MaxIter)

	require.NotNil(t, hook.LastEntry())
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestFit_InvalidSample(t *testing.T) {
	s, err := NewSampleFromPoints([][2]float64{{0, 0}, {1, 1}, {2, 2}}, nil)
	require.NoError(t, err)

	_, err = mustFitter(t, WithComponents(4)).Fit(s)
	require.ErrorIs(t, err, ErrInvalidSample)

	one, err := NewSampleFromPoints([][2]float64{{0, 0}}, nil)
	require.NoError(t, err)
	_, err = mustFitter(t).Fit(one)
	require.ErrorIs(t, err, ErrInvalidSample)

	_, err = mustFitter(t).Fit(nil)
	require.ErrorIs(t, err, ErrInvalidSample)
}

func TestFit_InitialParameters(t *testing.T) {
	s := twoClusters(t, 100, 8)

	res, err := mustFitter(t,
		WithComponents(2),
		WithInitialWeights([]float64{0.5, 0.5}),
		WithInitialMeans(mat.NewDense(2, 2, []float64{20, 20, 0, 0})),
		WithInitialPrecisions(Precisions{Type: CovarianceFull, Full: []mat.Matrix{eye(), eye()}}),
	).Fit(s)
	require.NoError(t, err)

	require.InDelta(t, 20.0, res.Mixture.Mean(0)[0], 0.5)
	require.InDelta(t, 0.0, res.Mixture.Mean(1)[0], 0.5)
	require.Equal(t, 1, res.Labels[0])
}

func TestFit_LogsProgress(t *testing.T) {
	s := twoClusters(t, 50, 6)
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	_, err := mustFitter(t, WithComponents(2), WithLogger(logger), WithVerboseInterval(1)).Fit(s)
	require.NoError(t, err)

	var iterations, finished int
	for _, e := range hook.AllEntries() {
		switch e.Message {
		case "iteration":
			iterations++
			require.Equal(t, "fit", e.Data["action"])
		case "fit finished":
			finished++
		}
	}
	require.Positive(t, iterations)
	require.Equal(t, 1, finished)
}

func TestFit_AllRestartsDegenerate(t *testing.T) {
	// squared deviations overflow, so no covariance is positive-definite
	s, err := NewSampleFromPoints([][2]float64{
		{-1e200, -1e200}, {1e200, 1e200}, {-1e200, 1e200}, {1e200, -1e200},
	}, nil)
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	res, err := mustFitter(t, WithComponents(1), WithRestarts(3), WithLogger(logger)).Fit(s)
	require.Nil(t, res)
	require.ErrorIs(t, err, ErrDegenerateComponent)

	var dce *DegenerateComponentError
	require.ErrorAs(t, err, &dce)
	require.Equal(t, 0, dce.Restart)
	require.Equal(t, 0, dce.Iteration)
	require.Equal(t, CovarianceFull, dce.Covariance)

	var discarded int
	for _, e := range hook.AllEntries() {
		if e.Message == "restart discarded" {
			discarded++
			require.Equal(t, logrus.WarnLevel, e.Level)
		}
	}
	require.Equal(t, 3, discarded)
}

// failFirstInit is an EM strategy whose first initialization is degenerate.
type failFirstInit struct {
	emStrategy
	calls *int
}

func (f failFirstInit) initialize(s *Sample, resp *mat.Dense) (*Parameters, error) {
	*f.calls++
	if *f.calls == 1 {
		return nil, &DegenerateComponentError{Covariance: CovarianceFull, Component: 0, Restart: -1}
	}

	return f.emStrategy.initialize(s, resp)
}

func TestFit_DegenerateRestartIsSkipped(t *testing.T) {
	s := twoClusters(t, 100, 21)
	f := mustFitter(t, WithComponents(2), WithRestarts(3), WithSeed(4))

	var calls int
	res, err := fitWith(f.cfg, s, failFirstInit{emStrategy: emStrategy{cfg: f.cfg}, calls: &calls})
	require.NoError(t, err)
	require.Equal(t, 3, calls)

	require.ErrorIs(t, res.Runs[0].Err, ErrDegenerateComponent)
	require.NoError(t, res.Runs[1].Err)
	require.NoError(t, res.Runs[2].Err)
	require.NotEqual(t, 0, res.Best)
	require.True(t, res.Converged)
	require.Equal(t, []int{0, 1}, res.Active)
	require.InDelta(t, 1.0, floats.Sum(res.Mixture.Weights), 1e-9)
}

func TestAnnotateDegenerate(t *testing.T) {
	base := &DegenerateComponentError{Covariance: CovarianceFull, Component: 1, Restart: -1}

	err := annotateDegenerate(base, 3, 7)

	var dce *DegenerateComponentError
	require.ErrorAs(t, err, &dce)
	require.Equal(t, 3, dce.Restart)
	require.Equal(t, 7, dce.Iteration)
	require.Equal(t, -1, base.Restart)
	require.Contains(t, err.Error(), "restart 3 iteration 7")
}

func TestFirstAppearance(t *testing.T) {
	require.Equal(t, []int{3, 0, 5}, firstAppearance([]int{3, 3, 0, 5, 0, 3}))
	require.Nil(t, firstAppearance(nil))
}

func fitAllowingWarning(t *testing.T, s *Sample, opts ...Option) *Result {
	t.Helper()

	res, err := mustFitter(t, opts...).Fit(s)
	if err != nil {
		require.ErrorIs(t, err, ErrNotConverged)
	}
	require.NotNil(t, res)

	return res
}
