package mixture

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestMixture_NumParameters(t *testing.T) {
	cases := map[CovarianceType]int{
		CovarianceFull:      3*3 + 3*2 + 2,
		CovarianceTied:      3 + 3*2 + 2,
		CovarianceDiag:      3*2 + 3*2 + 2,
		CovarianceSpherical: 3 + 3*2 + 2,
	}

	for ct, want := range cases {
		m := &Mixture{CovarianceType: ct, Weights: make([]float64, 3)}
		require.Equal(t, want, m.NumParameters(), ct.String())
	}
}

func TestMixture_InformationCriteria(t *testing.T) {
	s := twoClusters(t, 150, 31)

	one, err := mustFitter(t, WithComponents(1)).Fit(s)
	require.NoError(t, err)
	two, err := mustFitter(t, WithComponents(2)).Fit(s)
	require.NoError(t, err)

	require.Less(t, two.Mixture.BIC(s), one.Mixture.BIC(s))
	require.Less(t, two.Mixture.AIC(s), one.Mixture.AIC(s))

	// EM score equals the final mean log-likelihood for unit weights
	require.InDelta(t, floats.Sum(two.Mixture.ScoreSamples(s))/300, two.Mixture.Score(s), 1e-9)
}

func TestMixture_ScoreSamplesWeighted(t *testing.T) {
	m := &Mixture{
		Method:            MethodEM,
		CovarianceType:    CovarianceSpherical,
		Weights:           []float64{1},
		Means:             mat.NewDense(1, 2, []float64{0, 0}),
		Covariances:       &Covariances{Type: CovarianceSpherical, Spherical: []float64{1}},
		PrecisionCholesky: &PrecisionCholesky{Type: CovarianceSpherical, Spherical: []float64{1}},
	}

	s, err := NewSampleFromPoints([][2]float64{{0, 0}, {0, 0}}, []float64{3, 1})
	require.NoError(t, err)

	scores := m.ScoreSamples(s)
	require.InDelta(t, -1.5*math.Log(2*math.Pi), scores[0], 1e-12)
	require.InDelta(t, -0.5*math.Log(2*math.Pi), scores[1], 1e-12)
}

func TestMixture_Sample(t *testing.T) {
	m := &Mixture{
		Method:         MethodEM,
		CovarianceType: CovarianceFull,
		Weights:        []float64{0.25, 0.75},
		Means:          mat.NewDense(2, 2, []float64{0, 0, 50, 50}),
		Covariances: &Covariances{Type: CovarianceFull, Full: []*mat.SymDense{
			mat.NewSymDense(2, []float64{1, 0.5, 0.5, 1}),
			mat.NewSymDense(2, []float64{2, 0, 0, 2}),
		}},
	}

	x, labels, err := m.Sample(4000, rand.New(rand.NewSource(12)))
	require.NoError(t, err)

	r, c := x.Dims()
	require.Equal(t, 4000, r)
	require.Equal(t, 2, c)
	require.True(t, sort.IntsAreSorted(labels))

	var count0 int
	var sum1 [2]float64
	for i, l := range labels {
		if l == 0 {
			count0++
			continue
		}
		sum1[0] += x.At(i, 0)
		sum1[1] += x.At(i, 1)
	}
	require.InDelta(t, 1000, count0, 150)
	require.InDelta(t, 50.0, sum1[0]/float64(4000-count0), 0.2)
	require.InDelta(t, 50.0, sum1[1]/float64(4000-count0), 0.2)

	_, _, err = m.Sample(0, rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, ErrInvalidSample)
}

func TestMixture_Components(t *testing.T) {
	m := &Mixture{
		CovarianceType: CovarianceDiag,
		Weights:        []float64{0.2, 0.3, 0.5},
		Means:          mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6}),
		Covariances:    &Covariances{Type: CovarianceDiag, Diag: mat.NewDense(3, 2, []float64{1, 1, 2, 3, 4, 4})},
	}

	all := m.Components()
	require.Len(t, all, 3)

	picked := m.Components(2, 1)
	require.Equal(t, [2]float64{5, 6}, picked[0].Mean)
	require.Equal(t, 0.5, picked[0].Weight)
	require.Equal(t, [2][2]float64{{2, 0}, {0, 3}}, picked[1].Covariance)
}
