package mixture

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func squareSample(t *testing.T) *Sample {
	t.Helper()

	s, err := NewSampleFromPoints([][2]float64{{0, 0}, {2, 0}, {0, 2}, {2, 2}}, nil)
	require.NoError(t, err)

	return s
}

func TestEstimateGaussianParameters(t *testing.T) {
	s := squareSample(t)
	resp := mat.NewDense(4, 1, []float64{1, 1, 1, 1})
	const reg = 1e-6

	for _, ct := range []CovarianceType{CovarianceFull, CovarianceTied, CovarianceDiag, CovarianceSpherical} {
		t.Run(ct.String(), func(t *testing.T) {
			stats := estimateGaussianParameters(s, resp, reg, ct)

			require.InDelta(t, 4.0, stats.nk[0], 1e-12)
			require.InDelta(t, 1.0, stats.means.At(0, 0), 1e-12)
			require.InDelta(t, 1.0, stats.means.At(0, 1), 1e-12)

			cov := stats.cov.Matrix(0)
			require.InDelta(t, 1+reg, cov.At(0, 0), 1e-9)
			require.InDelta(t, 1+reg, cov.At(1, 1), 1e-9)
			require.InDelta(t, 0.0, cov.At(0, 1), 1e-9)
		})
	}
}

func TestEstimateGaussianParameters_Weighted(t *testing.T) {
	s, err := NewSampleFromPoints([][2]float64{{0, 0}, {4, 0}}, []float64{3, 1})
	require.NoError(t, err)

	stats := estimateGaussianParameters(s, mat.NewDense(2, 1, []float64{1, 1}), 1e-6, CovarianceDiag)

	// weights normalize to 1.5 and 0.5
	require.InDelta(t, 1.0, stats.means.At(0, 0), 1e-12)
	require.InDelta(t, 0.0, stats.means.At(0, 1), 1e-12)
	require.InDelta(t, 3+1e-6, stats.cov.Diag.At(0, 0), 1e-9)
	require.InDelta(t, 1e-6, stats.cov.Diag.At(0, 1), 1e-12)
}

func TestEstimateGaussianParameters_EmptyComponent(t *testing.T) {
	s := squareSample(t)
	resp := mat.NewDense(4, 2, []float64{1, 0, 1, 0, 1, 0, 1, 0})

	stats := estimateGaussianParameters(s, resp, 1e-6, CovarianceFull)

	require.Greater(t, stats.nk[1], 0.0)
	require.False(t, math.IsNaN(stats.means.At(1, 0)))
	require.InDelta(t, 1e-6, stats.cov.Full[1].At(0, 0), 1e-12)
}

func TestEstimateLogGaussianProb(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{0, 0, 1, 0})
	means := mat.NewDense(1, 2, []float64{0, 0})
	pc := &PrecisionCholesky{Type: CovarianceFull, Full: []*mat.Dense{mat.NewDense(2, 2, []float64{1, 0, 0, 1})}}

	out := estimateLogGaussianProb(x, means, pc)

	require.InDelta(t, -math.Log(2*math.Pi), out.At(0, 0), 1e-12)
	require.InDelta(t, -math.Log(2*math.Pi)-0.5, out.At(1, 0), 1e-12)

	// every covariance representation of the identity agrees
	for _, p := range []*PrecisionCholesky{
		{Type: CovarianceTied, Tied: mat.NewDense(2, 2, []float64{1, 0, 0, 1})},
		{Type: CovarianceDiag, Diag: mat.NewDense(1, 2, []float64{1, 1})},
		{Type: CovarianceSpherical, Spherical: []float64{1}},
	} {
		got := estimateLogGaussianProb(x, means, p)
		require.InDelta(t, out.At(1, 0), got.At(1, 0), 1e-12, p.Type.String())
	}
}

func TestLogProbResp(t *testing.T) {
	weighted := mat.NewDense(1, 2, []float64{math.Log(0.25), math.Log(0.75)})

	norm, logResp := logProbResp(weighted)

	require.InDelta(t, 0.0, norm[0], 1e-12)
	resp := expResp(logResp)
	require.InDelta(t, 0.25, resp.At(0, 0), 1e-12)
	require.InDelta(t, 0.75, resp.At(0, 1), 1e-12)
}

func TestArgmaxRows_TiesPickLowestIndex(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 5, 5, 7, 7, 7})
	require.Equal(t, []int{1, 0}, argmaxRows(m))
}
