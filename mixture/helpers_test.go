package mixture

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// twoClusters draws n points around (0, 0) followed by n points around (20, 20).
func twoClusters(t testing.TB, n int, seed uint64) *Sample {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	points := make([][2]float64, 0, 2*n)
	for range n {
		points = append(points, [2]float64{rng.NormFloat64(), rng.NormFloat64()})
	}
	for range n {
		points = append(points, [2]float64{20 + rng.NormFloat64(), 20 + rng.NormFloat64()})
	}

	s, err := NewSampleFromPoints(points, nil)
	require.NoError(t, err)

	return s
}

func mustFitter(t testing.TB, opts ...Option) *Fitter {
	t.Helper()

	f, err := NewFitter(opts...)
	require.NoError(t, err)

	return f
}

// byMeanX returns component indices ordered by the x coordinate of their mean.
func byMeanX(m *Mixture) []int {
	idx := make([]int, m.NumComponents())
	for k := range idx {
		idx[k] = k
	}
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && m.Means.At(idx[j], 0) < m.Means.At(idx[j-1], 0); j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}

	return idx
}
