package mixture

import (
	"testing"

	"golang.org/x/exp/rand"
)

func BenchmarkFit(b *testing.B) {
	s := twoClusters(b, 500, 1)

	benchmarks := []struct {
		name string
		opts []Option
	}{
		{"EM/full", []Option{WithComponents(4)}},
		{"EM/spherical", []Option{WithComponents(4), WithCovarianceType(CovarianceSpherical)}},
		{"Bayes/full", []Option{WithComponents(4), WithMethod(MethodBayes)}},
		{"Bayes/restarts", []Option{WithComponents(4), WithMethod(MethodBayes), WithRestarts(4), WithParallelism(4)}},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			f := mustFitter(b, bm.opts...)
			b.ReportAllocs()
			b.ResetTimer()
			for range b.N {
				_, _ = f.Fit(s)
			}
		})
	}
}

func BenchmarkKMeansLabels(b *testing.B) {
	s := twoClusters(b, 500, 1)
	cfg := DefaultConfig()
	cfg.Components = 8

	b.ReportAllocs()
	for i := range b.N {
		_ = initialResponsibilities(cfg, s, rand.New(rand.NewSource(uint64(i))))
	}
}
