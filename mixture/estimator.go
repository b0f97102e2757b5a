package mixture

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// countFloor is added to every effective count so that empty components never divide by zero.
var countFloor = 10 * (math.Nextafter(1, 2) - 1)

// gaussianStats is the output of the shared M-step estimator.
type gaussianStats struct {
	// nk is the effective (weighted) count of every component.
	nk []float64
	// means is the K×d matrix of weighted component means.
	means *mat.Dense
	// cov is the regularized weighted covariance estimate.
	cov *Covariances
}

// estimateGaussianParameters computes the effective counts, means and
// covariances of every component from the responsibilities resp (N×K).
func estimateGaussianParameters(s *Sample, resp mat.Matrix, reg float64, ct CovarianceType) gaussianStats {
	n, k := resp.Dims()

	// wr[i,k] = w_i · R_ik
	wr := mat.NewDense(n, k, nil)
	wr.Apply(func(i, _ int, v float64) float64 { return v * s.weights[i] }, resp)

	nk := make([]float64, k)
	for c := range k {
		nk[c] = floats.Sum(mat.Col(nil, c, wr)) + countFloor
	}

	means := mat.NewDense(k, Features, nil)
	means.Mul(wr.T(), s.points)
	for c := range k {
		floats.Scale(1/nk[c], means.RawRowView(c))
	}

	stats := gaussianStats{nk: nk, means: means}

	switch ct {
	case CovarianceFull:
		stats.cov = estimateFull(s, wr, nk, means, reg)
	case CovarianceTied:
		stats.cov = estimateTied(s, nk, means, reg)
	case CovarianceDiag:
		stats.cov = estimateDiag(s, wr, nk, means, reg)
	case CovarianceSpherical:
		diag := estimateDiag(s, wr, nk, means, reg)
		sph := make([]float64, k)
		for c := range k {
			sph[c] = floats.Sum(diag.Diag.RawRowView(c)) / Features
		}
		stats.cov = &Covariances{Type: CovarianceSpherical, Spherical: sph}
	}

	return stats
}

func estimateFull(s *Sample, wr *mat.Dense, nk []float64, means *mat.Dense, reg float64) *Covariances {
	n, k := wr.Dims()
	full := make([]*mat.SymDense, k)

	for c := range k {
		mu := means.RawRowView(c)
		var s00, s01, s11 float64
		for i := range n {
			r := wr.At(i, c)
			if r == 0 {
				continue
			}
			d0 := s.points.At(i, 0) - mu[0]
			d1 := s.points.At(i, 1) - mu[1]
			s00 += r * d0 * d0
			s01 += r * d0 * d1
			s11 += r * d1 * d1
		}
		full[c] = mat.NewSymDense(Features, []float64{
			s00/nk[c] + reg, s01 / nk[c],
			s01 / nk[c], s11/nk[c] + reg,
		})
	}

	return &Covariances{Type: CovarianceFull, Full: full}
}

func estimateTied(s *Sample, nk []float64, means *mat.Dense, reg float64) *Covariances {
	n := s.Len()
	k := len(nk)

	// Σ_i w_i x_i x_iᵀ - Σ_k nk μ_k μ_kᵀ, divided by Σ nk
	var a00, a01, a11 float64
	for i := range n {
		w := s.weights[i]
		x0, x1 := s.points.At(i, 0), s.points.At(i, 1)
		a00 += w * x0 * x0
		a01 += w * x0 * x1
		a11 += w * x1 * x1
	}

	for c := range k {
		mu := means.RawRowView(c)
		a00 -= nk[c] * mu[0] * mu[0]
		a01 -= nk[c] * mu[0] * mu[1]
		a11 -= nk[c] * mu[1] * mu[1]
	}

	total := floats.Sum(nk)
	tied := mat.NewSymDense(Features, []float64{
		a00/total + reg, a01 / total,
		a01 / total, a11/total + reg,
	})

	return &Covariances{Type: CovarianceTied, Tied: tied}
}

func estimateDiag(s *Sample, wr *mat.Dense, nk []float64, means *mat.Dense, reg float64) *Covariances {
	_, k := wr.Dims()

	sq := mat.NewDense(s.Len(), Features, nil)
	sq.MulElem(s.points, s.points)

	var avgX2, avgX mat.Dense
	avgX2.Mul(wr.T(), sq)
	avgX.Mul(wr.T(), s.points)

	diag := mat.NewDense(k, Features, nil)
	for c := range k {
		for j := range Features {
			mu := means.At(c, j)
			ex2 := avgX2.At(c, j) / nk[c]
			exMu := mu * avgX.At(c, j) / nk[c]
			diag.Set(c, j, ex2-2*exMu+mu*mu+reg)
		}
	}

	return &Covariances{Type: CovarianceDiag, Diag: diag}
}

// estimateLogGaussianProb returns the N×K matrix of log N(x_i | μ_k, P_k).
func estimateLogGaussianProb(x mat.Matrix, means *mat.Dense, pc *PrecisionCholesky) *mat.Dense {
	n, _ := x.Dims()
	k, _ := means.Dims()
	logDet := pc.logDet(k)
	norm := Features * math.Log(2*math.Pi)

	out := mat.NewDense(n, k, nil)
	for c := range k {
		mu := means.RawRowView(c)
		for i := range n {
			d0 := x.At(i, 0) - mu[0]
			d1 := x.At(i, 1) - mu[1]
			out.Set(i, c, -0.5*(norm+mahalanobis(pc, c, d0, d1))+logDet[c])
		}
	}

	return out
}

// mahalanobis returns ||(d0, d1)·P_c||².
func mahalanobis(pc *PrecisionCholesky, c int, d0, d1 float64) float64 {
	switch pc.Type {
	case CovarianceFull, CovarianceTied:
		f := pc.Tied
		if pc.Type == CovarianceFull {
			f = pc.Full[c]
		}
		y0 := d0*f.At(0, 0) + d1*f.At(1, 0)
		y1 := d0*f.At(0, 1) + d1*f.At(1, 1)

		return y0*y0 + y1*y1
	case CovarianceDiag:
		p0, p1 := pc.Diag.At(c, 0), pc.Diag.At(c, 1)
		return d0*d0*p0*p0 + d1*d1*p1*p1
	default:
		p := pc.Spherical[c]
		return (d0*d0 + d1*d1) * p * p
	}
}

// logProbResp normalizes weighted log-probabilities row by row.
//
// Returns the per-row log normalizer and the N×K log responsibilities.
func logProbResp(weighted *mat.Dense) ([]float64, *mat.Dense) {
	n, k := weighted.Dims()
	norm := make([]float64, n)
	logResp := mat.NewDense(n, k, nil)

	for i := range n {
		row := weighted.RawRowView(i)
		lse := floats.LogSumExp(row)
		norm[i] = lse
		dst := logResp.RawRowView(i)
		for c, v := range row {
			dst[c] = v - lse
		}
	}

	return norm, logResp
}

// expResp returns exp(logResp).
func expResp(logResp *mat.Dense) *mat.Dense {
	var resp mat.Dense
	resp.Apply(func(_, _ int, v float64) float64 { return math.Exp(v) }, logResp)

	return &resp
}

// argmaxRows returns the column of the largest value of every row, the lowest index on ties.
func argmaxRows(m *mat.Dense) []int {
	n, _ := m.Dims()
	labels := make([]int, n)
	for i := range n {
		labels[i] = floats.MaxIdx(m.RawRowView(i))
	}

	return labels
}
