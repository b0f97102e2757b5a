package mixture

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Covariances holds the covariance representation selected by Type.
//
// Exactly one of the representation fields is populated:
//   - full: Full, one d×d matrix per component
//   - tied: Tied, one d×d matrix shared by all components
//   - diag: Diag, a K×d matrix of per-feature variances
//   - spherical: Spherical, one variance per component
type Covariances struct {
	Type      CovarianceType
	Full      []*mat.SymDense
	Tied      *mat.SymDense
	Diag      *mat.Dense
	Spherical []float64
}

// Matrix returns the covariance of component k expanded to a d×d matrix.
func (c *Covariances) Matrix(k int) *mat.SymDense {
	out := mat.NewSymDense(Features, nil)

	switch c.Type {
	case CovarianceFull:
		out.CopySym(c.Full[k])
	case CovarianceTied:
		out.CopySym(c.Tied)
	case CovarianceDiag:
		for j := range Features {
			out.SetSym(j, j, c.Diag.At(k, j))
		}
	case CovarianceSpherical:
		for j := range Features {
			out.SetSym(j, j, c.Spherical[k])
		}
	}

	return out
}

// Subset returns the covariances of the listed components in the given order.
func (c *Covariances) Subset(components []int) *Covariances {
	out := &Covariances{Type: c.Type}

	switch c.Type {
	case CovarianceFull:
		out.Full = make([]*mat.SymDense, len(components))
		for i, k := range components {
			out.Full[i] = mat.NewSymDense(Features, nil)
			out.Full[i].CopySym(c.Full[k])
		}
	case CovarianceTied:
		out.Tied = mat.NewSymDense(Features, nil)
		out.Tied.CopySym(c.Tied)
	case CovarianceDiag:
		out.Diag = mat.NewDense(len(components), Features, nil)
		for i, k := range components {
			out.Diag.SetRow(i, c.Diag.RawRowView(k))
		}
	case CovarianceSpherical:
		out.Spherical = make([]float64, len(components))
		for i, k := range components {
			out.Spherical[i] = c.Spherical[k]
		}
	}

	return out
}

// PrecisionCholesky holds Cholesky factors P of the precision matrices, so that
// P·Pᵀ is the precision and ||(x-μ)·P||² is the squared Mahalanobis distance.
//
// The representation mirrors Covariances: Full and Tied hold d×d factors, Diag
// holds a K×d matrix of inverse standard deviations and Spherical one inverse
// standard deviation per component.
type PrecisionCholesky struct {
	Type      CovarianceType
	Full      []*mat.Dense
	Tied      *mat.Dense
	Diag      *mat.Dense
	Spherical []float64
}

// Precision returns the precision matrix of component k.
func (p *PrecisionCholesky) Precision(k int) *mat.SymDense {
	out := mat.NewSymDense(Features, nil)

	switch p.Type {
	case CovarianceFull, CovarianceTied:
		f := p.Tied
		if p.Type == CovarianceFull {
			f = p.Full[k]
		}
		out.SymOuterK(1, f)
	case CovarianceDiag:
		for j := range Features {
			v := p.Diag.At(k, j)
			out.SetSym(j, j, v*v)
		}
	case CovarianceSpherical:
		for j := range Features {
			out.SetSym(j, j, p.Spherical[k]*p.Spherical[k])
		}
	}

	return out
}

// logDet returns log|P_k| for every component, that is half the log-determinant
// of each precision matrix.
func (p *PrecisionCholesky) logDet(nComponents int) []float64 {
	out := make([]float64, nComponents)

	switch p.Type {
	case CovarianceFull:
		for k, f := range p.Full {
			out[k] = logDiagSum(f)
		}
	case CovarianceTied:
		v := logDiagSum(p.Tied)
		for k := range out {
			out[k] = v
		}
	case CovarianceDiag:
		for k := range out {
			for _, v := range p.Diag.RawRowView(k) {
				out[k] += math.Log(v)
			}
		}
	case CovarianceSpherical:
		for k, v := range p.Spherical {
			out[k] = Features * math.Log(v)
		}
	}

	return out
}

func logDiagSum(m *mat.Dense) float64 {
	var sum float64
	for j := range Features {
		sum += math.Log(m.At(j, j))
	}

	return sum
}

// computePrecisionCholesky factors every covariance and inverts the lower
// Cholesky factor by back-substitution. The transposed inverse is the precision
// Cholesky factor.
func computePrecisionCholesky(cov *Covariances) (*PrecisionCholesky, error) {
	out := &PrecisionCholesky{Type: cov.Type}

	switch cov.Type {
	case CovarianceFull:
		out.Full = make([]*mat.Dense, len(cov.Full))
		for k, c := range cov.Full {
			f, ok := precisionFactor(c)
			if !ok {
				return nil, &DegenerateComponentError{Covariance: cov.Type, Component: k, Restart: -1}
			}
			out.Full[k] = f
		}
	case CovarianceTied:
		f, ok := precisionFactor(cov.Tied)
		if !ok {
			return nil, &DegenerateComponentError{Covariance: cov.Type, Component: -1, Restart: -1}
		}
		out.Tied = f
	case CovarianceDiag:
		k, d := cov.Diag.Dims()
		out.Diag = mat.NewDense(k, d, nil)
		for i := range k {
			for j := range d {
				v := cov.Diag.At(i, j)
				if !(v > 0) {
					return nil, &DegenerateComponentError{Covariance: cov.Type, Component: i, Restart: -1}
				}
				out.Diag.Set(i, j, 1/math.Sqrt(v))
			}
		}
	case CovarianceSpherical:
		out.Spherical = make([]float64, len(cov.Spherical))
		for k, v := range cov.Spherical {
			if !(v > 0) {
				return nil, &DegenerateComponentError{Covariance: cov.Type, Component: k, Restart: -1}
			}
			out.Spherical[k] = 1 / math.Sqrt(v)
		}
	}

	return out, nil
}

// precisionFactor returns (L⁻¹)ᵀ where L is the lower Cholesky factor of c.
func precisionFactor(c mat.Symmetric) (*mat.Dense, bool) {
	var chol mat.Cholesky
	if ok := chol.Factorize(c); !ok {
		return nil, false
	}

	var l, inv mat.TriDense
	chol.LTo(&l)

	if err := inv.InverseTri(&l); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, false
		}
	}

	f := mat.DenseCopyOf(inv.T())
	for j := range Features {
		if v := f.At(j, j); !(v > 0) || math.IsInf(v, 0) {
			return nil, false
		}
	}

	return f, true
}

// precisionCholeskyFromPrecisions builds precision Cholesky factors from
// user-supplied precisions: lower Cholesky factors for full and tied, square
// roots for diag and spherical.
func precisionCholeskyFromPrecisions(p *precisionSet) (*PrecisionCholesky, error) {
	out := &PrecisionCholesky{Type: p.Type}

	lower := func(s mat.Symmetric) (*mat.Dense, bool) {
		var chol mat.Cholesky
		if ok := chol.Factorize(s); !ok {
			return nil, false
		}
		var l mat.TriDense
		chol.LTo(&l)

		return mat.DenseCopyOf(&l), true
	}

	switch p.Type {
	case CovarianceFull:
		out.Full = make([]*mat.Dense, len(p.Full))
		for k, s := range p.Full {
			f, ok := lower(s)
			if !ok {
				return nil, &DegenerateComponentError{Covariance: p.Type, Component: k, Restart: -1}
			}
			out.Full[k] = f
		}
	case CovarianceTied:
		f, ok := lower(p.Tied)
		if !ok {
			return nil, &DegenerateComponentError{Covariance: p.Type, Component: -1, Restart: -1}
		}
		out.Tied = f
	case CovarianceDiag:
		k, d := p.Diag.Dims()
		out.Diag = mat.NewDense(k, d, nil)
		out.Diag.Apply(func(_, _ int, v float64) float64 { return math.Sqrt(v) }, p.Diag)
	case CovarianceSpherical:
		out.Spherical = make([]float64, len(p.Spherical))
		for k, v := range p.Spherical {
			out.Spherical[k] = math.Sqrt(v)
		}
	}

	return out, nil
}

// covariancesFromPrecisions inverts user-supplied precisions.
func covariancesFromPrecisions(p *precisionSet) (*Covariances, error) {
	out := &Covariances{Type: p.Type}

	invert := func(s mat.Symmetric) (*mat.SymDense, bool) {
		var chol mat.Cholesky
		if ok := chol.Factorize(s); !ok {
			return nil, false
		}
		inv := mat.NewSymDense(Features, nil)
		if err := chol.InverseTo(inv); err != nil {
			return nil, false
		}

		return inv, true
	}

	switch p.Type {
	case CovarianceFull:
		out.Full = make([]*mat.SymDense, len(p.Full))
		for k, s := range p.Full {
			inv, ok := invert(s)
			if !ok {
				return nil, &DegenerateComponentError{Covariance: p.Type, Component: k, Restart: -1}
			}
			out.Full[k] = inv
		}
	case CovarianceTied:
		inv, ok := invert(p.Tied)
		if !ok {
			return nil, &DegenerateComponentError{Covariance: p.Type, Component: -1, Restart: -1}
		}
		out.Tied = inv
	case CovarianceDiag:
		k, d := p.Diag.Dims()
		out.Diag = mat.NewDense(k, d, nil)
		out.Diag.Apply(func(_, _ int, v float64) float64 { return 1 / v }, p.Diag)
	case CovarianceSpherical:
		out.Spherical = make([]float64, len(p.Spherical))
		for k, v := range p.Spherical {
			out.Spherical[k] = 1 / v
		}
	}

	return out, nil
}
