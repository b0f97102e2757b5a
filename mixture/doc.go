// Package mixture fits two-dimensional Gaussian mixture models to sample-weighted
// point clouds.
//
// Two fitting strategies share the same parameter estimator:
//
//   - MethodEM: weighted maximum-likelihood expectation-maximization.
//   - MethodBayes: weighted variational Bayes with a Dirichlet or a truncated
//     Dirichlet-process (stick-breaking) prior on the component weights.
//
// Each strategy supports four covariance structures (full, tied, diag and
// spherical). Covariances are regularized by a small positive constant and
// converted to Cholesky factors of the precision matrices, which is what the
// density evaluation multiplies against.
//
// # Basic Usage
//
//	sample, err := mixture.NewSampleFromPoints(points, weights)
//	if err != nil {
//	    return err
//	}
//
//	fitter, err := mixture.NewFitter(
//	    mixture.WithMethod(mixture.MethodBayes),
//	    mixture.WithComponents(8),
//	    mixture.WithMaxIter(1000),
//	    mixture.WithSeed(42),
//	)
//	if err != nil {
//	    return err // *ConfigurationError
//	}
//
//	result, err := fitter.Fit(sample)
//	if err != nil && !errors.Is(err, mixture.ErrNotConverged) {
//	    return err
//	}
//
//	for _, c := range result.Components() {
//	    fmt.Println(c.Mean, c.Covariance, c.Weight)
//	}
//
// # Restarts
//
// The fitter runs WithRestarts independent restarts. Every restart draws its
// seed from a single generator created from WithSeed, so results do not depend
// on WithParallelism. The restart with the highest final lower bound wins; ties
// go to the lowest restart index. After selection one more E-step produces the
// responsibilities and labels returned in Result, so Result.Labels always equals
// Result.Mixture.Predict on the training sample.
//
// # Errors
//
//   - *ConfigurationError (ErrConfiguration): invalid hyperparameters, reported by
//     NewFitter before any data is touched.
//   - *DegenerateComponentError (ErrDegenerateComponent): a covariance lost
//     positive-definiteness during a restart. The restart is discarded; Fit fails
//     only when every restart is degenerate.
//   - *ConvergenceWarning (ErrNotConverged): returned together with a valid Result
//     when at least one restart reached the iteration limit.
package mixture
