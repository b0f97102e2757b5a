package mixture

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrConfiguration is matched by every *ConfigurationError.
	ErrConfiguration = errors.New("mixture: invalid configuration")
	// ErrInvalidSample reports a weighted sample that cannot be fitted.
	ErrInvalidSample = errors.New("mixture: invalid sample")
	// ErrDegenerateComponent is matched by every *DegenerateComponentError.
	ErrDegenerateComponent = errors.New("mixture: degenerate component")
	// ErrNotConverged is matched by every *ConvergenceWarning.
	ErrNotConverged = errors.New("mixture: fit did not converge")
)

// ConfigurationError lists every hyperparameter constraint violated by a configuration.
type ConfigurationError struct {
	Problems *multierror.Error
}

func newConfigurationError(problems ...error) *ConfigurationError {
	merr := multierror.Append(nil, problems...)
	merr.ErrorFormat = joinProblems

	return &ConfigurationError{Problems: merr}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfiguration, e.Problems.Error())
}

// Unwrap exposes ErrConfiguration followed by the individual problems.
func (e *ConfigurationError) Unwrap() []error {
	return append([]error{ErrConfiguration}, e.Problems.WrappedErrors()...)
}

func joinProblems(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}

	return strings.Join(msgs, "; ")
}

// problems accumulates configuration violations.
type problems struct {
	merr *multierror.Error
}

func (p *problems) addf(format string, args ...any) {
	p.merr = multierror.Append(p.merr, fmt.Errorf(format, args...))
}

func (p *problems) err() error {
	if p.merr == nil || len(p.merr.Errors) == 0 {
		return nil
	}
	p.merr.ErrorFormat = joinProblems

	return &ConfigurationError{Problems: p.merr}
}

// DegenerateComponentError reports a covariance that is not positive-definite.
//
// Reduce the number of components or increase the covariance regularization.
type DegenerateComponentError struct {
	// Covariance is the covariance structure being factorized.
	Covariance CovarianceType
	// Component is the offending component index, -1 for the shared tied matrix.
	Component int
	// Restart is the restart index, -1 outside of a fit.
	Restart int
	// Iteration is the iteration index, 0 during initialization.
	Iteration int
}

func (e *DegenerateComponentError) Error() string {
	where := "tied covariance"
	if e.Component >= 0 {
		where = fmt.Sprintf("component %d (%s covariance)", e.Component, e.Covariance)
	}

	if e.Restart >= 0 {
		where += fmt.Sprintf(" at restart %d iteration %d", e.Restart, e.Iteration)
	}

	return fmt.Sprintf("%s: %s is not positive-definite; decrease the number of components or increase reg_covar",
		ErrDegenerateComponent, where)
}

func (e *DegenerateComponentError) Unwrap() error {
	return ErrDegenerateComponent
}

// ConvergenceWarning is returned alongside a usable Result when restarts hit the iteration limit.
type ConvergenceWarning struct {
	// Restarts lists the restart indices that did not converge.
	Restarts []int
	// MaxIter is the iteration limit that was reached.
	MaxIter int
}

func (w *ConvergenceWarning) Error() string {
	return fmt.Sprintf("%s: restarts %v reached max_iter=%d; try different init parameters, "+
		"increase max_iter or tol, or check for degenerate data", ErrNotConverged, w.Restarts, w.MaxIter)
}

func (w *ConvergenceWarning) Unwrap() error {
	return ErrNotConverged
}
