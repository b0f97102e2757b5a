package mixture

import (
	"fmt"
	"strings"
)

// Features is the dimensionality of every point handled by this package.
const Features = 2

// CovarianceType selects the covariance parameterization of the components.
type CovarianceType uint8

const (
	// CovarianceFull gives every component its own symmetric positive-definite matrix.
	CovarianceFull CovarianceType = iota + 1
	// CovarianceTied shares a single matrix between all components.
	CovarianceTied
	// CovarianceDiag gives every component a vector of per-feature variances.
	CovarianceDiag
	// CovarianceSpherical gives every component a single variance.
	CovarianceSpherical
)

var covarianceTypeNames = map[CovarianceType]string{
	CovarianceFull:      "full",
	CovarianceTied:      "tied",
	CovarianceDiag:      "diag",
	CovarianceSpherical: "spherical",
}

// String returns the canonical name of the covariance type.
func (c CovarianceType) String() string {
	if name, ok := covarianceTypeNames[c]; ok {
		return name
	}

	return "unknown"
}

// Valid reports whether c is one of the supported covariance types.
func (c CovarianceType) Valid() bool {
	_, ok := covarianceTypeNames[c]
	return ok
}

// ParseCovarianceType converts a name ("full", "tied", "diag", "spherical") into a CovarianceType.
//
// Returns a *ConfigurationError for any other name.
func ParseCovarianceType(s string) (CovarianceType, error) {
	for c, name := range covarianceTypeNames {
		if strings.EqualFold(s, name) {
			return c, nil
		}
	}

	return 0, newConfigurationError(fmt.Errorf("covariance_type must be one of full, tied, diag, spherical, got %q", s))
}

// Method selects the fitting strategy.
type Method uint8

const (
	// MethodEM is weighted maximum-likelihood expectation-maximization.
	MethodEM Method = iota + 1
	// MethodBayes is weighted variational Bayesian inference.
	MethodBayes
)

var methodNames = map[Method]string{
	MethodEM:    "em",
	MethodBayes: "bayes",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}

	return "unknown"
}

// ParseMethod converts "em" or "bayes" into a Method.
func ParseMethod(s string) (Method, error) {
	for m, name := range methodNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}

	return 0, newConfigurationError(fmt.Errorf("method must be one of em, bayes, got %q", s))
}

// InitMethod selects how the responsibilities of a restart are seeded.
type InitMethod uint8

const (
	// InitKMeans seeds one-hot responsibilities from a weighted k-means partition.
	InitKMeans InitMethod = iota + 1
	// InitRandom seeds uniformly random, row-normalized responsibilities.
	InitRandom
)

var initMethodNames = map[InitMethod]string{
	InitKMeans: "kmeans",
	InitRandom: "random",
}

func (m InitMethod) String() string {
	if name, ok := initMethodNames[m]; ok {
		return name
	}

	return "unknown"
}

// ParseInitMethod converts "kmeans" or "random" into an InitMethod.
func ParseInitMethod(s string) (InitMethod, error) {
	for m, name := range initMethodNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}

	return 0, newConfigurationError(fmt.Errorf("init must be one of kmeans, random, got %q", s))
}

// WeightPriorType selects the prior placed on the component weights by MethodBayes.
type WeightPriorType uint8

const (
	// PriorDirichletProcess is the truncated stick-breaking representation.
	PriorDirichletProcess WeightPriorType = iota + 1
	// PriorDirichletDistribution is a finite symmetric Dirichlet distribution.
	PriorDirichletDistribution
)

var weightPriorTypeNames = map[WeightPriorType]string{
	PriorDirichletProcess:      "dirichlet_process",
	PriorDirichletDistribution: "dirichlet_distribution",
}

func (p WeightPriorType) String() string {
	if name, ok := weightPriorTypeNames[p]; ok {
		return name
	}

	return "unknown"
}

// ParseWeightPriorType converts "dirichlet_process" or "dirichlet_distribution" into a WeightPriorType.
func ParseWeightPriorType(s string) (WeightPriorType, error) {
	for p, name := range weightPriorTypeNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}

	return 0, newConfigurationError(fmt.Errorf(
		"weight_concentration_prior_type must be one of dirichlet_process, dirichlet_distribution, got %q", s))
}
