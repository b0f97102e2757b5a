package gmm

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/fluomix/internal/options"
	"github.com/arloliu/fluomix/mixture"
)

// Defaults of the fluorescence fit.
const (
	DefaultComponents = 8
	DefaultMaxIter    = 1000
	DefaultSeed       = 42
)

// BuildConfig holds the options of Build.
type BuildConfig struct {
	Method     mixture.Method
	Components int
	Logger     logrus.FieldLogger
	// FitOptions are applied after the defaults derived from the fields above.
	FitOptions []mixture.Option
}

// BuildOption configures Build.
type BuildOption = options.Option[*BuildConfig]

func defaultBuildConfig() *BuildConfig {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return &BuildConfig{
		Method:     mixture.MethodBayes,
		Components: DefaultComponents,
		Logger:     l,
	}
}

// WithMethod selects EM or variational Bayes (default).
func WithMethod(m mixture.Method) BuildOption {
	return options.NoError(func(cfg *BuildConfig) { cfg.Method = m })
}

// WithComponents sets the number of Gaussians (default 8).
func WithComponents(n int) BuildOption {
	return options.NoError(func(cfg *BuildConfig) { cfg.Components = n })
}

// WithLogger sets the logger used by Build and the mixture fit.
func WithLogger(l logrus.FieldLogger) BuildOption {
	return options.NoError(func(cfg *BuildConfig) {
		if l != nil {
			cfg.Logger = l
		}
	})
}

// WithFitOptions passes extra options to the mixture fitter, overriding
// the Build defaults.
func WithFitOptions(opts ...mixture.Option) BuildOption {
	return options.NoError(func(cfg *BuildConfig) { cfg.FitOptions = append(cfg.FitOptions, opts...) })
}
