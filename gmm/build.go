package gmm

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/fluomix/internal/options"
	"github.com/arloliu/fluomix/mixture"
	"github.com/arloliu/fluomix/spectrum"
)

// Build fits a FittedGMM to a reradiation spectrum.
//
// The mixture is fitted to WeightedPoints with a fixed seed and 1000
// iterations unless overridden through WithFitOptions. EM keeps every
// component; variational Bayes keeps the components that own at least one
// training point, in order of first appearance, with their weights unchanged.
//
// Returns:
//   - *FittedGMM: the fitted model
//   - error: configuration and fit errors from package mixture; a
//     *mixture.ConvergenceWarning is returned together with a valid model
func Build(s *spectrum.Spectrum, opts ...BuildOption) (*FittedGMM, error) {
	cfg := defaultBuildConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	fitOpts := append([]mixture.Option{
		mixture.WithMethod(cfg.Method),
		mixture.WithComponents(cfg.Components),
		mixture.WithMaxIter(DefaultMaxIter),
		mixture.WithSeed(DefaultSeed),
		mixture.WithWeightPriorType(mixture.PriorDirichletProcess),
		mixture.WithLogger(cfg.Logger),
	}, cfg.FitOptions...)

	fitter, err := mixture.NewFitter(fitOpts...)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger.WithFields(logrus.Fields{
		"action":     "build",
		"method":     cfg.Method.String(),
		"components": cfg.Components,
	})

	fitted := &FittedGMM{
		Diagonal: Diagonal{
			Start:    s.DiagonalStart(),
			Step:     s.Incident.Step,
			Values:   s.NonFluo(),
			Integral: s.IntegerAxes,
		},
	}

	if !s.HasFluorescence() {
		logger.Info("no fluorescence above threshold, skipping fit")
		return fitted, nil
	}

	points, weights := s.WeightedPoints()
	sample, err := mixture.NewSampleFromPoints(points, weights)
	if err != nil {
		return nil, fmt.Errorf("gmm: build sample: %w", err)
	}

	res, err := fitter.Fit(sample)
	var warning error
	if err != nil {
		if !errors.Is(err, mixture.ErrNotConverged) {
			return nil, fmt.Errorf("gmm: fit %d points: %w", sample.Len(), err)
		}
		warning = err
	}

	for _, c := range res.Components() {
		fitted.Components = append(fitted.Components, Component(c))
	}

	scale, ok := fitted.FitScale(s)
	if !ok {
		logger.Warn("fitted mixture has no energy over the causal cells, scale set to 0")
	}
	fitted.ScaleAttenuation = scale

	logger.WithFields(logrus.Fields{
		"points": sample.Len(),
		"kept":   fitted.NumComponents(),
		"scale":  scale,
	}).Debug("spectrum fitted")

	return fitted, warning
}
