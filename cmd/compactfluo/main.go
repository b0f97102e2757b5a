// Command compactfluo fits a compact gaussian mixture to a fluorescence
// reradiation matrix and saves it as a .gmm file.
//
// Usage:
//
//	compactfluo [-m bayes|em] [-g N] [-o OUTPUT] [-d] RFILE
//
// By default the mixture is written in the little-endian binary layout next
// to the input. -d writes the ASCII layout instead and --compression wraps
// the payload in a checksummed container.
package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/arloliu/fluomix"
	"github.com/arloliu/fluomix/blob"
	"github.com/arloliu/fluomix/gmm"
	"github.com/arloliu/fluomix/mixture"
	"github.com/arloliu/fluomix/quality"
	"github.com/arloliu/fluomix/spectrum"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(os.Args[1:], log); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		log.WithError(err).Error("compactfluo failed")
		os.Exit(1)
	}
}

func run(args []string, log *logrus.Logger) error {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = "compactfluo"

	if _, err := parser.ParseArgs(args); err != nil {
		return err
	}

	if opts.Config != "" {
		profile, err := loadProfile(opts.Config)
		if err != nil {
			return err
		}
		applyProfile(parser, &opts, profile)
	}

	switch len(opts.Verbose) {
	case 0:
		log.SetLevel(logrus.WarnLevel)
	case 1:
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetLevel(logrus.DebugLevel)
	}
	if opts.Report && !log.IsLevelEnabled(logrus.InfoLevel) {
		log.SetLevel(logrus.InfoLevel)
	}

	buildOpts, err := opts.buildOptions()
	if err != nil {
		return err
	}
	comp, container, err := opts.compression()
	if err != nil {
		return err
	}

	logger := log.WithField("input", opts.Args.Input)

	s, err := spectrum.Load(opts.Args.Input)
	if err != nil {
		return err
	}
	logger.WithField("format", spectrum.DetectFormat(opts.Args.Input)).Info("spectrum loaded")

	fitted, err := gmm.Build(s, append(buildOpts, gmm.WithLogger(logger))...)
	if err != nil {
		if !errors.Is(err, mixture.ErrNotConverged) {
			return err
		}
		logger.WithError(err).Warn("fit did not converge, saving the best restart")
	}

	if opts.Report && fitted.NumComponents() > 0 {
		report, err := quality.Analyze(s, fitted)
		if err != nil {
			logger.WithError(err).Warn("quality report unavailable")
		} else {
			logger.WithFields(logrus.Fields{
				"r2":           report.RSquared,
				"rmse":         report.RMSE,
				"energy_ratio": report.EnergyRatio(),
				"cells":        report.Cells,
			}).Info("fit quality")
		}
	}

	out := fluomix.OutputPath(opts.Args.Input, opts.Output)
	switch {
	case container:
		cOpts := []blob.EncoderOption{blob.WithCompression(comp)}
		if opts.Debug {
			cOpts = append(cOpts, blob.WithTextLayout())
		}
		err = fluomix.SaveContainer(out, fitted, cOpts...)
	case opts.Debug:
		err = fluomix.SaveText(out, fitted)
	default:
		err = fluomix.Save(out, fitted)
	}
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"output":     out,
		"components": fitted.NumComponents(),
		"scale":      fitted.ScaleAttenuation,
	}).Info("mixture saved")

	return nil
}
