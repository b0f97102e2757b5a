package main

import (
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/arloliu/fluomix/format"
	"github.com/arloliu/fluomix/gmm"
	"github.com/arloliu/fluomix/mixture"
)

// Options are the command line flags.
type Options struct {
	Mode        string  `short:"m" long:"mode" choice:"bayes" choice:"em" default:"bayes" description:"Fitting method: weighted variational Bayes or weighted EM. EM keeps every gaussian, Bayes may use fewer"`
	Gaussians   int     `short:"g" long:"gaussians" default:"8" description:"Number of gaussians in the fitted mixture"`
	Output      string  `short:"o" long:"output" description:"Output file, its suffix is replaced by .gmm. Defaults to the input path with a .gmm suffix"`
	Debug       bool    `short:"d" long:"debug" description:"Save the mixture as human-readable ASCII"`
	Covariance  string  `long:"covariance" choice:"full" choice:"tied" choice:"diag" choice:"spherical" default:"full" description:"Covariance structure of the gaussians"`
	MaxIter     int     `long:"max-iter" default:"1000" description:"Maximum iterations per restart"`
	Seed        uint64  `long:"seed" default:"42" description:"Seed of the random generator"`
	Restarts    int     `long:"n-init" default:"1" description:"Number of restarts, the best is kept"`
	Parallelism int     `long:"parallelism" default:"1" description:"Restarts run concurrently"`
	Tol         float64 `long:"tol" default:"0.001" description:"Convergence threshold of the lower bound"`
	Compression string  `long:"compression" description:"Write a checksummed container compressed with none, zstd, s2 or lz4"`
	Config      string  `long:"config" description:"YAML fit profile, flags given on the command line take precedence"`
	Report      bool    `long:"report" description:"Log how well the mixture reproduces the spectrum"`
	Verbose     []bool  `short:"v" long:"verbose" description:"Increase log verbosity, repeat for debug output"`

	Args struct {
		Input string `positional-arg-name:"RFILE" description:"Reradiation matrix in ART or BFC format, incident and outgoing sampling must match"`
	} `positional-args:"yes" required:"yes"`
}

// Profile is the YAML fit profile. Zero values leave the flag defaults untouched.
type Profile struct {
	Mode        string  `yaml:"mode"`
	Gaussians   int     `yaml:"gaussians"`
	Covariance  string  `yaml:"covariance"`
	MaxIter     int     `yaml:"max_iter"`
	Seed        *uint64 `yaml:"seed"`
	Restarts    int     `yaml:"n_init"`
	Parallelism int     `yaml:"parallelism"`
	Tol         float64 `yaml:"tol"`
	Compression string  `yaml:"compression"`
}

func loadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read fit profile")
	}

	var p Profile
	if err := yaml.UnmarshalStrict(data, &p); err != nil {
		return nil, errors.Wrapf(err, "parse fit profile %s", path)
	}

	return &p, nil
}

// applyProfile copies the profile values whose flag was not given explicitly.
func applyProfile(parser *flags.Parser, opts *Options, p *Profile) {
	unset := func(long string) bool {
		opt := parser.FindOptionByLongName(long)
		return opt == nil || !opt.IsSet() || opt.IsSetDefault()
	}

	if p.Mode != "" && unset("mode") {
		opts.Mode = p.Mode
	}
	if p.Gaussians != 0 && unset("gaussians") {
		opts.Gaussians = p.Gaussians
	}
	if p.Covariance != "" && unset("covariance") {
		opts.Covariance = p.Covariance
	}
	if p.MaxIter != 0 && unset("max-iter") {
		opts.MaxIter = p.MaxIter
	}
	if p.Seed != nil && unset("seed") {
		opts.Seed = *p.Seed
	}
	if p.Restarts != 0 && unset("n-init") {
		opts.Restarts = p.Restarts
	}
	if p.Parallelism != 0 && unset("parallelism") {
		opts.Parallelism = p.Parallelism
	}
	if p.Tol != 0 && unset("tol") {
		opts.Tol = p.Tol
	}
	if p.Compression != "" && unset("compression") {
		opts.Compression = p.Compression
	}
}

// buildOptions translates the flags into gmm.Build options.
func (o *Options) buildOptions() ([]gmm.BuildOption, error) {
	if o.Gaussians <= 0 {
		return nil, errors.Errorf("%d is an invalid positive integer value for --gaussians", o.Gaussians)
	}

	method, err := mixture.ParseMethod(o.Mode)
	if err != nil {
		return nil, err
	}

	return []gmm.BuildOption{
		gmm.WithMethod(method),
		gmm.WithComponents(o.Gaussians),
		gmm.WithFitOptions(
			mixture.WithCovarianceTypeName(o.Covariance),
			mixture.WithMaxIter(o.MaxIter),
			mixture.WithSeed(o.Seed),
			mixture.WithRestarts(o.Restarts),
			mixture.WithParallelism(o.Parallelism),
			mixture.WithTol(o.Tol),
		),
	}, nil
}

// compression returns the container codec and whether a container was requested.
func (o *Options) compression() (format.CompressionType, bool, error) {
	if o.Compression == "" {
		return 0, false, nil
	}

	c, err := format.ParseCompression(o.Compression)
	if err != nil {
		return 0, false, err
	}

	return c, true, nil
}
