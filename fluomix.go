// Package fluomix compacts fluorescence reradiation matrices into weighted
// 2-D Gaussian mixtures.
//
// A reradiation matrix records, for every pair of incident and outgoing
// wavelengths, how much light is re-emitted. Its diagonal is plain
// reflectance and is stored as is. Everything above the diagonal is
// fluorescence, which is fitted with a handful of Gaussians and a single
// scale factor.
//
// # Basic Usage
//
//	fitted, err := fluomix.FitFile("sample.bfc")
//	if err != nil && !errors.Is(err, mixture.ErrNotConverged) {
//		return err
//	}
//	err = fluomix.Save(fluomix.OutputPath("sample.bfc", ""), fitted)
//
// # Package Structure
//
// This package wraps the most common flow. Use the sub-packages for finer
// control:
//   - spectrum: reading ART and BFC files and the derived views
//   - mixture: the weighted EM and variational Bayes estimators
//   - gmm: the fitted artifact, its density and Build
//   - encoding: the binary and ASCII layouts
//   - blob: the checksummed, optionally compressed container
//   - quality: goodness-of-fit reports
package fluomix

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arloliu/fluomix/blob"
	"github.com/arloliu/fluomix/encoding"
	"github.com/arloliu/fluomix/endian"
	"github.com/arloliu/fluomix/gmm"
	"github.com/arloliu/fluomix/spectrum"
)

// Extension is the file suffix of fitted spectra.
const Extension = ".gmm"

// FitFile loads a reradiation file and fits it with gmm.Build.
//
// A *mixture.ConvergenceWarning is returned together with a usable model.
func FitFile(path string, opts ...gmm.BuildOption) (*gmm.FittedGMM, error) {
	s, err := spectrum.Load(path)
	if err != nil {
		return nil, err
	}

	return gmm.Build(s, opts...)
}

// OutputPath returns output with its suffix replaced by Extension, or the
// absolute input path with that suffix when output is empty.
func OutputPath(input, output string) string {
	if output == "" {
		if abs, err := filepath.Abs(input); err == nil {
			input = abs
		}
		output = input
	}

	base := filepath.Base(output)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		output = strings.TrimSuffix(output, ext)
	}

	return output + Extension
}

// Save writes g in the little-endian binary layout.
func Save(path string, g *gmm.FittedGMM) error {
	data, err := encoding.EncodeGMM(g, endian.GetLittleEndianEngine())
	if err != nil {
		return err
	}

	return writeFile(path, data)
}

// SaveText writes g in the ASCII layout.
func SaveText(path string, g *gmm.FittedGMM) error {
	var buf bytes.Buffer
	if err := encoding.WriteText(&buf, g); err != nil {
		return err
	}

	return writeFile(path, buf.Bytes())
}

// SaveContainer writes g inside a checksummed container.
func SaveContainer(path string, g *gmm.FittedGMM, opts ...blob.EncoderOption) error {
	enc, err := blob.NewEncoder(opts...)
	if err != nil {
		return err
	}

	data, err := enc.Encode(g)
	if err != nil {
		return err
	}

	return writeFile(path, data)
}

// Open reads a file written by Save, SaveText or SaveContainer.
func Open(path string) (*gmm.FittedGMM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	g, err := blob.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return g, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
