package encoding

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/arloliu/fluomix/gmm"
)

// Section markers of the ASCII layout.
const (
	textMagic    = "gmm"
	textGaussian = "gaussians:"
	textMeans    = "means:"
	textCovs     = "covs:"
	textWeights  = "weights:"
	textDiagonal = "diagonal:"
	textScale    = "scaling_factor:"
)

// FormatFloat formats v in shortest round-trip form. Integral values keep a
// ".0" suffix and magnitudes outside [1e-4, 1e16) use exponent notation,
// for example 1e-05 or 1.5e+16.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}

		return "0.0"
	}

	sci := strconv.FormatFloat(v, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// AppendText appends the ASCII layout of g to dst.
//
//	gmm
//	gaussians:
//	K
//	means:
//	m0, m1                (K lines)
//	covs:
//	c00, c01, c10, c11    (K lines)
//	weights:
//	w                     (K lines)
//	diagonal:
//	D, start, step
//	v                     (D lines)
//	scaling_factor:
//	scale
func AppendText(dst []byte, g *gmm.FittedGMM) []byte {
	line := func(fields ...string) {
		dst = append(dst, strings.Join(fields, ", ")...)
		dst = append(dst, '\n')
	}

	line(textMagic)
	line(textGaussian)
	line(strconv.Itoa(len(g.Components)))

	line(textMeans)
	for _, c := range g.Components {
		line(FormatFloat(c.Mean[0]), FormatFloat(c.Mean[1]))
	}

	line(textCovs)
	for _, c := range g.Components {
		line(FormatFloat(c.Covariance[0][0]), FormatFloat(c.Covariance[0][1]),
			FormatFloat(c.Covariance[1][0]), FormatFloat(c.Covariance[1][1]))
	}

	line(textWeights)
	for _, c := range g.Components {
		line(FormatFloat(c.Weight))
	}

	line(textDiagonal)
	line(strconv.Itoa(len(g.Diagonal.Values)),
		formatSampling(g.Diagonal.Start, g.Diagonal.Integral),
		formatSampling(g.Diagonal.Step, g.Diagonal.Integral))
	for _, v := range g.Diagonal.Values {
		line(FormatFloat(v))
	}

	line(textScale)
	line(FormatFloat(g.ScaleAttenuation))

	return dst
}

// formatSampling prints integral diagonal wavelengths without a fraction.
func formatSampling(v float64, integral bool) string {
	if integral && v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}

	return FormatFloat(v)
}

// WriteText writes the ASCII layout of g to w.
func WriteText(w io.Writer, g *gmm.FittedGMM) error {
	_, err := w.Write(AppendText(nil, g))
	return err
}

// ReadText parses the ASCII layout written by WriteText.
func ReadText(r io.Reader) (*gmm.FittedGMM, error) {
	p := &textParser{sc: bufio.NewScanner(r)}

	if err := p.expect(textMagic); err != nil {
		return nil, err
	}
	if err := p.expect(textGaussian); err != nil {
		return nil, err
	}
	k, err := p.count()
	if err != nil {
		return nil, err
	}

	g := &gmm.FittedGMM{Components: make([]gmm.Component, k)}

	if err := p.expect(textMeans); err != nil {
		return nil, err
	}
	for c := range k {
		v, err := p.floats(2)
		if err != nil {
			return nil, err
		}
		g.Components[c].Mean = [2]float64{v[0], v[1]}
	}

	if err := p.expect(textCovs); err != nil {
		return nil, err
	}
	for c := range k {
		v, err := p.floats(4)
		if err != nil {
			return nil, err
		}
		g.Components[c].Covariance = [2][2]float64{{v[0], v[1]}, {v[2], v[3]}}
	}

	if err := p.expect(textWeights); err != nil {
		return nil, err
	}
	for c := range k {
		v, err := p.floats(1)
		if err != nil {
			return nil, err
		}
		g.Components[c].Weight = v[0]
	}

	if err := p.expect(textDiagonal); err != nil {
		return nil, err
	}
	d, start, step, integral, err := p.diagonalHeader()
	if err != nil {
		return nil, err
	}
	g.Diagonal = gmm.Diagonal{Start: start, Step: step, Values: make([]float64, d), Integral: integral}
	for i := range d {
		v, err := p.floats(1)
		if err != nil {
			return nil, err
		}
		g.Diagonal.Values[i] = v[0]
	}

	if err := p.expect(textScale); err != nil {
		return nil, err
	}
	v, err := p.floats(1)
	if err != nil {
		return nil, err
	}
	g.ScaleAttenuation = v[0]

	return g, nil
}

type textParser struct {
	sc   *bufio.Scanner
	line int
}

func (p *textParser) next() (string, error) {
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}

		return "", fmt.Errorf("%w: unexpected end after line %d", ErrTruncated, p.line)
	}
	p.line++

	return strings.TrimSpace(p.sc.Text()), nil
}

func (p *textParser) expect(marker string) error {
	text, err := p.next()
	if err != nil {
		return err
	}
	if text != marker {
		return fmt.Errorf("%w: line %d: expected %q, got %q", ErrInvalidText, p.line, marker, text)
	}

	return nil
}

func (p *textParser) fields(n int) ([]string, error) {
	text, err := p.next()
	if err != nil {
		return nil, err
	}

	fields := strings.Split(text, ",")
	if len(fields) != n {
		return nil, fmt.Errorf("%w: line %d: expected %d fields, got %d", ErrInvalidText, p.line, n, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	return fields, nil
}

func (p *textParser) floats(n int) ([]float64, error) {
	fields, err := p.fields(n)
	if err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for i, f := range fields {
		if out[i], err = p.parseFloat(f); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (p *textParser) parseFloat(f string) (float64, error) {
	v, err := strconv.ParseFloat(f, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: %q is not a number", ErrInvalidText, p.line, f)
	}

	return v, nil
}

func (p *textParser) parseCount(f string) (int, error) {
	n, err := strconv.Atoi(f)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: line %d: %q is not a count", ErrInvalidText, p.line, f)
	}

	return n, nil
}

func (p *textParser) count() (int, error) {
	fields, err := p.fields(1)
	if err != nil {
		return 0, err
	}

	return p.parseCount(fields[0])
}

// diagonalHeader parses "D, start, step". integral reports whether both
// wavelengths were written as integers.
func (p *textParser) diagonalHeader() (int, float64, float64, bool, error) {
	fields, err := p.fields(3)
	if err != nil {
		return 0, 0, 0, false, err
	}

	d, err := p.parseCount(fields[0])
	if err != nil {
		return 0, 0, 0, false, err
	}
	start, err := p.parseFloat(fields[1])
	if err != nil {
		return 0, 0, 0, false, err
	}
	step, err := p.parseFloat(fields[2])
	if err != nil {
		return 0, 0, 0, false, err
	}

	integral := isInteger(fields[1]) && isInteger(fields[2])

	return d, start, step, integral, nil
}

func isInteger(field string) bool {
	_, err := strconv.ParseInt(field, 10, 64)
	return err == nil
}
