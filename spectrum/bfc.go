package spectrum

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	bfcSamplingLine  = 11
	bfcFirstDataLine = 13
	bfcEndOfData     = "EOD"
)

// ReadBFC parses a BFC reradiation file.
//
// Line 11 holds the outgoing start, end and step followed by the incident
// sample count, start and step, all integers. Data lines run from line 13 to
// the first line starting with EOD; the first column of every data line is
// dropped and empty lines are skipped.
func ReadBFC(r io.Reader) (*Spectrum, error) {
	var incident, outgoing Axis
	var values []float64
	sampled := false

	sc := newScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()

		switch {
		case line < bfcSamplingLine:
			continue
		case line == bfcSamplingLine:
			fields := strings.Fields(text)
			if len(fields) != 6 {
				return nil, errors.Wrapf(ErrInvalidFormat, "line %d: sampling needs 6 fields, got %d", line, len(fields))
			}
			v, err := parseInts(fields, line)
			if err != nil {
				return nil, err
			}
			if v[2] == 0 {
				return nil, errors.Wrapf(ErrInvalidFormat, "line %d: outgoing step is zero", line)
			}

			outgoing = Axis{
				Start: float64(v[0]),
				Step:  float64(v[2]),
				Count: int(float64(v[1]-v[0])/float64(v[2])) + 1,
			}
			incident = Axis{Start: float64(v[4]), Step: float64(v[5]), Count: v[3]}
			sampled = true
		case line < bfcFirstDataLine:
			continue
		case strings.HasPrefix(text, bfcEndOfData):
			return finishBFC(sampled, incident, outgoing, values)
		default:
			fields := strings.Fields(text)
			if len(fields) < 2 {
				continue
			}
			vals, err := parseFloats(fields[1:], line)
			if err != nil {
				return nil, err
			}
			values = append(values, vals...)
		}
	}

	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read BFC spectrum")
	}

	return finishBFC(sampled, incident, outgoing, values)
}

func finishBFC(sampled bool, incident, outgoing Axis, values []float64) (*Spectrum, error) {
	if !sampled {
		return nil, errors.Wrapf(ErrInvalidFormat, "BFC sampling line %d is missing", bfcSamplingLine)
	}

	s, err := New(incident, outgoing, values)
	if err != nil {
		return nil, err
	}
	s.IntegerAxes = true

	return s, nil
}
