package spectrum

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const maxLineSize = 16 * 1024 * 1024

// ReadART parses an ART reradiation file.
//
// Header lines start with '#'. The first holds the incident and outgoing
// sample counts, the second the incident start and step, the third the
// outgoing start and step; further header lines are ignored. Every other
// non-empty line holds whitespace-separated values in row-major order.
func ReadART(r io.Reader) (*Spectrum, error) {
	var incident, outgoing Axis
	var values []float64
	headers := 0

	sc := newScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()

		if !strings.HasPrefix(text, "#") {
			vals, err := parseFloats(strings.Fields(text), line)
			if err != nil {
				return nil, err
			}
			values = append(values, vals...)

			continue
		}

		fields := strings.Fields(text[1:])
		if len(fields) != 2 {
			return nil, errors.Wrapf(ErrInvalidFormat, "line %d: header needs 2 fields, got %d", line, len(fields))
		}

		var err error
		switch headers {
		case 0:
			incident.Count, outgoing.Count, err = parseIntPair(fields, line)
		case 1:
			incident.Start, incident.Step, err = parseFloatPair(fields, line)
		case 2:
			outgoing.Start, outgoing.Step, err = parseFloatPair(fields, line)
		}
		if err != nil {
			return nil, err
		}
		headers++
	}

	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read ART spectrum")
	}

	if headers < 3 {
		return nil, errors.Wrapf(ErrInvalidFormat, "ART header has %d of 3 lines", headers)
	}

	return New(incident, outgoing, values)
}

// WriteART writes s in the ART layout read by ReadART, one outgoing row per line.
func WriteART(w io.Writer, s *Spectrum) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %d %d\n", s.Incident.Count, s.Outgoing.Count)
	fmt.Fprintf(bw, "# %s %s\n", formatValue(s.Incident.Start), formatValue(s.Incident.Step))
	fmt.Fprintf(bw, "# %s %s\n", formatValue(s.Outgoing.Start), formatValue(s.Outgoing.Step))

	for o := range s.Outgoing.Count {
		for i, v := range s.data.RawRowView(o) {
			if i > 0 {
				_ = bw.WriteByte(' ')
			}
			_, _ = bw.WriteString(formatValue(v))
		}
		_ = bw.WriteByte('\n')
	}

	return errors.Wrap(bw.Flush(), "write ART spectrum")
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	return sc
}

func parseFloats(fields []string, line int) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidFormat, "line %d: value %q is not a number", line, f)
		}
		out[i] = v
	}

	return out, nil
}

func parseFloatPair(fields []string, line int) (float64, float64, error) {
	vals, err := parseFloats(fields, line)
	if err != nil {
		return 0, 0, err
	}

	return vals[0], vals[1], nil
}

func parseInts(fields []string, line int) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidFormat, "line %d: value %q is not an integer", line, f)
		}
		out[i] = v
	}

	return out, nil
}

func parseIntPair(fields []string, line int) (int, int, error) {
	vals, err := parseInts(fields, line)
	if err != nil {
		return 0, 0, err
	}

	return vals[0], vals[1], nil
}
