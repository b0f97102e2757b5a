// Package spectrum holds measured fluorescence reradiation matrices.
//
// A reradiation matrix samples the light re-emitted at an outgoing wavelength
// for every incident wavelength. The grid is stored with one row per outgoing
// sample and one column per incident sample. Both axes must share the same
// sampling step.
//
// The cells where outgoing and incident wavelengths coincide form the
// diagonal. It holds the direct (non-fluorescent) reflectance and is kept
// apart from the fluorescent part, which is what the mixture fit approximates.
//
// # Views
//
//   - PureFluo: the grid with the diagonal zeroed.
//   - PureFluoFiltered: PureFluo with negative values and cells at or below
//     the diagonal (outgoing <= incident) zeroed.
//   - NonFluo: the diagonal values, starting at DiagonalStart.
//   - WeightedPoints: the (incident, outgoing) wavelength of every strictly
//     positive PureFluo cell with its value as weight.
//
// # File Formats
//
// ReadART parses the native ART reradiation text format: three `#` header
// lines (`n_incident n_outgoing`, `incident_start incident_step`,
// `outgoing_start outgoing_step`) followed by whitespace-separated values.
//
// ReadBFC parses BFC files: line 11 holds `outgoing_start outgoing_end
// outgoing_step n_incident incident_start incident_step`, data starts at line
// 13 and ends at a line starting with `EOD`. The first column of every data
// line is a row label and is dropped.
//
// Load picks the reader from the file name.
package spectrum
