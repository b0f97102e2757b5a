// Package quality measures how well a fitted mixture reproduces the
// fluorescence it was fitted to.
//
// Analyze compares the measured pure fluorescence with the scaled mixture
// density over the causal cells of the spectrum, those whose outgoing
// wavelength exceeds the incident one:
//
//	report, err := quality.Analyze(s, fitted)
//	if err != nil {
//		return err
//	}
//	fmt.Println(report)
//
// Negative measurements count as zero, matching the scale estimate of
// package gmm, so a perfectly scaled fit has an energy ratio of one.
package quality
