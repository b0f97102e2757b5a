// Package gmm builds compact Gaussian mixture approximations of fluorescence
// reradiation spectra.
//
// Build fits a mixture to the weighted fluorescent cells of a spectrum,
// keeps the diagonal (non-fluorescent) values untouched and computes a scale
// factor so that the total energy of the mixture matches the measured data
// over the causal cells (outgoing wavelength above incident wavelength).
//
//	s, err := spectrum.Load("paper.bfc")
//	if err != nil {
//	    return err
//	}
//
//	fitted, err := gmm.Build(s, gmm.WithMethod(mixture.MethodBayes), gmm.WithComponents(8))
//	if err != nil && !errors.Is(err, mixture.ErrNotConverged) {
//	    return err
//	}
//
//	v := fitted.Eval(450, 520) // reradiated intensity, before ScaleAttenuation
//
// A spectrum whose filtered fluorescent energy is below
// spectrum.FluorescenceThreshold is not fitted: the result has no components
// and a zero ScaleAttenuation.
package gmm
