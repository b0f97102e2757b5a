package quality

import "fmt"

// Report summarizes the residuals of one fit.
type Report struct {
	// RSquared is the coefficient of determination of the scaled density
	// against the measured fluorescence. It is 0 when the measurement is constant.
	RSquared float64
	// RMSE is the root mean square residual.
	RMSE float64
	// MaxAbsError is the largest absolute residual.
	MaxAbsError float64
	// MeasuredEnergy is the sum of the clamped measured fluorescence.
	MeasuredEnergy float64
	// FittedEnergy is the sum of the scaled density.
	FittedEnergy float64
	// Cells is the number of compared cells.
	Cells int
}

// EnergyRatio returns FittedEnergy over MeasuredEnergy, or 0 without measured energy.
func (r *Report) EnergyRatio() float64 {
	if r.MeasuredEnergy == 0 {
		return 0
	}

	return r.FittedEnergy / r.MeasuredEnergy
}

// String returns a one-line summary of the report.
func (r *Report) String() string {
	return fmt.Sprintf("Report{R²: %.4f, RMSE: %.4g, MaxAbs: %.4g, Energy: %.4g/%.4g, Cells: %d}",
		r.RSquared, r.RMSE, r.MaxAbsError, r.FittedEnergy, r.MeasuredEnergy, r.Cells)
}
