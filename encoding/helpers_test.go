package encoding

import "github.com/arloliu/fluomix/gmm"

func sampleGMM() *gmm.FittedGMM {
	return &gmm.FittedGMM{
		Components: []gmm.Component{
			{
				Mean:       [2]float64{412.5, 455.25},
				Covariance: [2][2]float64{{225, 12.5}, {12.5, 196}},
				Weight:     0.625,
			},
			{
				Mean:       [2]float64{530, 610.125},
				Covariance: [2][2]float64{{81, -3.75}, {-3.75, 144.5}},
				Weight:     0.375,
			},
		},
		ScaleAttenuation: 1234.5678,
		Diagonal: gmm.Diagonal{
			Start:  300,
			Step:   5,
			Values: []float64{0.5, 0.25, 1e-05, 0},
		},
	}
}
