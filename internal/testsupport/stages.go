package testsupport

import "resprint/internal/stage"

// SensorStages builds a minimal seismometer response: one poles/zeros stage
// converting ground velocity to volts.
func SensorStages(gain float64, poles, zeros []complex128) []stage.Stage {
	return []stage.Stage{{
		Kind:             stage.KindPolesZeros,
		Gain:             gain,
		HasGain:          true,
		InputUnits:       "M/S",
		OutputUnits:      "V",
		TransferFunction: "LAPLACE (RADIANS/SECOND)",
		Poles:            poles,
		Zeros:            zeros,
	}}
}

// FIRSpec describes one decimation filter for DataloggerStages.
type FIRSpec struct {
	Coefficients []float64
	Decimation   int
}

// DataloggerStages builds a datalogger-only response the way NRL reference
// files lay it out: the preamp as the first stage, then the volt-to-counts
// ADC stage, then the FIR decimation chain.
func DataloggerStages(preampGain, adcGain float64, firs ...FIRSpec) []stage.Stage {
	stages := []stage.Stage{
		{
			Kind:        stage.KindGeneric,
			Gain:        preampGain,
			HasGain:     true,
			InputUnits:  "V",
			OutputUnits: "V",
		},
		{
			Kind:        stage.KindCoefficients,
			Gain:        adcGain,
			HasGain:     true,
			InputUnits:  "V",
			OutputUnits: "COUNTS",
		},
	}

	for _, fir := range firs {
		stages = append(stages, stage.Stage{
			Kind:          stage.KindCoefficients,
			Gain:          1.0,
			HasGain:       true,
			Decimation:    fir.Decimation,
			HasDecimation: fir.Decimation != 0,
			InputUnits:    "COUNTS",
			OutputUnits:   "COUNTS",
			Symmetry:      "NONE",
			Coefficients:  fir.Coefficients,
		})
	}

	return stages
}

// CombinedStages concatenates a sensor response and a datalogger response
// into the full instrument response a user would present for detection.
func CombinedStages(sensor, datalogger []stage.Stage) []stage.Stage {
	combined := make([]stage.Stage, 0, len(sensor)+len(datalogger))
	combined = append(combined, sensor...)
	combined = append(combined, datalogger...)
	return combined
}
