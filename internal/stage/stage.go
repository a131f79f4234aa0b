package stage

import "strings"

// Kind distinguishes the stage variants that matter for fingerprinting.
type Kind int

const (
	// KindGeneric covers stages carrying only gain, decimation, and units.
	KindGeneric Kind = iota
	// KindPolesZeros is an analog transfer function stage.
	KindPolesZeros
	// KindCoefficients is a digital FIR or coefficient filter stage.
	KindCoefficients
)

func (k Kind) String() string {
	switch k {
	case KindPolesZeros:
		return "PolesZeros"
	case KindCoefficients:
		return "Coefficients"
	default:
		return "Generic"
	}
}

// Stage is one element of a response cascade. Optional numeric fields pair a
// value with a Has flag; callers switch on Kind rather than probing fields
// that do not apply to the variant.
type Stage struct {
	Kind Kind

	Gain    float64
	HasGain bool

	Decimation    int
	HasDecimation bool

	NormalizationFrequency    float64
	HasNormalizationFrequency bool

	InputUnits  string
	OutputUnits string

	// PolesZeros fields.
	TransferFunction string
	Poles            []complex128
	Zeros            []complex128

	// Coefficients fields.
	Symmetry     string
	Coefficients []float64
}

// Response is an ordered stage cascade. The core never mutates it.
type Response struct {
	Stages []Stage
}

// IsVolts reports whether a unit string denotes volts.
func IsVolts(unit string) bool {
	switch strings.ToUpper(strings.TrimSpace(unit)) {
	case "V", "VOLT", "VOLTS":
		return true
	}
	return false
}

// IsCounts reports whether a unit string denotes digital counts.
func IsCounts(unit string) bool {
	return strings.Contains(strings.ToUpper(unit), "COUNT")
}
