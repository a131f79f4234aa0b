package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"math"
	"sort"
	"strconv"

	"resprint/internal/stage"
)

// sigFigs is the precision applied to every float entering a signature.
// Reference files and freshly generated responses routinely disagree beyond
// the fifth significant figure.
const sigFigs = 5

// passthroughTolerance bounds how far a lone coefficient may sit from 1.0
// while the stage still counts as a passthrough.
const passthroughTolerance = 0.001

// RoundSigFigs rounds x to five significant figures. Zero maps to 0.0.
func RoundSigFigs(x float64) float64 {
	if x == 0 {
		return 0.0
	}
	digits := sigFigs - int(math.Floor(math.Log10(math.Abs(x)))) - 1
	scale := math.Pow(10, float64(digits))
	return math.Round(x*scale) / scale
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func writeString(h hash.Hash, s string) {
	h.Write([]byte(s))
}

// Sensor returns the sensor-mode signature: a hash of the first stage only.
func Sensor(stages []stage.Stage) (string, bool) {
	if len(stages) == 0 {
		return "", false
	}
	return StageHash(stages[0], "sensor", false), true
}

// ADCStageIndex returns the index of the first stage converting volts to
// digital counts.
func ADCStageIndex(stages []stage.Stage) (int, bool) {
	for i, st := range stages {
		if stage.IsVolts(st.InputUnits) && stage.IsCounts(st.OutputUnits) {
			return i, true
		}
	}
	return 0, false
}

// PreampGain multiplies the gains of all volt-to-volt stages strictly
// between the sensor stage and the ADC stage. The second return is false
// when no such stage exists.
func PreampGain(stages []stage.Stage, adcIndex int) (float64, bool) {
	if adcIndex <= 1 {
		return 0, false
	}
	gain := 1.0
	found := false
	for i := 1; i < adcIndex && i < len(stages); i++ {
		st := stages[i]
		if !stage.IsVolts(st.InputUnits) || !stage.IsVolts(st.OutputUnits) {
			continue
		}
		if st.HasGain && st.Gain != 0 {
			gain *= st.Gain
		}
		found = true
	}
	if !found {
		return 0, false
	}
	return gain, true
}

// TotalDigitalGain multiplies the gains of every stage from the ADC stage on.
func TotalDigitalGain(stages []stage.Stage, adcIndex int) float64 {
	total := 1.0
	for _, st := range stages[adcIndex:] {
		if st.HasGain && st.Gain != 0 {
			total *= st.Gain
		}
	}
	return total
}

// IsPassthrough reports whether a stage has no real filtering effect: it is
// not a coefficient stage, has no coefficients, or has exactly one
// coefficient within tolerance of unity.
func IsPassthrough(st stage.Stage) bool {
	if st.Kind != stage.KindCoefficients || len(st.Coefficients) == 0 {
		return true
	}
	if len(st.Coefficients) == 1 && math.Abs(st.Coefficients[0]-1.0) < passthroughTolerance {
		return true
	}
	return false
}

// DataloggerExact computes the gain-sensitive datalogger signature: preamp
// gain (when known), total digital gain, then the fingerprint of every
// non-passthrough filter stage from the ADC stage on.
func DataloggerExact(stages []stage.Stage, adcIndex int, preampGain float64, hasPreamp bool) (string, bool) {
	if len(stages) == 0 || adcIndex >= len(stages) {
		return "", false
	}

	h := sha256.New()
	writeString(h, "dl_exact:")

	if hasPreamp {
		writeString(h, ":pg="+formatFloat(round2(preampGain)))
	}
	writeString(h, ":tg="+formatFloat(round2(TotalDigitalGain(stages, adcIndex))))

	hashFilterChain(h, stages[adcIndex:])
	return hex.EncodeToString(h.Sum(nil)), true
}

// DataloggerFamily computes the gain-independent datalogger signature. It
// depends only on filter shape and decimation, so instruments differing only
// in gain staging collide here.
func DataloggerFamily(stages []stage.Stage, adcIndex int) (string, bool) {
	if len(stages) == 0 || adcIndex >= len(stages) {
		return "", false
	}

	h := sha256.New()
	writeString(h, "dl_family:")
	hashFilterChain(h, stages[adcIndex:])
	return hex.EncodeToString(h.Sum(nil)), true
}

// Fallback hashes every stage after the first through the general stage
// hash. Used when a response has no recognizable ADC stage.
func Fallback(stages []stage.Stage) (string, bool) {
	if len(stages) < 2 {
		return "", false
	}

	h := sha256.New()
	writeString(h, "datalogger:")
	for i, st := range stages[1:] {
		writeString(h, StageHash(st, "s"+strconv.Itoa(i), false))
	}
	return hex.EncodeToString(h.Sum(nil)), true
}

func hashFilterChain(h hash.Hash, stages []stage.Stage) {
	filterIndex := 0
	for _, st := range stages {
		if IsPassthrough(st) {
			continue
		}
		hashFilterFingerprint(h, st.Coefficients, "f"+strconv.Itoa(filterIndex))
		if st.HasDecimation && st.Decimation != 0 {
			writeString(h, ":dec="+strconv.Itoa(st.Decimation))
		}
		filterIndex++
	}
}

// hashFilterFingerprint condenses a coefficient list into count, leading and
// trailing coefficients, and the coefficient sum. Long FIR filters from
// different sources then compare without requiring bit-identical interiors.
func hashFilterFingerprint(h hash.Hash, coefficients []float64, prefix string) {
	n := len(coefficients)
	writeString(h, fmt.Sprintf("%s:n=%d", prefix, n))
	for i := 0; i < n && i < 3; i++ {
		writeString(h, fmt.Sprintf(":c%d=%s", i, formatFloat(RoundSigFigs(coefficients[i]))))
	}
	start := n - 3
	if start < 0 {
		start = 0
	}
	for i := start; i < n; i++ {
		writeString(h, fmt.Sprintf(":c%d=%s", i, formatFloat(RoundSigFigs(coefficients[i]))))
	}
	sum := 0.0
	for _, c := range coefficients {
		sum += c
	}
	writeString(h, ":sum="+formatFloat(RoundSigFigs(sum)))
}

// StageHash computes the general hash of a single stage. Poles and zeros are
// sorted by their rounded coordinates before hashing, so encounter order
// never changes the result.
func StageHash(st stage.Stage, prefix string, excludeGain bool) string {
	h := sha256.New()
	writeString(h, prefix+":"+st.Kind.String())

	if !excludeGain && st.HasGain && st.Gain != 0 {
		writeString(h, ":gain="+formatFloat(round2(st.Gain)))
	}
	if st.HasDecimation && st.Decimation != 0 {
		writeString(h, ":dec="+strconv.Itoa(st.Decimation))
	}

	switch st.Kind {
	case stage.KindPolesZeros:
		writeString(h, ":tf="+st.TransferFunction)
		hashComplexSet(h, "p", st.Poles)
		hashComplexSet(h, "z", st.Zeros)
	case stage.KindCoefficients:
		if st.Symmetry != "" {
			writeString(h, ":sym="+st.Symmetry)
		}
		if n := len(st.Coefficients); n > 0 {
			writeString(h, ":nc="+strconv.Itoa(n))
			for _, c := range st.Coefficients {
				writeString(h, ":"+formatFloat(RoundSigFigs(c)))
			}
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

func hashComplexSet(h hash.Hash, tag string, values []complex128) {
	if len(values) == 0 {
		return
	}
	rounded := make([][2]float64, len(values))
	for i, v := range values {
		rounded[i] = [2]float64{RoundSigFigs(real(v)), RoundSigFigs(imag(v))}
	}
	sort.Slice(rounded, func(i, j int) bool {
		if rounded[i][0] != rounded[j][0] {
			return rounded[i][0] < rounded[j][0]
		}
		return rounded[i][1] < rounded[j][1]
	})
	for _, v := range rounded {
		writeString(h, ":"+tag+"="+formatFloat(v[0])+","+formatFloat(v[1]))
	}
}
