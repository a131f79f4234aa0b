package detect

import (
	"log/slog"
	"math"

	"resprint/internal/logging"
	"resprint/internal/nrlindex"
	"resprint/internal/signature"
	"resprint/internal/stage"
)

// Result is the outcome of one identification query. A nil Sensor or
// Datalogger means that half of the instrument was not resolved. Candidate
// slices hold every descriptor colliding on the matched signature, in
// index order; the chosen descriptor is always the ranked or first entry.
type Result struct {
	Sensor               *nrlindex.Descriptor
	SensorCandidates     []nrlindex.Descriptor
	SensorConfidence     float64
	Datalogger           *nrlindex.Descriptor
	DataloggerCandidates []nrlindex.Descriptor
	DataloggerConfidence float64
}

// FoundAny reports whether at least one instrument half was identified.
func (r Result) FoundAny() bool {
	return r.Sensor != nil || r.Datalogger != nil
}

// SensorAmbiguous reports whether several sensors share the matched
// signature.
func (r Result) SensorAmbiguous() bool {
	return len(r.SensorCandidates) > 1
}

// DataloggerAmbiguous reports whether several dataloggers share the
// matched signature.
func (r Result) DataloggerAmbiguous() bool {
	return len(r.DataloggerCandidates) > 1
}

// Detector answers identification queries against a Store's current
// snapshot.
type Detector struct {
	store  *nrlindex.Store
	logger *slog.Logger
}

// New creates a Detector. A nil logger disables logging.
func New(store *nrlindex.Store, logger *slog.Logger) *Detector {
	return &Detector{
		store:  store,
		logger: logging.NewComponentLogger(logger, "detect"),
	}
}

// Detect identifies the sensor and datalogger behind a response. The index
// is loaded on demand; a load failure yields an empty result rather than
// an error.
func (d *Detector) Detect(resp *stage.Response) Result {
	if !d.store.IsLoaded() {
		if err := d.store.Load(); err != nil {
			d.logger.Warn("index unavailable",
				logging.String(logging.FieldEventType, "index_load_failed"),
				logging.Error(err))
			return Result{}
		}
	}
	snapshot := d.store.CurrentSnapshot()

	var result Result
	if resp == nil || len(resp.Stages) == 0 {
		return result
	}
	stages := resp.Stages

	if sig, ok := signature.Sensor(stages); ok {
		if candidates := snapshot.SensorCandidates(sig); len(candidates) > 0 {
			result.SensorCandidates = candidates
			result.Sensor = &candidates[0]
			if len(candidates) == 1 {
				result.SensorConfidence = 1.0
			}
		}
	}

	adcIndex, hasADC := signature.ADCStageIndex(stages)
	if !hasADC {
		d.detectByFallback(snapshot, stages, &result)
		return result
	}

	preampGain, hasPreamp := signature.PreampGain(stages, adcIndex)
	if sig, ok := signature.DataloggerExact(stages, adcIndex, preampGain, hasPreamp); ok {
		if candidates := snapshot.DataloggerCandidates(sig); len(candidates) > 0 {
			result.DataloggerCandidates = candidates
			result.Datalogger = &candidates[0]
			if len(candidates) == 1 {
				result.DataloggerConfidence = 1.0
			}
			return result
		}
	}

	sig, ok := signature.DataloggerFamily(stages, adcIndex)
	if !ok {
		return result
	}
	candidates := snapshot.FamilyCandidates(sig)
	if len(candidates) == 0 {
		return result
	}

	result.DataloggerCandidates = candidates
	result.Datalogger = &candidates[0]
	switch {
	case len(candidates) == 1:
		result.DataloggerConfidence = 1.0
	default:
		if i, confidence, ok := disambiguateByGain(stages, adcIndex, candidates); ok {
			result.Datalogger = &candidates[i]
			result.DataloggerConfidence = confidence
		}
	}
	return result
}

// detectByFallback handles responses without a recognizable volt-to-counts
// stage: the datalogger fingerprint over everything after the first stage
// is checked against both signature maps. Without measured gains there is
// nothing to rank colliding candidates by, so collisions stay at zero
// confidence.
func (d *Detector) detectByFallback(snapshot *nrlindex.Snapshot, stages []stage.Stage, result *Result) {
	sig, ok := signature.Fallback(stages)
	if !ok {
		return
	}
	candidates := snapshot.DataloggerCandidates(sig)
	if len(candidates) == 0 {
		candidates = snapshot.FamilyCandidates(sig)
	}
	if len(candidates) == 0 {
		return
	}
	result.DataloggerCandidates = candidates
	result.Datalogger = &candidates[0]
	if len(candidates) == 1 {
		result.DataloggerConfidence = 1.0
	}
}

var expectedGainMultipliers = [...]float64{1.0, 2.0, 4.0, 0.5, 0.25}

// disambiguateByGain ranks candidates sharing a family signature by how
// well their stored gains explain the response's measured gains. The
// primary pass checks that the ADC gain ratio tracks the preamp gain
// ratio; the secondary pass falls back to common gain-switch multipliers.
// Ties keep the earliest candidate. Returns ok=false when no candidate
// passes either tolerance.
func disambiguateByGain(stages []stage.Stage, adcIndex int, candidates []nrlindex.Descriptor) (best int, confidence float64, ok bool) {
	userADCGain := signature.TotalDigitalGain(stages, adcIndex)
	if userADCGain == 0 {
		return 0, 0, false
	}

	userPreampGain := 1.0
	for i := 1; i < adcIndex; i++ {
		if stages[i].HasGain && stages[i].Gain != 0 {
			userPreampGain *= math.Abs(stages[i].Gain)
		}
	}
	if userPreampGain == 0 {
		return 0, 0, false
	}

	best = -1
	for i, c := range candidates {
		if c.ADCGain == nil || c.Stage0Gain == nil {
			continue
		}
		candidateADC := math.Abs(*c.ADCGain)
		candidatePreamp := math.Abs(*c.Stage0Gain)
		if candidateADC == 0 || candidatePreamp == 0 {
			continue
		}

		adcRatio := userADCGain / candidateADC
		preampRatio := candidatePreamp / userPreampGain
		relDiff := math.Abs(adcRatio-preampRatio) / preampRatio
		if relDiff < 0.15 {
			if conf := math.Max(0.5, 1.0-relDiff*2); best < 0 || conf > confidence {
				best, confidence = i, conf
			}
		}
	}
	if best >= 0 {
		return best, confidence, true
	}

	for i, c := range candidates {
		if c.ADCGain == nil {
			continue
		}
		candidateADC := math.Abs(*c.ADCGain)
		if candidateADC == 0 {
			continue
		}
		ratio := userADCGain / candidateADC
		for _, expected := range expectedGainMultipliers {
			relDiff := math.Abs(ratio-expected) / expected
			if relDiff < 0.1 {
				if conf := 0.7 - relDiff; best < 0 || conf > confidence {
					best, confidence = i, conf
				}
				break
			}
		}
	}
	if best >= 0 {
		return best, confidence, true
	}
	return 0, 0, false
}
