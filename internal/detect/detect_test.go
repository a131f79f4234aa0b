package detect

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"resprint/internal/nrlindex"
	"resprint/internal/stage"
	"resprint/internal/testsupport"
)

func floatPtr(v float64) *float64 { return &v }

func buildStore(t *testing.T, root string) *nrlindex.Store {
	t.Helper()
	store := nrlindex.New(root, filepath.Join(t.TempDir(), "index.json"), nil)
	if _, _, err := store.Build(nil); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return store
}

func simpleSensor() []stage.Stage {
	return testsupport.SensorStages(1500,
		[]complex128{complex(-0.037, 0.037), complex(-0.037, -0.037)},
		[]complex128{complex(0, 0), complex(0, 0)})
}

func simpleDatalogger() []stage.Stage {
	return testsupport.DataloggerStages(32, 400000,
		testsupport.FIRSpec{Coefficients: []float64{0.25, 0.5, 0.25}, Decimation: 2},
		testsupport.FIRSpec{Coefficients: []float64{0.1, 0.2, 0.4, 0.2, 0.1}, Decimation: 4})
}

func TestDetectCombinedResponse(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteResponseXML(t, filepath.Join(root, "sensor", "acme", "AS1", "AS1.xml"), simpleSensor())
	testsupport.WriteResponseXML(t, filepath.Join(root, "datalogger", "brand", "DL1", "DL1.xml"), simpleDatalogger())

	d := New(buildStore(t, root), nil)
	result := d.Detect(&stage.Response{
		Stages: testsupport.CombinedStages(simpleSensor(), simpleDatalogger()),
	})

	if result.Sensor == nil || result.SensorConfidence != 1.0 {
		t.Fatalf("sensor not resolved: %+v", result)
	}
	if result.Sensor.Model != "AS1" {
		t.Errorf("sensor model: %q", result.Sensor.Model)
	}
	if result.Datalogger == nil || result.DataloggerConfidence != 1.0 {
		t.Fatalf("datalogger not resolved: %+v", result)
	}
	if result.Datalogger.Model != "DL1" {
		t.Errorf("datalogger model: %q", result.Datalogger.Model)
	}
	if result.SensorAmbiguous() || result.DataloggerAmbiguous() {
		t.Error("unique matches reported as ambiguous")
	}
}

func TestDetectIdenticalDataloggerCopy(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteResponseXML(t, filepath.Join(root, "sensor", "acme", "AS1", "AS1.xml"), simpleSensor())
	testsupport.WriteResponseXML(t, filepath.Join(root, "datalogger", "brand", "DL1", "DL1.xml"), simpleDatalogger())

	d := New(buildStore(t, root), nil)
	result := d.Detect(&stage.Response{Stages: simpleDatalogger()})

	if result.Sensor != nil {
		t.Error("datalogger-only response matched a sensor")
	}
	if result.Datalogger == nil || result.DataloggerConfidence != 1.0 {
		t.Fatalf("copy of an indexed datalogger not resolved: %+v", result)
	}
	if result.DataloggerAmbiguous() {
		t.Error("single-entry library reported ambiguity")
	}
}

func TestDetectPrefersMatchingPreampVariant(t *testing.T) {
	root := t.TempDir()
	firs := []testsupport.FIRSpec{
		{Coefficients: []float64{0.25, 0.5, 0.25}, Decimation: 2},
	}
	testsupport.WriteResponseXML(t, filepath.Join(root, "datalogger", "brand", "DL_PG2", "r.xml"),
		testsupport.DataloggerStages(2.0, 100000, firs...))
	testsupport.WriteResponseXML(t, filepath.Join(root, "datalogger", "brand", "DL_PG4", "r.xml"),
		testsupport.DataloggerStages(4.0, 100000, firs...))

	d := New(buildStore(t, root), nil)

	// Unity preamp and a doubled digital gain: only the 2x reference
	// explains the measurement, since its stored preamp ratio matches the
	// observed gain ratio.
	user := testsupport.CombinedStages(simpleSensor(),
		testsupport.DataloggerStages(1.0, 200000, firs...))
	result := d.Detect(&stage.Response{Stages: user})

	if result.Datalogger == nil {
		t.Fatal("no datalogger resolved")
	}
	if result.Datalogger.Model != "DL_PG2" {
		t.Errorf("ranked %q first, want DL_PG2", result.Datalogger.Model)
	}
	if result.DataloggerConfidence < 0.5 || result.DataloggerConfidence > 1.0 {
		t.Errorf("confidence out of range: %v", result.DataloggerConfidence)
	}
	if len(result.DataloggerCandidates) != 2 {
		t.Errorf("candidates: got %d, want 2", len(result.DataloggerCandidates))
	}
}

func TestDetectFallbackWithoutADCStage(t *testing.T) {
	root := t.TempDir()
	stages := testsupport.DataloggerStages(2.0, 1000,
		testsupport.FIRSpec{Coefficients: []float64{0.5, 0.5}, Decimation: 2})
	for i := range stages {
		stages[i].InputUnits = "COUNTS"
		stages[i].OutputUnits = "COUNTS"
	}
	testsupport.WriteResponseXML(t, filepath.Join(root, "datalogger", "alpha", "A", "r.xml"), stages)
	testsupport.WriteResponseXML(t, filepath.Join(root, "datalogger", "zeta", "Z", "r.xml"), stages)

	d := New(buildStore(t, root), nil)
	result := d.Detect(&stage.Response{Stages: stages})

	if result.Datalogger == nil {
		t.Fatal("fallback path resolved nothing")
	}
	if result.DataloggerConfidence != 0.0 {
		t.Errorf("colliding fallback must stay at zero confidence, got %v", result.DataloggerConfidence)
	}
	if len(result.DataloggerCandidates) != 2 {
		t.Errorf("candidates: got %d, want 2", len(result.DataloggerCandidates))
	}
	if result.Datalogger.Manufacturer != "alpha" {
		t.Errorf("default candidate: %q, want first in scan order", result.Datalogger.Manufacturer)
	}
}

func TestDetectSurvivesLoadFailure(t *testing.T) {
	store := nrlindex.New(t.TempDir(), filepath.Join(t.TempDir(), "absent.json"), nil)
	d := New(store, nil)
	result := d.Detect(&stage.Response{Stages: simpleDatalogger()})
	if result.FoundAny() {
		t.Errorf("unloadable index produced a match: %+v", result)
	}
}

func TestDetectRoundTripThroughArtifact(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteResponseXML(t, filepath.Join(root, "sensor", "acme", "AS1", "AS1.xml"), simpleSensor())
	testsupport.WriteResponseXML(t, filepath.Join(root, "datalogger", "brand", "DL1", "DL1.xml"), simpleDatalogger())

	built := buildStore(t, root)
	query := &stage.Response{Stages: testsupport.CombinedStages(simpleSensor(), simpleDatalogger())}
	direct := New(built, nil).Detect(query)

	reloaded := nrlindex.New(root, built.IndexPath(), nil)
	viaDisk := New(reloaded, nil).Detect(query)

	if diff := cmp.Diff(direct, viaDisk); diff != "" {
		t.Errorf("in-memory and reloaded results differ (-direct +reloaded):\n%s", diff)
	}
}

func TestDisambiguationConfidenceMonotonic(t *testing.T) {
	firs := []testsupport.FIRSpec{{Coefficients: []float64{0.5, 0.5}, Decimation: 2}}
	candidate := []nrlindex.Descriptor{
		{Model: "C", Stage0Gain: floatPtr(1.0), ADCGain: floatPtr(100000)},
	}

	var previous = 2.0
	for _, userGain := range []float64{100000, 102000, 105000, 110000, 114000} {
		stages := testsupport.DataloggerStages(1.0, userGain, firs...)
		i, confidence, ok := disambiguateByGain(stages, 1, candidate)
		if !ok || i != 0 {
			t.Fatalf("gain %v not accepted by primary pass", userGain)
		}
		if confidence < 0.5 || confidence >= 1.0+1e-12 {
			t.Errorf("gain %v: confidence %v outside [0.5, 1.0]", userGain, confidence)
		}
		if confidence > previous {
			t.Errorf("gain %v: confidence %v rose above %v", userGain, confidence, previous)
		}
		previous = confidence
	}
}

func TestDisambiguationSecondaryMultipliers(t *testing.T) {
	firs := []testsupport.FIRSpec{{Coefficients: []float64{0.5, 0.5}, Decimation: 2}}
	// No stored preamp gain, so only the multiplier pass applies.
	candidates := []nrlindex.Descriptor{
		{Model: "C", ADCGain: floatPtr(100000)},
	}

	stages := testsupport.DataloggerStages(1.0, 200000, firs...)
	i, confidence, ok := disambiguateByGain(stages, 1, candidates)
	if !ok || i != 0 {
		t.Fatal("2x gain-switch multiplier not accepted")
	}
	if confidence != 0.7 {
		t.Errorf("exact multiplier match: confidence %v, want 0.7", confidence)
	}

	stages = testsupport.DataloggerStages(1.0, 300000, firs...)
	if _, _, ok := disambiguateByGain(stages, 1, candidates); ok {
		t.Error("3x ratio matches no expected multiplier and must be rejected")
	}
}

func TestDisambiguationTieKeepsEarliest(t *testing.T) {
	firs := []testsupport.FIRSpec{{Coefficients: []float64{0.5, 0.5}, Decimation: 2}}
	candidates := []nrlindex.Descriptor{
		{Model: "first", Stage0Gain: floatPtr(1.0), ADCGain: floatPtr(100000)},
		{Model: "second", Stage0Gain: floatPtr(1.0), ADCGain: floatPtr(100000)},
	}
	stages := testsupport.DataloggerStages(1.0, 100000, firs...)
	i, _, ok := disambiguateByGain(stages, 1, candidates)
	if !ok {
		t.Fatal("identical candidates not accepted")
	}
	if i != 0 {
		t.Errorf("tie broke to candidate %d, want the earliest", i)
	}
}
