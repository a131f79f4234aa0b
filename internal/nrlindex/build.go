package nrlindex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"resprint/internal/family"
	"resprint/internal/logging"
	"resprint/internal/signature"
	"resprint/internal/stage"
	"resprint/internal/stationxml"
)

// ProgressFunc receives build progress. A zero total means the total is not
// yet known. Implementations must be fast; the build calls them inline.
type ProgressFunc func(current, total int, message string)

func report(progress ProgressFunc, current, total int, message string) {
	if progress != nil {
		progress(current, total, message)
	}
}

// Build scans the sensor/ and datalogger/ subtrees, computes signatures and
// family info for every response file, publishes the resulting snapshot,
// and persists it. Unreadable files are logged and skipped. The returned
// counts are distinct sensor and datalogger signatures.
//
// Build takes a file lock next to the index artifact so two processes never
// rebuild the same index concurrently. A save failure is returned as an
// error, but the freshly built snapshot stays published.
func (s *Store) Build(progress ProgressFunc) (sensors, dataloggers int, err error) {
	lock := flock.New(s.indexPath + ".lock")
	if dir := filepath.Dir(s.indexPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, 0, fmt.Errorf("create index directory: %w", err)
		}
	}
	locked, err := lock.TryLock()
	if err != nil {
		return 0, 0, fmt.Errorf("acquire build lock: %w", err)
	}
	if !locked {
		return 0, 0, fmt.Errorf("index build already in progress for %s", s.indexPath)
	}
	defer lock.Unlock()

	buildID := uuid.NewString()
	logger := s.logger.With(logging.String(logging.FieldBuildID, buildID))
	logger.Info("building index", logging.String("nrl_root", s.nrlRoot))

	contentHash, err := s.ContentHash()
	if err != nil {
		return 0, 0, err
	}
	snapshot := newSnapshot(IndexVersion, contentHash)

	report(progress, 0, 0, "Scanning sensor directory...")
	sensorFiles, err := s.collectResponseFiles(filepath.Join(s.nrlRoot, "sensor"))
	if err != nil {
		return 0, 0, fmt.Errorf("scan sensor tree: %w", err)
	}

	report(progress, 0, 0, fmt.Sprintf("Found %d sensors. Scanning dataloggers...", len(sensorFiles)))
	dataloggerFiles, err := s.collectResponseFiles(filepath.Join(s.nrlRoot, "datalogger"))
	if err != nil {
		return 0, 0, fmt.Errorf("scan datalogger tree: %w", err)
	}

	total := len(sensorFiles) + len(dataloggerFiles)
	current := 0
	report(progress, 0, total, fmt.Sprintf("Indexing %d files...", total))

	for _, file := range sensorFiles {
		current++
		report(progress, current, total, "Sensor: "+file.model)
		if err := s.indexSensorFile(snapshot, file); err != nil {
			logger.Warn("skipping sensor file",
				logging.String(logging.FieldEventType, "sensor_index_failed"),
				logging.String(logging.FieldPath, file.relPath),
				logging.Error(err))
		}
	}

	for _, file := range dataloggerFiles {
		current++
		report(progress, current, total, "Datalogger: "+file.model)
		if err := s.indexDataloggerFile(snapshot, file); err != nil {
			logger.Warn("skipping datalogger file",
				logging.String(logging.FieldEventType, "datalogger_index_failed"),
				logging.String(logging.FieldPath, file.relPath),
				logging.Error(err))
		}
	}

	s.snapshot.Store(snapshot)

	report(progress, total, total, "Saving index...")
	saveErr := s.Save()

	sensors, dataloggers = snapshot.Stats()
	logger.Info("index built",
		logging.Int("sensor_signatures", sensors),
		logging.Int("datalogger_signatures", dataloggers),
		logging.Int("files", total))

	if saveErr != nil {
		logger.Warn("index not persisted",
			logging.String(logging.FieldEventType, "index_save_failed"),
			logging.Error(saveErr))
		return sensors, dataloggers, fmt.Errorf("persist index: %w", saveErr)
	}
	return sensors, dataloggers, nil
}

func (s *Store) indexSensorFile(snapshot *Snapshot, file responseFile) error {
	resp, err := stationxml.ReadResponse(file.path)
	if err != nil {
		return err
	}
	sig, ok := signature.Sensor(resp.Stages)
	if !ok {
		return fmt.Errorf("response has no stages")
	}

	descriptor := newDescriptor(s.nrlRoot, file)
	if gain, ok := stage0Gain(resp.Stages); ok {
		descriptor.Stage0Gain = &gain
	}

	snapshot.Sensors[sig] = append(snapshot.Sensors[sig], descriptor)
	return nil
}

func (s *Store) indexDataloggerFile(snapshot *Snapshot, file responseFile) error {
	resp, err := stationxml.ReadResponse(file.path)
	if err != nil {
		return err
	}
	stages := resp.Stages
	if len(stages) == 0 {
		return fmt.Errorf("response has no stages")
	}

	var exactSig, familySig string
	adcIndex, hasADC := signature.ADCStageIndex(stages)
	if hasADC {
		g, hasGain := stage0Gain(stages)
		var ok bool
		exactSig, ok = signature.DataloggerExact(stages, adcIndex, g, hasGain)
		if !ok {
			return fmt.Errorf("no exact signature")
		}
		familySig, _ = signature.DataloggerFamily(stages, adcIndex)
	} else {
		// No recognizable ADC stage: hash everything after the first
		// stage and assume the conversion happens right there.
		var ok bool
		exactSig, ok = signature.Fallback(stages)
		if !ok {
			return fmt.Errorf("too few stages for a datalogger signature")
		}
		familySig = exactSig
		adcIndex = 1
	}

	descriptor := newDescriptor(s.nrlRoot, file)
	if gain, ok := stage0Gain(stages); ok {
		descriptor.Stage0Gain = &gain
	}
	if adcIndex < len(stages) {
		adcGain := signature.TotalDigitalGain(stages, adcIndex)
		descriptor.ADCGain = &adcGain
	}

	snapshot.Dataloggers[exactSig] = append(snapshot.Dataloggers[exactSig], descriptor)
	if familySig != "" {
		snapshot.DataloggerFamilies[familySig] = append(snapshot.DataloggerFamilies[familySig], descriptor)
	}
	return nil
}

func newDescriptor(root string, file responseFile) Descriptor {
	familyName, variantParams := family.Extract(file.manufacturer, file.model, file.description)
	return Descriptor{
		Manufacturer:  file.manufacturer,
		Model:         file.model,
		Description:   file.description,
		Path:          file.relPath,
		FamilyName:    familyName,
		VariantParams: variantParams,
	}
}

func stage0Gain(stages []stage.Stage) (float64, bool) {
	if len(stages) == 0 {
		return 0, false
	}
	first := stages[0]
	if !first.HasGain || first.Gain == 0 {
		return 0, false
	}
	return first.Gain, true
}

func modelFromRelDir(relDir, fileName string) string {
	if relDir == "." || relDir == "" {
		return strings.TrimSuffix(fileName, filepath.Ext(fileName))
	}
	return strings.Join(strings.Split(filepath.ToSlash(relDir), "/"), " / ")
}
