package nrlindex

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"resprint/internal/logging"
)

// IndexVersion tags the persisted artifact format. Bumping it invalidates
// every existing index file.
const IndexVersion = "0.1"

// Store owns the index lifecycle: content hashing, build, save, load, and
// the atomically published current Snapshot.
type Store struct {
	nrlRoot   string
	indexPath string
	logger    *slog.Logger
	snapshot  atomic.Pointer[Snapshot]
}

// New creates a Store for the library rooted at nrlRoot, persisting to
// indexPath. A nil logger disables logging.
func New(nrlRoot, indexPath string, logger *slog.Logger) *Store {
	return &Store{
		nrlRoot:   filepath.Clean(nrlRoot),
		indexPath: indexPath,
		logger:    logging.NewComponentLogger(logger, "nrlindex"),
	}
}

// IndexPath returns the location of the persisted artifact.
func (s *Store) IndexPath() string {
	return s.indexPath
}

// CurrentSnapshot returns the published snapshot, or nil before the first
// successful build or load. The returned value is immutable and safe for
// concurrent readers.
func (s *Store) CurrentSnapshot() *Snapshot {
	return s.snapshot.Load()
}

// IsLoaded reports whether a snapshot has been published.
func (s *Store) IsLoaded() bool {
	return s.snapshot.Load() != nil
}

// ContentHash computes the invalidation hash of the library tree: a digest
// over sorted relative paths and modification times of descriptor and
// response files. Timestamp-based, so an edit that preserves a file's mtime
// is invisible to it.
func (s *Store) ContentHash() (string, error) {
	hasher := md5.New()
	err := filepath.WalkDir(s.nrlRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".xml" && ext != ".txt" {
			return nil
		}
		rel, err := filepath.Rel(s.nrlRoot, path)
		if err != nil {
			return err
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		fmt.Fprintf(hasher, "%s:%d", filepath.ToSlash(rel), info.ModTime().UnixNano())
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk library tree: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// NeedsRebuild reports whether the persisted artifact is missing, from a
// different format version, or stale against the library contents.
func (s *Store) NeedsRebuild() bool {
	data, err := os.ReadFile(s.indexPath)
	if err != nil {
		return true
	}

	var meta struct {
		Version     string `json:"version"`
		ContentHash string `json:"nrl_hash"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return true
	}
	if meta.Version != IndexVersion {
		return true
	}

	current, err := s.ContentHash()
	if err != nil {
		return true
	}
	return meta.ContentHash != current
}

// Load reads the persisted artifact and publishes it as the current
// snapshot.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.indexPath)
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("parse index: %w", err)
	}
	if snapshot.Sensors == nil {
		snapshot.Sensors = map[string][]Descriptor{}
	}
	if snapshot.Dataloggers == nil {
		snapshot.Dataloggers = map[string][]Descriptor{}
	}
	if snapshot.DataloggerFamilies == nil {
		snapshot.DataloggerFamilies = map[string][]Descriptor{}
	}

	s.snapshot.Store(&snapshot)
	s.logger.Debug("loaded index",
		logging.String("path", s.indexPath),
		logging.Int("sensor_signatures", len(snapshot.Sensors)),
		logging.Int("datalogger_signatures", len(snapshot.Dataloggers)))
	return nil
}

// Save persists the current snapshot. The in-memory snapshot stays valid
// even when persisting fails.
func (s *Store) Save() error {
	snapshot := s.snapshot.Load()
	if snapshot == nil {
		return errors.New("no snapshot to save")
	}

	data, err := marshalSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if dir := filepath.Dir(s.indexPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create index directory: %w", err)
		}
	}
	if err := os.WriteFile(s.indexPath, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// marshalSnapshot renders the artifact with sorted keys for stable diffs.
func marshalSnapshot(snapshot *Snapshot) ([]byte, error) {
	return json.MarshalIndent(snapshot, "", "  ")
}

// Stats returns the distinct signature counts of the current snapshot.
func (s *Store) Stats() (sensors, dataloggers int) {
	snapshot := s.snapshot.Load()
	if snapshot == nil {
		return 0, 0
	}
	return snapshot.Stats()
}

func sortedSubdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
