package nrlindex

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"

	"resprint/internal/logging"
)

type responseFile struct {
	path         string // absolute
	relPath      string // relative to the library root
	manufacturer string
	model        string
	description  string
}

// collectResponseFiles gathers every response file under one subtree
// (sensor/ or datalogger/) with its manufacturer, model, and description.
// Manufacturer directories and files are visited in lexicographic order,
// which fixes candidate-list order across runs.
func (s *Store) collectResponseFiles(baseDir string) ([]responseFile, error) {
	if _, err := os.Stat(baseDir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	descriptions := buildDescriptionCache(baseDir, s.logger)

	manufacturers, err := sortedSubdirs(baseDir)
	if err != nil {
		return nil, err
	}

	var files []responseFile
	for _, manufacturer := range manufacturers {
		manufacturerPath := filepath.Join(baseDir, manufacturer)
		err := filepath.WalkDir(manufacturerPath, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
				return nil
			}

			dir := filepath.Dir(path)
			relDir, err := filepath.Rel(manufacturerPath, dir)
			if err != nil {
				return err
			}
			relPath, err := filepath.Rel(s.nrlRoot, path)
			if err != nil {
				return err
			}

			description := entry.Name()
			if dirDescriptions, ok := descriptions[dir]; ok {
				if d, ok := dirDescriptions[entry.Name()]; ok {
					description = d
				}
			}

			files = append(files, responseFile{
				path:         path,
				relPath:      filepath.ToSlash(relPath),
				manufacturer: manufacturer,
				model:        modelFromRelDir(relDir, entry.Name()),
				description:  description,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// buildDescriptionCache parses every descriptor .txt file in the subtree
// and maps, per directory, response file name to a human description.
// Descriptors are sectioned key/value records: one section per response
// file with xml and description fields; the Main section holds only the
// selection prompt and is skipped. Unparseable files are ignored.
func buildDescriptionCache(baseDir string, logger *slog.Logger) map[string]map[string]string {
	cache := make(map[string]map[string]string)
	_ = filepath.WalkDir(baseDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			return nil
		}

		file, err := ini.Load(path)
		if err != nil {
			logger.Debug("unparseable descriptor file",
				logging.String(logging.FieldPath, path),
				logging.Error(err))
			return nil
		}

		dir := filepath.Dir(path)
		for _, section := range file.Sections() {
			name := section.Name()
			if name == ini.DefaultSection || name == "Main" {
				continue
			}
			xmlRef := strings.Trim(strings.TrimSpace(section.Key("xml").String()), `"`)
			if xmlRef == "" {
				continue
			}
			xmlName := filepath.Base(filepath.FromSlash(xmlRef))
			description := strings.Trim(strings.TrimSpace(section.Key("description").String()), `"`)
			if description != "" {
				description = name + ": " + description
			} else {
				description = name
			}
			if cache[dir] == nil {
				cache[dir] = make(map[string]string)
			}
			cache[dir][xmlName] = description
		}
		return nil
	})
	return cache
}
