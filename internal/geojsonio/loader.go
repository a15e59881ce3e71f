package geojsonio

import (
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

var ErrEmptyPaths = errors.New("no geojson files matched")

// ReadFile decodes the GeoJSON document stored at path.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, errors.Wrapf(err, "read %s", path)
	}
	doc, err := Decode(data)
	if err != nil {
		return Document{}, errors.Wrapf(err, "parse %s", path)
	}
	return doc, nil
}

// LoadFiles reads every GeoJSON file matching pattern and returns their
// features. Files that cannot be read or parsed are logged and skipped.
func LoadFiles(pattern string, logger logr.Logger) ([]*geojson.Feature, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "glob %q", pattern)
	}
	if len(files) == 0 {
		return nil, errors.Wrapf(ErrEmptyPaths, "%q", pattern)
	}

	logger.Info("loading geojson files", "count", len(files), "pattern", pattern)

	var all []*geojson.Feature
	for _, file := range files {
		doc, err := ReadFile(file)
		if err != nil {
			logger.Error(err, "skipping file", "file", file)
			continue
		}

		features := doc.Features()
		all = append(all, features...)
		logger.V(1).Info("loaded features", "file", filepath.Base(file), "count", len(features))
	}

	logger.Info("loaded geojson files", "features", len(all))
	return all, nil
}
