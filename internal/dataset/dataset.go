// Package dataset loads the curated collections shipped with the site:
// papers, talks, open source projects and team areas.
package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nDmitry/homepage/internal/entity"
)

const (
	PapersFile     = "publications.json"
	TalksFile      = "presentations.json"
	OpenSourceFile = "open-source.json"
	TeamsFile      = "projects.json"
)

// Loader provides the static datasets of a build.
type Loader interface {
	Load(ctx context.Context) (*entity.Datasets, error)
}

// FileLoader reads the datasets from JSON files in Dir.
type FileLoader struct {
	Dir string
}

func (l *FileLoader) Load(ctx context.Context) (*entity.Datasets, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		ds  entity.Datasets
		err error
	)

	if ds.Papers, err = readCollection[entity.Paper](l.Dir, PapersFile, "publications"); err != nil {
		return nil, err
	}

	if ds.Talks, err = readCollection[entity.Talk](l.Dir, TalksFile, "videos"); err != nil {
		return nil, err
	}

	if ds.OpenSource, err = readCollection[entity.OpenSourceProject](l.Dir, OpenSourceFile, "projects"); err != nil {
		return nil, err
	}

	if ds.Teams, err = readCollection[entity.TeamArea](l.Dir, TeamsFile, "teams"); err != nil {
		return nil, err
	}

	return &ds, nil
}

// readCollection accepts either a top-level array or an object holding the
// array under wrapperKey.
func readCollection[T any](dir, name, wrapperKey string) ([]T, error) {
	path := filepath.Join(dir, name)
	contents, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("could not read dataset %s: %w", path, err)
	}

	contents = bytes.TrimSpace(contents)

	if len(contents) > 0 && contents[0] != '[' {
		var wrapper map[string]json.RawMessage

		if err := json.Unmarshal(contents, &wrapper); err != nil {
			return nil, fmt.Errorf("could not parse dataset %s: %w", path, err)
		}

		inner, ok := wrapper[wrapperKey]

		if !ok {
			return nil, fmt.Errorf("dataset %s has no %q field", path, wrapperKey)
		}

		contents = inner
	}

	items := []T{}

	if err := json.Unmarshal(contents, &items); err != nil {
		return nil, fmt.Errorf("could not parse dataset %s: %w", path, err)
	}

	return items, nil
}

// StaticLoader returns datasets fixed at construction.
type StaticLoader struct {
	Datasets entity.Datasets
}

func (l *StaticLoader) Load(ctx context.Context) (*entity.Datasets, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds := l.Datasets

	return &ds, nil
}
