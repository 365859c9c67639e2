// Package thumbnail picks a header image for a post from its category tags.
package thumbnail

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
)

// Assets maps a category tag to the image file named after it.
type Assets map[string]string

// LoadAssets lists the image files of dir. The part of a file name before
// the first dot is the category tag it illustrates.
func LoadAssets(dir string) (Assets, error) {
	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, fmt.Errorf("could not list thumbnails in %s: %w", dir, err)
	}

	assets := make(Assets, len(entries))

	for _, e := range entries {
		name := e.Name()

		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		tag, _, _ := strings.Cut(name, ".")

		// Keep the first file in directory order if two share a tag.
		if _, exists := assets[tag]; !exists {
			assets[tag] = name
		}
	}

	return assets, nil
}

func (a Assets) Has(tag string) bool {
	_, ok := a[tag]
	return ok
}

// Keys returns the known tags in sorted order.
func (a Assets) Keys() []string {
	keys := make([]string, 0, len(a))

	for k := range a {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

type Resolver struct {
	assets      Assets
	publicPath  string
	defaultPath string
}

// NewResolver panics on an empty defaultPath since every post needs a thumbnail.
func NewResolver(assets Assets, publicPath, defaultPath string) *Resolver {
	if defaultPath == "" {
		panic("thumbnail: empty default path")
	}

	return &Resolver{
		assets:      assets,
		publicPath:  publicPath,
		defaultPath: defaultPath,
	}
}

// Resolve scans categories from last to first, the later tags being the more
// specific ones, and returns the image of the first tag that has one.
func (r *Resolver) Resolve(categories []string) string {
	for i := len(categories) - 1; i >= 0; i-- {
		if file, ok := r.assets[categories[i]]; ok {
			return path.Join(r.publicPath, file)
		}
	}

	return r.defaultPath
}

func (r *Resolver) Default() string {
	return r.defaultPath
}
