package texture

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// extPriority ranks decodable extensions. When two files share a stem the
// one with the higher rank wins; formats that carry alpha beat JPEG.
var extPriority = map[string]int{
	".jpg":  1,
	".jpeg": 1,
	".bmp":  2,
	".gif":  3,
	".tif":  4,
	".tiff": 4,
	".webp": 5,
	".tga":  6,
	".png":  7,
}

// Supported reports whether path has an extension the loader can decode.
func Supported(path string) bool {
	_, ok := extPriority[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Index maps sprite IDs to filesystem paths. An ID is the path relative to
// the scanned root, without extension, using forward slashes.
type Index struct {
	root    string
	entries map[string]string // lower(id) → full path
	ids     map[string]string // lower(id) → id as found on disk
}

// BuildIndex walks root recursively and indexes every decodable image.
func BuildIndex(root string) (*Index, error) {
	idx := &Index{
		root:    root,
		entries: make(map[string]string),
		ids:     make(map[string]string),
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !Supported(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		id := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		key := strings.ToLower(id)

		existing, exists := idx.entries[key]
		if !exists || rank(path) > rank(existing) {
			idx.entries[key] = path
			idx.ids[key] = id
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("texture: scan %s: %w", root, err)
	}
	return idx, nil
}

func rank(path string) int {
	return extPriority[strings.ToLower(filepath.Ext(path))]
}

// ResolvePath returns the filesystem path for an ID, or ("", false). The
// lookup ignores case, backslashes and any extension on name.
func (idx *Index) ResolvePath(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	if Supported(name) {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	path, ok := idx.entries[strings.ToLower(name)]
	return path, ok
}

// IDs returns every indexed ID in natural order, so "run2" sorts before "run10".
func (idx *Index) IDs() []string {
	out := make([]string, 0, len(idx.ids))
	for _, id := range idx.ids {
		out = append(out, id)
	}
	sort.Sort(natural.StringSlice(out))
	return out
}

// Len returns the number of indexed images.
func (idx *Index) Len() int {
	return len(idx.entries)
}
