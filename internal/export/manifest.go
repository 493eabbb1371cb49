package export

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"atlaspack/internal/atlas"
)

// Size is a width/height pair in pixels.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Point is an x/y offset in pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ManifestEntry represents one sprite in the output manifest.
type ManifestEntry struct {
	ID         string       `json:"id"`
	UV         atlas.UVRect `json:"uv"`
	Original   Size         `json:"original"`
	Atlas      Size         `json:"atlas"`
	TrimOffset Point        `json:"trim_offset"`
	Trimmed    bool         `json:"trimmed"`
	Rotated    bool         `json:"rotated"`
}

// Manifest is the JSON sidecar written next to an atlas image.
type Manifest struct {
	Image          string          `json:"image"`
	BinSize        int             `json:"bin_size"`
	Padding        int             `json:"padding"`
	Algorithm      string          `json:"algorithm"`
	Format         string          `json:"format"`
	Mipmaps        bool            `json:"mipmaps"`
	Efficiency     float64         `json:"efficiency"`
	EstimatedBytes int64           `json:"estimated_bytes"`
	Skipped        []string        `json:"skipped,omitempty"`
	Entries        []ManifestEntry `json:"entries"`
}

// NewManifest converts a result into its manifest form, entries sorted by ID.
func NewManifest(res *atlas.Result, imageName string) Manifest {
	m := Manifest{
		Image:          imageName,
		BinSize:        res.BinSize,
		Padding:        res.Padding,
		Algorithm:      res.Algorithm.String(),
		Format:         res.Format.String(),
		Mipmaps:        res.Mipmaps,
		Efficiency:     res.Efficiency,
		EstimatedBytes: res.EstimatedBytes,
		Skipped:        res.Skipped,
		Entries:        make([]ManifestEntry, 0, len(res.Entries)),
	}
	for id, e := range res.Entries {
		m.Entries = append(m.Entries, ManifestEntry{
			ID:         id,
			UV:         e.UV,
			Original:   Size{W: e.OriginalSize.X, H: e.OriginalSize.Y},
			Atlas:      Size{W: e.AtlasSize.X, H: e.AtlasSize.Y},
			TrimOffset: Point{X: e.TrimOffset.X, Y: e.TrimOffset.Y},
			Trimmed:    e.Trimmed,
			Rotated:    e.Rotated,
		})
	}
	sort.Slice(m.Entries, func(i, j int) bool { return m.Entries[i].ID < m.Entries[j].ID })
	return m
}

// WriteManifest writes the manifest for res to path.
func WriteManifest(path string, res *atlas.Result, imageName string) error {
	data, err := json.MarshalIndent(NewManifest(res, imageName), "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("export: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("export: parse %s: %w", path, err)
	}
	return m, nil
}
