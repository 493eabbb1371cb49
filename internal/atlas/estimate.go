package atlas

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// PixelFormat is the texture format the atlas is expected to ship in. It only
// drives the byte-size estimate; no encoding happens here.
type PixelFormat int

const (
	RGBA32 PixelFormat = iota
	RGB24
	RGBA16
	RGB565
	Alpha8
	DXT1
	DXT5
	BC4
	BC5
	BC7
	ETC1
	ETC2RGB
	ETC2RGBA
	ASTC4x4
	ASTC5x5
	ASTC6x6
	ASTC8x8
)

type formatInfo struct {
	name string
	// Block formats set blockW/blockH and blockBytes; others set pixelBytes.
	blockW, blockH int
	blockBytes     int
	pixelBytes     int
}

var formats = [...]formatInfo{
	RGBA32:   {name: "rgba32", pixelBytes: 4},
	RGB24:    {name: "rgb24", pixelBytes: 3},
	RGBA16:   {name: "rgba16", pixelBytes: 2},
	RGB565:   {name: "rgb565", pixelBytes: 2},
	Alpha8:   {name: "alpha8", pixelBytes: 1},
	DXT1:     {name: "dxt1", blockW: 4, blockH: 4, blockBytes: 8},
	DXT5:     {name: "dxt5", blockW: 4, blockH: 4, blockBytes: 16},
	BC4:      {name: "bc4", blockW: 4, blockH: 4, blockBytes: 8},
	BC5:      {name: "bc5", blockW: 4, blockH: 4, blockBytes: 16},
	BC7:      {name: "bc7", blockW: 4, blockH: 4, blockBytes: 16},
	ETC1:     {name: "etc1", blockW: 4, blockH: 4, blockBytes: 8},
	ETC2RGB:  {name: "etc2rgb", blockW: 4, blockH: 4, blockBytes: 8},
	ETC2RGBA: {name: "etc2rgba", blockW: 4, blockH: 4, blockBytes: 16},
	ASTC4x4:  {name: "astc4x4", blockW: 4, blockH: 4, blockBytes: 16},
	ASTC5x5:  {name: "astc5x5", blockW: 5, blockH: 5, blockBytes: 16},
	ASTC6x6:  {name: "astc6x6", blockW: 6, blockH: 6, blockBytes: 16},
	ASTC8x8:  {name: "astc8x8", blockW: 8, blockH: 8, blockBytes: 16},
}

// formatAliases maps common alternate spellings onto canonical names.
var formatAliases = map[string]string{
	"rgba":  "rgba32",
	"rgba8": "rgba32",
	"rgb":   "rgb24",
	"a8":    "alpha8",
	"bc1":   "dxt1",
	"bc3":   "dxt5",
	"etc2":  "etc2rgba",
	"astc":  "astc4x4",
}

func (f PixelFormat) valid() bool { return f >= 0 && int(f) < len(formats) }

func (f PixelFormat) String() string {
	if !f.valid() {
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
	return formats[f].name
}

// Compressed reports whether f is a block-compressed format.
func (f PixelFormat) Compressed() bool {
	return f.valid() && formats[f].blockBytes > 0
}

// ParsePixelFormat accepts canonical names ("dxt5", "astc6x6") and a few
// aliases ("bc3", "rgba8").
func ParsePixelFormat(s string) (PixelFormat, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.NewReplacer("_", "", "-", "").Replace(name)
	if alias, ok := formatAliases[name]; ok {
		name = alias
	}
	for i, fi := range formats {
		if fi.name == name {
			return PixelFormat(i), nil
		}
	}
	return 0, fmt.Errorf("atlas: unknown pixel format %q", s)
}

func (f PixelFormat) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *PixelFormat) UnmarshalText(b []byte) error {
	v, err := ParsePixelFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// mipFactor approximates a full mip chain: 1 + 1/4 + 1/16 + ... = 4/3.
const mipFactor = 4.0 / 3.0

// EstimateBytes approximates the GPU memory a w×h texture occupies in format
// f. Block formats round each dimension up to whole blocks.
func EstimateBytes(w, h int, f PixelFormat, mipmaps bool) int64 {
	if w <= 0 || h <= 0 || !f.valid() {
		return 0
	}
	fi := formats[f]

	var n int64
	if fi.blockBytes > 0 {
		bx := int64((w + fi.blockW - 1) / fi.blockW)
		by := int64((h + fi.blockH - 1) / fi.blockH)
		n = bx * by * int64(fi.blockBytes)
	} else {
		n = int64(w) * int64(h) * int64(fi.pixelBytes)
	}

	if mipmaps {
		n = int64(float64(n)*mipFactor + 0.5)
	}
	return n
}

// Efficiency sums the normalized area covered by entries, clamped to [0,1].
func Efficiency(entries map[string]Entry) float64 {
	var sum float64
	for _, id := range slices.Sorted(maps.Keys(entries)) {
		sum += entries[id].UV.W * entries[id].UV.H
	}
	return clamp01(sum)
}
