package export

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"

	"atlaspack/internal/atlas"

	"github.com/disintegration/imaging"
)

var (
	previewBackground = color.NRGBA{0, 0, 0, 255}
	previewBorder     = color.NRGBA{255, 255, 255, 255}
)

// LayoutPreview draws every placed sprite as a solid block with a white
// border on black. Colors derive from the sprite ID so repeated builds match.
// Previews larger than maxSide are shrunk to fit; maxSide <= 0 keeps full size.
func LayoutPreview(res *atlas.Result, maxSide int) *image.NRGBA {
	img := imaging.New(res.BinSize, res.BinSize, previewBackground)

	for _, id := range res.Order {
		e, ok := res.Entries[id]
		if !ok {
			continue
		}
		r := e.PixelRect()
		draw.Draw(img, r, &image.Uniform{idColor(id)}, image.Point{}, draw.Src)
		drawRectBorder(img, r, previewBorder)
	}

	if maxSide > 0 && res.BinSize > maxSide {
		img = imaging.Fit(img, maxSide, maxSide, imaging.NearestNeighbor)
	}
	return img
}

// WriteLayoutPreview renders LayoutPreview and saves it; the encoder follows
// the extension of path.
func WriteLayoutPreview(path string, res *atlas.Result, maxSide int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := imaging.Save(LayoutPreview(res, maxSide), path); err != nil {
		return fmt.Errorf("export: save preview %s: %w", path, err)
	}
	return nil
}

func idColor(id string) color.NRGBA {
	h := fnv.New32a()
	h.Write([]byte(id))
	v := h.Sum32()
	return color.NRGBA{
		R: uint8(v>>16)%240 + 15,
		G: uint8(v>>8)%240 + 15,
		B: uint8(v)%240 + 15,
		A: 255,
	}
}

func drawRectBorder(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetNRGBA(x, r.Min.Y, c)
		img.SetNRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetNRGBA(r.Min.X, y, c)
		img.SetNRGBA(r.Max.X-1, y, c)
	}
}
