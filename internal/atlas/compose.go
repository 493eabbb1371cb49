package atlas

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"atlaspack/internal/packer"

	"golang.org/x/sync/errgroup"
)

// Part is one source region to copy into the atlas.
type Part struct {
	Image     *image.NRGBA
	Src       image.Rectangle // trimmed region, in Image coordinates
	Placement packer.Placement
}

// Compose allocates a transparent size×size atlas and copies every part into
// its placement, inset by padding. Rotated parts are written turned 90°
// clockwise. When extrude > 0 the outermost content pixels are repeated into
// up to min(extrude, padding) pixels of the surrounding padding.
//
// Placements never overlap, so parts are copied concurrently.
func Compose(ctx context.Context, size, padding, extrude int, parts []Part) (*image.NRGBA, error) {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	extrude = min(extrude, padding)

	for i, part := range parts {
		if err := checkPart(size, padding, part); err != nil {
			return nil, fmt.Errorf("atlas: compose part %d: %w", i, err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, part := range parts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content := blit(dst, padding, part)
			if extrude > 0 {
				extrudeEdges(dst, content, extrude)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dst, nil
}

func checkPart(size, padding int, p Part) error {
	if p.Image == nil {
		return fmt.Errorf("nil image")
	}
	if !p.Src.In(p.Image.Bounds()) || p.Src.Empty() {
		return fmt.Errorf("source %v outside image %v", p.Src, p.Image.Bounds())
	}
	w, h := p.Src.Dx(), p.Src.Dy()
	if p.Placement.Rotated {
		w, h = h, w
	}
	pl := p.Placement
	if pl.Width != w+2*padding || pl.Height != h+2*padding {
		return fmt.Errorf("placement %dx%d does not match source %dx%d with padding %d",
			pl.Width, pl.Height, p.Src.Dx(), p.Src.Dy(), padding)
	}
	if pl.X < 0 || pl.Y < 0 || pl.X+pl.Width > size || pl.Y+pl.Height > size {
		return fmt.Errorf("placement %+v outside %d atlas", pl, size)
	}
	return nil
}

// blit copies one part and returns the content rectangle it wrote.
func blit(dst *image.NRGBA, padding int, p Part) image.Rectangle {
	ox, oy := p.Placement.X+padding, p.Placement.Y+padding
	w, h := p.Src.Dx(), p.Src.Dy()
	src := p.Image

	if !p.Placement.Rotated {
		for y := 0; y < h; y++ {
			si := src.PixOffset(p.Src.Min.X, p.Src.Min.Y+y)
			di := dst.PixOffset(ox, oy+y)
			copy(dst.Pix[di:di+w*4], src.Pix[si:si+w*4])
		}
		return image.Rect(ox, oy, ox+w, oy+h)
	}

	// Clockwise: source (x, y) lands at (h-1-y, x).
	for y := 0; y < h; y++ {
		si := src.PixOffset(p.Src.Min.X, p.Src.Min.Y+y)
		dx := ox + h - 1 - y
		for x := 0; x < w; x++ {
			di := dst.PixOffset(dx, oy+x)
			copy(dst.Pix[di:di+4], src.Pix[si+x*4:si+x*4+4])
		}
	}
	return image.Rect(ox, oy, ox+h, oy+w)
}

// extrudeEdges repeats the border pixels of r outward by n pixels.
func extrudeEdges(dst *image.NRGBA, r image.Rectangle, n int) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		left := dst.PixOffset(r.Min.X, y)
		right := dst.PixOffset(r.Max.X-1, y)
		for k := 1; k <= n; k++ {
			copy(dst.Pix[left-k*4:left-k*4+4], dst.Pix[left:left+4])
			copy(dst.Pix[right+k*4:right+k*4+4], dst.Pix[right:right+4])
		}
	}

	// Rows last so the corners pick up the extruded columns.
	rowLen := (r.Dx() + 2*n) * 4
	top := dst.PixOffset(r.Min.X-n, r.Min.Y)
	bottom := dst.PixOffset(r.Min.X-n, r.Max.Y-1)
	for k := 1; k <= n; k++ {
		ti := dst.PixOffset(r.Min.X-n, r.Min.Y-k)
		bi := dst.PixOffset(r.Min.X-n, r.Max.Y-1+k)
		copy(dst.Pix[ti:ti+rowLen], dst.Pix[top:top+rowLen])
		copy(dst.Pix[bi:bi+rowLen], dst.Pix[bottom:bottom+rowLen])
	}
}
