package atlas

import "image"

// Trim finds the smallest box holding every pixel whose alpha, scaled to
// 0..1, exceeds threshold. A fully transparent image yields a 1×1 box at the
// origin so downstream stages never see an empty region.
func Trim(img *image.NRGBA, threshold float64) TrimBounds {
	degenerate := TrimBounds{Size: image.Pt(1, 1)}
	if img == nil {
		return degenerate
	}
	threshold = clamp01(threshold)

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	minX, minY := w, h
	maxX, maxY := -1, -1

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			if float64(row[x*4+3])/255.0 <= threshold {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			maxY = y
		}
	}

	if maxX < 0 {
		return degenerate
	}
	return TrimBounds{
		Offset: image.Pt(minX, minY),
		Size:   image.Pt(maxX-minX+1, maxY-minY+1),
	}
}

// wholeBounds is the no-trim result: the full image.
func wholeBounds(img *image.NRGBA) TrimBounds {
	return TrimBounds{Size: img.Bounds().Size()}
}

// valid reports whether b fits inside an image of the given size.
func (b TrimBounds) valid(size image.Point) bool {
	return b.Size.X >= 1 && b.Size.Y >= 1 &&
		b.Offset.X >= 0 && b.Offset.Y >= 0 &&
		b.Offset.X+b.Size.X <= size.X && b.Offset.Y+b.Size.Y <= size.Y
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
