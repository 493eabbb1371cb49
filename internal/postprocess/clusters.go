package postprocess

import "image"

// RemoveSmallClusters clears disconnected groups of visible pixels that are
// smaller than minRatio of all visible pixels, so stray specks do not widen
// the trim box. A pixel is visible when its alpha exceeds alphaMin. The input
// is never modified; it is returned as is when nothing needs clearing.
func RemoveSmallClusters(img *image.NRGBA, minRatio float64, alphaMin uint8) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := img.Stride

	// Find visible pixels
	alpha := make([]bool, w*h)
	totalAlpha := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if img.Pix[y*stride+x*4+3] > alphaMin {
				alpha[y*w+x] = true
				totalAlpha++
			}
		}
	}

	if totalAlpha == 0 {
		return img
	}

	// 8-connected flood fill BFS
	labels := make([]int, w*h)
	for i := range labels {
		labels[i] = -1
	}
	var compSizes []int
	compID := 0

	dx := [8]int{-1, 0, 1, -1, 1, -1, 0, 1}
	dy := [8]int{-1, -1, -1, 0, 0, 1, 1, 1}

	queue := make([]int, 0, 1024)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if !alpha[idx] || labels[idx] >= 0 {
				continue
			}

			queue = append(queue[:0], idx)
			labels[idx] = compID
			size := 0

			for head := 0; head < len(queue); head++ {
				curr := queue[head]
				size++

				cy := curr / w
				cx := curr % w
				for d := 0; d < 8; d++ {
					nx := cx + dx[d]
					ny := cy + dy[d]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					ni := ny*w + nx
					if alpha[ni] && labels[ni] < 0 {
						labels[ni] = compID
						queue = append(queue, ni)
					}
				}
			}

			compSizes = append(compSizes, size)
			compID++
		}
	}

	if compID <= 1 {
		return img
	}

	minSize := int(float64(totalAlpha) * minRatio)
	removed := false

	result := image.NewNRGBA(b)
	for y := 0; y < h; y++ {
		copy(result.Pix[y*result.Stride:y*result.Stride+w*4], img.Pix[y*stride:y*stride+w*4])
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if labels[idx] >= 0 && compSizes[labels[idx]] < minSize {
				i := y*result.Stride + x*4
				result.Pix[i] = 0
				result.Pix[i+1] = 0
				result.Pix[i+2] = 0
				result.Pix[i+3] = 0
				removed = true
			}
		}
	}

	if !removed {
		return img
	}
	return result
}
