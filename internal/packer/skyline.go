package packer

import (
	"fmt"
	"math"
	"slices"
)

// Segment is one span [X, X+Width) of the skyline whose stack top sits at Y.
type Segment struct {
	X, Y, Width int
}

// SkylinePacker keeps a height profile across the bin width and drops each
// rectangle at the lowest position it can rest on (bottom-left rule).
type SkylinePacker struct {
	size      int
	allowFlip bool
	skyline   []Segment
	used      []Placement
}

// NewSkyline creates a packer with a single zero-height segment spanning the bin.
func NewSkyline(size int, allowRotation bool) *SkylinePacker {
	p := &SkylinePacker{size: size, allowFlip: allowRotation}
	p.Reset()
	return p
}

// Reset empties the bin.
func (p *SkylinePacker) Reset() {
	p.skyline = append(p.skyline[:0], Segment{X: 0, Y: 0, Width: p.size})
	p.used = p.used[:0]
}

// Insert places a w×h rectangle at the lowest resting y, breaking ties by
// the smallest x.
func (p *SkylinePacker) Insert(w, h int) (Placement, bool) {
	if w <= 0 || h <= 0 {
		return Placement{}, false
	}

	bestY, bestX := math.MaxInt, math.MaxInt
	bestIndex := -1
	var best Placement

	better := func(y, x int) bool {
		return y < bestY || (y == bestY && x < bestX)
	}

	for i, seg := range p.skyline {
		if y, ok := p.fit(i, w, h); ok && better(y, seg.X) {
			best = Placement{X: seg.X, Y: y, Width: w, Height: h}
			bestY, bestX, bestIndex = y, seg.X, i
		}
		if p.allowFlip && w != h {
			if y, ok := p.fit(i, h, w); ok && better(y, seg.X) {
				best = Placement{X: seg.X, Y: y, Width: h, Height: w, Rotated: true}
				bestY, bestX, bestIndex = y, seg.X, i
			}
		}
	}

	if bestIndex < 0 {
		return Placement{}, false
	}

	p.addLevel(bestIndex, best)
	p.used = append(p.used, best)
	return best, true
}

// Used returns the placements made so far, in insertion order.
func (p *SkylinePacker) Used() []Placement { return p.used }

// Occupancy returns the fraction of the bin covered by used rectangles.
func (p *SkylinePacker) Occupancy() float64 { return occupancy(p.used, p.size) }

// Segments exposes the current skyline. Callers must not modify it.
func (p *SkylinePacker) Segments() []Segment { return p.skyline }

// fit returns the y a w×h rectangle would rest at when its left edge starts
// at segment index.
func (p *SkylinePacker) fit(index, w, h int) (int, bool) {
	x := p.skyline[index].X
	if x+w > p.size {
		return 0, false
	}

	y := p.skyline[index].Y
	widthLeft := w
	for i := index; widthLeft > 0; i++ {
		y = max(y, p.skyline[i].Y)
		if y+h > p.size {
			return 0, false
		}
		widthLeft -= p.skyline[i].Width
	}
	return y, true
}

func (p *SkylinePacker) addLevel(index int, pl Placement) {
	p.skyline = slices.Insert(p.skyline, index, Segment{X: pl.X, Y: pl.Y + pl.Height, Width: pl.Width})

	// Shrink or drop the segments now covered by the new one.
	for i := index + 1; i < len(p.skyline); {
		prev := p.skyline[i-1]
		if p.skyline[i].X >= prev.X+prev.Width {
			break
		}
		shrink := prev.X + prev.Width - p.skyline[i].X
		p.skyline[i].X += shrink
		p.skyline[i].Width -= shrink
		if p.skyline[i].Width > 0 {
			break
		}
		p.skyline = slices.Delete(p.skyline, i, i+1)
	}

	p.mergeSkylines()
	p.checkTiling()
}

func (p *SkylinePacker) mergeSkylines() {
	for i := 0; i < len(p.skyline)-1; {
		if p.skyline[i].Y == p.skyline[i+1].Y {
			p.skyline[i].Width += p.skyline[i+1].Width
			p.skyline = slices.Delete(p.skyline, i+1, i+2)
			continue
		}
		i++
	}
}

// checkTiling panics when the segments stop covering [0, size) exactly.
func (p *SkylinePacker) checkTiling() {
	x := 0
	for i, seg := range p.skyline {
		if seg.X != x || seg.Width <= 0 || seg.Y < 0 || seg.Y > p.size {
			panic(fmt.Sprintf("packer: skyline invariant broken at segment %d: %+v (expected x=%d)", i, seg, x))
		}
		x += seg.Width
	}
	if x != p.size {
		panic(fmt.Sprintf("packer: skyline invariant broken: segments span %d of %d", x, p.size))
	}
}
