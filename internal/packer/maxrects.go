package packer

import (
	"fmt"
	"math"
)

// MaxRectsPacker implements the MaxRects algorithm with the best-area-fit
// heuristic. Free rectangles may overlap each other; used rectangles are kept
// in a separate list and never re-enter the free list.
type MaxRectsPacker struct {
	size      int
	allowFlip bool
	free      []Rect
	scratch   []Rect
	used      []Placement
}

// NewMaxRects creates a packer whose free list is one rectangle covering the bin.
func NewMaxRects(size int, allowRotation bool) *MaxRectsPacker {
	p := &MaxRectsPacker{size: size, allowFlip: allowRotation}
	p.Reset()
	return p
}

// Reset empties the bin.
func (p *MaxRectsPacker) Reset() {
	p.free = append(p.free[:0], Rect{Width: p.size, Height: p.size})
	p.scratch = p.scratch[:0]
	p.used = p.used[:0]
}

// Insert places a w×h rectangle at the free position that leaves the least
// unused area in its host free rectangle. Ties keep the first candidate found.
func (p *MaxRectsPacker) Insert(w, h int) (Placement, bool) {
	if w <= 0 || h <= 0 {
		return Placement{}, false
	}

	node, ok := p.findBestAreaFit(w, h)
	if !ok {
		return Placement{}, false
	}

	p.placeRect(node.Rect())
	p.used = append(p.used, node)
	return node, true
}

// Used returns the placements made so far, in insertion order.
func (p *MaxRectsPacker) Used() []Placement { return p.used }

// Occupancy returns the fraction of the bin covered by used rectangles.
func (p *MaxRectsPacker) Occupancy() float64 { return occupancy(p.used, p.size) }

// FreeRects exposes the current free list. Callers must not modify it.
func (p *MaxRectsPacker) FreeRects() []Rect { return p.free }

func (p *MaxRectsPacker) findBestAreaFit(w, h int) (Placement, bool) {
	var best Placement
	bestLeftover := math.MaxInt
	found := false

	for _, fr := range p.free {
		leftover := fr.Area() - w*h

		if fr.Width >= w && fr.Height >= h && leftover < bestLeftover {
			best = Placement{X: fr.X, Y: fr.Y, Width: w, Height: h}
			bestLeftover = leftover
			found = true
		}

		// Square requests gain nothing from turning.
		if p.allowFlip && w != h && fr.Width >= h && fr.Height >= w && leftover < bestLeftover {
			best = Placement{X: fr.X, Y: fr.Y, Width: h, Height: w, Rotated: true}
			bestLeftover = leftover
			found = true
		}
	}
	return best, found
}

func (p *MaxRectsPacker) placeRect(node Rect) {
	if !(Rect{Width: p.size, Height: p.size}).Contains(node) {
		panic(fmt.Sprintf("packer: maxrects placement %+v outside %d bin", node, p.size))
	}

	p.scratch = p.scratch[:0]
	for i := 0; i < len(p.free); {
		if !p.free[i].Intersects(node) {
			i++
			continue
		}
		p.scratch = splitFreeRect(p.scratch, p.free[i], node)

		// Swap-remove; the moved entry is visited on the next pass at i.
		last := len(p.free) - 1
		p.free[i] = p.free[last]
		p.free = p.free[:last]
	}
	p.free = append(p.free, p.scratch...)
	p.pruneFreeList()
}

// splitFreeRect appends the maximal leftovers of fr around used. Horizontal
// and vertical remainders are computed independently, so they may overlap.
func splitFreeRect(dst []Rect, fr, used Rect) []Rect {
	if used.Y > fr.Y {
		dst = append(dst, Rect{X: fr.X, Y: fr.Y, Width: fr.Width, Height: used.Y - fr.Y})
	}
	if used.Bottom() < fr.Bottom() {
		dst = append(dst, Rect{X: fr.X, Y: used.Bottom(), Width: fr.Width, Height: fr.Bottom() - used.Bottom()})
	}
	if used.X > fr.X {
		dst = append(dst, Rect{X: fr.X, Y: fr.Y, Width: used.X - fr.X, Height: fr.Height})
	}
	if used.Right() < fr.Right() {
		dst = append(dst, Rect{X: used.Right(), Y: fr.Y, Width: fr.Right() - used.Right(), Height: fr.Height})
	}
	return dst
}

// pruneFreeList drops every free rectangle contained in another one.
func (p *MaxRectsPacker) pruneFreeList() {
	for i := 0; i < len(p.free); i++ {
		for j := i + 1; j < len(p.free); {
			if p.free[i].Contains(p.free[j]) {
				last := len(p.free) - 1
				p.free[j] = p.free[last]
				p.free = p.free[:last]
				continue
			}
			if p.free[j].Contains(p.free[i]) {
				last := len(p.free) - 1
				p.free[i] = p.free[last]
				p.free = p.free[:last]
				i--
				break
			}
			j++
		}
	}
}
