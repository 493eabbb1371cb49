package packer

// GridScanPacker is the brute-force baseline: it scans candidate origins
// row-major and accepts the first one that collides with nothing.
type GridScanPacker struct {
	size      int
	allowFlip bool
	used      []Placement
}

// NewGridScan creates an empty grid-scan packer.
func NewGridScan(size int, allowRotation bool) *GridScanPacker {
	return &GridScanPacker{size: size, allowFlip: allowRotation}
}

// Reset empties the bin.
func (p *GridScanPacker) Reset() { p.used = p.used[:0] }

// Insert tries the upright orientation over the whole bin before trying the
// rotated one.
func (p *GridScanPacker) Insert(w, h int) (Placement, bool) {
	if w <= 0 || h <= 0 {
		return Placement{}, false
	}

	pl, ok := p.scan(w, h)
	if !ok && p.allowFlip && w != h {
		pl, ok = p.scan(h, w)
		pl.Rotated = ok
	}
	if !ok {
		return Placement{}, false
	}
	p.used = append(p.used, pl)
	return pl, true
}

// Used returns the placements made so far, in insertion order.
func (p *GridScanPacker) Used() []Placement { return p.used }

// Occupancy returns the fraction of the bin covered by used rectangles.
func (p *GridScanPacker) Occupancy() float64 { return occupancy(p.used, p.size) }

func (p *GridScanPacker) scan(w, h int) (Placement, bool) {
	for y := 0; y+h <= p.size; y++ {
		for x := 0; x+w <= p.size; {
			c := p.collide(Rect{X: x, Y: y, Width: w, Height: h})
			if c < 0 {
				return Placement{X: x, Y: y, Width: w, Height: h}, true
			}
			// Every origin left of the collider's right edge hits it too.
			x = p.used[c].X + p.used[c].Width
		}
	}
	return Placement{}, false
}

func (p *GridScanPacker) collide(r Rect) int {
	for i, u := range p.used {
		if r.Intersects(u.Rect()) {
			return i
		}
	}
	return -1
}
