package packer

import (
	"fmt"
	"strings"
)

// Algorithm selects a packing strategy.
type Algorithm int

const (
	MaxRects Algorithm = iota
	Skyline
	GridScan
)

var algorithmNames = [...]string{
	MaxRects: "maxrects",
	Skyline:  "skyline",
	GridScan: "gridscan",
}

func (a Algorithm) String() string {
	if a < 0 || int(a) >= len(algorithmNames) {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return algorithmNames[a]
}

// ParseAlgorithm accepts the lowercase names produced by String.
func ParseAlgorithm(s string) (Algorithm, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, "_", "")
	for i, n := range algorithmNames {
		if n == name {
			return Algorithm(i), nil
		}
	}
	return 0, fmt.Errorf("packer: unknown algorithm %q", s)
}

func (a Algorithm) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Algorithm) UnmarshalText(b []byte) error {
	v, err := ParseAlgorithm(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Rect is an axis-aligned integer rectangle in bin pixel space.
type Rect struct {
	X, Y, Width, Height int
}

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }
func (r Rect) Area() int   { return r.Width * r.Height }

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Intersects reports whether r and o share any area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Placement is where one request landed. Width and Height are the footprint
// in the bin, already swapped when Rotated is set.
type Placement struct {
	X, Y          int
	Width, Height int
	Rotated       bool
}

// Rect returns the occupied footprint.
func (p Placement) Rect() Rect {
	return Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}

// Request is one padded size to place.
type Request struct {
	Width, Height int
}

// Packer places rectangles into a fixed square bin. Insert returns false when
// the request cannot be placed at the current state; that is a normal outcome.
type Packer interface {
	Insert(w, h int) (Placement, bool)
	Used() []Placement
	Occupancy() float64
}

// New returns a fresh packer of the given algorithm for a size×size bin.
func New(alg Algorithm, size int, allowRotation bool) (Packer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("packer: invalid bin size %d", size)
	}
	switch alg {
	case MaxRects:
		return NewMaxRects(size, allowRotation), nil
	case Skyline:
		return NewSkyline(size, allowRotation), nil
	case GridScan:
		return NewGridScan(size, allowRotation), nil
	}
	return nil, fmt.Errorf("packer: unknown algorithm %v", alg)
}

// PackAll inserts every request in order. On failure it returns the
// placements made so far and the index of the request that did not fit.
func PackAll(p Packer, reqs []Request) ([]Placement, int, bool) {
	out := make([]Placement, 0, len(reqs))
	for i, r := range reqs {
		pl, ok := p.Insert(r.Width, r.Height)
		if !ok {
			return out, i, false
		}
		out = append(out, pl)
	}
	return out, -1, true
}

// Validate checks that every placement lies inside the bin and that no two
// placements overlap.
func Validate(size int, placements []Placement) error {
	bin := Rect{Width: size, Height: size}
	for i, p := range placements {
		r := p.Rect()
		if r.Width <= 0 || r.Height <= 0 {
			return fmt.Errorf("packer: placement %d has empty footprint %+v", i, r)
		}
		if !bin.Contains(r) {
			return fmt.Errorf("packer: placement %d %+v outside %dx%d bin", i, r, size, size)
		}
		for j := i + 1; j < len(placements); j++ {
			if r.Intersects(placements[j].Rect()) {
				return fmt.Errorf("packer: placements %d and %d overlap", i, j)
			}
		}
	}
	return nil
}

func occupancy(used []Placement, size int) float64 {
	if size <= 0 {
		return 0
	}
	area := 0
	for _, p := range used {
		area += p.Width * p.Height
	}
	return float64(area) / float64(size*size)
}
