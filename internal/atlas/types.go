package atlas

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"atlaspack/internal/packer"
)

var (
	// ErrNoFit means no candidate bin size could hold every item.
	ErrNoFit = errors.New("atlas: items do not fit at any candidate size")
	// ErrNoItems means nothing packable was supplied.
	ErrNoItems = errors.New("atlas: no packable items")
	// ErrDuplicateID means two items share an identifier.
	ErrDuplicateID = errors.New("atlas: duplicate item id")
	// ErrInvalidOptions wraps every Options validation failure.
	ErrInvalidOptions = errors.New("atlas: invalid options")
)

// Item is one source image. The ID is opaque to the packer and only needs
// to be unique and stable between runs.
type Item struct {
	ID    string
	Image *image.NRGBA

	// Bounds, when set, is a trim result computed earlier (for example by a
	// concurrent loader) and replaces Build's own trim, whatever threshold
	// produced it. Build trims the image itself when it is nil and ignores it
	// when Options.Trim is off.
	Bounds *TrimBounds
}

// TrimBounds is the tight box around the visible pixels of an image, relative
// to the image's bounds origin.
type TrimBounds struct {
	Offset image.Point
	Size   image.Point
}

// Rect returns the trimmed region in the image's own coordinate space.
func (b TrimBounds) Rect(img image.Rectangle) image.Rectangle {
	origin := img.Min.Add(b.Offset)
	return image.Rectangle{Min: origin, Max: origin.Add(b.Size)}
}

// UVRect is a normalized rectangle. The origin is the atlas top-left corner
// and V grows downward, matching the pixel buffer.
type UVRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Entry describes where one item ended up in the atlas.
type Entry struct {
	UV           UVRect
	OriginalSize image.Point
	// AtlasSize is the content footprint in the atlas, padding excluded.
	// It is swapped relative to the trimmed size when Rotated is set.
	AtlasSize  image.Point
	TrimOffset image.Point
	Trimmed    bool
	// Rotated entries are stored turned 90° clockwise.
	Rotated   bool
	Placement packer.Placement
}

// PixelRect returns the content rectangle in atlas pixels.
func (e Entry) PixelRect() image.Rectangle {
	return image.Rect(0, 0, e.AtlasSize.X, e.AtlasSize.Y).
		Add(image.Pt(e.Placement.X, e.Placement.Y)).
		Add(e.contentOffset())
}

func (e Entry) contentOffset() image.Point {
	return image.Pt((e.Placement.Width-e.AtlasSize.X)/2, (e.Placement.Height-e.AtlasSize.Y)/2)
}

// Attempt records one bin size tried while packing.
type Attempt struct {
	Size   int
	Fitted bool
	// Placed counts the items inserted before the first failure.
	Placed int
}

// Result is a finished atlas.
type Result struct {
	BinSize        int
	Image          *image.NRGBA
	Entries        map[string]Entry
	Order          []string // packing order, deterministic
	Efficiency     float64
	Padding        int
	EstimatedBytes int64
	Algorithm      packer.Algorithm
	Format         PixelFormat
	Mipmaps        bool
	Skipped        []string
	Attempts       []Attempt
}

// SortOrder controls the order items are fed to the packer.
type SortOrder int

const (
	SortArea SortOrder = iota
	SortHeight
	SortNone
)

var sortNames = [...]string{
	SortArea:   "area",
	SortHeight: "height",
	SortNone:   "none",
}

func (s SortOrder) String() string {
	if s < 0 || int(s) >= len(sortNames) {
		return fmt.Sprintf("SortOrder(%d)", int(s))
	}
	return sortNames[s]
}

// ParseSortOrder accepts "area", "height" or "none".
func ParseSortOrder(s string) (SortOrder, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range sortNames {
		if n == name {
			return SortOrder(i), nil
		}
	}
	return 0, fmt.Errorf("atlas: unknown sort order %q", s)
}

func (s SortOrder) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *SortOrder) UnmarshalText(b []byte) error {
	v, err := ParseSortOrder(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Options configures Build.
type Options struct {
	// Sizes lists the allowed square bin sizes. The first entry is tried
	// first; larger entries are fallbacks and smaller ones are optimizer
	// candidates.
	Sizes         []int
	Padding       int
	Extrude       int
	AllowRotation bool
	// Trim enables trimming. Item.Bounds overrides the computed box but not
	// this switch.
	Trim          bool
	TrimThreshold float64
	Algorithm     packer.Algorithm
	Format        PixelFormat
	Mipmaps       bool
	Optimize      bool
	Sort          SortOrder
}

// DefaultTrimThreshold is the alpha (0..1) a pixel must exceed to count as visible.
const DefaultTrimThreshold = 0.01

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Sizes:         []int{1024, 2048, 4096, 512, 256, 128},
		Padding:       2,
		Trim:          true,
		TrimThreshold: DefaultTrimThreshold,
		Algorithm:     packer.MaxRects,
		Format:        RGBA32,
		Optimize:      true,
		Sort:          SortArea,
	}
}

// Validate reports the first problem with o.
func (o Options) Validate() error {
	if len(o.Sizes) == 0 {
		return fmt.Errorf("%w: no bin sizes", ErrInvalidOptions)
	}
	for _, s := range o.Sizes {
		if s <= 0 {
			return fmt.Errorf("%w: bin size %d", ErrInvalidOptions, s)
		}
	}
	if o.Padding < 0 {
		return fmt.Errorf("%w: padding %d", ErrInvalidOptions, o.Padding)
	}
	if o.Extrude < 0 {
		return fmt.Errorf("%w: extrude %d", ErrInvalidOptions, o.Extrude)
	}
	if o.TrimThreshold < 0 || o.TrimThreshold > 1 {
		return fmt.Errorf("%w: trim threshold %v outside [0,1]", ErrInvalidOptions, o.TrimThreshold)
	}
	if _, err := packer.New(o.Algorithm, 1, false); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if !o.Format.valid() {
		return fmt.Errorf("%w: pixel format %v", ErrInvalidOptions, o.Format)
	}
	return nil
}
