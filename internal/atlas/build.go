package atlas

import (
	"cmp"
	"context"
	"fmt"
	"image"
	"slices"

	"atlaspack/internal/packer"
)

// prepared is an accepted item with its trim result and padded request.
type prepared struct {
	item   Item
	bounds TrimBounds
	req    packer.Request
}

// Build trims, packs and composites items into one square atlas.
//
// The first entry of opts.Sizes is tried first. If it is too small the larger
// candidates are tried in ascending order; if none fits, the returned error
// wraps ErrNoFit. With opts.Optimize the smaller candidates are then searched
// for a tighter fit. Items with no pixels are skipped and listed in
// Result.Skipped rather than failing the batch.
func Build(ctx context.Context, items []Item, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	log := Logger()

	var skipped []string
	seen := make(map[string]bool, len(items))
	work := make([]prepared, 0, len(items))
	for _, it := range items {
		if seen[it.ID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, it.ID)
		}
		seen[it.ID] = true

		if degenerate(it) {
			log.Warn("skipping degenerate image", "id", it.ID)
			skipped = append(skipped, it.ID)
			continue
		}
		bounds := boundsFor(it, opts)
		work = append(work, prepared{
			item:   it,
			bounds: bounds,
			req: packer.Request{
				Width:  bounds.Size.X + 2*opts.Padding,
				Height: bounds.Size.Y + 2*opts.Padding,
			},
		})
	}
	if len(work) == 0 {
		return nil, ErrNoItems
	}
	sortPrepared(work, opts.Sort)

	reqs := make([]packer.Request, len(work))
	for i, p := range work {
		reqs[i] = p.req
	}

	var attempts []Attempt
	pack := func(size int) ([]packer.Placement, bool) {
		p, err := packer.New(opts.Algorithm, size, opts.AllowRotation)
		if err != nil {
			// Options.Validate already accepted the algorithm.
			panic(err)
		}
		placements, failed, ok := packer.PackAll(p, reqs)
		attempts = append(attempts, Attempt{Size: size, Fitted: ok, Placed: len(placements)})
		if ok {
			log.Debug("packed", "size", size, "items", len(placements), "occupancy", p.Occupancy())
		} else {
			log.Debug("did not fit", "size", size, "placed", len(placements), "failed_id", work[failed].item.ID)
		}
		return placements, ok
	}

	sizes := dedupe(opts.Sizes)
	size, placements, err := packFirstFit(ctx, sizes, pack)
	if err != nil {
		return nil, err
	}

	// After escalation every candidate below size has already failed, so
	// only a first-try fit can shrink.
	if opts.Optimize && size == sizes[0] {
		size, placements, err = Optimize(ctx, size, placements, sizes, pack)
		if err != nil {
			return nil, err
		}
	}

	if err := packer.Validate(size, placements); err != nil {
		panic(fmt.Sprintf("atlas: packer produced an invalid layout: %v", err))
	}

	parts := make([]Part, len(work))
	for i, p := range work {
		parts[i] = Part{
			Image:     p.item.Image,
			Src:       p.bounds.Rect(p.item.Image.Bounds()),
			Placement: placements[i],
		}
	}
	img, err := Compose(ctx, size, opts.Padding, opts.Extrude, parts)
	if err != nil {
		return nil, err
	}

	res := &Result{
		BinSize:   size,
		Image:     img,
		Entries:   make(map[string]Entry, len(work)),
		Order:     make([]string, len(work)),
		Padding:   opts.Padding,
		Algorithm: opts.Algorithm,
		Format:    opts.Format,
		Mipmaps:   opts.Mipmaps,
		Skipped:   skipped,
		Attempts:  attempts,
	}
	for i, p := range work {
		res.Entries[p.item.ID] = newEntry(p, placements[i], size, opts.Padding)
		res.Order[i] = p.item.ID
	}
	res.Efficiency = Efficiency(res.Entries)
	res.EstimatedBytes = EstimateBytes(size, size, opts.Format, opts.Mipmaps)

	log.Info("atlas built", "size", size, "items", len(work), "efficiency", res.Efficiency,
		"algorithm", opts.Algorithm.String(), "estimated_bytes", res.EstimatedBytes)
	return res, nil
}

// packFirstFit tries sizes[0], then every larger candidate in ascending order.
func packFirstFit(ctx context.Context, sizes []int, pack PackFunc) (int, []packer.Placement, error) {
	primary := sizes[0]
	if pl, ok := pack(primary); ok {
		return primary, pl, nil
	}

	var larger []int
	for _, s := range sizes[1:] {
		if s > primary {
			larger = append(larger, s)
		}
	}
	slices.Sort(larger)

	tried := primary
	for _, s := range larger {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		tried = s
		if pl, ok := pack(s); ok {
			return s, pl, nil
		}
	}
	return 0, nil, fmt.Errorf("%w (largest tried %d)", ErrNoFit, tried)
}

func newEntry(p prepared, pl packer.Placement, size, padding int) Entry {
	atlasW, atlasH := p.bounds.Size.X, p.bounds.Size.Y
	if pl.Rotated {
		atlasW, atlasH = atlasH, atlasW
	}
	s := float64(size)
	orig := p.item.Image.Bounds().Size()
	return Entry{
		UV: UVRect{
			X: float64(pl.X+padding) / s,
			Y: float64(pl.Y+padding) / s,
			W: float64(atlasW) / s,
			H: float64(atlasH) / s,
		},
		OriginalSize: orig,
		AtlasSize:    image.Pt(atlasW, atlasH),
		TrimOffset:   p.bounds.Offset,
		Trimmed:      p.bounds.Size != orig,
		Rotated:      pl.Rotated,
		Placement:    pl,
	}
}

func boundsFor(it Item, opts Options) TrimBounds {
	if !opts.Trim {
		return wholeBounds(it.Image)
	}
	if it.Bounds != nil && it.Bounds.valid(it.Image.Bounds().Size()) {
		return *it.Bounds
	}
	return Trim(it.Image, opts.TrimThreshold)
}

func degenerate(it Item) bool {
	if it.Image == nil {
		return true
	}
	b := it.Image.Bounds()
	return b.Dx() <= 0 || b.Dy() <= 0 || len(it.Image.Pix) == 0
}

func sortPrepared(work []prepared, order SortOrder) {
	switch order {
	case SortArea:
		slices.SortStableFunc(work, func(a, b prepared) int {
			return cmp.Or(
				cmp.Compare(b.req.Width*b.req.Height, a.req.Width*a.req.Height),
				cmp.Compare(max(b.req.Width, b.req.Height), max(a.req.Width, a.req.Height)),
				cmp.Compare(a.item.ID, b.item.ID),
			)
		})
	case SortHeight:
		slices.SortStableFunc(work, func(a, b prepared) int {
			return cmp.Or(
				cmp.Compare(b.req.Height, a.req.Height),
				cmp.Compare(b.req.Width, a.req.Width),
				cmp.Compare(a.item.ID, b.item.ID),
			)
		})
	}
}

func dedupe(sizes []int) []int {
	out := make([]int, 0, len(sizes))
	for _, s := range sizes {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
