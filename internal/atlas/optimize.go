package atlas

import (
	"context"
	"slices"

	"atlaspack/internal/packer"
)

// PackFunc packs the full item set into a size×size bin and reports whether
// every item fitted.
type PackFunc func(size int) ([]packer.Placement, bool)

// Optimize shrinks an already successful packing. Candidates smaller than
// start are tried in descending order with the same pack function; the search
// keeps the smallest size that still fits everything and stops at the first
// size that does not. ctx is checked between attempts only.
func Optimize(ctx context.Context, start int, placements []packer.Placement, candidates []int, pack PackFunc) (int, []packer.Placement, error) {
	smaller := make([]int, 0, len(candidates))
	for _, c := range candidates {
		if c < start && !slices.Contains(smaller, c) {
			smaller = append(smaller, c)
		}
	}
	slices.SortFunc(smaller, func(a, b int) int { return b - a })

	best, bestPlacements := start, placements
	for _, size := range smaller {
		if err := ctx.Err(); err != nil {
			return best, bestPlacements, err
		}
		pl, ok := pack(size)
		if !ok {
			break
		}
		best, bestPlacements = size, pl
	}
	return best, bestPlacements, nil
}
