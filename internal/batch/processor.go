package batch

import (
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"atlaspack/internal/atlas"
	"atlaspack/internal/postprocess"
	"atlaspack/internal/texture"

	"github.com/schollz/progressbar/v3"
)

// Config holds all shared resources for a load run.
type Config struct {
	TexResolver texture.Resolver
	Workers     int

	// MaxSpriteSize downscales sources whose longer side exceeds it. 0 disables.
	MaxSpriteSize int
	// Despeckle clears alpha clusters smaller than this fraction of the
	// visible pixels before trimming. 0 disables.
	Despeckle     float64
	Trim          bool
	TrimThreshold float64

	// Progress receives a progress bar when non-nil.
	Progress io.Writer
}

// Result holds the outcome of preparing one sprite.
type Result struct {
	ID      string
	Item    atlas.Item
	Success bool
	Error   string
}

// Run loads and prepares all sprites using a worker pool. Results keep the
// order of ids.
func Run(cfg Config, ids []string) []Result {
	total := len(ids)
	results := make([]Result, total)

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	var bar *progressbar.ProgressBar
	if cfg.Progress != nil {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(cfg.Progress),
			progressbar.OptionSetDescription("loading sprites"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("sprites"),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	// Worker pool
	idChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range idChan {
				results[idx] = processSprite(cfg, ids[idx])
				if bar != nil {
					bar.Add(1)
				}
			}
		}()
	}

	// Send work
	for i := range ids {
		idChan <- i
	}
	close(idChan)

	wg.Wait()
	if bar != nil {
		bar.Finish()
	}

	return results
}

func processSprite(cfg Config, id string) Result {
	img, err := cfg.TexResolver.Resolve(id)
	if err != nil {
		return Result{ID: id, Error: err.Error()}
	}
	if img == nil || img.Bounds().Empty() {
		return Result{ID: id, Error: "empty image"}
	}

	if cfg.MaxSpriteSize > 0 {
		img = postprocess.Downscale(img, cfg.MaxSpriteSize)
	}

	if cfg.Despeckle > 0 {
		img = postprocess.RemoveSmallClusters(img, cfg.Despeckle, alphaCutoff(cfg.TrimThreshold))
	}

	bounds := atlas.TrimBounds{Size: img.Bounds().Size()}
	if cfg.Trim {
		bounds = atlas.Trim(img, cfg.TrimThreshold)
	}

	return Result{
		ID:      id,
		Item:    atlas.Item{ID: id, Image: img, Bounds: &bounds},
		Success: true,
	}
}

// alphaCutoff converts a 0..1 threshold to the largest 8-bit alpha that is
// still treated as invisible.
func alphaCutoff(threshold float64) uint8 {
	if threshold <= 0 {
		return 0
	}
	if threshold >= 1 {
		return 255
	}
	return uint8(threshold * 255)
}

// Items splits results into packable items and failures.
func Items(results []Result) ([]atlas.Item, []Result) {
	var items []atlas.Item
	var failed []Result
	for _, r := range results {
		if r.Success {
			items = append(items, r.Item)
		} else {
			failed = append(failed, r)
		}
	}
	return items, failed
}

// Summary formats a one-line count of a run.
func Summary(results []Result) string {
	ok := 0
	px := 0
	for _, r := range results {
		if r.Success {
			ok++
			px += area(r.Item.Image.Bounds())
		}
	}
	return fmt.Sprintf("%d/%d sprites loaded, %d source pixels", ok, len(results), px)
}

func area(r image.Rectangle) int { return r.Dx() * r.Dy() }
