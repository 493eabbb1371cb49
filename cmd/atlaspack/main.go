package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"atlaspack/internal/atlas"
	"atlaspack/internal/batch"
	"atlaspack/internal/config"
	"atlaspack/internal/export"
	"atlaspack/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a .json, .yaml or .toml config file")
	inputDir := flag.String("input", "", "Directory of sprite images")
	outputDir := flag.String("output", "", "Output directory (default: .)")
	name := flag.String("name", "", "Base name for the atlas image and manifest (default: atlas)")
	sizes := flag.String("sizes", "", "Comma-separated bin sizes, first is tried first (default: 1024,2048,4096,512,256,128)")
	padding := flag.Int("padding", -1, "Pixels of padding around each sprite (default: 2)")
	rotate := flag.Bool("rotate", false, "Allow 90 degree rotation")
	algorithm := flag.String("algorithm", "", "maxrects, skyline or gridscan (default: maxrects)")
	format := flag.String("format", "", "Pixel format for the size estimate (default: rgba32)")
	imageFormat := flag.String("image-format", "", "png or webp (default: png)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	preview := flag.Bool("preview", false, "Also write <name>_layout.png showing the placements")
	verbose := flag.Bool("v", false, "Log every packing attempt")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	atlas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	err := cfg.Resolve(config.Flags{
		InputDir:    *inputDir,
		OutputDir:   *outputDir,
		Name:        *name,
		Sizes:       *sizes,
		Padding:     *padding,
		Rotate:      *rotate,
		Algorithm:   *algorithm,
		Format:      *format,
		ImageFormat: *imageFormat,
		Workers:     *workers,
	})
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Build texture index
	texIndex, err := texture.BuildIndex(cfg.InputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error indexing sprites: %v\n", err)
		os.Exit(1)
	}
	if texIndex.Len() == 0 {
		fmt.Println("No sprites to pack.")
		os.Exit(0)
	}
	texCache := texture.NewCache(texIndex)

	opts := cfg.Options()
	fmt.Printf("Sprites: %d, Workers: %d\n", texIndex.Len(), cfg.Workers)
	fmt.Printf("Algorithm: %s, Sizes: %v, Padding: %d\n", opts.Algorithm, opts.Sizes, opts.Padding)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	// Load and prepare sprites
	results := batch.Run(batch.Config{
		TexResolver:   texCache,
		Workers:       cfg.Workers,
		MaxSpriteSize: cfg.MaxSpriteSize,
		Despeckle:     cfg.Despeckle,
		Trim:          opts.Trim,
		TrimThreshold: opts.TrimThreshold,
		Progress:      os.Stderr,
	}, texIndex.IDs())
	items, failed := batch.Items(results)
	fmt.Println(batch.Summary(results))

	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		limit := min(len(failed), 20)
		for _, r := range failed[:limit] {
			fmt.Printf("  %s: %s\n", r.ID, r.Error)
		}
	}

	// Pack
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := atlas.Build(ctx, items, opts)
	if err != nil {
		if errors.Is(err, atlas.ErrNoFit) {
			fmt.Fprintf(os.Stderr, "Error: sprites do not fit in any of %v\n", opts.Sizes)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}

	// Write outputs
	imgFormat, err := export.ParseImageFormat(cfg.ImageFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
	imageName := cfg.Name + imgFormat.Ext()
	imagePath := filepath.Join(cfg.OutputDir, imageName)
	if err := export.WriteImage(imagePath, res.Image, imgFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
	manifestPath := filepath.Join(cfg.OutputDir, cfg.Name+".json")
	if err := export.WriteManifest(manifestPath, res, imageName); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}

	if *preview {
		previewPath := filepath.Join(cfg.OutputDir, cfg.Name+"_layout.png")
		if err := export.WriteLayoutPreview(previewPath, res, 2048); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else {
			fmt.Printf("Preview: %s\n", previewPath)
		}
	}

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())
	printReport(os.Stdout, res, imagePath)
	fmt.Printf("Manifest: %s\n", manifestPath)

	if len(failed) > 0 {
		stop()
		os.Exit(1)
	}
}

// printReport writes the per-atlas summary lines.
func printReport(w io.Writer, res *atlas.Result, imagePath string) {
	fmt.Fprintf(w, "Atlas: %s (%dx%d, %d sprites)\n", imagePath, res.BinSize, res.BinSize, len(res.Entries))
	fmt.Fprintf(w, "Efficiency: %.1f%%\n", res.Efficiency*100)
	fmt.Fprintf(w, "Estimated size: %.2f MiB as %s", float64(res.EstimatedBytes)/(1<<20), res.Format)
	if res.Mipmaps {
		fmt.Fprint(w, " with mipmaps")
	}
	fmt.Fprintln(w)
	if len(res.Skipped) > 0 {
		// Nil, zero-size or empty-buffer inputs; transparent images are packed.
		fmt.Fprintf(w, "Skipped (degenerate input): %d\n", len(res.Skipped))
	}
}
