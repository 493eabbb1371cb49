package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"atlaspack/internal/atlas"
	"atlaspack/internal/texture"
)

func main() {
	threshold := flag.Float64("threshold", atlas.DefaultTrimThreshold, "Alpha threshold in [0,1]")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: trimcheck [-threshold t] image...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		tex, err := texture.LoadTexture(path)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed = true
			continue
		}
		checkAlpha(tex, path)

		b := atlas.Trim(tex, *threshold)
		w, h := tex.Bounds().Dx(), tex.Bounds().Dy()
		if b.Size == image.Pt(1, 1) && b.Offset == (image.Point{}) && !opaqueAt(tex, 0, 0, *threshold) {
			fmt.Printf("  trim: empty (no pixel above %.3f)\n", *threshold)
			continue
		}
		saved := 100 * (1 - float64(b.Size.X*b.Size.Y)/float64(w*h))
		fmt.Printf("  trim: offset=(%d,%d) size=%dx%d saved=%.0f%%\n",
			b.Offset.X, b.Offset.Y, b.Size.X, b.Size.Y, saved)
	}

	if failed {
		os.Exit(1)
	}
}

func opaqueAt(tex *image.NRGBA, x, y int, threshold float64) bool {
	a := tex.Pix[y*tex.Stride+x*4+3]
	return float64(a)/255 > threshold
}

func checkAlpha(tex *image.NRGBA, name string) {
	b := tex.Bounds()
	w, h := b.Dx(), b.Dy()
	var minA, maxA uint8 = 255, 0
	total := 0
	opaque := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := tex.Pix[y*tex.Stride+x*4+3]
			total++
			if a < minA {
				minA = a
			}
			if a > maxA {
				maxA = a
			}
			if a == 255 {
				opaque++
			}
		}
	}
	fmt.Printf("%s: %dx%d, alpha: min=%d max=%d opaque=%d/%d (%.0f%%)\n",
		name, w, h, minA, maxA, opaque, total, 100*float64(opaque)/float64(total))
}
