package batch

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"testing"
)

type mapResolver map[string]*image.NRGBA

func (m mapResolver) Resolve(id string) (*image.NRGBA, error) {
	img, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("no such sprite %q", id)
	}
	return img, nil
}

func spriteWithBox(w, h int, box image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	return img
}

func TestRun(t *testing.T) {
	res := mapResolver{}
	var ids []string
	for i := 0; i < 25; i++ {
		id := fmt.Sprintf("s%02d", i)
		res[id] = spriteWithBox(32, 32, image.Rect(i%10, 2, 20, 20))
		ids = append(ids, id)
	}
	ids = append(ids, "missing")

	var progress bytes.Buffer
	results := Run(Config{
		TexResolver:   res,
		Workers:       4,
		Trim:          true,
		TrimThreshold: 0.01,
		Progress:      &progress,
	}, ids)

	if len(results) != len(ids) {
		t.Fatalf("%d results for %d ids", len(results), len(ids))
	}
	for i, r := range results {
		if r.ID != ids[i] {
			t.Fatalf("result %d is %q, want %q", i, r.ID, ids[i])
		}
	}

	items, failed := Items(results)
	if len(items) != 25 || len(failed) != 1 || failed[0].ID != "missing" {
		t.Fatalf("items=%d failed=%v", len(items), failed)
	}
	b := items[3].Bounds
	if b == nil || b.Offset != image.Pt(3, 2) || b.Size != image.Pt(17, 18) {
		t.Fatalf("bounds = %+v", b)
	}
	if Summary(results) != "25/26 sprites loaded, 25600 source pixels" {
		t.Fatalf("Summary() = %q", Summary(results))
	}
	if progress.Len() == 0 {
		t.Error("no progress output")
	}
}

func TestRunPreprocess(t *testing.T) {
	big := spriteWithBox(200, 100, image.Rect(0, 0, 200, 100))
	specked := spriteWithBox(40, 40, image.Rect(10, 10, 30, 30))
	specked.SetNRGBA(39, 39, color.NRGBA{R: 255, A: 255})

	results := Run(Config{
		TexResolver:   mapResolver{"big": big, "specked": specked},
		Workers:       2,
		MaxSpriteSize: 50,
		Despeckle:     0.02,
		Trim:          true,
		TrimThreshold: 0.01,
	}, []string{"big", "specked"})

	items, failed := Items(results)
	if len(failed) != 0 {
		t.Fatalf("failed: %+v", failed)
	}
	if got := items[0].Image.Bounds().Size(); got != image.Pt(50, 25) {
		t.Errorf("downscaled size = %v, want 50x25", got)
	}
	if got := *items[1].Bounds; got.Offset != image.Pt(10, 10) || got.Size != image.Pt(20, 20) {
		t.Errorf("despeckled bounds = %+v, want the 20x20 box", got)
	}
}

func TestRunNoTrim(t *testing.T) {
	results := Run(Config{
		TexResolver: mapResolver{"a": spriteWithBox(16, 8, image.Rect(4, 4, 6, 6))},
	}, []string{"a"})
	if !results[0].Success {
		t.Fatal(results[0].Error)
	}
	if got := results[0].Item.Bounds.Size; got != image.Pt(16, 8) {
		t.Fatalf("untrimmed size = %v", got)
	}
}

func TestAlphaCutoff(t *testing.T) {
	for _, tt := range []struct {
		in   float64
		want uint8
	}{{-1, 0}, {0, 0}, {0.01, 2}, {0.5, 127}, {1, 255}} {
		if got := alphaCutoff(tt.in); got != tt.want {
			t.Errorf("alphaCutoff(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
