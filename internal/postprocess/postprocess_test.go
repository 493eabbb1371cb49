package postprocess

import (
	"image"
	"image/color"
	"testing"
)

func fill(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func TestDownscale(t *testing.T) {
	tests := []struct {
		w, h, max int
		wantW     int
		wantH     int
	}{
		{200, 100, 50, 50, 25},
		{100, 200, 50, 25, 50},
		{300, 3, 100, 100, 1},
		{64, 64, 32, 32, 32},
	}
	for _, tt := range tests {
		img := image.NewNRGBA(image.Rect(0, 0, tt.w, tt.h))
		fill(img, img.Bounds(), color.NRGBA{R: 10, G: 200, B: 30, A: 255})
		got := Downscale(img, tt.max)
		if b := got.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
			t.Errorf("Downscale(%dx%d, %d) = %v, want %dx%d", tt.w, tt.h, tt.max, b, tt.wantW, tt.wantH)
			continue
		}
		c := got.NRGBAAt(got.Bounds().Dx()/2, got.Bounds().Dy()/2)
		if c.A != 255 || c.G < 190 {
			t.Errorf("center pixel %v, want opaque green", c)
		}
	}

	small := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	if Downscale(small, 10) != small || Downscale(small, 0) != small {
		t.Error("images within the limit must be returned unchanged")
	}
}

func TestRemoveSmallClusters(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	fill(img, image.Rect(5, 5, 15, 15), red)
	img.SetNRGBA(0, 19, red)

	got := RemoveSmallClusters(img, 0.02, 0)
	if got == img {
		t.Fatal("speck not removed")
	}
	if a := got.NRGBAAt(0, 19).A; a != 0 {
		t.Errorf("speck alpha = %d, want 0", a)
	}
	if got.NRGBAAt(10, 10) != red {
		t.Error("main cluster damaged")
	}
	if img.NRGBAAt(0, 19) != red {
		t.Error("input was modified")
	}

	single := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	fill(single, image.Rect(1, 1, 4, 4), red)
	if RemoveSmallClusters(single, 0.02, 0) != single {
		t.Error("single cluster should be returned unchanged")
	}

	// Two equal clusters are both above the ratio.
	pair := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	fill(pair, image.Rect(0, 0, 3, 3), red)
	fill(pair, image.Rect(6, 6, 9, 9), red)
	if RemoveSmallClusters(pair, 0.02, 0) != pair {
		t.Error("no cluster is small, image should be unchanged")
	}
}
