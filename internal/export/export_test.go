package export

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"atlaspack/internal/atlas"

	"golang.org/x/image/webp"
)

func buildResult(t *testing.T) *atlas.Result {
	t.Helper()
	mk := func(w, h int, c color.NRGBA) *image.NRGBA {
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetNRGBA(x, y, c)
			}
		}
		return img
	}
	opts := atlas.DefaultOptions()
	opts.Sizes = []int{64}
	opts.Optimize = false
	res, err := atlas.Build(context.Background(), []atlas.Item{
		{ID: "zeta", Image: mk(10, 12, color.NRGBA{R: 255, A: 255})},
		{ID: "alpha", Image: mk(20, 8, color.NRGBA{G: 255, A: 255})},
		{ID: "mid", Image: mk(6, 6, color.NRGBA{B: 255, A: 255})},
	}, opts)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestManifestRoundTrip(t *testing.T) {
	res := buildResult(t)
	path := filepath.Join(t.TempDir(), "atlas.json")
	if err := WriteManifest(path, res, "atlas.png"); err != nil {
		t.Fatal(err)
	}

	m, err := ReadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Image != "atlas.png" || m.BinSize != 64 || m.Algorithm != "maxrects" || m.Format != "rgba32" {
		t.Fatalf("manifest header = %+v", m)
	}
	if len(m.Entries) != 3 {
		t.Fatalf("%d entries", len(m.Entries))
	}
	for i, want := range []string{"alpha", "mid", "zeta"} {
		if m.Entries[i].ID != want {
			t.Fatalf("entry %d = %q, want %q", i, m.Entries[i].ID, want)
		}
	}
	for _, e := range m.Entries {
		if e.UV != res.Entries[e.ID].UV {
			t.Errorf("%s: uv %+v, want %+v", e.ID, e.UV, res.Entries[e.ID].UV)
		}
	}
	if m.Entries[0].Original != (Size{W: 20, H: 8}) {
		t.Errorf("alpha original = %+v", m.Entries[0].Original)
	}

	if _, err := ReadManifest(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for a missing manifest")
	}
}

func TestWriteImage(t *testing.T) {
	res := buildResult(t)
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "out", "atlas.png")
	if err := WriteImage(pngPath, res.Image, PNG); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	got, err := png.Decode(f)
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds() != res.Image.Bounds() {
		t.Fatalf("png bounds = %v", got.Bounds())
	}

	webpPath := filepath.Join(dir, "atlas.webp")
	if err := WriteImage(webpPath, res.Image, WebP); err != nil {
		t.Fatal(err)
	}
	f, err = os.Open(webpPath)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := webp.DecodeConfig(f)
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 64 || cfg.Height != 64 {
		t.Fatalf("webp size = %dx%d", cfg.Width, cfg.Height)
	}

	if err := WriteImage(filepath.Join(dir, "x.gif"), res.Image, ImageFormat("gif")); err == nil {
		t.Fatal("expected error for an unknown format")
	}
}

func TestParseImageFormat(t *testing.T) {
	for in, want := range map[string]ImageFormat{"png": PNG, "WEBP": WebP, " webp ": WebP} {
		got, err := ParseImageFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseImageFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseImageFormat("jpeg"); err == nil {
		t.Error("jpeg accepted")
	}
	if WebP.Ext() != ".webp" {
		t.Errorf("Ext() = %q", WebP.Ext())
	}
}

func TestLayoutPreview(t *testing.T) {
	res := buildResult(t)

	img := LayoutPreview(res, 0)
	if img.Bounds() != image.Rect(0, 0, 64, 64) {
		t.Fatalf("preview bounds = %v", img.Bounds())
	}
	for id, e := range res.Entries {
		r := e.PixelRect()
		if got := img.NRGBAAt(r.Min.X, r.Min.Y); got != previewBorder {
			t.Errorf("%s: corner = %v, want border", id, got)
		}
		if r.Dx() > 2 && r.Dy() > 2 {
			if got := img.NRGBAAt(r.Min.X+1, r.Min.Y+1); got != idColor(id) {
				t.Errorf("%s: fill = %v, want %v", id, got, idColor(id))
			}
		}
	}
	if img.NRGBAAt(63, 63) != previewBackground {
		t.Error("unused corner is not background")
	}

	if got := LayoutPreview(res, 32).Bounds().Size(); got != image.Pt(32, 32) {
		t.Fatalf("shrunk preview = %v", got)
	}

	path := filepath.Join(t.TempDir(), "preview", "layout.png")
	if err := WriteLayoutPreview(path, res, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}
