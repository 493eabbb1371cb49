package texture

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeJPEG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatal(err)
	}
}

func testImage(w, h int, a uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: a})
		}
	}
	return img
}

func TestBuildIndex(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "hero.png"), testImage(4, 4, 255))
	writeJPEG(t, filepath.Join(dir, "hero.jpg"), testImage(4, 4, 255))
	writePNG(t, filepath.Join(dir, "ui", "Button.png"), testImage(2, 2, 255))
	writePNG(t, filepath.Join(dir, "run10.png"), testImage(2, 2, 255))
	writePNG(t, filepath.Join(dir, "run2.png"), testImage(2, 2, 255))
	writePNG(t, filepath.Join(dir, ".cache", "skip.png"), testImage(2, 2, 255))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	idx, err := BuildIndex(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := idx.IDs(), []string{"hero", "run2", "run10", "ui/Button"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	if idx.Len() != 4 {
		t.Fatalf("Len() = %d", idx.Len())
	}

	path, ok := idx.ResolvePath("hero")
	if !ok || filepath.Ext(path) != ".png" {
		t.Fatalf("hero resolved to %q, want the png", path)
	}
	if _, ok := idx.ResolvePath(`UI\button.tga`); !ok {
		t.Fatal("case/extension-insensitive lookup failed")
	}
	if _, ok := idx.ResolvePath("missing"); ok {
		t.Fatal("missing id resolved")
	}

	if _, err := BuildIndex(filepath.Join(dir, "nope")); err == nil {
		t.Fatal("expected error for a missing root")
	}
}

func TestLoadTexture(t *testing.T) {
	dir := t.TempDir()
	src := testImage(3, 5, 128)
	path := filepath.Join(dir, "a.png")
	writePNG(t, path, src)

	img, err := LoadTexture(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 3, 5) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if got := img.NRGBAAt(1, 1); got != src.NRGBAAt(1, 1) {
		t.Fatalf("pixel = %v, want %v", got, src.NRGBAAt(1, 1))
	}

	jpgPath := filepath.Join(dir, "b.jpg")
	writeJPEG(t, jpgPath, testImage(8, 8, 255))
	img, err = LoadTexture(jpgPath)
	if err != nil {
		t.Fatal(err)
	}
	if a := img.NRGBAAt(4, 4).A; a != 255 {
		t.Fatalf("jpeg alpha = %d, want 255", a)
	}

	empty := filepath.Join(dir, "empty.png")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTexture(empty); err == nil {
		t.Fatal("expected error for empty file")
	}
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTexture(garbage); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestToNRGBAOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 8, 9))
	src.Set(5, 5, color.RGBA{R: 255, A: 255})
	got := ToNRGBA(src)
	if got.Bounds() != image.Rect(0, 0, 3, 4) {
		t.Fatalf("bounds = %v", got.Bounds())
	}
	if got.NRGBAAt(0, 0) != (color.NRGBA{R: 255, A: 255}) {
		t.Fatalf("pixel = %v", got.NRGBAAt(0, 0))
	}
}

func TestCacheConcurrent(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), testImage(2, 2, 255))
	idx, err := BuildIndex(dir)
	if err != nil {
		t.Fatal(err)
	}
	cache := NewCache(idx)

	var wg sync.WaitGroup
	results := make([]*image.NRGBA, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			img, err := cache.Resolve("a")
			if err != nil {
				t.Error(err)
			}
			results[i] = img
		}(i)
	}
	wg.Wait()

	for _, img := range results[1:] {
		if img != results[0] {
			t.Fatal("cache returned different images for the same id")
		}
	}
	if cache.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", cache.Len())
	}
	if _, err := cache.Resolve("b"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}
