package export

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

// ImageFormat is the container the atlas image is written in.
type ImageFormat string

const (
	PNG  ImageFormat = "png"
	WebP ImageFormat = "webp"
)

// ParseImageFormat accepts "png" or "webp".
func ParseImageFormat(s string) (ImageFormat, error) {
	switch f := ImageFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case PNG, WebP:
		return f, nil
	}
	return "", fmt.Errorf("export: unknown image format %q", s)
}

// Ext returns the file extension including the dot.
func (f ImageFormat) Ext() string { return "." + string(f) }

// WriteImage encodes img to path, creating parent directories.
func WriteImage(path string, img image.Image, format ImageFormat) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	switch format {
	case PNG:
		err = png.Encode(f, img)
	case WebP:
		err = nativewebp.Encode(f, img, nil)
	default:
		err = fmt.Errorf("unknown image format %q", format)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("export: encode %s: %w", path, err)
	}
	return f.Close()
}
