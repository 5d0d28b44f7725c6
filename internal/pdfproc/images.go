package pdfproc

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
)

// SaveImages writes page images to dir as sequentially numbered PNG files
// ({base}_{01..N}.png) and returns the written paths in order. The directory
// is created even when images is empty.
func SaveImages(images []PageImage, dir, base string) ([]string, error) {
	if base == "" {
		base = "page"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %q: %w", dir, err)
	}

	paths := make([]string, 0, len(images))
	for i, img := range images {
		path := filepath.Join(dir, fmt.Sprintf("%s_%02d.png", base, i+1))
		f, err := os.Create(path)
		if err != nil {
			return paths, fmt.Errorf("create %q: %w", path, err)
		}
		if err := png.Encode(f, img.Image); err != nil {
			f.Close()
			return paths, fmt.Errorf("encode %q: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return paths, fmt.Errorf("close %q: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// EncodePNG returns the PNG bytes for a single page image.
func EncodePNG(img PageImage) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img.Image); err != nil {
		return nil, fmt.Errorf("encode page %d: %w", img.PageNumber, err)
	}
	return buf.Bytes(), nil
}
