// Package pdfproc handles PDF text extraction, page rasterization, and output
// file naming for the resume workflow.
package pdfproc

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"
)

// DefaultDPI is the rasterization resolution used when none is configured.
const DefaultDPI = 300

// ErrNotPDF is returned when the input file does not carry a .pdf extension.
var ErrNotPDF = errors.New("file is not a PDF")

// PageImage is one rasterized page of the source document.
type PageImage struct {
	PageNumber int
	Image      image.Image
}

// Extractor pulls text and page images out of a PDF. Extraction is
// best-effort: parse failures degrade to empty results with a warning, and
// callers apply their own strictness over the emptiness.
type Extractor struct {
	dpi int
	log zerolog.Logger
}

func NewExtractor(dpi int, log zerolog.Logger) *Extractor {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Extractor{dpi: dpi, log: log}
}

// ValidatePDFPath checks that path names an existing .pdf file.
func ValidatePDFPath(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("%q: %w", path, ErrNotPDF)
	}
	return nil
}

// ExtractText concatenates the text of every page in page order, separated by
// line breaks. A file that cannot be parsed yields an empty string, not an
// error; only a missing file fails.
func (e *Extractor) ExtractText(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("stat %q: %w", path, err)
	}

	doc, err := fitz.New(path)
	if err != nil {
		e.log.Warn().Err(err).Str("path", path).Msg("could not open PDF for text extraction")
		return "", nil
	}
	defer doc.Close()

	var b strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			e.log.Warn().Err(err).Str("path", path).Int("page", n+1).Msg("could not extract page text")
			return "", nil
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

// Rasterize renders one image per page at the given DPI (0 uses the extractor
// default). Conversion failures yield an empty list, not an error; only a
// missing file fails.
func (e *Extractor) Rasterize(path string, dpi int) ([]PageImage, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	if dpi <= 0 {
		dpi = e.dpi
	}

	doc, err := fitz.New(path)
	if err != nil {
		e.log.Warn().Err(err).Str("path", path).Msg("could not open PDF for rasterization")
		return []PageImage{}, nil
	}
	defer doc.Close()

	images := make([]PageImage, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.ImageDPI(n, float64(dpi))
		if err != nil {
			e.log.Warn().Err(err).Str("path", path).Int("page", n+1).Msg("could not rasterize page")
			return []PageImage{}, nil
		}
		images = append(images, PageImage{PageNumber: n + 1, Image: img})
	}
	return images, nil
}
