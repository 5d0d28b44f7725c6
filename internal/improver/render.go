package improver

import (
	"fmt"
	"strings"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// PDFRenderer renders HTML to a PDF file via wkhtmltopdf, which must be on
// PATH.
type PDFRenderer struct{}

func (PDFRenderer) Render(html, outputPath string) error {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return fmt.Errorf("init pdf generator: %w", err)
	}

	pdfg.AddPage(wkhtmltopdf.NewPageReader(strings.NewReader(html)))

	if err := pdfg.Create(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdfg.WriteFile(outputPath); err != nil {
		return fmt.Errorf("write pdf %s: %w", outputPath, err)
	}
	return nil
}
