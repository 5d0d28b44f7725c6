package pdfproc

import (
	"path/filepath"
	"strings"
)

// OutputPath derives the output filename from the input path by inserting the
// suffix before the extension, in the same directory. Suffix defaults to
// "improved". Pure; no filesystem access.
func OutputPath(input, suffix string) string {
	if suffix == "" {
		suffix = "improved"
	}
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(filepath.Dir(input), stem+"_"+suffix+".pdf")
}
