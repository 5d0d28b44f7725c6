// Package improver runs the full resume improvement flow: extract, rewrite
// through the agent team, regenerate layout, export.
package improver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resumeimprover/internal/agents"
	"resumeimprover/internal/logger"
	"resumeimprover/internal/pdfproc"
	"resumeimprover/internal/prompts"
)

type documentExtractor interface {
	ExtractText(path string) (string, error)
	Rasterize(path string, dpi int) ([]pdfproc.PageImage, error)
}

type textPipeline interface {
	RunText(ctx context.Context, task string) (string, bool, error)
	RunImage(ctx context.Context, improvedText string, page pdfproc.PageImage) (string, bool, error)
}

type renderer interface {
	Render(html, outputPath string) error
}

type archiver interface {
	Upload(ctx context.Context, path string) (string, error)
}

// Result reports what each stage of a run produced. A run can succeed
// partially: improved text without a regenerated layout, or a regenerated
// layout that failed to export.
type Result struct {
	ImprovedText string
	FinalContent string
	SavedPath    string
	ExportErr    error
}

// Improver owns one run of the flow. Archive is optional; when set, the
// exported PDF is uploaded after a successful render.
type Improver struct {
	Extractor documentExtractor
	Prompts   *prompts.Loader
	Team      textPipeline
	Renderer  renderer
	Archive   archiver
}

// Run improves the resume at pdfPath and writes the result next to it with an
// "_improved" suffix. Extraction failures are hard errors; render and upload
// failures are reported on the Result so the improved text survives.
func (imp *Improver) Run(ctx context.Context, pdfPath string) (Result, error) {
	log := logger.FromContext(ctx)
	var res Result

	if err := pdfproc.ValidatePDFPath(pdfPath); err != nil {
		return res, err
	}

	text, err := imp.Extractor.ExtractText(pdfPath)
	if err != nil {
		return res, err
	}
	if text == "" {
		return res, errors.New("no text could be extracted from the PDF")
	}
	log.Info().Int("chars", len(text)).Msg("resume text extracted")

	images, err := imp.Extractor.Rasterize(pdfPath, 0)
	if err != nil {
		return res, err
	}
	if len(images) == 0 {
		return res, errors.New("no images could be extracted from the PDF")
	}
	log.Info().Int("pages", len(images)).Msg("resume pages rasterized")

	taskPrompt, err := imp.Prompts.Load(agents.RoleTeamTask)
	if err != nil {
		return res, err
	}
	task := taskPrompt + "\n\nOriginal Resume Text:\n" + text

	improved, ok, err := imp.Team.RunText(ctx, task)
	if err != nil {
		return res, err
	}
	if !ok {
		return res, errors.New("text pipeline produced no result")
	}
	res.ImprovedText = improved
	log.Info().Int("chars", len(improved)).Msg("improved resume text ready")

	final, ok, err := imp.Team.RunImage(ctx, improved, images[0])
	if err != nil {
		return res, err
	}
	if !ok {
		log.Warn().Msg("image agent produced no content, skipping export")
		return res, nil
	}
	res.FinalContent = final

	outputPath := pdfproc.OutputPath(pdfPath, "")
	if err := imp.Renderer.Render(cleanModelHTML(final), outputPath); err != nil {
		res.ExportErr = fmt.Errorf("export improved resume: %w", err)
		log.Error().Err(err).Str("path", outputPath).Msg("failed to export improved resume")
		return res, nil
	}
	res.SavedPath = outputPath
	log.Info().Str("path", outputPath).Msg("improved resume saved")

	if imp.Archive != nil {
		uri, err := imp.Archive.Upload(ctx, outputPath)
		if err != nil {
			log.Warn().Err(err).Msg("archive upload failed")
		} else {
			log.Info().Str("uri", uri).Msg("improved resume archived")
		}
	}

	return res, nil
}

// cleanModelHTML strips the markdown code fences models tend to wrap generated
// HTML in.
func cleanModelHTML(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```html")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
