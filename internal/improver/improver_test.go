package improver

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"resumeimprover/internal/agents"
	"resumeimprover/internal/logger"
	"resumeimprover/internal/pdfproc"
	"resumeimprover/internal/prompts"
)

func testCtx() context.Context {
	return logger.WithContext(context.Background(), zerolog.Nop())
}

func writeTestPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testPrompts(t *testing.T) *prompts.Loader {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		agents.RoleDraft:       "rewrite the resume",
		agents.RoleEnhancement: "strengthen the resume",
		agents.RoleConciseness: "tighten the resume, end with FINAL when done",
		agents.RoleImage:       "reproduce the layout as HTML",
		agents.RoleTeamTask:    "Improve this resume.",
	}
	for role, content := range files {
		if err := os.WriteFile(filepath.Join(dir, role+".txt"), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return prompts.NewLoader(dir)
}

// scriptedGenerator replies per system prompt, consuming each queue in order.
type scriptedGenerator struct {
	responses map[string][]string
	calls     int
}

func (g *scriptedGenerator) Generate(_ context.Context, system string, _ []*genai.Part) (string, error) {
	g.calls++
	queue := g.responses[system]
	if len(queue) == 0 {
		return "pass", nil
	}
	g.responses[system] = queue[1:]
	return queue[0], nil
}

type fakeExtractor struct {
	text   string
	images []pdfproc.PageImage
}

func (f *fakeExtractor) ExtractText(string) (string, error) { return f.text, nil }

func (f *fakeExtractor) Rasterize(string, int) ([]pdfproc.PageImage, error) {
	return f.images, nil
}

type fakeRenderer struct {
	html string
	path string
	err  error
}

func (f *fakeRenderer) Render(html, outputPath string) error {
	f.html = html
	f.path = outputPath
	return f.err
}

func twoPages() []pdfproc.PageImage {
	return []pdfproc.PageImage{
		{PageNumber: 1, Image: image.NewRGBA(image.Rect(0, 0, 2, 2))},
		{PageNumber: 2, Image: image.NewRGBA(image.Rect(0, 0, 2, 2))},
	}
}

func newTestImprover(t *testing.T, gen agents.Generator, extractor documentExtractor, r renderer) *Improver {
	t.Helper()
	loader := testPrompts(t)
	return &Improver{
		Extractor: extractor,
		Prompts:   loader,
		Team:      agents.NewTeam(agents.NewFactory(gen, loader), zerolog.Nop()),
		Renderer:  r,
	}
}

func TestRun_EndToEnd(t *testing.T) {
	gen := &scriptedGenerator{responses: map[string][]string{
		"rewrite the resume":    {"Experience: built internal tools."},
		"strengthen the resume": {"Experience: built and shipped internal tools."},
		"tighten the resume, end with FINAL when done": {"Experience: built tools. FINAL"},
		"reproduce the layout as HTML":                 {"```html\n<html><body>resume</body></html>\n```"},
	}}
	extractor := &fakeExtractor{text: "Experience: built tools.", images: twoPages()}
	r := &fakeRenderer{}
	imp := newTestImprover(t, gen, extractor, r)
	pdf := writeTestPDF(t)

	res, err := imp.Run(testCtx(), pdf)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.ImprovedText != "Experience: built tools. FINAL" {
		t.Errorf("ImprovedText = %q", res.ImprovedText)
	}
	if res.FinalContent == "" {
		t.Error("expected final content from the image stage")
	}
	want := pdfproc.OutputPath(pdf, "")
	if res.SavedPath != want {
		t.Errorf("SavedPath = %q, want %q", res.SavedPath, want)
	}
	if r.html != "<html><body>resume</body></html>" {
		t.Errorf("rendered html not cleaned of fences: %q", r.html)
	}
	if res.ExportErr != nil {
		t.Errorf("unexpected export error: %v", res.ExportErr)
	}
	// 3 text agents in one round plus the image agent.
	if gen.calls != 4 {
		t.Errorf("got %d generator calls, want 4", gen.calls)
	}
}

func TestRun_LogsThroughContextLogger(t *testing.T) {
	var buf strings.Builder
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(&buf))

	team := &recordingPipeline{
		onText:   func(string) (string, bool, error) { return "improved", true, nil },
		imageOut: "<html></html>",
		imageOK:  true,
	}
	imp := &Improver{
		Extractor: &fakeExtractor{text: "some text", images: twoPages()},
		Prompts:   testPrompts(t),
		Team:      team,
		Renderer:  &fakeRenderer{},
	}

	if _, err := imp.Run(ctx, writeTestPDF(t)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, want := range []string{"resume text extracted", "improved resume saved"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("context logger missing checkpoint %q:\n%s", want, buf.String())
		}
	}
}

func TestRun_TaskCarriesResumeText(t *testing.T) {
	var seenTask string
	loader := testPrompts(t)
	team := &recordingPipeline{
		onText: func(task string) (string, bool, error) {
			seenTask = task
			return "done FINAL", true, nil
		},
		imageOut: "<html></html>",
		imageOK:  true,
	}
	imp := &Improver{
		Extractor: &fakeExtractor{text: "Experience: built tools.", images: twoPages()},
		Prompts:   loader,
		Team:      team,
		Renderer:  &fakeRenderer{},
	}

	if _, err := imp.Run(testCtx(), writeTestPDF(t)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, want := range []string{"Improve this resume.", "Original Resume Text:", "Experience: built tools."} {
		if !strings.Contains(seenTask, want) {
			t.Errorf("task missing %q:\n%s", want, seenTask)
		}
	}
	if team.imagePage.PageNumber != 1 {
		t.Errorf("image stage must use the first page, got page %d", team.imagePage.PageNumber)
	}
}

// recordingPipeline is a textPipeline for tests that need to observe inputs.
type recordingPipeline struct {
	onText    func(task string) (string, bool, error)
	imageText string
	imagePage pdfproc.PageImage
	imageOut  string
	imageOK   bool
	imageErr  error
}

func (p *recordingPipeline) RunText(_ context.Context, task string) (string, bool, error) {
	return p.onText(task)
}

func (p *recordingPipeline) RunImage(_ context.Context, improvedText string, page pdfproc.PageImage) (string, bool, error) {
	p.imageText = improvedText
	p.imagePage = page
	return p.imageOut, p.imageOK, p.imageErr
}

func TestRun_NoText(t *testing.T) {
	gen := &scriptedGenerator{responses: map[string][]string{}}
	imp := newTestImprover(t, gen, &fakeExtractor{text: "", images: twoPages()}, &fakeRenderer{})

	_, err := imp.Run(testCtx(), writeTestPDF(t))
	if err == nil || !strings.Contains(err.Error(), "no text") {
		t.Fatalf("expected no-text error, got %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("pipeline must not run without text, got %d calls", gen.calls)
	}
}

func TestRun_NoImages(t *testing.T) {
	gen := &scriptedGenerator{responses: map[string][]string{}}
	imp := newTestImprover(t, gen, &fakeExtractor{text: "some text", images: nil}, &fakeRenderer{})

	_, err := imp.Run(testCtx(), writeTestPDF(t))
	if err == nil || !strings.Contains(err.Error(), "no images") {
		t.Fatalf("expected no-images error, got %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("pipeline must not run without images, got %d calls", gen.calls)
	}
}

func TestRun_PipelineNoResult(t *testing.T) {
	team := &recordingPipeline{
		onText: func(string) (string, bool, error) { return "", false, nil },
	}
	imp := &Improver{
		Extractor: &fakeExtractor{text: "some text", images: twoPages()},
		Prompts:   testPrompts(t),
		Team:      team,
		Renderer:  &fakeRenderer{},
	}

	_, err := imp.Run(testCtx(), writeTestPDF(t))
	if err == nil || !strings.Contains(err.Error(), "no result") {
		t.Fatalf("expected no-result error, got %v", err)
	}
	if team.imageText != "" {
		t.Error("image stage must not run when the text pipeline produced nothing")
	}
}

func TestRun_ImageStageEmpty(t *testing.T) {
	team := &recordingPipeline{
		onText: func(string) (string, bool, error) { return "improved", true, nil },
	}
	r := &fakeRenderer{}
	imp := &Improver{
		Extractor: &fakeExtractor{text: "some text", images: twoPages()},
		Prompts:   testPrompts(t),
		Team:      team,
		Renderer:  r,
	}

	res, err := imp.Run(testCtx(), writeTestPDF(t))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.ImprovedText != "improved" {
		t.Errorf("ImprovedText = %q", res.ImprovedText)
	}
	if res.SavedPath != "" || res.FinalContent != "" {
		t.Error("nothing should be rendered when the image agent returns no content")
	}
	if r.html != "" {
		t.Error("renderer must not be called")
	}
}

func TestRun_ExportFailureIsSoft(t *testing.T) {
	team := &recordingPipeline{
		onText:   func(string) (string, bool, error) { return "improved", true, nil },
		imageOut: "<html></html>",
		imageOK:  true,
	}
	r := &fakeRenderer{err: errors.New("wkhtmltopdf missing")}
	imp := &Improver{
		Extractor: &fakeExtractor{text: "some text", images: twoPages()},
		Prompts:   testPrompts(t),
		Team:      team,
		Renderer:  r,
	}

	res, err := imp.Run(testCtx(), writeTestPDF(t))
	if err != nil {
		t.Fatalf("export failure must not fail the run: %v", err)
	}
	if res.ExportErr == nil {
		t.Fatal("expected ExportErr to be set")
	}
	if res.SavedPath != "" {
		t.Errorf("SavedPath must be empty on export failure, got %q", res.SavedPath)
	}
	if res.FinalContent == "" {
		t.Error("generated content must survive an export failure")
	}
}

func TestRun_RejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.docx")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	imp := newTestImprover(t, &scriptedGenerator{}, &fakeExtractor{}, &fakeRenderer{})

	if _, err := imp.Run(testCtx(), path); !errors.Is(err, pdfproc.ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
}

func TestCleanModelHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "<html></html>", "<html></html>"},
		{"html fence", "```html\n<html></html>\n```", "<html></html>"},
		{"bare fence", "```\n<html></html>\n```", "<html></html>"},
		{"padded", "  \n<html></html>\n  ", "<html></html>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cleanModelHTML(tc.in); got != tc.want {
				t.Errorf("cleanModelHTML(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
