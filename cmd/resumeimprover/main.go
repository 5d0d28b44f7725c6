package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"resumeimprover/internal/agents"
	"resumeimprover/internal/archive"
	"resumeimprover/internal/config"
	"resumeimprover/internal/improver"
	"resumeimprover/internal/logger"
	"resumeimprover/internal/pdfproc"
	"resumeimprover/internal/prompts"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "improve":
		runImprove(log)
	case "extract":
		runExtract(log)
	case "pages":
		runPages(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Resume Improver CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  resumeimprover <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  improve   Improve a resume PDF (local path or gs:// URI)")
	fmt.Println("  extract   Print the text content of a PDF")
	fmt.Println("  pages     Rasterize a PDF's pages to PNG files")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'resumeimprover <command> -h' for more information on a command.")
}

func runImprove(log zerolog.Logger) {
	fs := flag.NewFlagSet("improve", flag.ExitOnError)
	promptsDir := fs.String("prompts", "prompts", "Directory holding the agent prompt files")
	dpi := fs.Int("dpi", pdfproc.DefaultDPI, "Rasterization DPI for the layout reference")
	rounds := fs.Int("rounds", agents.DefaultMaxRounds, "Max rotations of the text team, 0 for no cap")
	bucket := fs.String("archive", "", "GCS bucket to archive the improved PDF to (optional)")
	fs.Parse(os.Args[2:])

	pdfPath := fs.Arg(0)
	if pdfPath == "" {
		pdfPath = promptForPath()
	}
	if pdfPath == "" {
		log.Fatal().Msg("Error: a resume PDF path is required")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Model configuration is incomplete")
	}
	manager := config.NewManager(cfg)

	ctx := logger.WithContext(context.Background(), log)

	client, err := manager.Client(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create model client")
	}

	loader := prompts.NewLoader(*promptsDir)
	team := agents.NewTeam(agents.NewFactory(agents.NewGenAIGenerator(client, cfg.Deployment), loader), log)
	team.MaxRounds = *rounds

	imp := &improver.Improver{
		Extractor: pdfproc.NewExtractor(*dpi, log),
		Prompts:   loader,
		Team:      team,
		Renderer:  improver.PDFRenderer{},
	}
	if *bucket != "" {
		imp.Archive = &archive.Uploader{Bucket: *bucket}
	}

	log.Info().Str("file", pdfPath).Msg("Improving resume")

	pdfPath = fetchIfRemote(ctx, log, pdfPath)

	res, err := imp.Run(ctx, pdfPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Resume improvement failed")
	}

	switch {
	case res.SavedPath != "":
		fmt.Printf("Improved resume saved to %s\n", res.SavedPath)
	case res.FinalContent != "":
		fmt.Println("Improved resume was generated but could not be saved as a PDF:")
		fmt.Println(res.FinalContent)
	default:
		fmt.Println("No final resume was generated. Improved text:")
		fmt.Println(res.ImprovedText)
	}
}

func runExtract(log zerolog.Logger) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	file := fs.String("file", "", "Path or gs:// URI of the PDF")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Usage: resumeimprover extract -file PATH")
	}

	ctx := logger.WithContext(context.Background(), log)
	path := fetchIfRemote(ctx, log, *file)

	text, err := pdfproc.NewExtractor(0, log).ExtractText(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}
	fmt.Println(text)
}

func runPages(log zerolog.Logger) {
	fs := flag.NewFlagSet("pages", flag.ExitOnError)
	file := fs.String("file", "", "Path to the PDF")
	out := fs.String("out", ".", "Directory to write PNG files to")
	dpi := fs.Int("dpi", pdfproc.DefaultDPI, "Rasterization DPI")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Usage: resumeimprover pages -file PATH [-out DIR] [-dpi N]")
	}

	images, err := pdfproc.NewExtractor(*dpi, log).Rasterize(*file, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Rasterization failed")
	}

	paths, err := pdfproc.SaveImages(images, *out, "page")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to save page images")
	}
	for _, p := range paths {
		fmt.Println(p)
	}
}

// fetchIfRemote pulls a gs:// input down to a temporary file; local paths pass
// through unchanged.
func fetchIfRemote(ctx context.Context, log zerolog.Logger, path string) string {
	if !archive.IsGCSURI(path) {
		return path
	}

	log.Info().Str("uri", path).Msg("Fetching resume from GCS")
	local, err := archive.FetchToFile(ctx, path, os.TempDir())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch resume from GCS")
	}
	return local
}

func promptForPath() string {
	fmt.Print("Enter the path to your resume PDF: ")
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}
