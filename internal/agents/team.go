package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"resumeimprover/internal/pdfproc"
)

// TerminationMarker ends the text rotation, but only when emitted by the
// final agent in the rotation. Earlier agents may produce text that happens
// to contain it without stopping the run.
const TerminationMarker = "FINAL"

// DefaultMaxRounds caps the rotation. An uncapped loop hangs if the terminal
// agent never emits the marker; 0 removes the cap.
const DefaultMaxRounds = 10

// Team wires the three text agents into a fixed-order rotation and holds the
// side-channel image agent. Both are built once, on first use.
type Team struct {
	factory *Factory
	log     zerolog.Logger

	// MaxRounds caps full rotations of the text team; 0 means no cap.
	MaxRounds int

	textAgents []*Agent
	imageAgent *Agent
}

func NewTeam(factory *Factory, log zerolog.Logger) *Team {
	return &Team{factory: factory, log: log, MaxRounds: DefaultMaxRounds}
}

func (t *Team) textTeam() ([]*Agent, error) {
	if t.textAgents != nil {
		return t.textAgents, nil
	}
	var built []*Agent
	for _, role := range []string{RoleDraft, RoleEnhancement, RoleConciseness} {
		a, err := t.factory.Make(role)
		if err != nil {
			return nil, err
		}
		built = append(built, a)
	}
	t.textAgents = built
	return t.textAgents, nil
}

func (t *Team) image() (*Agent, error) {
	if t.imageAgent != nil {
		return t.imageAgent, nil
	}
	a, err := t.factory.Make(RoleImage)
	if err != nil {
		return nil, err
	}
	t.imageAgent = a
	return t.imageAgent, nil
}

// RunText drives the rotation on the task, one message per agent per round,
// until the terminal agent emits the termination marker. It returns the
// content of the chronologically last message; ok is false when no message
// was emitted at all.
func (t *Team) RunText(ctx context.Context, task string) (result string, ok bool, err error) {
	team, err := t.textTeam()
	if err != nil {
		return "", false, err
	}

	runID := uuid.NewString()
	terminal := team[len(team)-1].Name
	var transcript []Message

	for round := 1; t.MaxRounds <= 0 || round <= t.MaxRounds; round++ {
		for _, agent := range team {
			msg, err := agent.Respond(ctx, task, transcript)
			if err != nil {
				return "", false, err
			}
			transcript = append(transcript, msg)
			t.log.Info().
				Str("run_id", runID).
				Int("round", round).
				Str("agent", msg.Source).
				Int("chars", len(msg.Content)).
				Msg("agent turn complete")

			if msg.Source == terminal && strings.Contains(msg.Content, TerminationMarker) {
				return msg.Content, true, nil
			}
		}
	}

	t.log.Warn().
		Str("run_id", runID).
		Int("max_rounds", t.MaxRounds).
		Msg("round cap reached without termination marker")
	if len(transcript) == 0 {
		return "", false, nil
	}
	return transcript[len(transcript)-1].Content, true, nil
}

// RunImage is the single-shot layout stage: one multimodal call to the image
// agent with the improved text and the first original page as a style
// reference. ok is false when the agent produced no content.
func (t *Team) RunImage(ctx context.Context, improvedText string, page pdfproc.PageImage) (string, bool, error) {
	agent, err := t.image()
	if err != nil {
		return "", false, err
	}

	pngBytes, err := pdfproc.EncodePNG(page)
	if err != nil {
		return "", false, err
	}

	parts := []*genai.Part{
		{Text: fmt.Sprintf("New Resume Content:\n%s\n\nOriginal image with desired format attached", improvedText)},
		{InlineData: &genai.Blob{MIMEType: "image/png", Data: pngBytes}},
	}

	content, err := agent.gen.Generate(ctx, agent.system, parts)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", agent.Name, err)
	}
	if content == "" {
		return "", false, nil
	}
	return content, true, nil
}
