package agents

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"resumeimprover/internal/prompts"
)

// Role names. Each doubles as the prompt file name under the prompts
// directory (<role>.txt).
const (
	RoleDraft       = "draft_agent"
	RoleEnhancement = "enhancement_agent"
	RoleConciseness = "conciseness_agent"
	RoleImage       = "image_agent"
	RoleTeamTask    = "team_task"
)

var displayNames = map[string]string{
	RoleDraft:       "DraftAgent",
	RoleEnhancement: "EnhancementAgent",
	RoleConciseness: "ConcisenessAgent",
	RoleImage:       "ImageAgent",
}

// Agent binds one pipeline role to its system prompt and the shared model
// handle. Agents hold no other per-role state.
type Agent struct {
	Name   string
	system string
	gen    Generator
}

// Message is one agent emission, attributed to its source.
type Message struct {
	Source  string
	Content string
}

// Factory builds inference-backed agents per role. It does not cache;
// callers that need a stable set of agents cache the result themselves.
type Factory struct {
	gen     Generator
	prompts *prompts.Loader
}

func NewFactory(gen Generator, loader *prompts.Loader) *Factory {
	return &Factory{gen: gen, prompts: loader}
}

func (f *Factory) Make(role string) (*Agent, error) {
	name, ok := displayNames[role]
	if !ok {
		return nil, fmt.Errorf("unknown agent role %q", role)
	}
	system, err := f.prompts.Load(role)
	if err != nil {
		return nil, err
	}
	return &Agent{Name: name, system: system, gen: f.gen}, nil
}

// Respond produces the agent's next message given the task and the transcript
// of every message emitted so far.
func (a *Agent) Respond(ctx context.Context, task string, transcript []Message) (Message, error) {
	var b strings.Builder
	b.WriteString(task)
	for _, m := range transcript {
		b.WriteString("\n\n")
		b.WriteString(m.Source)
		b.WriteString(":\n")
		b.WriteString(m.Content)
	}

	content, err := a.gen.Generate(ctx, a.system, []*genai.Part{{Text: b.String()}})
	if err != nil {
		return Message{}, fmt.Errorf("%s: %w", a.Name, err)
	}
	return Message{Source: a.Name, Content: content}, nil
}
