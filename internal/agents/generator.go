// Package agents wires role-specific prompts and a shared model client into a
// turn-taking resume improvement pipeline.
package agents

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Generator is the narrow inference surface agents run on. It exists so the
// pipeline can be exercised with fakes in tests.
type Generator interface {
	Generate(ctx context.Context, system string, parts []*genai.Part) (string, error)
}

// GenAIGenerator runs generation requests against a shared client, targeting
// a single deployment. One client serves every agent.
type GenAIGenerator struct {
	client     *genai.Client
	deployment string
}

func NewGenAIGenerator(client *genai.Client, deployment string) *GenAIGenerator {
	return &GenAIGenerator{client: client, deployment: deployment}
}

func (g *GenAIGenerator) Generate(ctx context.Context, system string, parts []*genai.Part) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: parts,
		},
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.deployment, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
