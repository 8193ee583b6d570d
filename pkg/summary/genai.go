package summary

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

// GenAIGenerator generates text with the Gemini API.
type GenAIGenerator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// GenAIOption configures a GenAIGenerator.
type GenAIOption func(*GenAIGenerator)

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float32) GenAIOption {
	return func(g *GenAIGenerator) {
		g.config.Temperature = genai.Ptr(temperature)
	}
}

// WithSystemInstruction sets a system prompt sent with every request.
func WithSystemInstruction(text string) GenAIOption {
	return func(g *GenAIGenerator) {
		if text == "" {
			return
		}
		g.config.SystemInstruction = genai.NewContentFromText(text, genai.RoleUser)
	}
}

// NewGenAIGenerator creates a Gemini-backed generator.
func NewGenAIGenerator(ctx context.Context, apiKey, model string, options ...GenAIOption) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("summary: genai api key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("summary: create genai client: %w", err)
	}

	g := &GenAIGenerator{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// Generate sends prompt as a single user turn and returns the response text.
func (g *GenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, g.config)
	if err != nil {
		return "", fmt.Errorf("genai generate: %w", err)
	}
	return result.Text(), nil
}
