package reply

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenAIGenerator produces replies with the Gemini API.
type GenAIGenerator struct {
	client *genai.Client
	model  string
	system string
}

// NewGenAIGenerator connects to the Gemini API. system is sent as the
// system instruction on every request.
func NewGenAIGenerator(ctx context.Context, apiKey, model, system string) (*GenAIGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model, system: system}, nil
}

// Generate implements Generator.
func (g *GenAIGenerator) Generate(ctx context.Context, instructions string) (string, error) {
	var cfg *genai.GenerateContentConfig
	if g.system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(g.system, genai.RoleUser),
		}
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(instructions), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}
