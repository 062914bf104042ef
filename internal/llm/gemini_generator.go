package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiGenerator implements Generator using Gemini text generation.
type GeminiGenerator struct {
	client        *genai.Client
	model         string
	promptBuilder *PromptBuilder
}

func NewGeminiGenerator(ctx context.Context, apiKey string, modelName string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiGenerator{
		client:        client,
		model:         modelName,
		promptBuilder: &PromptBuilder{},
	}, nil
}

// GenerateSurvey returns the model's raw reply. No cleanup happens here: the
// recovery parser owns every guess about what the text contains.
func (g *GeminiGenerator) GenerateSurvey(ctx context.Context, rfq RFQ) (string, error) {
	prompt := g.promptBuilder.BuildSurveyPrompt(rfq)
	contents := genai.Text(prompt)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
