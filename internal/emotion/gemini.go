package emotion

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiAnalyzer runs the same prompt against Gemini with a JSON response type.
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
}

// NewGeminiAnalyzer builds a client for the Gemini API. baseURL is only set in tests.
func NewGeminiAnalyzer(ctx context.Context, apiKey, model, baseURL string) (*GeminiAnalyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiAnalyzer{client: client, model: model}, nil
}

func (g *GeminiAnalyzer) Analyze(ctx context.Context, text string) (Analysis, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(userPrompt(text), genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.3),
		MaxOutputTokens:   300,
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("GenAI generate failed: %w", err)
	}
	reply := resp.Text()
	if reply == "" {
		return Analysis{}, fmt.Errorf("no content returned")
	}
	return parseAnalysis(reply)
}
