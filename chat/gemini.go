package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

const (
	maxOutputTokens = 1000
	temperature     = 0.7
	topP            = 0.8
	topK            = 40
)

// GeminiClient completes chat turns with the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
		config: GenerationConfig(),
	}, nil
}

// GenerationConfig returns the fixed sampling parameters for chat.
func GenerationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		MaxOutputTokens: maxOutputTokens,
		Temperature:     genai.Ptr[float32](temperature),
		TopP:            genai.Ptr[float32](topP),
		TopK:            genai.Ptr[float32](topK),
	}
}

func (g *GeminiClient) Model() string {
	return g.model
}

func (g *GeminiClient) Complete(ctx context.Context, history []Message, text string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, buildContents(history, text), g.config)
	if err != nil {
		return "", fmt.Errorf("Gemini request failed: %w", err)
	}
	return resp.Text(), nil
}

// buildContents converts the conversation to model turns. Synthetic
// messages are dropped and assistant turns use the model role.
func buildContents(history []Message, text string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		if m.Synthetic || m.Content == "" {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return append(contents, genai.NewContentFromText(text, genai.RoleUser))
}
