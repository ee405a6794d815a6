package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Completer turns a prompt into a text completion. Implementations must be
// safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// defaultModel is used when no model is configured.
const defaultModel = "gemini-2.5-flash"

// --------------------------------------------------------------------------
// Gemini completer
// --------------------------------------------------------------------------

type geminiCompleter struct {
	client *genai.Client
	model  string
}

// NewGeminiCompleter creates a completer backed by the Gemini API. One
// request per completion, no streaming.
func NewGeminiCompleter(ctx context.Context, apiKey, model string) (Completer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiCompleter{client: client, model: model}, nil
}

func (c *geminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty completion")
	}
	return text, nil
}
