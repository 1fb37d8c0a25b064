package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured. Override with
// DEMOREEL_ANTHROPIC_MODEL.
const DefaultAnthropicModel = "claude-sonnet-4-5-20250929"

const (
	// maxOutputTokens leaves generous headroom for a full multi-section
	// script.
	maxOutputTokens = 4096
	// temperature keeps the output creative but controlled.
	temperature = 0.7
)

// Anthropic generates completions via the Anthropic Messages API.
type Anthropic struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropic creates a generator. The API key falls back to the
// ANTHROPIC_API_KEY environment variable.
func NewAnthropic(apiKey, model string) (*Anthropic, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}
	if model == "" {
		if env := os.Getenv("DEMOREEL_ANTHROPIC_MODEL"); env != "" {
			model = env
		} else {
			model = DefaultAnthropicModel
		}
	}
	return &Anthropic{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}, nil
}

// Complete sends a single user message and concatenates the text blocks of
// the response. A response with no text blocks is an error distinct from a
// failed request.
func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   maxOutputTokens,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("anthropic response contained no text content (stop reason %q)", resp.StopReason)
	}
	return text, nil
}
