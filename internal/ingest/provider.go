// ABOUTME: Provider selection for transcription and translation
// ABOUTME: Builds the Gemini or OpenAI client named in configuration
package ingest

import (
	"context"
	"fmt"
)

// Provider both transcribes and translates
type Provider interface {
	Transcriber
	Translator
}

// ProviderOptions names a provider and its credentials
type ProviderOptions struct {
	Name     string // gemini or openai
	Model    string
	APIKey   string
	Project  string
	Location string
}

// NewProvider creates the provider named by opts.Name
func NewProvider(ctx context.Context, opts ProviderOptions) (Provider, error) {
	switch opts.Name {
	case "gemini":
		return NewGemini(ctx, GeminiOptions{
			APIKey:   opts.APIKey,
			Project:  opts.Project,
			Location: opts.Location,
			Model:    opts.Model,
		})
	case "openai":
		return NewOpenAI(OpenAIOptions{APIKey: opts.APIKey, Model: opts.Model})
	default:
		return nil, fmt.Errorf("unknown ingest provider %q", opts.Name)
	}
}
