// ABOUTME: Gemini transcription and translation provider
// ABOUTME: Sends audio or text to Gemini through genai and parses JSON answers
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// contentGenerator is the part of *genai.Models the provider uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiOptions configures the Gemini provider
type GeminiOptions struct {
	APIKey   string // Gemini API key; when empty Vertex AI is used
	Project  string // Vertex AI project
	Location string // Vertex AI location
	Model    string
}

// Gemini transcribes and translates through Google's Gemini models
type Gemini struct {
	models contentGenerator
	model  string
}

// NewGemini creates a Gemini provider
func NewGemini(ctx context.Context, opts GeminiOptions) (*Gemini, error) {
	if opts.Model == "" {
		return nil, errors.New("gemini model is required")
	}

	cc := &genai.ClientConfig{APIKey: opts.APIKey, Backend: genai.BackendGeminiAPI}
	if opts.APIKey == "" {
		if opts.Project == "" {
			return nil, errors.New("gemini needs an api key or a project id")
		}
		cc = &genai.ClientConfig{Project: opts.Project, Location: opts.Location, Backend: genai.BackendVertexAI}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{models: client.Models, model: opts.Model}, nil
}

// Transcribe implements Transcriber
func (g *Gemini) Transcribe(ctx context.Context, req TranscribeRequest) (*Transcript, error) {
	if len(req.Audio) == 0 {
		return nil, errors.New("no audio to transcribe")
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			genai.NewPartFromText(transcriptionPrompt(req)),
			genai.NewPartFromBytes(req.Audio, req.Format.ContentType()),
		},
	}}
	text, err := g.generate(ctx, contents)
	if err != nil {
		return nil, err
	}

	var raw rawTranscript
	if err := decodeModelJSON(text, &raw); err != nil {
		return nil, err
	}
	return raw.build(req, "gemini", g.model), nil
}

// Translate implements Translator
func (g *Gemini) Translate(ctx context.Context, text, source, target string) (*Translation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("no text to translate")
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{genai.NewPartFromText(translationPrompt(text, source, target))},
	}}
	answer, err := g.generate(ctx, contents)
	if err != nil {
		return nil, err
	}

	var raw rawTranslation
	if err := decodeModelJSON(answer, &raw); err != nil {
		return nil, err
	}
	return raw.build(text, source, target, g.model), nil
}

func (g *Gemini) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	var temperature float32
	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}

func transcriptionPrompt(req TranscribeRequest) string {
	var b strings.Builder
	b.WriteString("Transcribe this audio")
	if req.Language != "" {
		fmt.Fprintf(&b, " spoken in %s", req.Language)
	}
	b.WriteString(". Answer with a JSON object with the keys ")
	b.WriteString(`"language" (BCP-47 code), "text", "duration" (seconds), `)
	b.WriteString(`"segments" (array of {"start", "end", "text", "confidence"}) and `)
	b.WriteString(`"words" (array of {"word", "start", "end", "speaker"}). Times are in seconds.`)
	if req.Speakers > 0 {
		fmt.Fprintf(&b, " Label speakers with integers from 1 to at most %d.", req.Speakers)
	} else {
		b.WriteString(" Set every speaker to 0.")
	}
	return b.String()
}
