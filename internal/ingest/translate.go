// ABOUTME: Translation model and helpers
// ABOUTME: Text, file and JSON-field translation over a provider-neutral Translator
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Translator translates text between languages
type Translator interface {
	// Translate translates text into target. An empty source lets the provider detect it.
	Translate(ctx context.Context, text, source, target string) (*Translation, error)
}

// Translation is the result of one translation call
type Translation struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Model          string `json:"model"`
}

// TranslatedField names the key a JSON field's translation is stored under
func TranslatedField(field, target string) string {
	return fmt.Sprintf("%s_translated_%s", field, target)
}

// TranslateJSON translates the string at field in a JSON object and adds
// the result under TranslatedField(field, target)
func TranslateJSON(ctx context.Context, t Translator, data []byte, field, source, target string) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("input is not a JSON object: %w", err)
	}

	raw, ok := doc[field]
	if !ok {
		return nil, fmt.Errorf("field %q not found", field)
	}
	text, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("field %q is not a string", field)
	}

	tr, err := t.Translate(ctx, text, source, target)
	if err != nil {
		return nil, err
	}
	doc[TranslatedField(field, target)] = tr.TranslatedText
	return doc, nil
}

// rawTranslation is the JSON shape providers are asked to answer with
type rawTranslation struct {
	TranslatedText         string `json:"translated_text"`
	DetectedSourceLanguage string `json:"detected_source_language"`
}

// translationPrompt builds the instruction sent to chat-style models
func translationPrompt(text, source, target string) string {
	var b strings.Builder
	b.WriteString("Translate the text below")
	if source != "" {
		fmt.Fprintf(&b, " from %s", source)
	}
	fmt.Fprintf(&b, " into %s. ", target)
	b.WriteString(`Answer with a JSON object {"translated_text": string, "detected_source_language": string} and nothing else. `)
	b.WriteString("Keep the meaning, tone and line breaks.\n\n")
	b.WriteString(text)
	return b.String()
}

// decodeModelJSON parses a model's JSON answer, tolerating a fenced code block
func decodeModelJSON(text string, v any) error {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), v); err != nil {
		return fmt.Errorf("model returned invalid JSON: %w", err)
	}
	return nil
}

func (r rawTranslation) build(text, source, target, model string) *Translation {
	if source == "" {
		source = r.DetectedSourceLanguage
	}
	return &Translation{
		OriginalText:   text,
		TranslatedText: r.TranslatedText,
		SourceLanguage: source,
		TargetLanguage: target,
		Model:          model,
	}
}
