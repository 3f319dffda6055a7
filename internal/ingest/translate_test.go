// ABOUTME: Tests for translation helpers
// ABOUTME: Covers JSON field translation and model answer parsing
package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upperTranslator "translates" by upper-casing
type upperTranslator struct{ err error }

func (u upperTranslator) Translate(_ context.Context, text, source, target string) (*Translation, error) {
	if u.err != nil {
		return nil, u.err
	}
	return &Translation{OriginalText: text, TranslatedText: strings.ToUpper(text), SourceLanguage: source, TargetLanguage: target}, nil
}

func TestTranslateJSON(t *testing.T) {
	doc, err := TranslateJSON(context.Background(), upperTranslator{}, []byte(`{"title": "hello", "id": 7}`), "title", "en", "ja")
	require.NoError(t, err)
	assert.Equal(t, "HELLO", doc["title_translated_ja"])
	assert.Equal(t, "hello", doc["title"])
	assert.Equal(t, 7.0, doc["id"])
}

func TestTranslateJSONErrors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		data  string
		field string
		tr    Translator
	}{
		{"not an object", `"text"`, "title", upperTranslator{}},
		{"missing field", `{"name": "x"}`, "title", upperTranslator{}},
		{"not a string", `{"title": 3}`, "title", upperTranslator{}},
		{"provider error", `{"title": "x"}`, "title", upperTranslator{err: errors.New("quota")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TranslateJSON(ctx, tt.tr, []byte(tt.data), tt.field, "", "en")
			assert.Error(t, err)
		})
	}
}

func TestTranslationPrompt(t *testing.T) {
	p := translationPrompt("Bonjour", "fr", "en")
	assert.Contains(t, p, "from fr into en")
	assert.True(t, strings.HasSuffix(p, "Bonjour"))
	assert.NotContains(t, translationPrompt("Hola", "", "en"), " from ")
}

func TestDecodeModelJSON(t *testing.T) {
	var r rawTranslation
	require.NoError(t, decodeModelJSON("```json\n{\"translated_text\": \"Hi\"}\n```", &r))
	assert.Equal(t, "Hi", r.TranslatedText)

	require.NoError(t, decodeModelJSON(`  {"translated_text": "Yo", "detected_source_language": "es"} `, &r))
	tr := r.build("Hola", "", "en", "m")
	assert.Equal(t, "es", tr.SourceLanguage)

	assert.Error(t, decodeModelJSON("sorry, I cannot", &r))
}
