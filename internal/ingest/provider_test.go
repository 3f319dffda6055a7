// ABOUTME: Tests for the Gemini and OpenAI providers
// ABOUTME: Replaces the network calls with canned answers
package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/hippolingua/hippolingua/pkg/audio"
)

// fakeGenerator answers every request with text
type fakeGenerator struct {
	text string
	err  error

	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.contents, f.config = model, contents, config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

func TestGeminiTranscribe(t *testing.T) {
	gen := &fakeGenerator{text: `{"language": "ja", "text": "こんにちは", "duration": 1.1,
		"segments": [{"start": 0, "end": 1.1, "text": "こんにちは", "confidence": 0.93}],
		"words": [{"word": "こんにちは", "start": 0.1, "end": 1.0, "speaker": 1}]}`}
	g := &Gemini{models: gen, model: "gemini-2.5-flash"}

	tr, err := g.Transcribe(context.Background(), TranscribeRequest{
		Audio:    []byte("ID3"),
		Filename: "hello.mp3",
		Format:   audio.MP3,
		Language: "ja-JP",
		Speakers: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", gen.model)
	assert.Equal(t, "application/json", gen.config.ResponseMIMEType)
	require.Len(t, gen.contents, 1)
	require.Len(t, gen.contents[0].Parts, 2)
	assert.Contains(t, gen.contents[0].Parts[0].Text, "ja-JP")
	assert.Contains(t, gen.contents[0].Parts[0].Text, "at most 2")
	assert.Equal(t, "audio/mp3", gen.contents[0].Parts[1].InlineData.MIMEType)

	assert.Equal(t, "こんにちは", tr.Text())
	assert.Equal(t, "ja-JP", tr.Metadata.LanguageCode)
	assert.Equal(t, "gemini", tr.Metadata.Provider)
	assert.Len(t, tr.Speakers["1"], 1)
	assert.InDelta(t, 0.93, tr.Transcripts[0].Confidence, 1e-9)
}

func TestGeminiErrors(t *testing.T) {
	ctx := context.Background()

	_, err := (&Gemini{models: &fakeGenerator{}, model: "m"}).Transcribe(ctx, TranscribeRequest{})
	assert.Error(t, err)

	_, err = (&Gemini{models: &fakeGenerator{err: errors.New("quota exceeded")}, model: "m"}).Translate(ctx, "hi", "", "ja")
	assert.ErrorContains(t, err, "quota exceeded")

	_, err = (&Gemini{models: &fakeGenerator{text: "not json"}, model: "m"}).Translate(ctx, "hi", "", "ja")
	assert.Error(t, err)

	_, err = (&Gemini{models: &fakeGenerator{}, model: "m"}).Translate(ctx, "  ", "", "ja")
	assert.Error(t, err)
}

func TestGeminiTranslate(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n{\"translated_text\": \"こんにちは\", \"detected_source_language\": \"en\"}\n```"}
	g := &Gemini{models: gen, model: "gemini-2.5-flash"}

	tr, err := g.Translate(context.Background(), "Hello", "", "ja")
	require.NoError(t, err)
	assert.Equal(t, &Translation{
		OriginalText:   "Hello",
		TranslatedText: "こんにちは",
		SourceLanguage: "en",
		TargetLanguage: "ja",
		Model:          "gemini-2.5-flash",
	}, tr)
}

func TestNewGeminiRequiresCredentials(t *testing.T) {
	_, err := NewGemini(context.Background(), GeminiOptions{Model: "gemini-2.5-flash"})
	assert.Error(t, err)

	_, err = NewGemini(context.Background(), GeminiOptions{APIKey: "k"})
	assert.Error(t, err)
}

func TestOpenAITranscribe(t *testing.T) {
	var got openai.AudioTranscriptionNewParams
	o := &OpenAI{
		model: "gpt-4o-mini",
		transcribe: func(_ context.Context, params openai.AudioTranscriptionNewParams) ([]byte, error) {
			got = params
			return []byte(`{"language": "english", "text": "Hello world", "duration": 1.5,
				"segments": [{"start": 0, "end": 1.5, "text": "Hello world"}],
				"words": [{"word": "Hello", "start": 0, "end": 0.6}, {"word": "world", "start": 0.7, "end": 1.4}]}`), nil
		},
	}

	tr, err := o.Transcribe(context.Background(), TranscribeRequest{
		Audio:    []byte("RIFF"),
		Filename: "a.wav",
		Format:   audio.WAV,
		Language: "en-US",
		Speakers: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, openai.AudioResponseFormatVerboseJSON, got.ResponseFormat)

	assert.Equal(t, "Hello world", tr.Text())
	assert.Equal(t, "en-US", tr.Metadata.LanguageCode)
	assert.Equal(t, "whisper-1", tr.Metadata.Model)
	assert.Len(t, tr.Speakers["0"], 2)
}

func TestOpenAITranslate(t *testing.T) {
	o := &OpenAI{
		model: "gpt-4o-mini",
		complete: func(_ context.Context, params openai.ChatCompletionNewParams) (string, error) {
			if len(params.Messages) != 2 {
				return "", errors.New("expected system and user messages")
			}
			return `{"translated_text": "Bonjour"}`, nil
		},
	}

	tr, err := o.Translate(context.Background(), "Hello", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", tr.TranslatedText)
	assert.Equal(t, "en", tr.SourceLanguage)
	assert.Equal(t, "gpt-4o-mini", tr.Model)
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(OpenAIOptions{Model: "gpt-4o-mini"})
	assert.Error(t, err)

	o, err := NewOpenAI(OpenAIOptions{APIKey: "sk-test", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.NotNil(t, o.transcribe)
}

func TestWhisperLanguage(t *testing.T) {
	assert.Equal(t, "ja", whisperLanguage("ja-JP"))
	assert.Equal(t, "en", whisperLanguage("EN"))
	assert.Equal(t, "", whisperLanguage(""))
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), ProviderOptions{Name: "openai", Model: "gpt-4o-mini", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, p)

	_, err = NewProvider(context.Background(), ProviderOptions{Name: "whisper.cpp"})
	assert.ErrorContains(t, err, "unknown ingest provider")
}
