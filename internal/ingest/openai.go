// ABOUTME: OpenAI transcription and translation provider
// ABOUTME: Whisper verbose JSON transcription and chat-completion translation
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const whisperModel = "whisper-1"

// OpenAIOptions configures the OpenAI provider
type OpenAIOptions struct {
	APIKey  string
	Model   string // chat model used for translation
	BaseURL string
}

// OpenAI transcribes through Whisper and translates through chat completions
type OpenAI struct {
	model string

	transcribe func(ctx context.Context, params openai.AudioTranscriptionNewParams) ([]byte, error)
	complete   func(ctx context.Context, params openai.ChatCompletionNewParams) (string, error)
}

// NewOpenAI creates an OpenAI provider
func NewOpenAI(opts OpenAIOptions) (*OpenAI, error) {
	if opts.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if opts.Model == "" {
		return nil, errors.New("openai model is required")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(reqOpts...)

	return &OpenAI{
		model: opts.Model,
		transcribe: func(ctx context.Context, params openai.AudioTranscriptionNewParams) ([]byte, error) {
			var body []byte
			if _, err := client.Audio.Transcriptions.New(ctx, params, option.WithResponseBodyInto(&body)); err != nil {
				return nil, err
			}
			return body, nil
		},
		complete: func(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
			resp, err := client.Chat.Completions.New(ctx, params)
			if err != nil {
				return "", err
			}
			if len(resp.Choices) == 0 {
				return "", errors.New("openai returned no choices")
			}
			return resp.Choices[0].Message.Content, nil
		},
	}, nil
}

// Transcribe implements Transcriber
func (o *OpenAI) Transcribe(ctx context.Context, req TranscribeRequest) (*Transcript, error) {
	if len(req.Audio) == 0 {
		return nil, errors.New("no audio to transcribe")
	}

	params := openai.AudioTranscriptionNewParams{
		File:                   openai.File(bytes.NewReader(req.Audio), req.Filename, req.Format.ContentType()),
		Model:                  whisperModel,
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word", "segment"},
	}
	if lang := whisperLanguage(req.Language); lang != "" {
		params.Language = openai.String(lang)
	}

	body, err := o.transcribe(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("whisper request failed: %w", err)
	}

	var raw rawTranscript
	if err := decodeModelJSON(string(body), &raw); err != nil {
		return nil, err
	}
	// Whisper has no diarization.
	req.Speakers = 0
	return raw.build(req, "openai", whisperModel), nil
}

// Translate implements Translator
func (o *OpenAI) Translate(ctx context.Context, text, source, target string) (*Translation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("no text to translate")
	}

	answer, err := o.complete(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a professional translator for children's language-learning stories."),
			openai.UserMessage(translationPrompt(text, source, target)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	var raw rawTranslation
	if err := decodeModelJSON(answer, &raw); err != nil {
		return nil, err
	}
	return raw.build(text, source, target, o.model), nil
}

// whisperLanguage reduces a BCP-47 locale to the ISO-639-1 code Whisper takes
func whisperLanguage(locale string) string {
	lang, _, _ := strings.Cut(locale, "-")
	return strings.ToLower(lang)
}
