// ABOUTME: Transcription model and multilingual fan-out
// ABOUTME: Provider-neutral transcript types shared by the Gemini and OpenAI transcribers
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hippolingua/hippolingua/internal/logging"
	"github.com/hippolingua/hippolingua/pkg/audio"
)

// TranscribeRequest is one audio file to transcribe
type TranscribeRequest struct {
	Audio    []byte
	Filename string
	Format   audio.Container
	URI      string // where the audio lives, recorded in the result
	Language string // BCP-47 locale such as en-US; empty lets the provider detect it
	Speakers int    // maximum speakers for diarization; 0 disables speaker tags
}

// Transcriber turns speech into text with word timings
type Transcriber interface {
	Transcribe(ctx context.Context, req TranscribeRequest) (*Transcript, error)
}

// Transcript is a provider-neutral transcription result
type Transcript struct {
	Transcripts []Passage          `json:"transcripts"`
	Speakers    map[string][]Word  `json:"speakers"`
	Metadata    TranscriptMetadata `json:"metadata"`
}

// Passage is a contiguous run of recognized text
type Passage struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
}

// Word is a recognized word with its timing
type Word struct {
	Word      string  `json:"word"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// TranscriptMetadata describes how the transcript was produced
type TranscriptMetadata struct {
	LanguageCode string  `json:"language_code"`
	AudioURI     string  `json:"audio_uri,omitempty"`
	Duration     float64 `json:"duration"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
}

// Text returns the full transcript text
func (t *Transcript) Text() string {
	parts := make([]string, 0, len(t.Transcripts))
	for _, p := range t.Transcripts {
		parts = append(parts, strings.TrimSpace(p.Text))
	}
	return strings.Join(parts, " ")
}

// SpeakerCount returns the number of distinct speakers
func (t *Transcript) SpeakerCount() int {
	return len(t.Speakers)
}

// rawTranscript is the JSON shape both providers are decoded from
type rawTranscript struct {
	Language string  `json:"language"`
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start      float64 `json:"start"`
		End        float64 `json:"end"`
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"segments"`
	Words []struct {
		Word    string  `json:"word"`
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
		Speaker int     `json:"speaker"`
	} `json:"words"`
}

// build converts a raw provider transcript to a Transcript
func (r *rawTranscript) build(req TranscribeRequest, provider, model string) *Transcript {
	t := &Transcript{
		Transcripts: []Passage{},
		Speakers:    map[string][]Word{},
		Metadata: TranscriptMetadata{
			LanguageCode: req.Language,
			AudioURI:     req.URI,
			Duration:     r.Duration,
			Provider:     provider,
			Model:        model,
		},
	}
	if t.Metadata.LanguageCode == "" {
		t.Metadata.LanguageCode = r.Language
	}

	for _, s := range r.Segments {
		t.Transcripts = append(t.Transcripts, Passage{Text: strings.TrimSpace(s.Text), Confidence: s.Confidence, StartTime: s.Start, EndTime: s.End})
	}
	if len(t.Transcripts) == 0 && r.Text != "" {
		t.Transcripts = append(t.Transcripts, Passage{Text: strings.TrimSpace(r.Text), EndTime: r.Duration})
	}

	for _, w := range r.Words {
		speaker := w.Speaker
		if req.Speakers == 0 {
			speaker = 0
		}
		tag := strconv.Itoa(speaker)
		t.Speakers[tag] = append(t.Speakers[tag], Word{Word: w.Word, StartTime: w.Start, EndTime: w.End})
		if w.End > t.Metadata.Duration {
			t.Metadata.Duration = w.End
		}
	}
	return t
}

// TranscribeAll transcribes req once per language with at most concurrency
// calls in flight. Languages that fail are logged and left out; an error is
// returned only when every language fails or ctx ends.
func TranscribeAll(ctx context.Context, t Transcriber, req TranscribeRequest, languages []string, concurrency int) (map[string]*Transcript, error) {
	if len(languages) == 0 {
		return nil, errors.New("no languages to transcribe")
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu      sync.Mutex
		results = make(map[string]*Transcript, len(languages))
		errs    []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, lang := range languages {
		g.Go(func() error {
			r := req
			r.Language = lang

			logging.L().Info("transcribing", slog.String("language", lang), slog.String("file", req.Filename))
			tr, err := t.Transcribe(gctx, r)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logging.L().Warn("transcription failed", slog.String("language", lang), slog.Any("error", err))
				errs = append(errs, fmt.Errorf("%s: %w", lang, err))
				return nil
			}
			results[lang] = tr
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("transcription failed for every language: %w", errors.Join(errs...))
	}
	return results, nil
}

// SortedLanguages returns the keys of a multilingual result in order
func SortedLanguages(results map[string]*Transcript) []string {
	langs := make([]string, 0, len(results))
	for l := range results {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}
