// ABOUTME: Tests for the hippolingua command tree
// ABOUTME: Runs commands against a local store with fake providers and output
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippolingua/hippolingua/internal/ingest"
	"github.com/hippolingua/hippolingua/pkg/audio"
	"github.com/hippolingua/hippolingua/pkg/audio/encode"
	"github.com/hippolingua/hippolingua/pkg/audio/output"
)

// fakeProvider echoes its inputs
type fakeProvider struct {
	fail map[string]bool
}

func (f *fakeProvider) Transcribe(_ context.Context, req ingest.TranscribeRequest) (*ingest.Transcript, error) {
	if f.fail[req.Language] {
		return nil, errors.New("unsupported language")
	}
	return &ingest.Transcript{
		Transcripts: []ingest.Passage{{Text: "hello from " + req.Filename}},
		Speakers:    map[string][]ingest.Word{"1": {{Word: "hello", EndTime: 0.4}}},
		Metadata:    ingest.TranscriptMetadata{LanguageCode: req.Language, Provider: "fake"},
	}, nil
}

func (f *fakeProvider) Translate(_ context.Context, text, source, target string) (*ingest.Translation, error) {
	return &ingest.Translation{
		OriginalText:   text,
		TranslatedText: fmt.Sprintf("[%s] %s", target, text),
		SourceLanguage: source,
		TargetLanguage: target,
	}, nil
}

// nullOutput accepts audio without a sound device
type nullOutput struct {
	rate, channels int
	samples        int
	drained        bool
}

func (n *nullOutput) Open(rate, channels int) error {
	n.rate, n.channels = rate, channels
	return nil
}
func (n *nullOutput) Write(s []int32) error       { n.samples += len(s); return nil }
func (n *nullOutput) Drain(context.Context) error { n.drained = true; return nil }
func (n *nullOutput) Close() error                { return nil }

type fixture struct {
	app      *app
	config   string
	dataDir  string
	provider *fakeProvider
	out      *nullOutput
}

func newFixture(t *testing.T, backend string) *fixture {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	cfg := fmt.Sprintf(`storage:
  backend: %s
  prefix: audio
  local_dir: %s
  tone_seconds: 1
cache:
  enabled: false
ingest:
  provider: openai
  model: gpt-test
  languages: [en-US, ja-JP, fr-FR]
`, backend, dataDir)
	path := filepath.Join(dir, "hippolingua.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	f := &fixture{config: path, dataDir: dataDir, provider: &fakeProvider{}, out: &nullOutput{}}
	f.app = newApp()
	f.app.newProvider = func(context.Context, ingest.ProviderOptions) (ingest.Provider, error) { return f.provider, nil }
	f.app.newOutput = func() output.Output { return f.out }
	return f
}

func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(f.app)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", f.config}, args...))
	err := root.Execute()
	return stdout.String(), err
}

// sampleWAV writes a half-second 8 kHz mono WAV and returns its path
func sampleWAV(t *testing.T, name string) string {
	t.Helper()
	samples := make([]int32, 4000)
	for i := range samples {
		samples[i] = audio.SampleFromInt16(int16(i % 300))
	}
	enc, err := encode.NewWAV(audio.Format{Codec: string(audio.WAV)})
	require.NoError(t, err)
	data, err := enc.Encode(&audio.Segment{
		Format:  audio.Format{Codec: string(audio.WAV), SampleRate: 8000, Channels: 1, BitDepth: 16},
		Samples: samples,
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := newFixture(t, "local").run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "HippoLingua")
}

func TestLanguagesCommand(t *testing.T) {
	f := newFixture(t, "local")

	out, err := f.run(t, "languages")
	require.NoError(t, err)
	assert.Contains(t, out, "日本語")
	assert.Contains(t, out, "rtl")

	out, err = f.run(t, "languages", "--json")
	require.NoError(t, err)
	var langs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &langs))
	assert.Len(t, langs, 11)
}

func TestUploadThenMetadata(t *testing.T) {
	f := newFixture(t, "local")
	path := sampleWAV(t, "good morning.wav")

	out, err := f.run(t, "upload", path, "--language", "en")
	require.NoError(t, err)
	assert.Contains(t, out, "en/good_morning.wav")
	assert.FileExists(t, filepath.Join(f.dataDir, "audio", "en", "good_morning.wav"))

	catalog := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(catalog, []byte(`{"title": "Good Morning", "content_type": "song"}`), 0o644))

	out, err = f.run(t, "metadata", "en/good_morning.wav", "--validate", "--catalog", catalog)
	require.NoError(t, err)

	var report struct {
		Technical  ingest.TechnicalMetadata `json:"technical"`
		Catalog    map[string]any           `json:"catalog"`
		Validation ingest.ValidationReport  `json:"validation"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 8000, report.Technical.SampleRate)
	assert.InDelta(t, 0.5, report.Technical.Duration, 0.001)
	assert.Equal(t, []any{"en"}, report.Catalog["languages"])
	assert.True(t, report.Validation.Valid)
}

func TestMetadataInvalidCatalog(t *testing.T) {
	f := newFixture(t, "local")
	path := sampleWAV(t, "a.wav")

	out, err := f.run(t, "metadata", path, "--validate")
	require.Error(t, err)
	assert.Contains(t, out, "missing_fields")
}

func TestUploadIDWithManyFiles(t *testing.T) {
	f := newFixture(t, "local")
	_, err := f.run(t, "upload", sampleWAV(t, "a.wav"), sampleWAV(t, "b.wav"), "--id", "x.wav")
	assert.ErrorContains(t, err, "single file")
}

func TestUploadToReadOnlyBackend(t *testing.T) {
	f := newFixture(t, "tone")
	_, err := f.run(t, "upload", sampleWAV(t, "a.wav"))
	assert.ErrorContains(t, err, "does not accept uploads")
}

func TestTranscribeSingle(t *testing.T) {
	f := newFixture(t, "local")
	path := sampleWAV(t, "hello.wav")

	out, err := f.run(t, "transcribe", path, "--language", "ja-JP")
	require.NoError(t, err)

	var tr ingest.Transcript
	require.NoError(t, json.Unmarshal([]byte(out), &tr))
	assert.Equal(t, "ja-JP", tr.Metadata.LanguageCode)
	assert.Equal(t, "hello from hello.wav", tr.Text())
}

func TestTranscribeAllLanguages(t *testing.T) {
	f := newFixture(t, "local")
	f.provider.fail = map[string]bool{"fr-FR": true}
	outFile := filepath.Join(t.TempDir(), "out.json")

	_, err := f.run(t, "transcribe", sampleWAV(t, "hello.wav"), "--all-languages", "-o", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var results map[string]ingest.Transcript
	require.NoError(t, json.Unmarshal(data, &results))
	assert.Len(t, results, 2)
	assert.Contains(t, results, "en-US")
	assert.NotContains(t, results, "fr-FR")
}

func TestTranscribeMissingAsset(t *testing.T) {
	f := newFixture(t, "local")
	_, err := f.run(t, "transcribe", "en/nothing.mp3")
	assert.Error(t, err)
}

func TestTranslateText(t *testing.T) {
	f := newFixture(t, "local")
	out, err := f.run(t, "translate", "--text", "Good morning", "--target", "ja")
	require.NoError(t, err)
	assert.Equal(t, "[ja] Good morning\n", out)
}

func TestTranslateJSONField(t *testing.T) {
	f := newFixture(t, "local")
	path := filepath.Join(t.TempDir(), "story.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title": "The Big Turnip"}`), 0o644))

	out, err := f.run(t, "translate", "--json", path, "--field", "title", "--target", "es")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "[es] The Big Turnip", doc["title_translated_es"])
}

func TestTranslateFlagErrors(t *testing.T) {
	f := newFixture(t, "local")

	_, err := f.run(t, "translate")
	assert.Error(t, err)

	_, err = f.run(t, "translate", "--json", "x.json")
	assert.ErrorContains(t, err, "--field")

	_, err = f.run(t, "translate", "--text", "   ")
	assert.ErrorContains(t, err, "nothing to translate")
}

func TestPreviewTone(t *testing.T) {
	f := newFixture(t, "tone")

	out, err := f.run(t, "preview", "en/anything.mp3", "--start", "0.25", "--end", "0.75")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Playing en/anything.mp3 (0.50s"))
	assert.Contains(t, out, "fallback")

	assert.Equal(t, 44100, f.out.rate)
	assert.Equal(t, 2, f.out.channels)
	assert.Equal(t, audio.DurationToFrames(500*time.Millisecond, 44100)*2, f.out.samples)
	assert.True(t, f.out.drained)
}

func TestAuthCheckLocal(t *testing.T) {
	f := newFixture(t, "local")
	require.NoError(t, os.MkdirAll(f.dataDir, 0o755))

	out, err := f.run(t, "auth", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Storage backend: local")
	assert.Contains(t, out, "Storage: reachable")
	assert.Contains(t, out, "no API key")
}

func TestCheckCredentials(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "sa.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"type": "service_account", "project_id": "hippoapp-gcp", "client_email": "ingest@hippoapp-gcp.iam.gserviceaccount.com"}`), 0o600))
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{}`), 0o600))

	var buf bytes.Buffer
	require.NoError(t, checkCredentials(&buf, good))
	assert.Contains(t, buf.String(), "service_account ingest@hippoapp-gcp.iam.gserviceaccount.com (project hippoapp-gcp)")

	assert.Error(t, checkCredentials(&buf, bad))
	assert.Error(t, checkCredentials(&buf, filepath.Join(dir, "missing.json")))
	assert.NoError(t, checkCredentials(&buf, ""))
}

func TestDefaultLocale(t *testing.T) {
	assert.Equal(t, "ja-JP", defaultLocale("ja/kabu.mp3"))
	assert.Equal(t, "en-US", defaultLocale("stories/kabu.mp3"))
}

func TestBadConfig(t *testing.T) {
	f := newFixture(t, "nowhere")
	_, err := f.run(t, "version")
	assert.ErrorContains(t, err, "storage.backend")
}
