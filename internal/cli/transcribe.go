// ABOUTME: transcribe command
// ABOUTME: Transcribes one file in one or many languages through the configured provider
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hippolingua/hippolingua/internal/ingest"
	"github.com/hippolingua/hippolingua/internal/language"
	"github.com/hippolingua/hippolingua/pkg/audio"
)

func newTranscribeCommand(a *app) *cobra.Command {
	var (
		languages    []string
		allLanguages bool
		speakers     int
		outputPath   string
	)

	cmd := &cobra.Command{
		Use:   "transcribe <file|asset-id>",
		Short: "Transcribe audio with word timings and speaker tags",
		Long: `Transcribe audio with word timings and speaker tags.

The provider (gemini or openai) comes from the ingest section of the
configuration. With several --language values or --all-languages the
file is transcribed once per language, at most ingest.concurrency at a
time; languages that fail are skipped.

Examples:
  hippolingua transcribe en/hello.mp3
  hippolingua transcribe story.wav --language ja-JP --speakers 2
  hippolingua transcribe story.wav --all-languages -o story.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("speakers") {
				speakers = a.cfg.Ingest.DiarizationSpeakers
			}

			data, name, uri, err := a.loadAudio(ctx, args[0])
			if err != nil {
				return err
			}
			format, err := audio.Detect(name, data)
			if err != nil {
				return err
			}

			provider, err := a.newProvider(ctx, a.cfg.Provider())
			if err != nil {
				return err
			}

			req := ingest.TranscribeRequest{
				Audio:    data,
				Filename: filepath.Base(name),
				Format:   format,
				URI:      uri,
				Speakers: speakers,
			}

			langs := languages
			if allLanguages {
				langs = a.cfg.Ingest.Languages
			}
			if len(langs) == 0 {
				langs = []string{defaultLocale(args[0])}
			}

			if len(langs) == 1 {
				req.Language = langs[0]
				a.printVerbose(cmd, "Transcribing %s (%s) with %s", req.Filename, req.Language, a.cfg.Ingest.Provider)
				tr, err := provider.Transcribe(ctx, req)
				if err != nil {
					return err
				}
				return writeJSON(cmd, outputPath, tr)
			}

			a.printVerbose(cmd, "Transcribing %s in %d languages", req.Filename, len(langs))
			results, err := ingest.TranscribeAll(ctx, provider, req, langs, a.cfg.Ingest.Concurrency)
			if err != nil {
				return err
			}
			if len(results) < len(langs) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Transcribed %d of %d languages\n", len(results), len(langs))
			}
			return writeJSON(cmd, outputPath, results)
		},
	}

	cmd.Flags().StringSliceVarP(&languages, "language", "l", nil, "language locale(s) such as en-US")
	cmd.Flags().BoolVar(&allLanguages, "all-languages", false, "transcribe in every configured language")
	cmd.Flags().IntVar(&speakers, "speakers", 0, "maximum speakers for diarization (default from config)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	cmd.MarkFlagsMutuallyExclusive("language", "all-languages")
	return cmd
}

// defaultLocale picks the locale of the asset's language prefix, or en-US
func defaultLocale(id string) string {
	if code := language.FromAssetID(id); code != "" {
		if l, ok := language.Lookup(code); ok {
			return l.Locale
		}
	}
	return "en-US"
}
