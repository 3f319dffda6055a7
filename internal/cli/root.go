// ABOUTME: Root command of the hippolingua CLI
// ABOUTME: Loads configuration and logging once and wires the subcommands
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hippolingua/hippolingua/internal/blob"
	"github.com/hippolingua/hippolingua/internal/config"
	"github.com/hippolingua/hippolingua/internal/ingest"
	"github.com/hippolingua/hippolingua/internal/logging"
	"github.com/hippolingua/hippolingua/pkg/audio/output"
)

// app carries state shared by every subcommand. The constructor fields
// are replaced in tests.
type app struct {
	configPath string
	verbose    bool
	debug      bool

	cfg *config.Config

	openSource  func(ctx context.Context, opts blob.Options) (blob.Source, error)
	newProvider func(ctx context.Context, opts ingest.ProviderOptions) (ingest.Provider, error)
	newOutput   func() output.Output
}

func newApp() *app {
	return &app{
		openSource:  blob.Open,
		newProvider: ingest.NewProvider,
		newOutput:   func() output.Output { return output.NewOto() },
	}
}

// NewRootCommand builds the hippolingua command tree
func NewRootCommand() *cobra.Command {
	return newRootCommand(newApp())
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "hippolingua",
		Short: "Ingest, tag and preview HippoLingua audio",
		Long: `hippolingua - tooling for the HippoLingua audio library.

Commands:
  upload      Upload audio to the configured store
  metadata    Extract technical metadata and validate catalog records
  transcribe  Transcribe audio with word timings and speaker tags
  translate   Translate text, files or JSON fields
  preview     Play a processed segment through the speakers
  auth        Check credentials and store access
  languages   List supported languages
  discover    Find HippoLingua servers on the local network
  version     Show version information

Configuration is read from --config (YAML) and HIPPO_* environment variables.

Examples:
  hippolingua upload lesson1.mp3 --language ja
  hippolingua transcribe ja/lesson1.mp3 --all-languages -o lesson1.json
  hippolingua preview en/hello.mp3 --start 2 --end 5 --speed 0.75`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { _ = logging.Close() },
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (YAML)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "debug logging")

	root.AddCommand(
		newUploadCommand(a),
		newMetadataCommand(a),
		newTranscribeCommand(a),
		newTranslateCommand(a),
		newPreviewCommand(a),
		newAuthCommand(a),
		newLanguagesCommand(),
		newDiscoverCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the CLI with os.Args
func Execute() error {
	return NewRootCommand().Execute()
}

// setup loads configuration and initializes logging on stderr
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lc := cfg.Logging()
	lc.Writer = cmd.ErrOrStderr()
	if !a.verbose && !cfg.Debug {
		lc.Level = "warn"
	}
	if _, err := logging.Init(lc); err != nil {
		return err
	}

	a.cfg = cfg
	return nil
}

// source opens the configured blob source
func (a *app) source(ctx context.Context) (blob.Source, error) {
	return a.openSource(ctx, a.cfg.BlobOptions())
}

// store opens the configured source and requires it to accept uploads
func (a *app) store(ctx context.Context) (blob.Store, error) {
	src, err := a.source(ctx)
	if err != nil {
		return nil, err
	}
	store, ok := src.(blob.Store)
	if !ok {
		_ = blob.Close(src)
		return nil, fmt.Errorf("storage backend %q does not accept uploads", a.cfg.Storage.Backend)
	}
	return store, nil
}

// printVerbose writes a progress line to stderr when --verbose is set
func (a *app) printVerbose(cmd *cobra.Command, format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "[verbose] "+format+"\n", args...)
	}
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty
func writeJSON(cmd *cobra.Command, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}

// loadAudio reads arg as a local file when one exists, otherwise resolves
// it as an asset id in the configured store. It returns the bytes, a file
// name and a URI describing where the audio came from.
func (a *app) loadAudio(ctx context.Context, arg string) ([]byte, string, string, error) {
	if _, err := os.Stat(arg); err == nil {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, "", "", fmt.Errorf("failed to read %s: %w", arg, err)
		}
		return data, arg, "file://" + arg, nil
	}

	src, err := a.source(ctx)
	if err != nil {
		return nil, "", "", err
	}
	defer blob.Close(src)

	b, err := src.Resolve(ctx, arg)
	if err != nil {
		return nil, "", "", err
	}
	return b.Data, b.Asset.Key, b.Asset.URL, nil
}

// readInput returns the named file, or stdin for "-"
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
