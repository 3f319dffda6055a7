// ABOUTME: metadata command
// ABOUTME: Reports technical metadata and validates catalog records against the schema
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hippolingua/hippolingua/internal/ingest"
	"github.com/hippolingua/hippolingua/internal/language"
	"github.com/hippolingua/hippolingua/pkg/audio/codec"
)

// metadataReport is the JSON written by the metadata command
type metadataReport struct {
	Technical  *ingest.TechnicalMetadata `json:"technical"`
	Catalog    map[string]any            `json:"catalog,omitempty"`
	Validation *ingest.ValidationReport  `json:"validation,omitempty"`
}

func newMetadataCommand(a *app) *cobra.Command {
	var (
		validate    bool
		catalogPath string
		outputPath  string
	)

	cmd := &cobra.Command{
		Use:   "metadata <file|asset-id>",
		Short: "Extract technical metadata and validate catalog metadata",
		Long: `Extract technical metadata (format, size, duration, sample rate,
channels, frame count) from a local file or a stored asset.

With --validate, the catalog record given by --catalog is completed from
the technical metadata and checked against the catalog schema. Required
fields: title, languages, duration, content_type.

Examples:
  hippolingua metadata hello.wav
  hippolingua metadata en/hello.mp3 --validate --catalog hello.json -o report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, name, _, err := a.loadAudio(ctx, args[0])
			if err != nil {
				return err
			}

			tech, err := ingest.Inspect(ctx, codec.New(), name, data)
			if err != nil {
				return err
			}
			report := metadataReport{Technical: tech}

			if validate {
				record := map[string]any{}
				if catalogPath != "" {
					raw, err := os.ReadFile(catalogPath)
					if err != nil {
						return fmt.Errorf("failed to read catalog: %w", err)
					}
					if record, err = ingest.ParseCatalog(raw); err != nil {
						return err
					}
				}

				var langs []string
				if code := language.FromAssetID(args[0]); code != "" {
					langs = []string{code}
				}
				ingest.MergeCatalog(record, tech, langs)

				report.Catalog = record
				if report.Validation, err = ingest.ValidateCatalog(record); err != nil {
					return err
				}
			}

			if err := writeJSON(cmd, outputPath, report); err != nil {
				return err
			}
			if report.Validation != nil && !report.Validation.Valid {
				return fmt.Errorf("catalog metadata is invalid")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "validate catalog metadata against the schema")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog record (JSON) to validate")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	return cmd
}
