// ABOUTME: translate command
// ABOUTME: Translates a string, a text file or one field of a JSON file
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hippolingua/hippolingua/internal/ingest"
)

func newTranslateCommand(a *app) *cobra.Command {
	var (
		text       string
		file       string
		jsonFile   string
		field      string
		source     string
		target     string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate text, a text file or a JSON field",
		Long: `Translate text, a text file or a JSON field.

With --json the string at --field is translated and written back under
<field>_translated_<target>. Use "-" to read a file from stdin.

Examples:
  hippolingua translate --text "Good morning" --target ja
  hippolingua translate --file story.txt --source en --target fr -o story.fr.json
  hippolingua translate --json story.json --field title --target es`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if jsonFile != "" && field == "" {
				return errors.New("--field is required with --json")
			}

			provider, err := a.newProvider(ctx, a.cfg.Provider())
			if err != nil {
				return err
			}

			if jsonFile != "" {
				data, err := readInput(cmd, jsonFile)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", jsonFile, err)
				}
				doc, err := ingest.TranslateJSON(ctx, provider, data, field, source, target)
				if err != nil {
					return err
				}
				return writeJSON(cmd, outputPath, doc)
			}

			input := text
			if file != "" {
				data, err := readInput(cmd, file)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", file, err)
				}
				input = string(data)
			}
			if strings.TrimSpace(input) == "" {
				return errors.New("nothing to translate")
			}

			a.printVerbose(cmd, "Translating %d characters into %s", len(input), target)
			tr, err := provider.Translate(ctx, input, source, target)
			if err != nil {
				return err
			}
			if outputPath == "" && file == "" {
				fmt.Fprintln(cmd.OutOrStdout(), tr.TranslatedText)
				return nil
			}
			return writeJSON(cmd, outputPath, tr)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "text to translate")
	cmd.Flags().StringVar(&file, "file", "", "text file to translate")
	cmd.Flags().StringVar(&jsonFile, "json", "", "JSON file with a field to translate")
	cmd.Flags().StringVar(&field, "field", "", "JSON field to translate")
	cmd.Flags().StringVar(&source, "source", "", "source language (default: detect)")
	cmd.Flags().StringVar(&target, "target", "en", "target language")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	cmd.MarkFlagsOneRequired("text", "file", "json")
	cmd.MarkFlagsMutuallyExclusive("text", "file", "json")
	return cmd
}
