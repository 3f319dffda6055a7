// ABOUTME: upload command
// ABOUTME: Stores local audio files under <lang>/<name>.<ext>
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hippolingua/hippolingua/internal/blob"
	"github.com/hippolingua/hippolingua/internal/ingest"
)

func newUploadCommand(a *app) *cobra.Command {
	var opts ingest.UploadOptions

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload audio files to the configured store",
		Long: `Upload audio files to the configured store.

Files are stored as <lang>/<name>.<ext> with the content type of their
container. Use --id to choose the asset id of a single file.

Examples:
  hippolingua upload hello.mp3 --language en
  hippolingua upload story.flac --id stories/ja/kabu.flac`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.ID != "" && len(args) > 1 {
				return fmt.Errorf("--id can only be used with a single file")
			}

			ctx := cmd.Context()
			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			defer blob.Close(store)

			up := ingest.NewUploader(store, a.cfg.Ingest.MaxFileSizeMB, a.cfg.Extractor().SupportedFormats)
			for _, path := range args {
				a.printVerbose(cmd, "Uploading %s", path)
				asset, err := up.Upload(ctx, path, opts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", path, asset.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "asset id (default <lang>/<file name>)")
	cmd.Flags().StringVarP(&opts.Language, "language", "l", "", "language code or locale used as the id prefix")
	cmd.Flags().StringToStringVar(&opts.Metadata, "meta", nil, "custom metadata key=value pairs")
	return cmd
}
