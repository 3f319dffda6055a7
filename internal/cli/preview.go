// ABOUTME: preview command
// ABOUTME: Runs the segment extractor and plays the result through the speakers
package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/hippolingua/hippolingua/internal/blob"
	"github.com/hippolingua/hippolingua/internal/extract"
	"github.com/hippolingua/hippolingua/pkg/audio"
	"github.com/hippolingua/hippolingua/pkg/audio/codec"
	"github.com/hippolingua/hippolingua/pkg/audio/output"
)

// volumeSetter is implemented by outputs with software volume
type volumeSetter interface {
	SetVolume(volume int)
}

func newPreviewCommand(a *app) *cobra.Command {
	var (
		start  float64
		end    float64
		speed  float64
		repeat bool
		volume int
	)

	cmd := &cobra.Command{
		Use:   "preview <asset-id>",
		Short: "Play a processed segment through the speakers",
		Long: `Play a processed segment through the speakers.

The segment goes through the same extraction as the server's /play
endpoint: range clamping, speed within the configured range and optional
repetition. Press Ctrl-C to stop.

Examples:
  hippolingua preview en/hello.mp3
  hippolingua preview ja/kabu.mp3 --start 12.5 --end 20 --speed 0.75 --repeat`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			src, err := a.source(ctx)
			if err != nil {
				return err
			}
			defer blob.Close(src)

			engine := codec.New()
			ex, err := extract.New(src, engine, a.cfg.Extractor())
			if err != nil {
				return err
			}

			req := extract.Request{AssetID: args[0], Start: start, Speed: speed, Repeat: repeat, Format: audio.WAV}
			if cmd.Flags().Changed("end") {
				req.End = &end
			}
			res, err := ex.Extract(ctx, req)
			if err != nil {
				return err
			}

			seg, err := engine.Decode(ctx, res.Data, res.Format)
			if err != nil {
				return err
			}

			out := a.newOutput()
			if err := out.Open(seg.Format.SampleRate, seg.Format.Channels); err != nil {
				return err
			}
			defer out.Close()
			if v, ok := out.(volumeSetter); ok {
				v.SetVolume(volume)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Playing %s (%.2fs, from %s)\n", args[0], res.Duration.Seconds(), res.Origin)
			return output.Play(ctx, out, seg)
		},
	}

	cmd.Flags().Float64Var(&start, "start", 0, "segment start in seconds")
	cmd.Flags().Float64Var(&end, "end", 0, "segment end in seconds (default end of asset)")
	cmd.Flags().Float64Var(&speed, "speed", 1.0, "playback speed")
	cmd.Flags().BoolVar(&repeat, "repeat", false, "repeat the segment")
	cmd.Flags().IntVar(&volume, "volume", 100, "volume 0-100")
	return cmd
}
