// ABOUTME: languages, discover and version commands
// ABOUTME: Static information and LAN server discovery
package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hippolingua/hippolingua/internal/discovery"
	"github.com/hippolingua/hippolingua/internal/language"
	"github.com/hippolingua/hippolingua/internal/version"
)

func newLanguagesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				return writeJSON(cmd, "", language.All())
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tLOCALE\tNAME\tNATIVE\tDIRECTION")
			for _, l := range language.All() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", l.Code, l.Locale, l.Name, l.NativeName, l.Direction)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newDiscoverCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find HippoLingua servers on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			servers, err := discovery.Browse(cmd.Context(), timeout)
			if err != nil {
				return err
			}
			if len(servers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No servers found")
				return nil
			}
			for _, s := range servers {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", s.Name, s.URL(), s.Version)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "how long to listen for answers")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n%s\n", version.Product, version.Version, version.Description)
		},
	}
}
