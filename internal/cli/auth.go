// ABOUTME: auth command
// ABOUTME: Verifies the credentials file and that the configured store is reachable
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hippolingua/hippolingua/internal/blob"
)

// serviceAccount is the part of a Google credentials file auth check reads
type serviceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
}

func newAuthCommand(a *app) *cobra.Command {
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Credential checks",
	}

	auth.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Verify the credentials file and store access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			st := a.cfg.Storage

			fmt.Fprintf(out, "Storage backend: %s\n", st.Backend)
			if st.Backend == blob.BackendGCS {
				if err := checkCredentials(out, st.CredentialsPath); err != nil {
					return err
				}
			}

			src, err := a.source(ctx)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer blob.Close(src)

			if err := blob.Ping(ctx, src); err != nil {
				return fmt.Errorf("storage is not reachable: %w", err)
			}
			fmt.Fprintln(out, "Storage: reachable")

			if a.cfg.Ingest.APIKey == "" && a.cfg.Ingest.Provider == "openai" {
				fmt.Fprintln(out, "Ingest: no API key configured for openai")
			} else {
				fmt.Fprintf(out, "Ingest: %s (%s)\n", a.cfg.Ingest.Provider, a.cfg.Ingest.Model)
			}
			return nil
		},
	})
	return auth
}

// checkCredentials reports on a service account file. An empty path means
// application default credentials.
func checkCredentials(out io.Writer, path string) error {
	if path == "" {
		fmt.Fprintln(out, "Credentials: application default")
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("credentials file %s: %w", path, err)
	}
	var sa serviceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return fmt.Errorf("credentials file %s is not valid JSON: %w", path, err)
	}
	if sa.Type == "" {
		return errors.New("credentials file has no type field")
	}

	fmt.Fprintf(out, "Credentials: %s", sa.Type)
	if sa.ClientEmail != "" {
		fmt.Fprintf(out, " %s", sa.ClientEmail)
	}
	if sa.ProjectID != "" {
		fmt.Fprintf(out, " (project %s)", sa.ProjectID)
	}
	fmt.Fprintln(out)
	return nil
}
