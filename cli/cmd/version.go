package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coderunr/editor/internal/types"
	"github.com/coderunr/editor/internal/version"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func NewVersionCommand() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display version information for the CodeRunr Editor.

With --server the session server is asked for its version, which must satisfy
the client's compatibility constraint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, version.Message())
			fmt.Fprintf(out, "Compatible with session servers %s\n", version.Constraint)

			if server == "" {
				return nil
			}

			serverVersion, err := fetchServerVersion(server)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Session server: v%s ", serverVersion)

			if err := version.CheckCompatible(serverVersion); err != nil {
				color.New(color.FgRed).Fprintln(out, "(incompatible)")
				return err
			}
			color.New(color.FgGreen).Fprintln(out, "(compatible)")
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Session server URL to check, e.g. http://localhost:2100")

	return cmd
}

func fetchServerVersion(server string) (string, error) {
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Get(strings.TrimRight(server, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("failed to reach session server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("session server returned status %d", resp.StatusCode)
	}

	var info types.VersionResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to decode version response: %w", err)
	}
	return info.Version, nil
}
