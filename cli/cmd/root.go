package cmd

import (
	"time"

	"github.com/coderunr/editor/internal/client"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the coderunr-editor command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "coderunr-editor",
		Short:         "CodeRunr Editor - Write, run and inspect code from the terminal",
		Long:          `A terminal editor and command line client for the CodeRunr execution service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("url", "u", client.DefaultURL, "Execution service URL")
	rootCmd.PersistentFlags().Duration("timeout", 60*time.Second, "Execution request timeout")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(
		NewTUICommand(),
		NewExecuteCommand(),
		NewListCommand(),
		NewAttachCommand(),
		NewVersionCommand(),
	)

	return rootCmd
}
