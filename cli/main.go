package main

import (
	"fmt"
	"os"

	"github.com/coderunr/editor/cli/cmd"
	"github.com/coderunr/editor/internal/version"
)

var (
	commit = "unknown"
	date   = "unknown"
)

func main() {
	rootCmd := cmd.NewRootCommand()
	rootCmd.Version = fmt.Sprintf("%s (%s) built at %s", version.Version, commit, date)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
