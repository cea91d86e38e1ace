package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/coderunr/editor/internal/catalogue"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "languages",
		Aliases: []string{"ls", "list"},
		Short:   "List the languages the editor can submit",
		Long: `List every language in the editor's catalogue with its glyph.

Examples:
  # List all languages
  coderunr-editor languages

  # Include the hello-world snippet loaded for each language
  coderunr-editor languages -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			return printLanguageList(cmd.OutOrStdout(), catalogue.Builtin(), verbose)
		},
	}

	return cmd
}

func printLanguageList(out io.Writer, cat *catalogue.Catalogue, verbose bool) error {
	entries := cat.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No languages available")
		return nil
	}

	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	fmt.Fprintf(out, "Available languages (%d):\n\n", len(entries))

	if !verbose {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  ICON\tID\tTITLE")
		fmt.Fprintln(w, "  ----\t--\t-----")
		for _, e := range entries {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", e.Icon, e.ID, catalogue.Title(e.ID))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out, "\nUse --verbose to include the starter snippet for each language.")
		return nil
	}

	for _, e := range entries {
		bold.Fprintf(out, "%s %s", e.Icon, catalogue.Title(e.ID))
		cyan.Fprintf(out, " (%s)\n", e.ID)
		fmt.Fprint(out, indentLines(e.Snippet))
		fmt.Fprintln(out)
	}

	return nil
}

func indentLines(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n") + "\n"
}
