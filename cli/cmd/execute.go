package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coderunr/editor/internal/catalogue"
	"github.com/coderunr/editor/internal/editor"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ErrDiagnostic is returned when the service reported a compile message
var ErrDiagnostic = errors.New("program produced a compile diagnostic")

func NewExecuteCommand() *cobra.Command {
	var (
		readStdin bool
		stdinFile string
	)

	cmd := &cobra.Command{
		Use:     "execute <language> [file]",
		Aliases: []string{"run", "exec"},
		Short:   "Execute a source file with the specified language",
		Long: `Submit a source file to the CodeRunr execution service and print the result.

Without a file the language's hello-world snippet is submitted.

Examples:
  # Execute a Python script
  coderunr-editor execute python script.py

  # Feed standard input from the terminal
  echo 42 | coderunr-editor run cpp main.cpp -i

  # Feed standard input from a file
  coderunr-editor run java Main.java --stdin-file input.txt`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := catalogue.Builtin().Parse(args[0])
			if err != nil {
				return err
			}

			var source *string
			if len(args) > 1 {
				content, err := os.ReadFile(args[1])
				if err != nil {
					return fmt.Errorf("failed to read file %s: %w", args[1], err)
				}
				text := string(content)
				source = &text
			}

			stdin, err := readInput(cmd.InOrStdin(), readStdin, stdinFile)
			if err != nil {
				return err
			}

			return executeOnce(cmd, lang, source, stdin)
		},
	}

	cmd.Flags().BoolVarP(&readStdin, "stdin", "i", false, "Read program input from stdin")
	cmd.Flags().StringVar(&stdinFile, "stdin-file", "", "Read program input from a file")
	cmd.MarkFlagsMutuallyExclusive("stdin", "stdin-file")

	return cmd
}

func readInput(in io.Reader, readStdin bool, stdinFile string) (string, error) {
	switch {
	case readStdin:
		b, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	case stdinFile != "":
		b, err := os.ReadFile(stdinFile)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin file %s: %w", stdinFile, err)
		}
		return string(b), nil
	}
	return "", nil
}

func executeOnce(cmd *cobra.Command, lang catalogue.LanguageID, source *string, stdin string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(cmd, cmd.ErrOrStderr())

	s := mountSurface(cmd, lang, logger)
	defer s.Unmount()

	if source != nil {
		s.SetSource(*source)
	}
	s.SetStdin(stdin)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-s.Run():
	case <-ctx.Done():
		return fmt.Errorf("execution interrupted: %w", ctx.Err())
	}

	v := s.View()
	printView(cmd.OutOrStdout(), lang, v, verbose)

	switch {
	case v.Failed():
		return fmt.Errorf("request failed: %s", v.Reason)
	case v.IsError():
		return ErrDiagnostic
	}
	return nil
}

func printView(w io.Writer, lang catalogue.LanguageID, v editor.View, verbose bool) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow, color.Bold)

	if verbose {
		bold.Fprintf(w, "== %s (run %d) ==\n", catalogue.Title(lang), v.Seq)
	}

	switch {
	case v.Failed():
		yellow.Fprintf(w, "Request failed: %s\n", v.Reason)
	case v.IsError():
		red.Fprint(w, withNewline(v.Output))
	default:
		fmt.Fprint(w, withNewline(v.Output))
	}
}

func withNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
