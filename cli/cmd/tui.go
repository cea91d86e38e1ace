package cmd

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coderunr/editor/internal/catalogue"
	"github.com/coderunr/editor/internal/editor"
	"github.com/coderunr/editor/internal/tui"
	"github.com/spf13/cobra"
)

func NewTUICommand() *cobra.Command {
	var (
		language string
		logFile  string
	)

	cmd := &cobra.Command{
		Use:     "tui",
		Aliases: []string{"edit"},
		Short:   "Open the terminal editor",
		Long: `Open a full-screen editor with a language list, source and input areas and
an output panel.

Keys:
  ctrl+enter (ctrl+j) or ctrl+r   run the current code
  tab                             switch between source and input
  ctrl+n / ctrl+p                 next / previous language
  esc or ctrl+c                   quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := catalogue.Builtin().Parse(language)
			if err != nil {
				return err
			}

			// The alternate screen owns the terminal, so logs go to a file or nowhere
			var out io.Writer = io.Discard
			if logFile != "" {
				f, err := tea.LogToFile(logFile, "coderunr-editor")
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			logger := newLogger(cmd, out)

			s := mountSurface(cmd, lang, logger)
			defer s.Unmount()

			p := tea.NewProgram(tui.New(s), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			unsubscribe := s.Subscribe(func(v editor.View) {
				go p.Send(tui.ViewMsg(v))
			})
			defer unsubscribe()

			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", string(catalogue.Default), "Language selected at start")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file")

	return cmd
}
