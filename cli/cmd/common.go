package cmd

import (
	"io"

	"github.com/coderunr/editor/internal/catalogue"
	"github.com/coderunr/editor/internal/client"
	"github.com/coderunr/editor/internal/editor"
	"github.com/coderunr/editor/internal/keys"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// newLogger writes to stderr at warn level, or debug with --verbose
func newLogger(cmd *cobra.Command, out io.Writer) *logrus.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// mountSurface mounts an editor surface that submits to the --url service
func mountSurface(cmd *cobra.Command, lang catalogue.LanguageID, logger *logrus.Logger) *editor.Surface {
	url, _ := cmd.Flags().GetString("url")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	return editor.Mount(editor.Options{
		Catalogue:  catalogue.Builtin(),
		Executor:   client.New(url, timeout, client.WithLogger(logger)),
		Dispatcher: keys.NewDispatcher(),
		Language:   lang,
		Logger:     logger.WithField("component", "editor"),
	})
}
