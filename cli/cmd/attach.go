package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/coderunr/editor/internal/types"
	"github.com/fatih/color"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func NewAttachCommand() *cobra.Command {
	var (
		server string
		run    bool
	)

	cmd := &cobra.Command{
		Use:   "attach <session-id>",
		Short: "Follow a session on the session server",
		Long: `Connect to a session's websocket and print its state and output as they change.

Examples:
  # Follow a session until interrupted
  coderunr-editor attach 5f0c... --server http://localhost:2100

  # Run the session's current code and exit once the result arrives
  coderunr-editor attach 5f0c... --run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return attachSession(ctx, cmd.OutOrStdout(), server, args[0], run, verbose)
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:2100", "Session server URL")
	cmd.Flags().BoolVar(&run, "run", false, "Submit the session's code and exit after the outcome")

	return cmd
}

func attachSession(ctx context.Context, out io.Writer, server, id string, run, verbose bool) error {
	wsURL, err := convertToWebSocketURL(server)
	if err != nil {
		return fmt.Errorf("failed to convert URL: %w", err)
	}
	endpoint := wsURL + "/api/v1/sessions/" + url.PathEscape(id) + "/connect"

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to attach to session %s: status %d", id, resp.StatusCode)
		}
		return fmt.Errorf("failed to connect to WebSocket: %w", err)
	}
	defer conn.Close()

	if verbose {
		fmt.Fprintf(out, "Connected to WebSocket: %s\n", endpoint)
	}

	// Writer mutex to serialize writes
	var writeMu sync.Mutex
	writeJSON := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	messages := make(chan types.WebSocketMessage, 10)
	go func() {
		defer close(messages)
		for {
			var msg types.WebSocketMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
					fmt.Fprintf(out, "WebSocket error: %v\n", err)
				}
				return
			}
			select {
			case messages <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	// runSeq is the run this command submitted; settled is the newest outcome seen
	var (
		runSeq  uint64
		settled *types.ViewInfo
	)
	if run {
		if err := writeJSON(types.WebSocketMessage{Type: "run"}); err != nil {
			return fmt.Errorf("failed to send run request: %w", err)
		}
	}

	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow, color.Bold)

	for {
		select {
		case <-ctx.Done():
			writeMu.Lock()
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			writeMu.Unlock()
			return nil

		case msg, ok := <-messages:
			if !ok {
				if verbose {
					fmt.Fprintln(out, "Connection closed")
				}
				return nil
			}

			switch msg.Type {
			case "state":
				if msg.State == nil {
					continue
				}
				bold.Fprintf(out, "== %s ==\n", strings.ToUpper(msg.State.Language))
				if verbose {
					fmt.Fprint(out, indentLines(msg.State.Source))
				}

			case "view":
				v := msg.View
				if v == nil {
					continue
				}

				switch {
				case v.Loading:
					if verbose {
						fmt.Fprintf(out, "Running (run %d)...\n", v.Seq)
					}
					continue
				case v.Phase == "failed":
					yellow.Fprintf(out, "Request failed: %s\n", v.Reason)
				case v.IsError:
					red.Fprint(out, withNewline(v.Output))
				case v.Phase == "succeeded":
					fmt.Fprint(out, withNewline(v.Output))
				default:
					continue
				}

				settled = v
				if runSeq != 0 && v.Seq >= runSeq {
					return runResult(v)
				}

			case "submitted":
				if !run || runSeq != 0 {
					continue
				}
				runSeq = msg.Seq
				if verbose {
					fmt.Fprintf(out, "Submitted run %d\n", runSeq)
				}
				// A fast run can settle before its acknowledgement arrives
				if settled != nil && settled.Seq >= runSeq {
					return runResult(settled)
				}

			case "handled":
				if verbose {
					fmt.Fprintf(out, "Shortcut handled (run %d)\n", msg.Seq)
				}

			case "error":
				red.Fprintf(out, "Error: %s\n", msg.Error)
				if run {
					return errors.New(msg.Error)
				}

			default:
				if verbose {
					fmt.Fprintf(out, "Unknown message type: %s\n", msg.Type)
				}
			}
		}
	}
}

// runResult maps the outcome of a submitted run to the command's result
func runResult(v *types.ViewInfo) error {
	switch {
	case v.Phase == "failed":
		return fmt.Errorf("request failed: %s", v.Reason)
	case v.IsError:
		return ErrDiagnostic
	}
	return nil
}

func convertToWebSocketURL(httpURL string) (string, error) {
	u, err := url.Parse(httpURL)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
	}

	return strings.TrimRight(u.String(), "/"), nil
}
