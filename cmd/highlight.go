package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/smbox/smbox/internal/highlight"
	"github.com/smbox/smbox/internal/tracing"
	"github.com/smbox/smbox/internal/ui/body"
)

var highlightMbox bool

var highlightCmd = &cobra.Command{
	Use:   "highlight [FILE]",
	Short: "Print text colored by the highlight rules",
	Long: `Print FILE (or standard input) with the configured highlight contexts
applied, one scan over the whole input.

With --mbox the input is treated as an mbox and the active context is cleared
at every "From " separator, as the viewer does per message.

Examples:
  smbox highlight /var/log/auth.log
  journalctl -u sshd | smbox highlight
  smbox highlight --mbox $MAIL | less -R`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHighlight,
}

func init() {
	highlightCmd.Flags().BoolVar(&highlightMbox, "mbox", false, "reset the context at each message separator")
	rootCmd.AddCommand(highlightCmd)
}

func runHighlight(cmd *cobra.Command, args []string) (err error) {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	_, span := tracing.Start(cmd.Context(), tracing.SpanHighlight,
		attribute.Int(tracing.AttrContextCount, engine.Rules().Len()))
	defer func() { tracing.End(span, err) }()

	return highlightStream(cmd.OutOrStdout(), in, engine, highlightMbox)
}

// highlightStream paints each line of r through one engine session. With
// perMessage set the session is reset on every mbox separator line.
func highlightStream(w io.Writer, r io.Reader, engine *highlight.Engine, perMessage bool) error {
	session := engine.NewSession()
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	for {
		line, readErr := br.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if perMessage && strings.HasPrefix(line, "From ") {
				session.Reset()
			}
			if _, err := bw.WriteString(body.Paint(line, session.ProcessLine(line)) + "\n"); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return fmt.Errorf("reading input: %w", readErr)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
