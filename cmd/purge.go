package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/smbox/smbox/internal/app"
	"github.com/smbox/smbox/internal/mbox"
	"github.com/smbox/smbox/internal/ui/styles"
)

// diffContext is the number of unchanged lines shown around each change.
const diffContext = 2

var purgeDryRun bool

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Purge deleted messages without opening the viewer",
	Long: `Save the mbox as the viewer does on quit: messages whose Status header
carries D are archived to the trash and removed, and every other message is
marked O (no longer recent).

Use --dry-run to print the rewrite as a diff without touching the file.`,
	Args: cobra.NoArgs,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().BoolVar(&purgeDryRun, "dry-run", false, "print the changes instead of writing them")
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, _ []string) error {
	cleanupLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer cleanupLog()

	path, err := mboxPath(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	box, err := mbox.Load(ctx, path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if purgeDryRun {
		return writePreview(out, box)
	}

	shutdownTracing, err := setupTracing()
	if err != nil {
		return err
	}
	defer shutdownTracing()

	store, err := openTrash(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	purged, err := app.Save(ctx, box, path, archiver(store))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Purged %d message(s), kept %d in %s\n", purged, box.Len(), path)
	return err
}

// writePreview prints what saving box would change.
func writePreview(w io.Writer, box *mbox.Mbox) error {
	before := box.String()
	after := box.Clone()
	after.Finish()

	lines := mbox.Diff(before, after.String(), diffContext)
	if !mbox.HasChanges(lines) {
		_, err := fmt.Fprintln(w, "No changes")
		return err
	}
	for _, l := range lines {
		var s string
		switch l.Kind {
		case mbox.LineAdded:
			s = styles.DiffAddedStyle.Render("+" + l.Text)
		case mbox.LineRemoved:
			s = styles.DiffRemovedStyle.Render("-" + l.Text)
		case mbox.LineElided:
			s = styles.DiffElidedStyle.Render("...")
		default:
			s = " " + l.Text
		}
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}
	return nil
}
