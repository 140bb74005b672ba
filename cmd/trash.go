package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/smbox/smbox/internal/trash"
	"github.com/smbox/smbox/internal/ui/headerlist"
)

// Column widths for trash list output.
const (
	trashIDWidth   = 8
	trashAgeWidth  = 8
	trashFromWidth = 30
)

var trashRestoreMbox string

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Inspect and restore purged messages",
}

var trashListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived messages, newest first",
	Args:  cobra.NoArgs,
	RunE:  runTrashList,
}

var trashRestoreCmd = &cobra.Command{
	Use:   "restore ID",
	Short: "Append an archived message back to its mbox",
	Long: `Append the archived message ID back to the mbox it was purged from, with
its D status cleared, and remove it from the trash. A unique prefix of the ID
is enough. Use --mbox to restore into a different file.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrashRestore,
}

func init() {
	trashRestoreCmd.Flags().StringVar(&trashRestoreMbox, "mbox", "", "restore into this mbox instead")
	trashCmd.AddCommand(trashListCmd, trashRestoreCmd)
	rootCmd.AddCommand(trashCmd)
}

// requireTrash opens the trash store, failing when trash is disabled.
func requireTrash(cmd *cobra.Command) (*trash.Store, error) {
	store, err := openTrash(cmd.Context())
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("trash is disabled; set trash.enabled in the config")
	}
	return store, nil
}

func runTrashList(cmd *cobra.Command, _ []string) error {
	store, err := requireTrash(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	return writeTrashList(cmd.OutOrStdout(), entries, time.Now())
}

func writeTrashList(w io.Writer, entries []trash.Entry, now time.Time) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "Trash is empty")
		return err
	}
	for _, e := range entries {
		id := e.ID
		if len(id) > trashIDWidth {
			id = id[:trashIDWidth]
		}
		_, err := fmt.Fprintf(w, "%s  %s  %s  %s\n",
			headerlist.Fit(id, trashIDWidth),
			headerlist.Fit(trash.FormatAge(e.ArchivedAt, now), trashAgeWidth),
			headerlist.Fit(e.From, trashFromWidth),
			e.Subject,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func runTrashRestore(cmd *cobra.Command, args []string) error {
	cleanupLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer cleanupLog()

	store, err := requireTrash(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	e, err := store.Restore(cmd.Context(), args[0], trashRestoreMbox)
	if err != nil {
		return err
	}
	target := trashRestoreMbox
	if target == "" {
		target = e.MboxPath
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Restored %q to %s\n", e.Subject, target)
	return err
}
