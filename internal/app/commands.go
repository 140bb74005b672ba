package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smbox/smbox/internal/log"
	"github.com/smbox/smbox/internal/mbox"
)

type reloadedMsg struct {
	box *mbox.Mbox
	err error
}

type savedMsg struct {
	box    *mbox.Mbox
	purged int
	err    error
}

func (m Model) reloadCmd() tea.Cmd {
	path := m.path
	return func() tea.Msg {
		box, err := mbox.Load(context.Background(), path)
		return reloadedMsg{box: box, err: err}
	}
}

// saveCmd commits a copy of the mbox so the model stays untouched if the
// save fails.
func (m Model) saveCmd() tea.Cmd {
	box := m.box.Clone()
	path := m.path
	archiver := m.trash
	return func() tea.Msg {
		purged, err := Save(context.Background(), box, path, archiver)
		return savedMsg{box: box, purged: purged, err: err}
	}
}

// Save ends a session on box: messages marked deleted are archived to trash
// (when non-nil) and dropped, the rest are marked non-recent, and path is
// rewritten. It returns the number of purged messages.
func Save(ctx context.Context, box *mbox.Mbox, path string, trash Archiver) (int, error) {
	if path == "" {
		return 0, fmt.Errorf("saving mbox: %w", mbox.ErrNoMboxPath)
	}

	var archive func([]*mbox.Message) error
	if trash != nil {
		archive = func(purged []*mbox.Message) error {
			if _, err := trash.Archive(ctx, path, purged); err != nil {
				return fmt.Errorf("archiving purged messages: %w", err)
			}
			return nil
		}
	}

	purged, err := box.Commit(ctx, path, archive)
	if err != nil {
		return 0, err
	}
	log.Info(log.CatMbox, "Session saved", "path", path, "messages", box.Len(), "purged", len(purged))
	return len(purged), nil
}
