// Package app contains the root application model.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smbox/smbox/internal/config"
	"github.com/smbox/smbox/internal/flags"
	"github.com/smbox/smbox/internal/highlight"
	"github.com/smbox/smbox/internal/keys"
	"github.com/smbox/smbox/internal/log"
	"github.com/smbox/smbox/internal/mbox"
	"github.com/smbox/smbox/internal/pubsub"
	"github.com/smbox/smbox/internal/trash"
	"github.com/smbox/smbox/internal/ui/body"
	"github.com/smbox/smbox/internal/ui/headerlist"
	"github.com/smbox/smbox/internal/ui/help"
	"github.com/smbox/smbox/internal/ui/logoverlay"
	"github.com/smbox/smbox/internal/ui/toaster"
	"github.com/smbox/smbox/internal/watcher"
)

const toastDuration = 3 * time.Second

// Archiver stores purged messages before the mbox is rewritten.
type Archiver interface {
	Archive(ctx context.Context, mboxPath string, msgs []*mbox.Message) ([]trash.Entry, error)
}

// Options configures a viewer session.
type Options struct {
	Path   string     // mbox file, rewritten on save and watched for changes
	Box    *mbox.Mbox // initial contents of Path
	Engine *highlight.Engine
	Config config.Config
	Flags  *flags.Registry
	Trash  Archiver // nil disables archiving
	Debug  bool     // enables the log overlay
}

// Model is the root application state.
type Model struct {
	path  string
	box   *mbox.Mbox
	flags *flags.Registry
	trash Archiver
	keys  keys.KeyMap

	// generation increments on every reload and keys the body cache.
	generation int
	selected   int
	offset     int // first visible header row
	page       int
	pages      int

	width  int
	height int

	layout   headerlist.Layout
	renderer *body.Renderer
	body     viewport.Model

	help     help.Model
	showHelp bool
	toaster  toaster.Model

	debugMode   bool
	logOverlay  logoverlay.Model
	logListener *log.LogListener

	// File watcher for new mail (pubsub-based)
	watcherHandle   *watcher.Watcher
	watcherCtx      context.Context
	watcherCancel   context.CancelFunc
	watcherListener *pubsub.Listener[watcher.WatcherEvent]

	saving bool
	saved  bool
	purged int
}

// New creates the viewer model. The first message is marked read.
func New(opts Options) Model {
	var (
		watcherHandle   *watcher.Watcher
		watcherCtx      context.Context
		watcherCancel   context.CancelFunc
		watcherListener *pubsub.Listener[watcher.WatcherEvent]
	)

	if opts.Config.Watch && opts.Path != "" {
		cfg := watcher.DefaultConfig(opts.Path)
		if opts.Config.WatchDebounce > 0 {
			cfg.Debounce = opts.Config.WatchDebounce
		}
		w, err := watcher.New(cfg)
		if err == nil {
			if err := w.Start(); err == nil {
				watcherHandle = w
				watcherCtx, watcherCancel = context.WithCancel(context.Background())
				watcherListener = pubsub.Listen(watcherCtx, w.Broker())
			} else {
				_ = w.Stop()
				log.ErrorErr(log.CatWatcher, "Failed to start watcher", err)
			}
		} else {
			log.ErrorErr(log.CatWatcher, "Failed to create watcher", err)
		}
	}

	box := opts.Box
	if box == nil {
		box = &mbox.Mbox{}
	}
	engine := opts.Engine
	if engine == nil {
		engine = highlight.New(nil)
	}

	km := keys.DefaultKeyMap()
	m := Model{
		path:     opts.Path,
		box:      box,
		flags:    opts.Flags,
		trash:    opts.Trash,
		keys:     km,
		layout:   headerlist.Layout{DateWidth: opts.Config.UI.DateWidth, FromWidth: opts.Config.UI.FromWidth},
		renderer: body.New(engine, opts.Config.UI.WrapBody),
		help:     help.New(km, engine.Rules().Names(), opts.Config.UI.MarkdownStyle),
		toaster:  toaster.New(),

		debugMode:  opts.Debug,
		logOverlay: logoverlay.New(),

		watcherHandle:   watcherHandle,
		watcherCtx:      watcherCtx,
		watcherCancel:   watcherCancel,
		watcherListener: watcherListener,
	}
	if opts.Debug {
		m.logListener = log.NewListener(context.Background())
	}
	m.markRead()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.watcherListener != nil {
		cmds = append(cmds, m.watcherListener.Next())
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Next())
	}
	return tea.Batch(cmds...)
}

// Saved reports whether the session ended by writing the mbox.
func (m Model) Saved() bool {
	return m.saved
}

// Purged returns how many messages the save removed.
func (m Model) Purged() int {
	return m.purged
}

// Box returns the mailbox being viewed.
func (m Model) Box() *mbox.Mbox {
	return m.box
}

// Selected returns the index of the selected message.
func (m Model) Selected() int {
	return m.selected
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help = m.help.SetSize(msg.Width, msg.Height)
		m.logOverlay.SetSize(msg.Width, msg.Height)
		m.refreshBody()
		return m, nil

	case log.LogEvent:
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		if m.logListener != nil {
			cmd = tea.Batch(cmd, m.logListener.Next())
		}
		return m, cmd

	case logoverlay.CloseMsg:
		return m, nil

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case pubsub.Event[watcher.WatcherEvent]:
		return m.handleWatcherEvent(msg.Payload)

	case reloadedMsg:
		return m.handleReloaded(msg)

	case savedMsg:
		return m.handleSaved(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.debugMode && key.Matches(msg, m.keys.Logs) {
		m.logOverlay.Toggle()
		return m, nil
	}
	if m.logOverlay.Visible() {
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		return m, cmd
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Escape) {
			m.showHelp = false
		}
		return m, nil
	}
	if m.saving {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectMessage(m.selected + 1)
	case key.Matches(msg, m.keys.Up):
		m.selectMessage(m.selected - 1)
	case key.Matches(msg, m.keys.PageDown):
		m.setPage(m.page + 1)
	case key.Matches(msg, m.keys.PageUp):
		m.setPage(m.page - 1)
	case key.Matches(msg, m.keys.FirstPage):
		m.setPage(0)
	case key.Matches(msg, m.keys.LastPage):
		m.setPage(m.pages - 1)
	case key.Matches(msg, m.keys.ToggleDelete):
		if cur := m.current(); cur != nil && cur.ToggleStatus(mbox.StatusDeleted) {
			m.selectMessage(m.selected + 1)
		}
	case key.Matches(msg, m.keys.Undelete):
		if cur := m.current(); cur != nil {
			cur.UnsetStatus(mbox.StatusDeleted)
		}
	case key.Matches(msg, m.keys.ToggleUnread):
		if cur := m.current(); cur != nil {
			cur.ToggleStatus(mbox.StatusRead)
		}
	case key.Matches(msg, m.keys.Reload):
		return m, m.reloadCmd()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Quit):
		m.saving = true
		return m, m.saveCmd()
	case key.Matches(msg, m.keys.QuitNoSave):
		log.Info(log.CatUI, "Quit without saving", "path", m.path)
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.flags.Enabled(flags.FlagMouseSelect) || m.showHelp || m.logOverlay.Visible() {
		return m, nil
	}
	switch {
	case msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft:
		if idx, ok := m.clickedRow(msg); ok {
			m.selectMessage(idx)
		}
	case msg.Button == tea.MouseButtonWheelDown:
		m.setPage(m.page + 1)
	case msg.Button == tea.MouseButtonWheelUp:
		m.setPage(m.page - 1)
	}
	return m, nil
}

func (m Model) handleWatcherEvent(ev watcher.WatcherEvent) (tea.Model, tea.Cmd) {
	var listen tea.Cmd
	if m.watcherListener != nil {
		listen = m.watcherListener.Next()
	}
	switch ev.Type {
	case watcher.MboxChanged:
		if m.saving {
			return m, listen
		}
		if m.flags.Enabled(flags.FlagAutoReload) {
			log.Debug(log.CatWatcher, "Mbox changed, reloading", "path", ev.Path)
			return m, tea.Batch(m.reloadCmd(), listen)
		}
		var toast tea.Cmd
		m.toaster, toast = m.toaster.Show("Mailbox changed on disk. Press ctrl+r to reload.", toaster.StyleInfo, toastDuration)
		return m, tea.Batch(toast, listen)
	case watcher.WatcherError:
		log.Warn(log.CatWatcher, "Watcher error received", "error", ev.Error)
	}
	return m, listen
}

func (m Model) handleReloaded(msg reloadedMsg) (tea.Model, tea.Cmd) {
	var toast tea.Cmd
	if msg.err != nil {
		log.ErrorErr(log.CatMbox, "Reload failed", msg.err, "path", m.path)
		m.toaster, toast = m.toaster.Show("Reload failed: "+msg.err.Error(), toaster.StyleError, toastDuration)
		return m, toast
	}

	added := msg.box.Len() - m.box.Len()
	msg.box.CarryStatus(m.box)
	m.box = msg.box
	m.generation++
	m.renderer.Invalidate(context.Background())
	m.selectMessage(m.selected)

	text := fmt.Sprintf("Reloaded %d messages", m.box.Len())
	if added > 0 {
		text = fmt.Sprintf("%d new message(s)", added)
	}
	m.toaster, toast = m.toaster.Show(text, toaster.StyleSuccess, toastDuration)
	return m, toast
}

func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	if msg.err != nil {
		log.ErrorErr(log.CatMbox, "Save failed", msg.err, "path", m.path)
		var toast tea.Cmd
		m.toaster, toast = m.toaster.Show("Save failed: "+msg.err.Error(), toaster.StyleError, toastDuration)
		return m, toast
	}
	m.box = msg.box
	m.saved = true
	m.purged = msg.purged
	return m, tea.Quit
}

// current returns the selected message, or nil for an empty mbox.
func (m Model) current() *mbox.Message {
	return m.box.At(m.selected)
}

// selectMessage moves the selection to idx, clamped, resets the body to its
// first page and marks the message read.
func (m *Model) selectMessage(idx int) {
	idx = max(min(idx, m.box.Len()-1), 0)
	if idx != m.selected {
		m.page = 0
	}
	m.selected = idx
	m.markRead()
	m.refreshBody()
}

func (m *Model) markRead() {
	if msg := m.current(); msg != nil {
		msg.SetStatus(mbox.StatusRead)
	}
}

func (m *Model) setPage(page int) {
	m.page = page
	m.refreshBody()
}

// Close releases resources held by the application.
func (m *Model) Close() error {
	if m.watcherCancel != nil {
		m.watcherCancel()
	}
	if m.watcherHandle != nil {
		if err := m.watcherHandle.Stop(); err != nil {
			return err
		}
	}
	return nil
}
