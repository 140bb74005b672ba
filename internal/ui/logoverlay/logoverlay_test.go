package logoverlay

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/smbox/smbox/internal/log"
)

func setupLog(t *testing.T) {
	t.Helper()
	log.InitWriter(&bytes.Buffer{}, log.LevelDebug)
	t.Cleanup(log.Reset)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func openOverlay(t *testing.T) Model {
	t.Helper()
	m := New()
	m.SetSize(100, 30)
	m.Toggle()
	require.True(t, m.Visible())
	return m
}

func TestHiddenByDefault(t *testing.T) {
	m := New()
	require.False(t, m.Visible())
	require.Empty(t, m.View())
	require.Equal(t, "bg", m.Overlay("bg"))
}

func TestView_ShowsEntries(t *testing.T) {
	setupLog(t)
	log.Info(log.CatMbox, "loaded mailbox")
	log.Error(log.CatTrash, "archive failed")

	view := ansi.Strip(openOverlay(t).View())
	require.Contains(t, view, "Logs")
	require.Contains(t, view, "loaded mailbox")
	require.Contains(t, view, "archive failed")
}

func TestFilter_ErrorOnly(t *testing.T) {
	setupLog(t)
	log.Debug(log.CatUI, "noisy detail")
	log.Error(log.CatTrash, "archive failed")

	m, _ := openOverlay(t).Update(keyMsg("e"))
	view := ansi.Strip(m.View())
	require.NotContains(t, view, "noisy detail")
	require.Contains(t, view, "archive failed")
}

func TestClear(t *testing.T) {
	setupLog(t)
	log.Info(log.CatMbox, "old entry")

	m, _ := openOverlay(t).Update(keyMsg("c"))
	view := ansi.Strip(m.View())
	require.NotContains(t, view, "old entry")
	require.Contains(t, view, "No logs to display")
}

func TestEscCloses(t *testing.T) {
	setupLog(t)
	m, cmd := openOverlay(t).Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.Visible())
	require.NotNil(t, cmd)
	require.IsType(t, CloseMsg{}, cmd())
}

func TestLogEvent_Refreshes(t *testing.T) {
	setupLog(t)
	m := openOverlay(t)

	log.Warn(log.CatWatcher, "late arrival")
	m, _ = m.Update(log.LogEvent{Payload: "late arrival"})
	require.Contains(t, ansi.Strip(m.View()), "late arrival")
}

func TestOverlay_Centered(t *testing.T) {
	setupLog(t)
	m := openOverlay(t)
	bg := strings.TrimSuffix(strings.Repeat(strings.Repeat(".", 100)+"\n", 30), "\n")

	out := m.Overlay(bg)
	require.Len(t, strings.Split(out, "\n"), 30)
}

func TestLevelOf(t *testing.T) {
	l, ok := levelOf("2025-01-01T00:00:00 [WARN] [ui] x")
	require.True(t, ok)
	require.Equal(t, log.LevelWarn, l)

	_, ok = levelOf("no level here")
	require.False(t, ok)
}
