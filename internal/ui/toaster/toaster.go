// Package toaster provides a notification toast overlay component.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smbox/smbox/internal/ui/overlay"
	"github.com/smbox/smbox/internal/ui/styles"
)

// Style determines the visual appearance of the toast.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
	StyleWarn
)

// Model holds the toaster state. Each Show bumps seq so a dismiss scheduled
// for an older toast does not hide a newer one.
type Model struct {
	message string
	style   Style
	visible bool
	seq     int
}

// New creates a hidden toaster.
func New() Model {
	return Model{}
}

// Show displays message and returns the dismissal command for it.
func (m Model) Show(message string, style Style, after time.Duration) (Model, tea.Cmd) {
	m.message = message
	m.style = style
	m.visible = true
	m.seq++
	seq := m.seq
	return m, tea.Tick(after, func(time.Time) tea.Msg {
		return DismissMsg{seq: seq}
	})
}

// Update hides the toast when its own DismissMsg arrives.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.seq == m.seq {
		m.visible = false
		m.message = ""
	}
	return m
}

// Visible returns whether the toast is currently showing.
func (m Model) Visible() bool {
	return m.visible
}

// Message returns the text of the visible toast.
func (m Model) Message() string {
	return m.message
}

// View renders the toast box.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}

	style := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	var border lipgloss.AdaptiveColor
	switch m.style {
	case StyleError:
		border = styles.ToastBorderErrorColor
	case StyleInfo:
		border = styles.ToastBorderInfoColor
	case StyleWarn:
		border = styles.ToastBorderWarnColor
	default:
		border = styles.ToastBorderSuccessColor
	}
	return style.BorderForeground(border).Render(m.message)
}

// Overlay renders the toast over bg, bottom-center.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible || m.message == "" {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.Bottom,
		PadY:     1,
	}, m.View(), bg)
}

// DismissMsg hides the toast that scheduled it.
type DismissMsg struct {
	seq int
}
