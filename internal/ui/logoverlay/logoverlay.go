// Package logoverlay shows recent debug log entries over the viewer.
package logoverlay

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/smbox/smbox/internal/log"
	"github.com/smbox/smbox/internal/ui/overlay"
	"github.com/smbox/smbox/internal/ui/styles"
)

const (
	maxRows     = 25
	minRows     = 5
	maxBoxWidth = 160
	minBoxWidth = 40

	// chrome is title, two dividers, footer and the border.
	chrome = 6
)

// filters maps a key to the minimum level it selects, in footer order.
var filters = []struct {
	key   string
	label string
	level log.Level
}{
	{"d", "Debug", log.LevelDebug},
	{"i", "Info", log.LevelInfo},
	{"w", "Warn", log.LevelWarn},
	{"e", "Error", log.LevelError},
}

// CloseMsg is sent when the overlay closes itself.
type CloseMsg struct{}

// Model is the log overlay state.
type Model struct {
	visible  bool
	minLevel log.Level
	width    int
	height   int
	viewport viewport.Model
}

// New creates a hidden overlay showing every level.
func New() Model {
	return Model{minLevel: log.LevelDebug}
}

// Update handles keys while visible. A log.LogEvent refreshes the content so
// new entries appear while the overlay is open.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case log.LogEvent:
		atBottom := m.viewport.AtBottom()
		m.refresh()
		if atBottom {
			m.viewport.GotoBottom()
		}
	case tea.KeyMsg:
		k := msg.String()
		for _, f := range filters {
			if k == f.key {
				m.minLevel = f.level
				m.refresh()
				return m, nil
			}
		}
		switch k {
		case "c":
			log.ClearBuffer()
			m.refresh()
		case "j", "down":
			m.viewport.ScrollDown(1)
		case "k", "up":
			m.viewport.ScrollUp(1)
		case "g":
			m.viewport.GotoTop()
		case "G":
			m.viewport.GotoBottom()
		case "ctrl+x", "esc":
			m.visible = false
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}
	return m, nil
}

// View renders the overlay box.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	width := m.boxWidth()
	divider := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor).Render(strings.Repeat("─", width))
	title := lipgloss.NewStyle().Bold(true).Foreground(styles.OverlayTitleColor).PaddingLeft(1).Render("Logs")

	body := strings.Join([]string{title, divider, m.viewport.View(), divider, m.footer()}, "\n")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(width).
		Render(body)
}

// Overlay renders the box centered over bg.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}

// Visible returns whether the overlay is showing.
func (m Model) Visible() bool {
	return m.visible
}

// Toggle flips visibility, scrolling to the newest entry on open.
func (m *Model) Toggle() {
	m.visible = !m.visible
	if m.visible {
		m.refresh()
		m.viewport.GotoBottom()
	}
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.refresh()
}

func (m Model) boxWidth() int {
	return max(min(m.width-4, maxBoxWidth), minBoxWidth)
}

func (m *Model) refresh() {
	if m.width == 0 || m.height == 0 {
		return
	}
	rows := max(min(maxRows, m.height-chrome), minRows)
	inner := m.boxWidth() - 2

	offset := m.viewport.YOffset
	m.viewport = viewport.New(inner, rows)
	m.viewport.SetContent(m.content(inner))
	m.viewport.SetYOffset(offset)
}

func (m Model) content(width int) string {
	var lines []string
	for _, entry := range log.RecentLogs(10000) {
		level, ok := levelOf(entry)
		if ok && level < m.minLevel {
			continue
		}
		lines = append(lines, colorize(entry, level, ok, width))
	}
	if len(lines) == 0 {
		return lipgloss.NewStyle().Foreground(styles.TextMutedColor).Italic(true).Render("No logs to display")
	}
	return strings.Join(lines, "\n")
}

// levelOf reads the "[LEVEL]" tag written by the log package.
func levelOf(entry string) (log.Level, bool) {
	for _, l := range []log.Level{log.LevelError, log.LevelWarn, log.LevelInfo, log.LevelDebug} {
		if strings.Contains(entry, "["+l.String()+"]") {
			return l, true
		}
	}
	return 0, false
}

func colorize(entry string, level log.Level, known bool, width int) string {
	entry = strings.TrimSuffix(entry, "\n")
	if ansi.StringWidth(entry) > width {
		entry = ansi.Truncate(entry, width, "...")
	}

	color := lipgloss.TerminalColor(styles.TextPrimaryColor)
	if known {
		switch level {
		case log.LevelError:
			color = styles.StatusErrorColor
		case log.LevelWarn:
			color = styles.StatusWarningColor
		case log.LevelInfo:
			color = styles.ToastBorderInfoColor
		default:
			color = styles.TextMutedColor
		}
	}
	return lipgloss.NewStyle().Foreground(color).Render(entry)
}

func (m Model) footer() string {
	hint := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	active := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Bold(true)

	parts := []string{hint.Render("[c] Clear")}
	for _, f := range filters {
		label := "[" + f.key + "] " + f.label
		if f.level == m.minLevel {
			parts = append(parts, active.Render(label))
		} else {
			parts = append(parts, hint.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}
