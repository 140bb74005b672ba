// Package help contains the help overlay component.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/smbox/smbox/internal/keys"
	"github.com/smbox/smbox/internal/log"
	"github.com/smbox/smbox/internal/ui/markdown"
	"github.com/smbox/smbox/internal/ui/overlay"
	"github.com/smbox/smbox/internal/ui/styles"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			PaddingLeft(2)

	dividerStyle = lipgloss.NewStyle().
			Foreground(styles.OverlayBorderColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(9)

	descStyle = lipgloss.NewStyle().
			Foreground(styles.TextDescriptionColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.OverlayBorderColor)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)

	columnStyle = lipgloss.NewStyle().MarginRight(4)
)

// sectionTitles names the FullHelp groups in order.
var sectionTitles = []string{"Navigation", "Marks", "General"}

// Model holds the help view state.
type Model struct {
	keys     keys.KeyMap
	contexts []string
	style    string
	width    int
	height   int

	// rules is the rendered highlight section, rebuilt on SetSize.
	rules string
}

// New creates a help view listing km and the configured highlight contexts.
// markdownStyle selects the glamour style for the contexts section.
func New(km keys.KeyMap, contexts []string, markdownStyle string) Model {
	return Model{keys: km, contexts: contexts, style: markdownStyle}
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.rules = m.renderRules()
	return m
}

// View renders the help box alone, centered.
func (m Model) View() string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderContent())
}

// Overlay renders the help box on top of a background view.
func (m Model) Overlay(background string) string {
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.renderContent(), background)
}

func (m Model) renderContent() string {
	groups := m.keys.FullHelp()
	cols := make([]string, 0, len(groups))
	for i, group := range groups {
		var col strings.Builder
		col.WriteString(sectionStyle.Render(sectionTitles[i]))
		col.WriteString("\n")
		for _, b := range group {
			col.WriteString(renderBinding(b))
		}
		if i < len(groups)-1 {
			cols = append(cols, columnStyle.Render(col.String()))
		} else {
			cols = append(cols, col.String())
		}
	}
	columns := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	body := columns
	if m.rules != "" {
		body += "\n" + m.rules
	}
	body += "\n" + footerStyle.Render("Press ? or Esc to close")

	boxWidth := lipgloss.Width(body) + 4
	var content strings.Builder
	content.WriteString(titleStyle.Render("Keybindings"))
	content.WriteString("\n")
	content.WriteString(dividerStyle.Render(strings.Repeat("─", boxWidth)))
	content.WriteString("\n")
	content.WriteString(contentStyle.Render(body))

	return boxStyle.Width(boxWidth).Render(content.String())
}

func renderBinding(b key.Binding) string {
	h := b.Help()
	return keyStyle.Render(h.Key) + descStyle.Render(h.Desc) + "\n"
}

// renderRules renders the highlight context list through glamour. Rendering
// failures only drop the section.
func (m Model) renderRules() string {
	width := max(min(m.width-8, 72), 20)
	r, err := markdown.New(width, m.style)
	if err != nil {
		log.ErrorErr(log.CatUI, "Help renderer unavailable", err)
		return ""
	}
	out, err := r.Render(rulesMarkdown(m.contexts))
	if err != nil {
		log.ErrorErr(log.CatUI, "Rendering help failed", err)
		return ""
	}
	return strings.TrimRight(out, "\n")
}

// rulesMarkdown describes the active highlight contexts.
func rulesMarkdown(contexts []string) string {
	var b strings.Builder
	b.WriteString("## Highlighting\n\n")
	if len(contexts) == 0 {
		b.WriteString("No highlight contexts configured. Add a `highlights:` section to the config file.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%d context(s), checked in this order:\n\n", len(contexts))
	for _, name := range contexts {
		fmt.Fprintf(&b, "- `%s`\n", name)
	}
	return b.String()
}
