package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/smbox/smbox/internal/ui/body"
	"github.com/smbox/smbox/internal/ui/headerlist"
	"github.com/smbox/smbox/internal/ui/styles"
)

// panes splits the screen: the body gets three quarters, the header list
// takes what it needs of the rest and any slack goes back to the body.
func (m Model) panes() (headerRows, bodyRows int) {
	if m.height <= 1 {
		return 0, 0
	}
	avail := m.height - 1 // divider
	bodyRows = avail * 3 / 4
	headerRows = min(m.box.Len(), avail-bodyRows)
	bodyRows = avail - headerRows
	return headerRows, bodyRows
}

// refreshBody re-renders the selected body into the viewport, clamping the
// page and the header window.
func (m *Model) refreshBody() {
	headerRows, bodyRows := m.panes()
	m.offset = headerlist.Window(m.box.Len(), headerRows, m.selected, m.offset)
	if m.width <= 0 || bodyRows <= 0 {
		return
	}

	var lines []string
	if cur := m.current(); cur != nil {
		lines = m.renderer.Lines(context.Background(), body.Request{
			Generation: m.generation,
			Index:      m.selected,
			Width:      m.width,
			Message:    cur,
		})
	}

	m.pages = max((len(lines)+bodyRows-1)/bodyRows, 1)
	m.page = max(min(m.page, m.pages-1), 0)

	m.body = viewport.New(m.width, bodyRows)
	m.body.SetContent(strings.Join(lines, "\n"))
	m.body.SetYOffset(m.page * bodyRows)
}

// clickedRow resolves a mouse event to the header row under it.
func (m Model) clickedRow(msg tea.MouseMsg) (int, bool) {
	headerRows, _ := m.panes()
	for i := m.offset; i < min(m.offset+headerRows, m.box.Len()); i++ {
		if z := zone.Get(headerlist.ZoneID(i)); z != nil && z.InBounds(msg) {
			return i, true
		}
	}
	return 0, false
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var view string
	if m.box.Len() == 0 {
		view = styles.MutedStyle.Render(" No messages in " + m.path)
	} else {
		headerRows, _ := m.panes()
		view = strings.Join([]string{
			headerlist.Render(m.box.Messages(), m.selected, m.offset, headerRows, m.width, m.layout),
			headerlist.Divider(m.selected, m.box.Len(), m.width),
			m.body.View(),
		}, "\n")
	}

	if m.showHelp {
		view = m.help.Overlay(view)
	}
	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}
	if m.debugMode && m.logOverlay.Visible() {
		view = m.logOverlay.Overlay(view)
	}
	return zone.Scan(view)
}
