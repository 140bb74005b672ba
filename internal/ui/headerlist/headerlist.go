// Package headerlist renders the message list above the body pane.
package headerlist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/smbox/smbox/internal/mbox"
	"github.com/smbox/smbox/internal/ui/styles"
)

const (
	separator  = " | "
	zonePrefix = "header:"
)

// Layout holds the fixed column widths. The subject takes the rest.
type Layout struct {
	DateWidth int
	FromWidth int
}

// ZoneID returns the bubblezone id marking row idx.
func ZoneID(idx int) string {
	return zonePrefix + strconv.Itoa(idx)
}

// Window returns the first visible row for a list of n rows shown rows at a
// time, keeping selected visible and moving as little as possible from
// offset.
func Window(n, rows, selected, offset int) int {
	if rows <= 0 || n <= rows {
		return 0
	}
	if selected < offset {
		offset = selected
	}
	if selected >= offset+rows {
		offset = selected - rows + 1
	}
	return max(min(offset, n-rows), 0)
}

// Render draws rows [offset, offset+rows) of msgs, width cells wide. Each row
// is zone-marked with ZoneID so mouse clicks can be resolved.
func Render(msgs []*mbox.Message, selected, offset, rows, width int, layout Layout) string {
	end := min(offset+rows, len(msgs))
	lines := make([]string, 0, rows)
	for i := offset; i < end; i++ {
		lines = append(lines, zone.Mark(ZoneID(i), renderRow(msgs[i], i == selected, width, layout)))
	}
	return strings.Join(lines, "\n")
}

// Divider renders the " --- i/n ---" line between the list and the body.
func Divider(selected, total, width int) string {
	pos := "??"
	if total > 0 && selected >= 0 {
		pos = strconv.Itoa(selected + 1)
	}
	text := fmt.Sprintf(" --- %s/%d ---", pos, total)
	return styles.DividerStyle.Render(ansi.Truncate(text, width, ""))
}

func renderRow(msg *mbox.Message, selected bool, width int, layout Layout) string {
	prefix := "  "
	if selected {
		prefix = "> "
	}

	mark := "  "
	switch {
	case msg.HasStatus(mbox.StatusDeleted):
		mark = styles.DeletedMarkStyle.Render("D") + " "
	case !msg.HasStatus(mbox.StatusRead):
		mark = styles.UnreadMarkStyle.Render("N") + " "
	}

	from, _ := msg.FieldValue(mbox.FieldFrom)
	subject, _ := msg.FieldValue(mbox.FieldSubject)

	fixed := len(prefix) + len(mark) + layout.DateWidth + layout.FromWidth + 2*len(separator)
	subjectWidth := max(width-fixed, 0)

	row := prefix + mark +
		Fit(msg.DateLabel(), layout.DateWidth) + separator +
		Fit(from, layout.FromWidth) + separator +
		Fit(subject, subjectWidth)
	row = ansi.Truncate(row, width, "")

	if !selected {
		return row
	}
	if pad := width - ansi.StringWidth(row); pad > 0 {
		row += strings.Repeat(" ", pad)
	}
	return styles.SelectedRowStyle.Render(styles.SelectionIndicatorStyle.Render(row))
}

// Fit cuts s to at most width cells on a grapheme boundary and pads it with
// spaces to exactly width. Control characters are replaced by spaces.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = sanitize(s)

	var b strings.Builder
	used := 0
	state := -1
	for len(s) > 0 {
		cluster, rest, _, newState := uniseg.StepString(s, state)
		w := runewidth.StringWidth(cluster)
		if used+w > width {
			break
		}
		b.WriteString(cluster)
		used += w
		s, state = rest, newState
	}
	return b.String() + strings.Repeat(" ", width-used)
}

func sanitize(s string) string {
	s = strings.TrimRight(s, "\r")
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
}
