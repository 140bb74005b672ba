package headerlist

import (
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/smbox/smbox/internal/mbox"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

const sample = `From alice@example.com Mon Jan  6 10:00:00 2025
Date: Mon, 6 Jan 2025 10:00:00 +1000 (AEST)
From: Alice <alice@example.com>
Subject: Weekly report
Status: RO

body one
From bob@example.com Tue Jan  7 11:00:00 2025
Date: Tue, 7 Jan 2025 11:00:00 +1000
From: Bob <bob@example.com>
Subject: Unread one

body two
`

func messages(t *testing.T) []*mbox.Message {
	t.Helper()
	return mbox.ParseString(sample).Messages()
}

func TestFit(t *testing.T) {
	require.Equal(t, "abc  ", Fit("abc", 5))
	require.Equal(t, "abcde", Fit("abcdefgh", 5))
	require.Equal(t, "", Fit("abc", 0))
	require.Equal(t, "a b", Fit("a\tb", 3))
}

func TestFit_WideRunes(t *testing.T) {
	// A double-width rune that does not fit is dropped whole, then padded.
	require.Equal(t, "日本 ", Fit("日本語", 5))
	require.Equal(t, 5, ansi.StringWidth(Fit("日本語", 5)))
}

func TestRender_Columns(t *testing.T) {
	out := zone.Scan(Render(messages(t), 0, 0, 10, 120, Layout{DateWidth: 25, FromWidth: 40}))
	lines := strings.Split(ansi.Strip(out), "\n")
	require.Len(t, lines, 2)

	require.True(t, strings.HasPrefix(lines[0], ">   Mon, 6 Jan 2025 10:00:00"), lines[0])
	require.Contains(t, lines[0], " | Alice <alice@example.com>")
	require.Contains(t, lines[0], " | Weekly report")
	require.Equal(t, 120, ansi.StringWidth(lines[0]), "selected row fills the width")

	require.True(t, strings.HasPrefix(lines[1], "  N "), "unread marker: %q", lines[1])
	require.LessOrEqual(t, ansi.StringWidth(lines[1]), 120)
}

func TestRender_DeletedMarker(t *testing.T) {
	msgs := messages(t)
	msgs[1].SetStatus(mbox.StatusDeleted)

	out := ansi.Strip(zone.Scan(Render(msgs, 0, 0, 10, 100, Layout{DateWidth: 25, FromWidth: 40})))
	require.True(t, strings.HasPrefix(strings.Split(out, "\n")[1], "  D "))
}

func TestRender_NarrowTruncates(t *testing.T) {
	out := ansi.Strip(zone.Scan(Render(messages(t), 1, 0, 10, 30, Layout{DateWidth: 25, FromWidth: 40})))
	for _, line := range strings.Split(out, "\n") {
		require.LessOrEqual(t, ansi.StringWidth(line), 30)
	}
}

func TestRender_SelectionBackground(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() { lipgloss.SetColorProfile(termenv.Ascii) })

	out := zone.Scan(Render(messages(t), 0, 0, 10, 80, Layout{DateWidth: 25, FromWidth: 40}))
	first := strings.Split(out, "\n")[0]
	require.Contains(t, first, "48;5;236", "selected row uses palette grey")
}

func TestDivider(t *testing.T) {
	require.Equal(t, " --- 2/5 ---", ansi.Strip(Divider(1, 5, 80)))
	require.Equal(t, " --- ??/0 ---", ansi.Strip(Divider(0, 0, 80)))
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name                      string
		n, rows, selected, offset int
		want                      int
	}{
		{"fits", 3, 5, 2, 0, 0},
		{"stays", 10, 4, 2, 1, 1},
		{"scrolls down", 10, 4, 6, 0, 3},
		{"scrolls up", 10, 4, 1, 5, 1},
		{"clamps", 10, 4, 9, 9, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Window(tt.n, tt.rows, tt.selected, tt.offset))
		})
	}
}
