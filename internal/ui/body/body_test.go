package body

import (
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/smbox/smbox/internal/highlight"
	"github.com/smbox/smbox/internal/mbox"
)

const report = "From root@host Mon Jan  6 10:00:00 2025\r\n" +
	"Subject: Daily report\r\n" +
	"\r\n" +
	"login failures:\r\n" +
	"d1234567d\r\n" +
	"\r\n" +
	"d7654321d\r\n"

func loginEngine() *highlight.Engine {
	return highlight.New(highlight.MustRuleSet([]highlight.ContextDef{{
		Name:    "logins",
		Enter:   `login failures:$`,
		Exit:    `^$`,
		Matches: []highlight.MatchDef{{Pattern: `d.......d`, Color: 107}},
	}}))
}

func withANSI256(t *testing.T) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() { lipgloss.SetColorProfile(termenv.Ascii) })
}

func TestPaint_NoSpans(t *testing.T) {
	require.Equal(t, "plain    text", Paint("plain\ttext", nil))
}

func TestPaint_Overlap(t *testing.T) {
	withANSI256(t)
	spans := highlight.Spans{{Start: 0, End: 6, Color: 110}, {Start: 1, End: 4, Color: 120}}

	out := Paint("grusly", spans)
	require.Equal(t, "grusly", ansi.Strip(out))
	require.Equal(t, 2, strings.Count(out, "38;5;110m"), "outer span split around the inner one")
	require.Equal(t, 1, strings.Count(out, "38;5;120m"))
}

func TestLines_HighlightsWithinContextOnly(t *testing.T) {
	withANSI256(t)
	msg := mbox.ParseString(strings.ReplaceAll(report, "\r\n", "\n")).At(0)
	r := New(loginEngine(), true)

	lines := r.Lines(context.Background(), Request{Index: 0, Width: 80, Message: msg})
	require.Len(t, lines, 4)
	require.Equal(t, "login failures:", lines[0])
	require.Contains(t, lines[1], "38;5;107m", "inside the context")
	require.Equal(t, "d7654321d", lines[3], "after the exit line")
}

func TestLines_StripsCarriageReturns(t *testing.T) {
	withANSI256(t)
	msg := mbox.ParseString(report).At(0)
	lines := New(loginEngine(), true).Lines(context.Background(), Request{Width: 80, Message: msg})

	require.Len(t, lines, 4)
	require.Contains(t, lines[1], "38;5;107m", "enter pattern anchored at $ still matches")
}

func TestLines_FreshSessionPerMessage(t *testing.T) {
	withANSI256(t)
	box := mbox.ParseString("From a\n\nlogin failures:\nd1111111d\nFrom b\n\nd2222222d\n")
	r := New(loginEngine(), true)

	second := r.Lines(context.Background(), Request{Index: 1, Width: 80, Message: box.At(1)})
	require.Equal(t, []string{"d2222222d"}, second)
}

func TestLines_WrapAndTruncate(t *testing.T) {
	msg := mbox.ParseString("From a\n\n" + strings.Repeat("word ", 10) + "\n").At(0)

	wrapped := New(highlight.New(nil), true).Lines(context.Background(), Request{Width: 12, Message: msg})
	require.Greater(t, len(wrapped), 1)
	for _, l := range wrapped {
		require.LessOrEqual(t, ansi.StringWidth(l), 12)
	}

	cut := New(highlight.New(nil), false).Lines(context.Background(), Request{Width: 12, Message: msg})
	require.Len(t, cut, 1)
	require.Equal(t, 12, ansi.StringWidth(cut[0]))
}

func TestLines_Cached(t *testing.T) {
	msg := mbox.ParseString("From a\n\nbody\n").At(0)
	r := New(highlight.New(nil), true)
	ctx := context.Background()

	r.Lines(ctx, Request{Generation: 1, Index: 0, Width: 40, Message: msg})
	r.Lines(ctx, Request{Generation: 1, Index: 0, Width: 40, Message: msg})
	require.Equal(t, 1, r.Cached())

	r.Lines(ctx, Request{Generation: 2, Index: 0, Width: 40, Message: msg})
	require.Equal(t, 2, r.Cached())

	r.Invalidate(ctx)
	require.Equal(t, 0, r.Cached())
}

func TestLines_NoBody(t *testing.T) {
	msg := mbox.ParseString("From a\nSubject: headers only\n").At(0)
	require.Empty(t, New(highlight.New(nil), true).Lines(context.Background(), Request{Width: 40, Message: msg}))
}
