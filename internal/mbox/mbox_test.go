package mbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const sample = `From alice@example.com Fri Sep  4 11:44:49 2020
Date: Fri, 4 Sep 2020 11:44:49 +1000 (AEST)
From: Alice <alice@example.com>
Subject: Daily report
Status: R

login failures:
d1234567d

From bob@example.com Sat Sep  5 08:00:00 2020
Date: Sat, 5 Sep 2020 08:00:00 +1000
From: Bob <bob@example.com>
Subject: Lunch?

From: this is body text, not a header
`

func TestParse_SplitsOnSeparator(t *testing.T) {
	box := ParseString(sample)
	require.Equal(t, 2, box.Len())

	first := box.At(0)
	require.Equal(t, "Daily report", first.Subject())
	require.Equal(t, "Alice <alice@example.com>", first.From())
	require.Equal(t, "From alice@example.com Fri Sep  4 11:44:49 2020", first.Separator())
	require.True(t, first.HasStatus(StatusRead))

	body, ok := first.BodyLines()
	require.True(t, ok)
	require.Equal(t, []string{"login failures:", "d1234567d", ""}, body)

	second := box.At(1)
	require.Equal(t, "Bob <bob@example.com>", second.From(), "body lines are not headers")
	require.False(t, second.HasStatus(StatusRead))
	require.Nil(t, box.At(2))
	require.Nil(t, box.At(-1))
}

func TestParse_LeadingLinesFormMessage(t *testing.T) {
	box := ParseString("stray line\nFrom x\nSubject: s\n\nbody\n")
	require.Equal(t, 2, box.Len())
	require.Equal(t, "", box.At(0).Separator())
	require.Equal(t, []string{"stray line"}, box.At(0).Lines())
}

func TestParse_Empty(t *testing.T) {
	require.Equal(t, 0, ParseString("").Len())
}

func TestParse_KeepsCarriageReturns(t *testing.T) {
	box := ParseString("From x\r\nSubject: s\r\n")
	require.Equal(t, []string{"From x\r", "Subject: s\r"}, box.At(0).Lines())
}

func TestCRLF_HeadersAndStatus(t *testing.T) {
	msg := ParseString("From x\r\nSubject: s\r\n\r\nbody\r\n").At(0)
	require.Equal(t, "s", msg.Subject())

	body, ok := msg.BodyLines()
	require.True(t, ok)
	require.Equal(t, []string{"body\r"}, body)

	msg.SetStatus(StatusRead)
	msg.SetStatus(StatusDeleted)
	require.Equal(t, "Status: RD\r", msg.Lines()[2])
	msg.UnsetStatus(StatusRead)
	require.Equal(t, "Status: D\r", msg.Lines()[2])
	require.Equal(t, "\r", msg.Lines()[3])
}

func TestParse_LastHeaderWins(t *testing.T) {
	box := ParseString("From x\nSubject: one\nSubject: two\n\n")
	require.Equal(t, "two", box.At(0).Subject())
}

func TestRoundTrip_PreservesText(t *testing.T) {
	require.Equal(t, sample, ParseString(sample).String())
}

func TestRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lines := rapid.SliceOf(rapid.SampledFrom([]string{
			"From a@b Mon Jan  1 00:00:00 2024", "Subject: hi", "Status: RO", "", "body", "From: x",
		})).Draw(rt, "lines")
		text := ""
		for _, l := range lines {
			text += l + "\n"
		}
		if got := ParseString(text).String(); got != text {
			rt.Fatalf("round trip changed text:\n%q\n%q", text, got)
		}
	})
}

func TestSetStatus_AppendsToExistingHeader(t *testing.T) {
	msg := ParseString(sample).At(0)
	msg.SetStatus(StatusNonRecent)
	msg.SetStatus(StatusNonRecent)

	line, ok := msg.Field(FieldStatus)
	require.True(t, ok)
	require.Equal(t, "Status: RO", line)
}

func TestSetStatus_InsertsHeaderBeforeBlankLine(t *testing.T) {
	msg := ParseString(sample).At(1)
	msg.SetStatus(StatusDeleted)

	require.True(t, msg.HasStatus(StatusDeleted))
	require.Equal(t, []string{
		"From bob@example.com Sat Sep  5 08:00:00 2020",
		"Date: Sat, 5 Sep 2020 08:00:00 +1000",
		"From: Bob <bob@example.com>",
		"Subject: Lunch?",
		"Status: D",
		"",
		"From: this is body text, not a header",
	}, msg.Lines())

	body, ok := msg.BodyLines()
	require.True(t, ok)
	require.Equal(t, []string{"From: this is body text, not a header"}, body)
}

func TestSetStatus_NoBlankLineIsNoop(t *testing.T) {
	msg := ParseString("From x\nSubject: s\n").At(0)
	msg.SetStatus(StatusRead)
	require.False(t, msg.HasStatus(StatusRead))
	require.Len(t, msg.Lines(), 2)
}

func TestUnsetAndToggleStatus(t *testing.T) {
	msg := ParseString(sample).At(0)
	msg.UnsetStatus(StatusRead)
	require.False(t, msg.HasStatus(StatusRead))
	line, _ := msg.Field(FieldStatus)
	require.Equal(t, "Status: ", line)

	require.True(t, msg.ToggleStatus(StatusDeleted))
	require.False(t, msg.ToggleStatus(StatusDeleted))

	missing := ParseString("From x\n\n").At(0)
	missing.UnsetStatus(StatusRead)
	require.Len(t, missing.Lines(), 2)
}

func TestDateLabel(t *testing.T) {
	box := ParseString(sample)
	require.Equal(t, "Fri, 4 Sep 2020 11:44:49", box.At(0).DateLabel())

	_, ok := box.At(1).Date()
	require.True(t, ok)

	odd := ParseString("From x\nDate: someday +0000 maybe\n\n").At(0)
	_, ok = odd.Date()
	require.False(t, ok)
	require.Equal(t, "someday", odd.DateLabel())

	require.Equal(t, "", ParseString("From x\n\n").At(0).DateLabel())
}

func TestFinish_PurgesDeletedAndMarksRest(t *testing.T) {
	box := ParseString(sample)
	box.At(1).SetStatus(StatusDeleted)

	purged := box.Finish()
	require.Len(t, purged, 1)
	require.Equal(t, "Lunch?", purged[0].Subject())
	require.Equal(t, 1, box.Len())
	require.True(t, box.At(0).HasStatus(StatusNonRecent))
	require.True(t, box.At(0).HasStatus(StatusRead))
}

func TestCarryStatus(t *testing.T) {
	prev := ParseString(sample)
	prev.At(0).UnsetStatus(StatusRead)
	prev.At(1).SetStatus(StatusDeleted)
	prev.At(1).SetStatus(StatusRead)

	next := ParseString(sample + "From carol@example.com Sun Sep  6 09:00:00 2020\nSubject: New\n\nhi\n")
	next.CarryStatus(prev)

	require.False(t, next.At(0).HasStatus(StatusRead))
	require.True(t, next.At(1).HasStatus(StatusDeleted))
	require.True(t, next.At(1).HasStatus(StatusRead))
	require.False(t, next.At(2).HasStatus(StatusDeleted))
}

func TestClone_IsDeep(t *testing.T) {
	box := ParseString(sample)
	c := box.Clone()
	c.At(1).SetStatus(StatusDeleted)
	require.False(t, box.At(1).HasStatus(StatusDeleted))
	require.True(t, strings.Contains(c.String(), "Status: D"))
}
