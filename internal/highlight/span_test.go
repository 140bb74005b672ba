package highlight

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSpans_Runs_LastWins(t *testing.T) {
	spans := Spans{
		{Start: 0, End: 6, Color: 10},
		{Start: 1, End: 4, Color: 20},
	}

	require.Equal(t, []Span{
		{Start: 0, End: 1, Color: 10},
		{Start: 1, End: 4, Color: 20},
		{Start: 4, End: 6, Color: 10},
	}, spans.Runs(6))
}

func TestSpans_Runs_GapsAndClipping(t *testing.T) {
	spans := Spans{
		{Start: 2, End: 4, Color: 1},
		{Start: 7, End: 50, Color: 2},
	}

	require.Equal(t, []Span{
		{Start: 2, End: 4, Color: 1},
		{Start: 7, End: 9, Color: 2},
	}, spans.Runs(9))
}

func TestSpans_Runs_MergesAdjacentSameColor(t *testing.T) {
	spans := Spans{
		{Start: 0, End: 2, Color: 5},
		{Start: 2, End: 4, Color: 5},
	}
	require.Equal(t, []Span{{Start: 0, End: 4, Color: 5}}, spans.Runs(4))
}

func TestSpans_Runs_Empty(t *testing.T) {
	require.Nil(t, Spans(nil).Runs(10))
	require.Nil(t, Spans{{Start: 0, End: 1, Color: 1}}.Runs(0))
}

func TestSpans_ColorAt_NoSpan(t *testing.T) {
	_, ok := Spans{{Start: 3, End: 5, Color: 1}}.ColorAt(5)
	require.False(t, ok)
}

func TestSpans_Runs_AgreesWithColorAt_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		length := rapid.IntRange(0, 40).Draw(rt, "length")
		n := rapid.IntRange(0, 6).Draw(rt, "n")
		spans := make(Spans, 0, n)
		for range n {
			start := rapid.IntRange(0, 40).Draw(rt, "start")
			end := rapid.IntRange(start+1, 41).Draw(rt, "end")
			color := rapid.IntRange(0, 255).Draw(rt, "color")
			spans = append(spans, Span{Start: start, End: end, Color: Color(color)})
		}

		runs := spans.Runs(length)
		for idx := range length {
			want, wantOK := spans.ColorAt(idx)
			got, gotOK := Spans(runs).ColorAt(idx)
			if want != got || wantOK != gotOK {
				rt.Fatalf("offset %d: runs give (%d,%v), spans give (%d,%v)", idx, got, gotOK, want, wantOK)
			}
		}
		for i := 1; i < len(runs); i++ {
			if runs[i].Start < runs[i-1].End {
				rt.Fatalf("runs overlap: %v", runs)
			}
		}
	})
}
