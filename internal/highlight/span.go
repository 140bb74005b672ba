package highlight

// Span is a half-open byte range [Start, End) of a line to draw in Color.
type Span struct {
	Start int
	End   int
	Color Color
}

// Spans is the per-line result of ProcessLine, in priority order: when two
// spans cover the same byte the later one wins.
type Spans []Span

// ColorAt returns the color painted at byte offset idx, if any.
func (s Spans) ColorAt(idx int) (Color, bool) {
	var (
		color Color
		found bool
	)
	for _, sp := range s {
		if idx >= sp.Start && idx < sp.End {
			color, found = sp.Color, true
		}
	}
	return color, found
}

// Runs flattens s into non-overlapping runs sorted by offset, resolving
// overlaps by painting spans in order. Spans are clipped to [0, length).
// Uncolored gaps are omitted.
func (s Spans) Runs(length int) []Span {
	if len(s) == 0 || length <= 0 {
		return nil
	}

	painted := make([]int, length)
	for i := range painted {
		painted[i] = -1
	}
	for _, sp := range s {
		start, end := max(sp.Start, 0), min(sp.End, length)
		for i := start; i < end; i++ {
			painted[i] = int(sp.Color)
		}
	}

	var runs []Span
	for i := 0; i < length; {
		c := painted[i]
		j := i + 1
		for j < length && painted[j] == c {
			j++
		}
		if c >= 0 {
			runs = append(runs, Span{Start: i, End: j, Color: Color(c)})
		}
		i = j
	}
	return runs
}
