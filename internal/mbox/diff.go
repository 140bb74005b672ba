package mbox

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineKind classifies a line of a rewrite preview.
type LineKind int

const (
	LineUnchanged LineKind = iota
	LineRemoved
	LineAdded
	LineElided // stands in for a run of unchanged lines
)

// DiffLine is one line of a rewrite preview.
type DiffLine struct {
	Kind LineKind
	Text string
}

// Diff compares two mbox texts line by line. Unchanged runs are cut down to
// context lines on each side of a change.
func Diff(before, after string, context int) []DiffLine {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var all []DiffLine
	for _, d := range diffs {
		kind := LineUnchanged
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			kind = LineRemoved
		case diffmatchpatch.DiffInsert:
			kind = LineAdded
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			all = append(all, DiffLine{Kind: kind, Text: strings.TrimSuffix(line, "\n")})
		}
	}
	return elide(all, context)
}

// elide keeps unchanged lines within context of a change.
func elide(lines []DiffLine, context int) []DiffLine {
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.Kind == LineUnchanged {
			continue
		}
		for j := max(0, i-context); j <= min(len(lines)-1, i+context); j++ {
			keep[j] = true
		}
	}

	var out []DiffLine
	skipped := false
	for i, l := range lines {
		if keep[i] {
			out = append(out, l)
			skipped = false
			continue
		}
		if !skipped {
			out = append(out, DiffLine{Kind: LineElided})
			skipped = true
		}
	}
	return out
}

// HasChanges reports whether any line was added or removed.
func HasChanges(lines []DiffLine) bool {
	for _, l := range lines {
		if l.Kind == LineAdded || l.Kind == LineRemoved {
			return true
		}
	}
	return false
}
