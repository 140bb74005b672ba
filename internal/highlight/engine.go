package highlight

import "fmt"

// noContext marks a session with no active context.
const noContext = -1

// Engine hands out sessions over a shared rule set.
type Engine struct {
	rules *RuleSet
}

// New creates an engine for rules. A nil rule set behaves like Empty().
func New(rules *RuleSet) *Engine {
	if rules == nil {
		rules = Empty()
	}
	return &Engine{rules: rules}
}

// Rules returns the engine's rule set.
func (e *Engine) Rules() *RuleSet {
	return e.rules
}

// NewSession starts a scan with no active context.
func (e *Engine) NewSession() *Session {
	return &Session{rules: e.rules, current: noContext}
}

// Session tracks the active context across consecutive lines of one scan.
// Lines must be fed in document order with none skipped. A Session is not
// safe for concurrent use.
type Session struct {
	rules   *RuleSet
	current int
}

// Reset clears the active context.
func (s *Session) Reset() {
	s.current = noContext
}

// Context returns the index of the active context, if any.
func (s *Session) Context() (int, bool) {
	return s.current, s.current != noContext
}

// ProcessLine advances the session past line and returns its colored spans
// in match-rule order. Spans may overlap; later spans take priority.
//
// A line that enters a context, or exits the active one, is never itself
// highlighted. Enter patterns are checked before the active context's exit
// pattern, so a line matching both switches context.
func (s *Session) ProcessLine(line string) Spans {
	for i := range s.rules.contexts {
		if s.rules.contexts[i].Enter.MatchString(line) {
			s.current = i
			return nil
		}
	}

	if s.current == noContext {
		return nil
	}

	ctx := &s.rules.contexts[s.current]
	if ctx.Exit != nil && ctx.Exit.MatchString(line) {
		s.current = noContext
		return nil
	}

	var spans Spans
	for _, m := range ctx.Matches {
		loc := m.Pattern.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		start, end := loc[0], loc[1]
		if m.Pattern.NumSubexp() > 0 {
			start, end = loc[2], loc[3]
			if start < 0 {
				panic(fmt.Sprintf("highlight: context %q: pattern %q matched without its first group",
					ctx.Name, m.Pattern.String()))
			}
		}
		// Zero-width matches have nothing to color.
		if start == end {
			continue
		}
		spans = append(spans, Span{Start: start, End: end, Color: m.Color})
	}
	return spans
}

// ProcessLines runs a fresh session over lines and returns one result per
// line.
func (e *Engine) ProcessLines(lines []string) []Spans {
	s := e.NewSession()
	out := make([]Spans, len(lines))
	for i, line := range lines {
		out[i] = s.ProcessLine(line)
	}
	return out
}
