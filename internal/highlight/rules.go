// Package highlight implements the context-sensitive line highlighter used to
// color message bodies.
//
// A RuleSet is an ordered list of contexts. Each context is entered when its
// enter pattern matches a line and stays active until its exit pattern
// matches or another context is entered. While a context is active its match
// rules assign palette colors to parts of each line.
//
// A RuleSet is immutable once built and may be shared between goroutines.
// Each scan of a message body gets its own Session, which carries the only
// mutable state: the index of the active context.
package highlight

import (
	"errors"
	"fmt"
	"regexp"
	"regexp/syntax"
)

// Color is an index into the 256-color terminal palette.
type Color uint8

// MatchDef is the uncompiled form of a match rule.
type MatchDef struct {
	Pattern string
	Color   int
}

// ContextDef is the uncompiled form of a context rule, as produced by the
// config loader.
type ContextDef struct {
	Name    string
	Enter   string
	Exit    string // optional
	Matches []MatchDef
}

// MatchRule colors the span selected by Pattern.
type MatchRule struct {
	Pattern *regexp.Regexp
	Color   Color
}

// ContextRule is a compiled context.
type ContextRule struct {
	Name    string
	Enter   *regexp.Regexp
	Exit    *regexp.Regexp // nil when the context has no exit pattern
	Matches []MatchRule
}

// RuleSet is an ordered, read-only collection of context rules.
type RuleSet struct {
	contexts []ContextRule
}

// Sentinel causes wrapped by RuleError.
var (
	ErrMissingEnter   = errors.New("enter pattern is required")
	ErrMissingMatches = errors.New("matches list is required")
	ErrColorRange     = errors.New("color must be between 0 and 255")
	ErrOptionalGroup  = errors.New("first capture group must always participate in a match")
)

// RuleError describes an invalid rule definition.
type RuleError struct {
	Context string
	Field   string // "enter", "exit", "matches" or "match"
	Match   int    // index into the context's matches; -1 when not applicable
	Err     error
}

func (e *RuleError) Error() string {
	if e.Match >= 0 {
		return fmt.Sprintf("highlight context %q: match %d: %v", e.Context, e.Match, e.Err)
	}
	return fmt.Sprintf("highlight context %q: %s: %v", e.Context, e.Field, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// Empty returns a rule set that never highlights anything.
func Empty() *RuleSet {
	return &RuleSet{}
}

// NewRuleSet compiles and validates defs. Declaration order is preserved and
// decides which context wins when several enter patterns match one line.
func NewRuleSet(defs []ContextDef) (*RuleSet, error) {
	contexts := make([]ContextRule, 0, len(defs))
	for _, def := range defs {
		ctx, err := compileContext(def)
		if err != nil {
			return nil, err
		}
		contexts = append(contexts, ctx)
	}
	return &RuleSet{contexts: contexts}, nil
}

// MustRuleSet is like NewRuleSet but panics on invalid definitions.
// Intended for tests and built-in defaults.
func MustRuleSet(defs []ContextDef) *RuleSet {
	rs, err := NewRuleSet(defs)
	if err != nil {
		panic(err)
	}
	return rs
}

// Len returns the number of context rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.contexts)
}

// Context returns the context rule at index i.
func (rs *RuleSet) Context(i int) ContextRule {
	return rs.contexts[i]
}

// Names returns the context names in declaration order.
func (rs *RuleSet) Names() []string {
	if rs == nil {
		return nil
	}
	names := make([]string, len(rs.contexts))
	for i, c := range rs.contexts {
		names[i] = c.Name
	}
	return names
}

func compileContext(def ContextDef) (ContextRule, error) {
	ctx := ContextRule{Name: def.Name}

	if def.Enter == "" {
		return ctx, &RuleError{Context: def.Name, Field: "enter", Match: -1, Err: ErrMissingEnter}
	}
	enter, err := regexp.Compile(def.Enter)
	if err != nil {
		return ctx, &RuleError{Context: def.Name, Field: "enter", Match: -1, Err: err}
	}
	ctx.Enter = enter

	if def.Exit != "" {
		exit, err := regexp.Compile(def.Exit)
		if err != nil {
			return ctx, &RuleError{Context: def.Name, Field: "exit", Match: -1, Err: err}
		}
		ctx.Exit = exit
	}

	if def.Matches == nil {
		return ctx, &RuleError{Context: def.Name, Field: "matches", Match: -1, Err: ErrMissingMatches}
	}
	ctx.Matches = make([]MatchRule, 0, len(def.Matches))
	for i, m := range def.Matches {
		rule, err := compileMatch(m)
		if err != nil {
			return ctx, &RuleError{Context: def.Name, Field: "match", Match: i, Err: err}
		}
		ctx.Matches = append(ctx.Matches, rule)
	}
	return ctx, nil
}

func compileMatch(m MatchDef) (MatchRule, error) {
	if m.Color < 0 || m.Color > 255 {
		return MatchRule{}, fmt.Errorf("%w, got %d", ErrColorRange, m.Color)
	}
	re, err := regexp.Compile(m.Pattern)
	if err != nil {
		return MatchRule{}, err
	}
	if re.NumSubexp() > 0 {
		if err := checkFirstGroup(m.Pattern); err != nil {
			return MatchRule{}, err
		}
	}
	return MatchRule{Pattern: re, Color: Color(m.Color)}, nil
}

// checkFirstGroup rejects patterns that can match without group 1
// participating, e.g. "a(b)?" or "(x)|y".
func checkFirstGroup(pattern string) error {
	tree, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return err
	}
	if found, required := locateFirstGroup(tree, false); found && !required {
		return fmt.Errorf("%w: %q", ErrOptionalGroup, pattern)
	}
	return nil
}

func locateFirstGroup(re *syntax.Regexp, optional bool) (found, required bool) {
	switch re.Op {
	case syntax.OpCapture:
		if re.Cap == 1 {
			return true, !optional
		}
	case syntax.OpAlternate, syntax.OpStar, syntax.OpQuest:
		optional = true
	case syntax.OpRepeat:
		if re.Min == 0 {
			optional = true
		}
	}
	for _, sub := range re.Sub {
		if found, required := locateFirstGroup(sub, optional); found {
			return found, required
		}
	}
	return false, false
}
