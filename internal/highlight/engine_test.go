package highlight

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func loginRules() *RuleSet {
	return MustRuleSet([]ContextDef{
		{
			Name:    "logins",
			Enter:   `login failures:$`,
			Exit:    `^$`,
			Matches: []MatchDef{{Pattern: `d.......d`, Color: 107}},
		},
	})
}

func TestProcessLine_SequentialLoginExample(t *testing.T) {
	s := New(loginRules()).NewSession()

	require.Empty(t, s.ProcessLine("login failures:"), "entering line is never highlighted")

	spans := s.ProcessLine("d1234567d")
	require.Equal(t, Spans{{Start: 0, End: 9, Color: 107}}, spans)

	require.Empty(t, s.ProcessLine(""), "exit line is never highlighted")
	_, active := s.Context()
	require.False(t, active)
}

func TestProcessLine_NoContextNeverHighlights(t *testing.T) {
	s := New(loginRules()).NewSession()

	for _, line := range []string{"d1234567d", "", "anything at all", "dxxxxxxd"} {
		require.Empty(t, s.ProcessLine(line), "line %q", line)
	}
}

func TestProcessLine_ExitClearsState(t *testing.T) {
	s := New(loginRules()).NewSession()

	s.ProcessLine("login failures:")
	require.NotEmpty(t, s.ProcessLine("d1234567d"))
	s.ProcessLine("")
	require.Empty(t, s.ProcessLine("d1234567d"), "old context rules must not apply after exit")
}

func TestProcessLine_CaptureGroupResolution(t *testing.T) {
	rules := MustRuleSet([]ContextDef{
		{
			Name:    "sshd",
			Enter:   `^sshd:$`,
			Matches: []MatchDef{{Pattern: `Bad protocol version.*(port)`, Color: 160}},
		},
	})
	s := New(rules).NewSession()
	s.ProcessLine("sshd:")

	line := "Bad protocol version mismatch, port 22"
	spans := s.ProcessLine(line)
	require.Len(t, spans, 1)
	require.Equal(t, "port", line[spans[0].Start:spans[0].End])
	require.Equal(t, Color(160), spans[0].Color)
}

func TestProcessLine_OrderSensitiveOverlap(t *testing.T) {
	const colorA, colorB = 10, 20
	rules := MustRuleSet([]ContextDef{
		{
			Name:  "all",
			Enter: `^BEGIN$`,
			Matches: []MatchDef{
				{Pattern: `.*`, Color: colorA},
				{Pattern: `rus`, Color: colorB},
			},
		},
	})
	s := New(rules).NewSession()
	s.ProcessLine("BEGIN")

	spans := s.ProcessLine("grusly")
	require.Equal(t, Spans{
		{Start: 0, End: 6, Color: colorA},
		{Start: 1, End: 4, Color: colorB},
	}, spans)

	c, ok := spans.ColorAt(2)
	require.True(t, ok)
	require.Equal(t, Color(colorB), c, "last listed span wins")
	c, ok = spans.ColorAt(0)
	require.True(t, ok)
	require.Equal(t, Color(colorA), c)
}

func TestProcessLine_EnterPrecedesExit(t *testing.T) {
	rules := MustRuleSet([]ContextDef{
		{
			Name:    "first",
			Enter:   `^first:$`,
			Exit:    `^---`,
			Matches: []MatchDef{{Pattern: `one`, Color: 1}},
		},
		{
			Name:    "second",
			Enter:   `^--- second`,
			Matches: []MatchDef{{Pattern: `two`, Color: 2}},
		},
	})
	s := New(rules).NewSession()
	s.ProcessLine("first:")

	require.Empty(t, s.ProcessLine("--- second"))
	idx, ok := s.Context()
	require.True(t, ok)
	require.Equal(t, 1, idx, "enter wins over the active context's exit")

	require.Empty(t, s.ProcessLine("one"))
	require.Equal(t, Spans{{Start: 0, End: 3, Color: 2}}, s.ProcessLine("two"))
}

func TestProcessLine_FirstDeclaredEnterWins(t *testing.T) {
	rules := MustRuleSet([]ContextDef{
		{Name: "a", Enter: `report`, Matches: []MatchDef{{Pattern: `x`, Color: 1}}},
		{Name: "b", Enter: `report`, Matches: []MatchDef{{Pattern: `x`, Color: 2}}},
	})
	s := New(rules).NewSession()
	s.ProcessLine("daily report")

	idx, ok := s.Context()
	require.True(t, ok)
	require.Equal(t, 0, idx)
	require.Equal(t, Spans{{Start: 0, End: 1, Color: 1}}, s.ProcessLine("x"))
}

func TestProcessLine_NoExitPatternStaysInContext(t *testing.T) {
	rules := MustRuleSet([]ContextDef{
		{Name: "forever", Enter: `^start`, Matches: []MatchDef{{Pattern: `err`, Color: 9}}},
	})
	s := New(rules).NewSession()
	s.ProcessLine("start")

	for range 5 {
		require.Len(t, s.ProcessLine(""), 0)
		require.Len(t, s.ProcessLine("an err here"), 1)
	}
}

func TestProcessLine_ReenteringSameContext(t *testing.T) {
	s := New(loginRules()).NewSession()
	s.ProcessLine("login failures:")
	require.Empty(t, s.ProcessLine("other login failures:"))
	require.NotEmpty(t, s.ProcessLine("d1234567d"))
}

func TestProcessLine_ZeroWidthMatchDropped(t *testing.T) {
	rules := MustRuleSet([]ContextDef{
		{Name: "z", Enter: `^go$`, Matches: []MatchDef{{Pattern: `x*`, Color: 3}}},
	})
	s := New(rules).NewSession()
	s.ProcessLine("go")
	require.Empty(t, s.ProcessLine("abc"))
}

func TestProcessLine_EmptyRuleSet(t *testing.T) {
	for _, e := range []*Engine{New(Empty()), New(nil)} {
		s := e.NewSession()
		for _, line := range []string{"", "login failures:", "anything"} {
			require.Empty(t, s.ProcessLine(line))
		}
	}
}

func TestSession_Reset(t *testing.T) {
	s := New(loginRules()).NewSession()
	s.ProcessLine("login failures:")
	s.Reset()
	require.Empty(t, s.ProcessLine("d1234567d"))
}

func TestProcessLine_PanicsOnNonParticipatingGroup(t *testing.T) {
	// Bypass NewRuleSet validation to reach the runtime invariant.
	rs := MustRuleSet([]ContextDef{{Name: "bad", Enter: `^in$`, Matches: []MatchDef{}}})
	rs.contexts[0].Matches = []MatchRule{{Pattern: mustCompile(`a(b)?`), Color: 1}}

	s := New(rs).NewSession()
	s.ProcessLine("in")
	require.Panics(t, func() { s.ProcessLine("a") })
}

func TestEngine_ProcessLines(t *testing.T) {
	out := New(loginRules()).ProcessLines([]string{"login failures:", "d1234567d", ""})
	require.Len(t, out, 3)
	require.Empty(t, out[0])
	require.Len(t, out[1], 1)
	require.Empty(t, out[2])
}

func TestProcessLine_SpansWithinLine_Property(t *testing.T) {
	rules := MustRuleSet([]ContextDef{
		{
			Name:  "ctx",
			Enter: `^>>`,
			Exit:  `^<<`,
			Matches: []MatchDef{
				{Pattern: `[a-c]+`, Color: 1},
				{Pattern: `x(y+)z`, Color: 2},
				{Pattern: `.`, Color: 3},
			},
		},
	})
	engine := New(rules)

	rapid.Check(t, func(rt *rapid.T) {
		lines := rapid.SliceOf(rapid.StringMatching(`(>>|<<)?[abcxyz ]{0,12}`)).Draw(rt, "lines")
		s := engine.NewSession()
		for _, line := range lines {
			for _, sp := range s.ProcessLine(line) {
				if sp.Start < 0 || sp.Start >= sp.End || sp.End > len(line) {
					rt.Fatalf("span %+v out of range for %q", sp, line)
				}
			}
		}
	})
}

func TestProcessLine_Deterministic_Property(t *testing.T) {
	engine := New(loginRules())

	rapid.Check(t, func(rt *rapid.T) {
		lines := rapid.SliceOf(rapid.SampledFrom([]string{
			"login failures:", "d1234567d", "", "noise", "dabcdefgd and d7654321d",
		})).Draw(rt, "lines")

		first := engine.ProcessLines(lines)
		second := engine.ProcessLines(lines)
		if len(first) != len(second) {
			rt.Fatalf("result lengths differ")
		}
		for i := range first {
			if len(first[i]) != len(second[i]) {
				rt.Fatalf("line %d: %v vs %v", i, first[i], second[i])
			}
			for j := range first[i] {
				if first[i][j] != second[i][j] {
					rt.Fatalf("line %d: %v vs %v", i, first[i], second[i])
				}
			}
		}
	})
}

func TestProcessLine_NeverEnteredMeansEmpty_Property(t *testing.T) {
	engine := New(loginRules())

	rapid.Check(t, func(rt *rapid.T) {
		lines := rapid.SliceOf(rapid.StringMatching(`[a-z0-9 ]{0,20}`)).Draw(rt, "lines")
		s := engine.NewSession()
		for _, line := range lines {
			if got := s.ProcessLine(line); len(got) != 0 {
				rt.Fatalf("line %q highlighted without a context: %v", line, got)
			}
		}
	})
}
