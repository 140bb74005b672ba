package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestPaletteStyle(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() { lipgloss.SetColorProfile(termenv.Ascii) })

	tests := []struct {
		name     string
		color    uint8
		expected string
	}{
		{"extended palette", 107, "38;5;107"},
		{"grey ramp", 236, "38;5;236"},
		{"last entry", 255, "38;5;255"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PaletteStyle(tt.color).Render("x")
			require.Contains(t, got, tt.expected, "PaletteStyle(%d)", tt.color)
		})
	}
}

func TestPaletteStyle_PlainWithoutColor(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	require.Equal(t, "x", PaletteStyle(107).Render("x"))
}
