package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestPlace_Center(t *testing.T) {
	bg := "AAAAA\nAAAAA\nAAAAA"
	result := Place(Config{Width: 5, Height: 3, Position: Center}, "XX", bg)

	lines := strings.Split(result, "\n")
	assert.Equal(t, []string{"AAAAA", "AXXAA", "AAAAA"}, lines)
}

func TestPlace_Bottom_WithPadding(t *testing.T) {
	bg := "AAAAA\nAAAAA\nAAAAA\nAAAAA"
	result := Place(Config{Width: 5, Height: 4, Position: Bottom, PadY: 1}, "XXX", bg)

	lines := strings.Split(result, "\n")
	assert.Equal(t, "AXXXA", lines[2])
	assert.Equal(t, "AAAAA", lines[3])
}

func TestPlace_PadsShortBackground(t *testing.T) {
	result := Place(Config{Width: 4, Height: 3, Position: Center}, "XX", "AB")

	lines := strings.Split(result, "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, " XX", lines[1])
}

func TestPlace_LargeForegroundClipped(t *testing.T) {
	result := Place(Config{Width: 3, Height: 2, Position: Center}, "XXXXX\nXXXXX\nXXXXX", "AAA\nAAA")

	lines := strings.Split(result, "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "XXXXX", lines[0])
}

func TestPlace_PreservesStyledBackground(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("AAAAAA")
	result := Place(Config{Width: 6, Height: 1, Position: Center}, "XX", styled)

	assert.Equal(t, 6, lipgloss.Width(result))
	assert.Contains(t, result, "XX")
}
