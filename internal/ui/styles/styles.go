// Package styles contains Lip Gloss style definitions.
package styles

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"} // Main/primary text
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"} // Dates, senders
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#696969"} // Hints, help text, footers
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"} // Help descriptions

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Header list palette. These are fixed 256-color indices, matching the
	// palette highlight rules use.
	SelectionBgColor = lipgloss.Color("236")
	DividerColor     = lipgloss.Color("71")

	// Message marks
	DeletedMarkColor = lipgloss.AdaptiveColor{Light: "#D20F39", Dark: "#F38BA8"}
	UnreadMarkColor  = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}

	// Overlay colors
	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#8C8C8C"}

	// Toast notification colors
	ToastBorderSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	ToastBorderErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	ToastBorderInfoColor    = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	ToastBorderWarnColor    = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}

	// Diff preview colors
	DiffAddedColor   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	DiffRemovedColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Selection indicator style (the "> " prefix in the header list)
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true)

	SelectedRowStyle = lipgloss.NewStyle().Background(SelectionBgColor)
	DividerStyle     = lipgloss.NewStyle().Foreground(DividerColor)

	DeletedMarkStyle = lipgloss.NewStyle().Foreground(DeletedMarkColor).Bold(true)
	UnreadMarkStyle  = lipgloss.NewStyle().Foreground(UnreadMarkColor).Bold(true)

	DiffAddedStyle   = lipgloss.NewStyle().Foreground(DiffAddedColor)
	DiffRemovedStyle = lipgloss.NewStyle().Foreground(DiffRemovedColor)
	DiffElidedStyle  = lipgloss.NewStyle().Foreground(TextMutedColor).Italic(true)

	ErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)
	MutedStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
)

// PaletteStyle returns a style painting text in 256-color palette entry c.
func PaletteStyle(c uint8) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(int(c))))
}
