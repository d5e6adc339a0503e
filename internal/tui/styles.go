package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/feltworks/holdem/poker"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#1B5E20")).
			Bold(true).
			Padding(0, 1)

	potStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	redCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	blackCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	actionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	logStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BDBDBD"))
)

// colorEnabled reports whether the terminal supports color at all; card
// glyphs render plain otherwise.
var colorEnabled = termenv.ColorProfile() != termenv.Ascii

// RenderCard renders one card with its suit glyph, red suits tinted.
func RenderCard(card poker.Card) string {
	text := card.Rank.String() + card.Suit.Symbol()
	if !colorEnabled {
		return text
	}
	if card.IsRed() {
		return redCardStyle.Render(text)
	}
	return blackCardStyle.Render(text)
}

// RenderCards renders a hand or board as space-separated cards.
func RenderCards(cards []poker.Card) string {
	if len(cards) == 0 {
		return "--"
	}
	parts := make([]string, len(cards))
	for i, card := range cards {
		parts[i] = RenderCard(card)
	}
	return strings.Join(parts, " ")
}
