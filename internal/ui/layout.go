package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Moole123/cf-tempmail/internal/theme"
)

// Layout manages the terminal frame: header, content, and a status bar
// that a transient notice can temporarily replace.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the top header bar: the application title on the
// left, the mailbox address centered by the filler, and the poll status
// on the right.
func (l Layout) RenderHeader(title, address, pollStatus string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	addressRendered := ""
	if address != "" {
		addressRendered = theme.HeaderStyle.Render(
			theme.AddressStyle.Render(address),
		)
	}

	statusRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(pollStatus)

	gap := l.Width -
		lipgloss.Width(titleRendered) -
		lipgloss.Width(addressRendered) -
		lipgloss.Width(statusRendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		addressRendered,
		filler,
		statusRendered,
	)
}

// RenderStatusBar renders the bottom bar. When notice is non-empty it
// takes the whole bar in its own style; otherwise the keyboard hints
// are shown.
func (l Layout) RenderStatusBar(hints, notice string) string {
	rendered := theme.StatusBarStyle.Render(hints)
	if notice != "" {
		rendered = notice
	}

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
