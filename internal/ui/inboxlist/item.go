package inboxlist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Moole123/cf-tempmail/internal/model"
	"github.com/Moole123/cf-tempmail/internal/theme"
)

// EmailItem wraps a model.Email so it can be used in a bubbles/list.
type EmailItem struct {
	Email model.Email
}

// FilterValue returns the string used for fuzzy filtering.
func (i EmailItem) FilterValue() string {
	return i.Email.Subject + " " + i.Email.Sender()
}

// EmailDelegate implements list.ItemDelegate for rendering inbox rows.
type EmailDelegate struct{}

// Height returns the number of lines each item takes.
func (d EmailDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d EmailDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d EmailDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single inbox row: read marker, sender, subject,
// attachment indicator, and relative arrival time.
func (d EmailDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ei, ok := item.(EmailItem)
	if !ok {
		return
	}

	e := ei.Email
	isSelected := index == m.Index()

	marker := "○"
	if !e.Read {
		marker = theme.UnreadStyle.Render("●")
	}

	sender := e.Sender()
	if len(sender) > 24 {
		sender = sender[:23] + "…"
	}

	subject := e.Subject
	if subject == "" {
		subject = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("(no subject)")
	} else if !e.Read {
		subject = theme.UnreadStyle.Render(subject)
	}

	attach := ""
	if e.HasAttachments {
		attach = lipgloss.NewStyle().
			Foreground(theme.ColorBlue).
			Render(" 📎")
	}

	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(e.ReceivedAt))

	line := fmt.Sprintf(
		"%s %-24s %s%s  %s",
		marker, sender, subject, attach, timeStr,
	)

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hrs)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		weeks := int(d.Hours() / 24 / 7)
		if weeks == 1 {
			return "1w ago"
		}
		return fmt.Sprintf("%dw ago", weeks)
	}
}
