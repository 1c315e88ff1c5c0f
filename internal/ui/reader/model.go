package reader

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Moole123/cf-tempmail/internal/eml"
	"github.com/Moole123/cf-tempmail/internal/keys"
	"github.com/Moole123/cf-tempmail/internal/model"
	"github.com/Moole123/cf-tempmail/internal/theme"
)

// BackMsg signals the parent to navigate back to the inbox.
type BackMsg struct{}

// EmailLoadedMsg carries an opened email with its attachment metadata
// and the body already resolved and rendered for the terminal.
type EmailLoadedMsg struct {
	Email       *model.Email
	Attachments []model.Attachment
	Body        string
}

// DeleteRequestMsg asks the parent to delete the displayed email.
type DeleteRequestMsg struct {
	EmailID string
}

// SaveRequestMsg asks the parent to download the selected attachment.
type SaveRequestMsg struct {
	Attachment model.Attachment
}

// ExportRequestMsg asks the parent to export the email as .eml.
type ExportRequestMsg struct {
	EmailID string
}

// CopyURLRequestMsg asks the parent to copy the selected attachment URL.
type CopyURLRequestMsg struct {
	Attachment model.Attachment
}

// Model is the message reader view component.
type Model struct {
	email       *model.Email
	attachments []model.Attachment
	body        string
	attCursor   int
	viewport    viewport.Model
	keys        *keys.KeyMap
	width       int
	height      int
	loading     bool
}

// New creates a new reader model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the reader view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the reader view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EmailLoadedMsg:
		m.email = msg.Email
		m.attachments = msg.Attachments
		m.body = msg.Body
		m.attCursor = 0
		m.loading = false
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.Delete):
			if m.email != nil {
				id := m.email.ID
				return m, func() tea.Msg {
					return DeleteRequestMsg{EmailID: id}
				}
			}

		case key.Matches(msg, m.keys.Save):
			if a, ok := m.selectedAttachment(); ok {
				return m, func() tea.Msg {
					return SaveRequestMsg{Attachment: a}
				}
			}

		case key.Matches(msg, m.keys.Export):
			if m.email != nil {
				id := m.email.ID
				return m, func() tea.Msg {
					return ExportRequestMsg{EmailID: id}
				}
			}

		case key.Matches(msg, m.keys.CopyURL):
			if a, ok := m.selectedAttachment(); ok {
				return m, func() tea.Msg {
					return CopyURLRequestMsg{Attachment: a}
				}
			}

		default:
			switch msg.String() {
			case "left", "h":
				if len(m.attachments) > 0 {
					m.attCursor = (m.attCursor + len(m.attachments) - 1) % len(m.attachments)
					m.viewport.SetContent(m.renderContent())
					return m, nil
				}
			case "right", "l":
				if len(m.attachments) > 0 {
					m.attCursor = (m.attCursor + 1) % len(m.attachments)
					m.viewport.SetContent(m.renderContent())
					return m, nil
				}
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// selectedAttachment returns the attachment under the cursor.
func (m Model) selectedAttachment() (model.Attachment, bool) {
	if len(m.attachments) == 0 {
		return model.Attachment{}, false
	}
	return m.attachments[m.attCursor], true
}

// CurrentEmailID returns the id of the displayed email, if any.
func (m Model) CurrentEmailID() string {
	if m.email == nil {
		return ""
	}
	return m.email.ID
}

// View renders the reader view.
func (m Model) View() string {
	if m.loading {
		loadingStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return loadingStyle.Render("Loading message...")
	}

	if m.email == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No message selected")
	}

	return m.viewport.View()
}

// renderContent builds the full reader content string for the viewport.
func (m Model) renderContent() string {
	if m.email == nil {
		return ""
	}

	e := m.email
	var sections []string

	// Subject
	subjectStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	subject := e.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	sections = append(sections, subjectStyle.Render(subject))
	sections = append(sections, "")

	// Header block
	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	sections = append(sections, fmt.Sprintf(
		"%s  %s",
		metaStyle.Render("From:"),
		valStyle.Render(eml.FormatAddress(e.FromName, e.From)),
	))
	sections = append(sections, fmt.Sprintf(
		"%s    %s",
		metaStyle.Render("To:"),
		valStyle.Render(e.To),
	))
	if !e.ReceivedAt.IsZero() {
		sections = append(sections, fmt.Sprintf(
			"%s  %s",
			metaStyle.Render("Date:"),
			valStyle.Render(e.ReceivedAt.Format("2006-01-02 15:04")),
		))
	}

	// Separator
	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", min(m.width-4, 80)))
	sections = append(sections, "")
	sections = append(sections, separator)
	sections = append(sections, "")

	// Body
	body := m.body
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("Empty message")
	}
	sections = append(sections, body)

	// Attachments section
	if len(m.attachments) > 0 {
		sections = append(sections, "")
		sections = append(sections, separator)
		sections = append(sections, "")

		headerStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorWhite)
		sections = append(sections, headerStyle.Render(
			fmt.Sprintf("Attachments (%d)", len(m.attachments)),
		))
		sections = append(sections, "")

		for i, a := range m.attachments {
			cursor := "  "
			if i == m.attCursor {
				cursor = "> "
			}

			label := fmt.Sprintf(
				"%s%s  %s  %s",
				cursor, a.Filename, a.ContentType, formatSize(a.Size),
			)
			line := theme.AttachmentStyle(a.Oversize).Render(label)
			if a.Oversize {
				line += theme.HelpStyle.Render(
					fmt.Sprintf(" (oversize, %d chunks)", a.ChunkCount),
				)
			}
			sections = append(sections, line)
		}

		sections = append(sections, "")
		sections = append(sections, theme.HelpStyle.Render(
			"h/l select attachment | s save | y copy url",
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetSize updates the reader view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}

// formatSize renders a byte count in a compact human form.
func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
