package inboxlist

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Moole123/cf-tempmail/internal/keys"
	"github.com/Moole123/cf-tempmail/internal/model"
	"github.com/Moole123/cf-tempmail/internal/store"
	"github.com/Moole123/cf-tempmail/internal/theme"
)

// EmailsLoadedMsg is sent when emails have been loaded from the cache.
type EmailsLoadedMsg struct {
	Emails []model.Email
}

// SelectedEmailMsg is sent when the user opens an email.
type SelectedEmailMsg struct {
	EmailID string
}

// DeleteEmailMsg is sent when the user deletes the selected email.
type DeleteEmailMsg struct {
	EmailID string
}

// sortModes defines the available sort columns cycled by Tab.
var sortModes = []string{
	"received_at",
	"from_addr",
	"subject",
}

// Model is the inbox list view component.
type Model struct {
	list        list.Model
	store       store.Store
	keys        *keys.KeyMap
	filter      store.EmailFilter
	unreadOnly  bool
	sortIndex   int
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new inbox list model watching the given mailbox.
func New(s store.Store, k *keys.KeyMap, mailbox string, width, height int) Model {
	l := list.New([]list.Item{}, EmailDelegate{}, width, height-2)
	l.Title = "Inbox"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search subject or sender..."
	si.Prompt = "/ "
	si.Width = width - 4

	f := store.EmailFilter{
		SortBy:   "received_at",
		SortDesc: true,
	}
	if mailbox != "" {
		f.Mailbox = &mailbox
	}

	return Model{
		list:        l,
		store:       s,
		keys:        k,
		filter:      f,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// SetMailbox switches the list to a different mailbox and reloads.
func (m *Model) SetMailbox(address string) tea.Cmd {
	if address == "" {
		m.filter.Mailbox = nil
	} else {
		m.filter.Mailbox = &address
	}
	return m.LoadEmails()
}

// Init returns a command that loads the initial set of emails.
func (m Model) Init() tea.Cmd {
	return m.LoadEmails()
}

// Update handles messages for the inbox list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EmailsLoadedMsg:
		items := make([]list.Item, len(msg.Emails))
		for i, e := range msg.Emails {
			items[i] = EmailItem{Email: e}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	// Delegate to list model for other messages
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		query := m.searchInput.Value()
		if query != "" {
			m.filter.Query = &query
		} else {
			m.filter.Query = nil
		}
		return m, m.LoadEmails()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Query = nil
		return m, m.LoadEmails()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(EmailItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedEmailMsg{EmailID: item.Email.ID}
		}

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.list.SelectedItem().(EmailItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return DeleteEmailMsg{EmailID: item.Email.ID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.FilterUnread):
		m.unreadOnly = !m.unreadOnly
		if m.unreadOnly {
			unread := true
			m.filter.Unread = &unread
		} else {
			m.filter.Unread = nil
		}
		return m, m.LoadEmails()

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(sortModes)
		m.filter.SortBy = sortModes[m.sortIndex]
		m.filter.SortDesc = m.filter.SortBy == "received_at"
		return m, m.LoadEmails()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// SelectedEmail returns the currently highlighted email, if any.
func (m Model) SelectedEmail() (model.Email, bool) {
	item, ok := m.list.SelectedItem().(EmailItem)
	if !ok {
		return model.Email{}, false
	}
	return item.Email, true
}

// FilterSummary describes the active filters for the status bar.
func (m Model) FilterSummary() string {
	var parts []string
	if m.unreadOnly {
		parts = append(parts, "unread")
	}
	if m.filter.Query != nil {
		parts = append(parts, "search: "+*m.filter.Query)
	}
	if len(parts) == 0 {
		return ""
	}
	summary := parts[0]
	for _, p := range parts[1:] {
		summary += " | " + p
	}
	return summary
}

// View renders the inbox list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when the inbox is empty.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.unreadOnly || m.filter.Query != nil {
		return style.Render("No matching messages.\nTry adjusting your filters.")
	}

	return style.Render(
		"Inbox is empty.\n\n" +
			"Mail sent to your address appears here automatically.",
	)
}

// LoadEmails returns a tea.Cmd that queries the cache with the current
// filter.
func (m Model) LoadEmails() tea.Cmd {
	filter := m.filter
	s := m.store
	return func() tea.Msg {
		emails, err := s.GetEmails(context.Background(), filter)
		if err != nil {
			return EmailsLoadedMsg{Emails: nil}
		}
		return EmailsLoadedMsg{Emails: emails}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
