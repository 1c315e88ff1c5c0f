package notice

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Moole123/cf-tempmail/internal/theme"
)

// Display durations: errors linger a little longer than confirmations.
const (
	ErrorDuration   = 3 * time.Second
	SuccessDuration = 2 * time.Second
)

// expiredMsg clears a notice once its display time has elapsed. The
// generation guards against an old timer clearing a newer notice.
type expiredMsg struct {
	generation int
}

// Model is a transient, auto-dismissing status message. There is no
// retry or acknowledgement; the notice simply times out.
type Model struct {
	text       string
	isError    bool
	generation int
}

// New creates an empty notice model.
func New() Model {
	return Model{}
}

// Show replaces the current notice and schedules its dismissal.
func (m Model) Show(text string, isError bool) (Model, tea.Cmd) {
	m.text = text
	m.isError = isError
	m.generation++

	duration := SuccessDuration
	if isError {
		duration = ErrorDuration
	}

	generation := m.generation
	return m, tea.Tick(duration, func(time.Time) tea.Msg {
		return expiredMsg{generation: generation}
	})
}

// ShowError shows an error notice (3s).
func (m Model) ShowError(text string) (Model, tea.Cmd) {
	return m.Show(text, true)
}

// ShowSuccess shows a confirmation notice (2s).
func (m Model) ShowSuccess(text string) (Model, tea.Cmd) {
	return m.Show(text, false)
}

// Update handles notice messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if exp, ok := msg.(expiredMsg); ok {
		if exp.generation == m.generation {
			m.text = ""
		}
	}
	return m, nil
}

// Active reports whether a notice is currently displayed.
func (m Model) Active() bool {
	return m.text != ""
}

// View renders the notice, or an empty string when none is active.
func (m Model) View() string {
	if m.text == "" {
		return ""
	}
	return theme.NoticeStyle(m.isError).Render(m.text)
}
