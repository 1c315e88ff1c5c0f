package setup

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Moole123/cf-tempmail/internal/theme"
)

// SubmitMsg carries the completed setup form values. The parent is
// responsible for provisioning the mailbox against the server.
type SubmitMsg struct {
	ServerURL string
	LocalPart string
}

// CancelMsg signals the setup view was aborted.
type CancelMsg struct{}

// Mode represents the current state of the setup view.
type Mode int

const (
	ModeForm         Mode = iota // Collecting server URL and local part
	ModeProvisioning             // Waiting for the server to create a mailbox
	ModeFailed                   // Provisioning failed; offer retry
)

// Model is the first-run setup view. It collects the server URL and an
// optional mailbox name, then hands off to the parent for provisioning.
type Model struct {
	mode Mode
	form *huh.Form

	// Huh binds to these
	formServerURL string
	formLocalPart string

	provisionErr error
	spinner      spinner.Model

	width, height int
}

// New creates a setup view pre-filled with the given server URL.
func New(serverURL string, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		mode:          ModeForm,
		formServerURL: serverURL,
		spinner:       sp,
		width:         width,
		height:        height,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the setup form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the setup view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeProvisioning {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == ModeFailed {
			switch msg.String() {
			case "r", "enter":
				m.mode = ModeForm
				m.provisionErr = nil
				m.form = m.buildForm()
				return m, m.form.Init()
			case "esc", "q":
				return m, func() tea.Msg { return CancelMsg{} }
			}
			return m, nil
		}
	}

	if m.mode != ModeForm || m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.mode = ModeProvisioning
		serverURL := strings.TrimRight(strings.TrimSpace(m.formServerURL), "/")
		localPart := strings.TrimSpace(m.formLocalPart)
		return m, tea.Batch(
			m.spinner.Tick,
			func() tea.Msg {
				return SubmitMsg{ServerURL: serverURL, LocalPart: localPart}
			},
		)
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// SetProvisionError switches the view into the failed state. Called by
// the parent when mailbox creation did not succeed.
func (m *Model) SetProvisionError(err error) {
	m.mode = ModeFailed
	m.provisionErr = err
}

// View renders the setup view based on the current mode.
func (m Model) View() string {
	switch m.mode {
	case ModeProvisioning:
		return m.viewProvisioning()
	case ModeFailed:
		return m.viewFailed()
	default:
		return m.viewForm()
	}
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server URL").
				Description("Base URL of your mail server").
				Placeholder("https://mail.example.com").
				Value(&m.formServerURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Mailbox Name").
				Description("Optional local part; leave empty for a random address").
				Placeholder("random").
				Value(&m.formLocalPart).
				Validate(validateLocalPart),
		),
	).WithWidth(m.formWidth())
}

func (m Model) viewForm() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Mailbox Setup") + "\n\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m Model) viewProvisioning() string {
	content := fmt.Sprintf(
		"%s Creating mailbox...",
		m.spinner.View(),
	)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m Model) viewFailed() string {
	errStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorRed)

	detail := "unknown error"
	if m.provisionErr != nil {
		detail = m.provisionErr.Error()
	}

	content := errStyle.Render("Mailbox creation failed") + "\n\n" +
		detail + "\n\n" +
		theme.HelpStyle.Render("r retry | esc quit")

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(content)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://example.com)")
	}
	return nil
}

func validateLocalPart(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '_' || c == '+':
		default:
			return fmt.Errorf("only letters, digits, and . - _ + are allowed")
		}
	}
	return nil
}
