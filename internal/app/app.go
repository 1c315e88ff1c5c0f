package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Moole123/cf-tempmail/internal/api"
	"github.com/Moole123/cf-tempmail/internal/keys"
	"github.com/Moole123/cf-tempmail/internal/model"
	"github.com/Moole123/cf-tempmail/internal/store"
	appsync "github.com/Moole123/cf-tempmail/internal/sync"
	"github.com/Moole123/cf-tempmail/internal/ui"
	"github.com/Moole123/cf-tempmail/internal/ui/command"
	helpview "github.com/Moole123/cf-tempmail/internal/ui/help"
	"github.com/Moole123/cf-tempmail/internal/ui/inboxlist"
	"github.com/Moole123/cf-tempmail/internal/ui/notice"
	"github.com/Moole123/cf-tempmail/internal/ui/reader"
	setupview "github.com/Moole123/cf-tempmail/internal/ui/setup"
)

// unreadCountMsg carries the number of unread notifications to the UI.
type unreadCountMsg struct {
	count int
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewInbox ViewState = iota
	ViewReader
	ViewSetup
	ViewHelp
	ViewCommand
)

// Model is the root Bubble Tea model that manages view routing, layout,
// polling, and access to the cache and backend.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        *store.SQLiteStore
	client       *api.Client
	cfg          *model.AppConfig
	cfgPath      string
	keys         *keys.KeyMap
	inbox        inboxlist.Model
	reader       reader.Model
	setupView    setupview.Model
	helpView     helpview.Model
	commandView  command.Model
	notice       notice.Model
	poller       *appsync.Poller
	ready        bool
	unreadCount  int
	recovering   bool
}

// New creates the root application model. When cfg has no mailbox yet
// the app starts in the setup view; otherwise it resumes the saved
// mailbox and starts polling.
func New(
	s *store.SQLiteStore,
	client *api.Client,
	cfg *model.AppConfig,
	cfgPath string,
) Model {
	k := keys.DefaultKeyMap()
	interval := intervalFromConfig(cfg)
	p := appsync.New(s, client, cfg.MailboxAddress, interval)

	m := Model{
		store:       s,
		client:      client,
		cfg:         cfg,
		cfgPath:     cfgPath,
		keys:        k,
		inbox:       inboxlist.New(s, k, cfg.MailboxAddress, 80, 24),
		reader:      reader.New(k, 80, 24),
		setupView:   setupview.New(cfg.ServerURL, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		notice:      notice.New(),
		poller:      p,
	}

	if cfg.MailboxAddress == "" {
		m.currentView = ViewSetup
	} else {
		m.currentView = ViewInbox
	}

	return m
}

// Init starts the setup form on first run, or loads the cached inbox
// and begins polling.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewSetup {
		return m.setupView.Init()
	}
	return tea.Batch(
		m.inbox.Init(),
		m.poller.Start(),
		m.fetchUnreadCount(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.inbox.SetSize(contentWidth, contentHeight)
		m.reader.SetSize(contentWidth, contentHeight)
		m.setupView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.InboxSyncedMsg:
		return m.handleInboxSynced(msg)

	case appsync.MailboxGoneMsg:
		// The mailbox expired server-side. Recover by discarding the
		// stale cache and provisioning a replacement.
		if m.recovering {
			return m, m.poller.WaitForNextResult()
		}
		m.recovering = true
		var cmd tea.Cmd
		m.notice, cmd = m.notice.ShowError("Mailbox expired; creating a new one...")
		return m, tea.Batch(cmd, m.recoverMailbox(msg.Address))

	case mailboxRecoveredMsg:
		return m.handleMailboxRecovered(msg)

	case setupview.SubmitMsg:
		return m, m.provisionMailbox(msg.ServerURL, msg.LocalPart)

	case setupview.CancelMsg:
		m.poller.Stop()
		return m, tea.Quit

	case mailboxProvisionedMsg:
		return m.handleMailboxProvisioned(msg)

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case inboxlist.SelectedEmailMsg:
		m.previousView = m.currentView
		m.currentView = ViewReader
		m.reader.SetLoading(true)
		return m, m.openEmail(msg.EmailID)

	case inboxlist.DeleteEmailMsg:
		return m, m.deleteEmail(msg.EmailID)

	case reader.EmailLoadedMsg:
		var cmd tea.Cmd
		m.reader, cmd = m.reader.Update(msg)
		return m, tea.Batch(cmd, m.fetchUnreadCount())

	case emailOpenFailedMsg:
		m.currentView = ViewInbox
		var cmd tea.Cmd
		if msg.gone {
			// Deleted remotely between poll cycles; drop it locally too.
			m.notice, cmd = m.notice.ShowError("Message no longer exists")
			return m, tea.Batch(cmd, m.dropCachedEmail(msg.emailID))
		}
		m.notice, cmd = m.notice.ShowError(
			fmt.Sprintf("Couldn't open message: %v", msg.err),
		)
		return m, cmd

	case reader.BackMsg:
		m.currentView = ViewInbox
		return m, m.inbox.LoadEmails()

	case reader.DeleteRequestMsg:
		return m, m.deleteEmail(msg.EmailID)

	case reader.SaveRequestMsg:
		return m, m.saveAttachment(msg.Attachment)

	case reader.ExportRequestMsg:
		return m, m.exportEmail(msg.EmailID)

	case reader.CopyURLRequestMsg:
		var cmd tea.Cmd
		m.notice, cmd = m.notice.ShowSuccess(
			m.client.AttachmentURL(msg.Attachment.ID),
		)
		return m, cmd

	case emailDeletedMsg:
		return m.handleEmailDeleted(msg)

	case attachmentSavedMsg:
		var cmd tea.Cmd
		if msg.err != nil {
			m.notice, cmd = m.notice.ShowError(
				fmt.Sprintf("Couldn't save attachment: %v", msg.err),
			)
		} else {
			m.notice, cmd = m.notice.ShowSuccess("Saved " + msg.path)
		}
		return m, cmd

	case emailExportedMsg:
		var cmd tea.Cmd
		if msg.err != nil {
			m.notice, cmd = m.notice.ShowError(
				fmt.Sprintf("Couldn't export message: %v", msg.err),
			)
		} else {
			m.notice, cmd = m.notice.ShowSuccess("Exported " + msg.path)
		}
		return m, cmd

	case mailboxDestroyedMsg:
		return m.handleMailboxDestroyed(msg)

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case tea.KeyMsg:
		if handled, mdl, cmd := m.handleGlobalKey(msg); handled {
			return mdl, cmd
		}

	default:
		// Notice expiry ticks and other internal messages.
		var cmd tea.Cmd
		m.notice, cmd = m.notice.Update(msg)
		if cmd != nil {
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work regardless of the current
// view. Returns handled=false to let the active view process the key.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	// Setup and command views own the keyboard.
	if m.currentView == ViewSetup {
		return false, m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		m.poller.Stop()
		return true, m, tea.Quit

	case "q":
		if m.currentView == ViewInbox {
			m.poller.Stop()
			return true, m, tea.Quit
		}

	case "?":
		if m.currentView == ViewCommand {
			break
		}
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil

	case ":":
		if m.currentView == ViewCommand {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return true, m, m.commandView.Focus()

	case "r":
		if m.currentView == ViewInbox {
			m.poller.Refresh()
			return true, m, m.inbox.LoadEmails()
		}

	case "m":
		if m.currentView == ViewInbox {
			return true, m, m.provisionMailbox(m.cfg.ServerURL, "")
		}

	case "D":
		if m.currentView == ViewInbox {
			return true, m, m.destroyMailbox()
		}
	}

	return false, m, nil
}

// handleInboxSynced processes the result of a completed poll cycle.
func (m Model) handleInboxSynced(msg appsync.InboxSyncedMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{
		m.inbox.LoadEmails(),
		m.poller.WaitForNextResult(),
		m.fetchUnreadCount(),
	}

	var noticeCmd tea.Cmd
	if msg.Error != nil {
		m.notice, noticeCmd = m.notice.ShowError(
			fmt.Sprintf("Couldn't refresh inbox: %v", msg.Error),
		)
		cmds = append(cmds, noticeCmd)
	} else if msg.NewCount > 0 {
		label := fmt.Sprintf("%d new messages", msg.NewCount)
		if msg.NewCount == 1 {
			label = "1 new message"
		}
		m.notice, noticeCmd = m.notice.ShowSuccess(label)
		cmds = append(cmds, noticeCmd)
	}

	return m, tea.Batch(cmds...)
}

// handleEmailDeleted processes a completed delete, both from the list
// and from inside the reader.
func (m Model) handleEmailDeleted(msg emailDeletedMsg) (tea.Model, tea.Cmd) {
	var noticeCmd tea.Cmd
	if msg.err != nil {
		m.notice, noticeCmd = m.notice.ShowError(
			fmt.Sprintf("Couldn't delete message: %v", msg.err),
		)
		return m, noticeCmd
	}

	if m.currentView == ViewReader && m.reader.CurrentEmailID() == msg.emailID {
		m.currentView = ViewInbox
	}

	m.notice, noticeCmd = m.notice.ShowSuccess("Message deleted")
	return m, tea.Batch(noticeCmd, m.inbox.LoadEmails())
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewInbox:
		m.inbox, cmd = m.inbox.Update(msg)
	case ViewReader:
		m.reader, cmd = m.reader.Update(msg)
	case ViewSetup:
		m.setupView, cmd = m.setupView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerTitle := "Temp Mail"
	if m.unreadCount > 0 {
		headerTitle = fmt.Sprintf("Temp Mail [%d new]", m.unreadCount)
	}
	header := m.layout.RenderHeader(headerTitle, m.cfg.MailboxAddress, m.pollStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.notice.View())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewInbox:
		return m.inbox.View()
	case ViewReader:
		return m.reader.View()
	case ViewSetup:
		return m.setupView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// pollStatus returns a short string describing the poll loop state.
func (m Model) pollStatus() string {
	status := m.poller.GetStatus()
	switch status.State {
	case appsync.SyncRunning:
		return "checking..."
	case appsync.SyncError:
		return "offline"
	default:
		if status.LastSync.IsZero() {
			return ""
		}
		return "checked " + status.LastSync.Format("15:04:05")
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return ": close | enter execute | esc back"
	case ViewReader:
		return "esc back | d delete | s save | o export | y url | j/k scroll"
	case ViewSetup:
		return "enter submit | esc quit"
	default:
		filterSummary := m.inbox.FilterSummary()
		if filterSummary != "" {
			return filterSummary + " | esc clear"
		}
		return "q quit | ? help | r refresh | / search | u unread | d delete | tab sort"
	}
}

// intervalFromConfig converts the configured poll interval to a
// duration, falling back to the default for non-positive values.
func intervalFromConfig(cfg *model.AppConfig) time.Duration {
	if cfg.PollIntervalSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(cfg.PollIntervalSec) * time.Second
}
