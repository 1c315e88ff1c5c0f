package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Moole123/cf-tempmail/internal/credential"
	"github.com/Moole123/cf-tempmail/internal/model"
)

// mailboxProvisionedMsg reports the outcome of creating a mailbox,
// either at first run or when the user asked for a fresh address.
type mailboxProvisionedMsg struct {
	mailbox   *model.Mailbox
	serverURL string
	err       error
}

// mailboxRecoveredMsg reports the outcome of the expiry recovery flow:
// the stale cache has been purged and a replacement provisioned.
type mailboxRecoveredMsg struct {
	oldAddress string
	mailbox    *model.Mailbox
	err        error
}

// mailboxDestroyedMsg reports the outcome of destroying the current
// mailbox. A replacement is provisioned in the same command.
type mailboxDestroyedMsg struct {
	mailbox *model.Mailbox
	err     error
}

// provisionMailbox creates a new mailbox on the backend and stores its
// token in the system keyring.
func (m Model) provisionMailbox(serverURL, localPart string) tea.Cmd {
	c := m.client
	if serverURL != "" && serverURL != c.BaseURL() {
		c.SetBaseURL(serverURL)
	}
	return func() tea.Msg {
		ctx := context.Background()

		mailbox, err := c.ProvisionMailbox(ctx, localPart)
		if err != nil {
			return mailboxProvisionedMsg{serverURL: serverURL, err: err}
		}

		if err := credential.Set(credential.TokenKey(mailbox.Address), mailbox.Token); err != nil {
			return mailboxProvisionedMsg{
				serverURL: serverURL,
				err:       fmt.Errorf("storing mailbox token: %w", err),
			}
		}

		return mailboxProvisionedMsg{mailbox: mailbox, serverURL: serverURL}
	}
}

// recoverMailbox handles a mailbox that expired server-side: purge its
// cached emails, provision a replacement, and store the new token.
func (m Model) recoverMailbox(oldAddress string) tea.Cmd {
	s := m.store
	c := m.client
	return func() tea.Msg {
		ctx := context.Background()

		if err := s.PurgeMailbox(ctx, oldAddress); err != nil {
			return mailboxRecoveredMsg{oldAddress: oldAddress, err: err}
		}
		_ = credential.Delete(credential.TokenKey(oldAddress))

		mailbox, err := c.ProvisionMailbox(ctx, "")
		if err != nil {
			return mailboxRecoveredMsg{oldAddress: oldAddress, err: err}
		}

		if err := credential.Set(credential.TokenKey(mailbox.Address), mailbox.Token); err != nil {
			return mailboxRecoveredMsg{
				oldAddress: oldAddress,
				err:        fmt.Errorf("storing mailbox token: %w", err),
			}
		}

		return mailboxRecoveredMsg{oldAddress: oldAddress, mailbox: mailbox}
	}
}

// destroyMailbox deletes the current mailbox server-side, purges its
// cache, and provisions a replacement address.
func (m Model) destroyMailbox() tea.Cmd {
	s := m.store
	c := m.client
	address := m.cfg.MailboxAddress
	return func() tea.Msg {
		ctx := context.Background()

		if err := c.DeleteMailbox(ctx, address); err != nil {
			return mailboxDestroyedMsg{err: err}
		}

		if err := s.PurgeMailbox(ctx, address); err != nil {
			return mailboxDestroyedMsg{err: err}
		}
		_ = credential.Delete(credential.TokenKey(address))

		mailbox, err := c.ProvisionMailbox(ctx, "")
		if err != nil {
			return mailboxDestroyedMsg{err: err}
		}

		if err := credential.Set(credential.TokenKey(mailbox.Address), mailbox.Token); err != nil {
			return mailboxDestroyedMsg{
				err: fmt.Errorf("storing mailbox token: %w", err),
			}
		}

		return mailboxDestroyedMsg{mailbox: mailbox}
	}
}

// adoptMailbox switches the app onto a freshly provisioned mailbox:
// update config and client, repoint the poller and list, and persist.
func (m *Model) adoptMailbox(mailbox *model.Mailbox) tea.Cmd {
	m.cfg.MailboxAddress = mailbox.Address
	m.client.SetToken(mailbox.Token)
	m.poller.SetMailbox(mailbox.Address)

	if err := model.SaveConfig(m.cfgPath, m.cfg); err != nil {
		// The mailbox works for this session; only persistence failed.
		var noticeCmd tea.Cmd
		m.notice, noticeCmd = m.notice.ShowError(
			fmt.Sprintf("Couldn't save config: %v", err),
		)
		return tea.Batch(noticeCmd, m.inbox.SetMailbox(mailbox.Address))
	}

	return m.inbox.SetMailbox(mailbox.Address)
}

// handleMailboxProvisioned finishes first-run setup or a user-requested
// new mailbox.
func (m Model) handleMailboxProvisioned(msg mailboxProvisionedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if m.currentView == ViewSetup {
			m.setupView.SetProvisionError(msg.err)
			return m, nil
		}
		var noticeCmd tea.Cmd
		m.notice, noticeCmd = m.notice.ShowError(
			fmt.Sprintf("Couldn't create mailbox: %v", msg.err),
		)
		return m, noticeCmd
	}

	firstRun := m.currentView == ViewSetup
	if msg.serverURL != "" {
		m.cfg.ServerURL = msg.serverURL
	}

	adoptCmd := m.adoptMailbox(msg.mailbox)
	m.currentView = ViewInbox

	var noticeCmd tea.Cmd
	m.notice, noticeCmd = m.notice.ShowSuccess("Mailbox ready: " + msg.mailbox.Address)

	cmds := []tea.Cmd{adoptCmd, noticeCmd}
	if firstRun {
		cmds = append(cmds, m.poller.Start())
	} else {
		m.poller.Refresh()
	}
	return m, tea.Batch(cmds...)
}

// handleMailboxRecovered finishes the expiry recovery flow.
func (m Model) handleMailboxRecovered(msg mailboxRecoveredMsg) (tea.Model, tea.Cmd) {
	m.recovering = false

	if msg.err != nil {
		var noticeCmd tea.Cmd
		m.notice, noticeCmd = m.notice.ShowError(
			fmt.Sprintf("Couldn't replace expired mailbox: %v", msg.err),
		)
		// Keep listening; the next poll retries against the old address
		// and re-triggers recovery.
		return m, tea.Batch(noticeCmd, m.poller.WaitForNextResult())
	}

	if m.currentView == ViewReader {
		m.currentView = ViewInbox
	}

	adoptCmd := m.adoptMailbox(msg.mailbox)
	m.poller.Refresh()

	var noticeCmd tea.Cmd
	m.notice, noticeCmd = m.notice.ShowSuccess("New mailbox: " + msg.mailbox.Address)

	return m, tea.Batch(
		adoptCmd,
		noticeCmd,
		m.poller.WaitForNextResult(),
		m.fetchUnreadCount(),
	)
}

// handleMailboxDestroyed finishes a user-requested destroy-and-replace.
func (m Model) handleMailboxDestroyed(msg mailboxDestroyedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		var noticeCmd tea.Cmd
		m.notice, noticeCmd = m.notice.ShowError(
			fmt.Sprintf("Couldn't destroy mailbox: %v", msg.err),
		)
		return m, noticeCmd
	}

	adoptCmd := m.adoptMailbox(msg.mailbox)
	m.poller.Refresh()

	var noticeCmd tea.Cmd
	m.notice, noticeCmd = m.notice.ShowSuccess("New mailbox: " + msg.mailbox.Address)

	return m, tea.Batch(adoptCmd, noticeCmd)
}
