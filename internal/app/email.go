package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Moole123/cf-tempmail/internal/api"
	"github.com/Moole123/cf-tempmail/internal/eml"
	"github.com/Moole123/cf-tempmail/internal/inline"
	"github.com/Moole123/cf-tempmail/internal/model"
	"github.com/Moole123/cf-tempmail/internal/render"
	"github.com/Moole123/cf-tempmail/internal/store"
	"github.com/Moole123/cf-tempmail/internal/ui/reader"
)

// emailOpenFailedMsg is sent when an email could not be opened. gone
// means the backend no longer has it.
type emailOpenFailedMsg struct {
	emailID string
	gone    bool
	err     error
}

// emailDeletedMsg reports the outcome of a delete request.
type emailDeletedMsg struct {
	emailID string
	err     error
}

// attachmentSavedMsg reports the outcome of saving an attachment.
type attachmentSavedMsg struct {
	path string
	err  error
}

// emailExportedMsg reports the outcome of an .eml export.
type emailExportedMsg struct {
	path string
	err  error
}

// openEmail fetches the full email (bodies and attachment metadata),
// caches it, marks it read, and prepares the rendered body for the
// reader. When the backend is unreachable the cached copy is used.
func (m Model) openEmail(id string) tea.Cmd {
	s := m.store
	c := m.client
	return func() tea.Msg {
		ctx := context.Background()

		email, atts, err := fetchEmail(ctx, s, c, id)
		if err != nil {
			if api.IsNotFound(err) {
				return emailOpenFailedMsg{emailID: id, gone: true, err: err}
			}
			return emailOpenFailedMsg{emailID: id, err: err}
		}

		_ = s.MarkEmailRead(ctx, id)
		email.Read = true
		markNotificationsForEmail(ctx, s, id)

		body := render.Body(*email)
		if email.HTMLBody != "" {
			resolved := inline.Resolve(email.HTMLBody, atts, func(a model.Attachment) string {
				return c.AttachmentURL(a.ID)
			})
			body = render.HTMLToText(resolved)
		}

		return reader.EmailLoadedMsg{
			Email:       email,
			Attachments: atts,
			Body:        body,
		}
	}
}

// fetchEmail pulls the email and attachment metadata from the backend
// and caches both. A network error falls back to the cached copy; a
// 404 is surfaced as-is.
func fetchEmail(
	ctx context.Context,
	s *store.SQLiteStore,
	c *api.Client,
	id string,
) (*model.Email, []model.Attachment, error) {
	email, err := c.GetEmail(ctx, id)
	if err != nil {
		if api.IsNotFound(err) {
			return nil, nil, err
		}
		// Offline: read the cached copy if it has a body.
		cached, cacheErr := s.GetEmailByID(ctx, id)
		if cacheErr == nil && cached != nil {
			atts, _ := s.GetAttachmentsForEmail(ctx, id)
			return cached, atts, nil
		}
		return nil, nil, err
	}

	_ = s.UpsertEmails(ctx, []model.Email{*email})

	var atts []model.Attachment
	if email.HasAttachments {
		atts, err = c.GetAttachments(ctx, id)
		if err != nil {
			// Attachment metadata is best-effort; the cached set may
			// still be usable.
			atts, _ = s.GetAttachmentsForEmail(ctx, id)
		} else {
			_ = s.UpsertAttachments(ctx, atts)
		}
	}

	return email, atts, nil
}

// markNotificationsForEmail marks cached notifications for an opened
// email as read.
func markNotificationsForEmail(ctx context.Context, s *store.SQLiteStore, emailID string) {
	notifications, err := s.GetUnreadNotifications(ctx)
	if err != nil {
		return
	}
	for _, n := range notifications {
		if n.EmailID == emailID {
			_ = s.MarkNotificationRead(ctx, n.ID)
		}
	}
}

// deleteEmail removes the email server-side and from the cache.
func (m Model) deleteEmail(id string) tea.Cmd {
	s := m.store
	c := m.client
	return func() tea.Msg {
		ctx := context.Background()

		if err := c.DeleteEmail(ctx, id); err != nil && !api.IsNotFound(err) {
			return emailDeletedMsg{emailID: id, err: err}
		}

		if err := s.DeleteEmail(ctx, id); err != nil {
			return emailDeletedMsg{emailID: id, err: err}
		}
		return emailDeletedMsg{emailID: id}
	}
}

// dropCachedEmail removes a cached email that the backend no longer
// has, then reloads the list.
func (m Model) dropCachedEmail(id string) tea.Cmd {
	s := m.store
	loadCmd := m.inbox.LoadEmails()
	return func() tea.Msg {
		_ = s.DeleteEmail(context.Background(), id)
		return loadCmd()
	}
}

// saveAttachment downloads an attachment into the configured download
// directory.
func (m Model) saveAttachment(a model.Attachment) tea.Cmd {
	c := m.client
	dir := m.cfg.DownloadDir
	return func() tea.Msg {
		ctx := context.Background()

		data, err := c.DownloadAttachment(ctx, a.ID)
		if err != nil {
			return attachmentSavedMsg{err: err}
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return attachmentSavedMsg{err: fmt.Errorf("creating %s: %w", dir, err)}
		}

		path := filepath.Join(dir, safeFilename(a.Filename, a.ID))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return attachmentSavedMsg{err: fmt.Errorf("writing %s: %w", path, err)}
		}
		return attachmentSavedMsg{path: path}
	}
}

// exportEmail writes the email as an RFC 5322 .eml file, attachments
// included, into the configured download directory.
func (m Model) exportEmail(id string) tea.Cmd {
	s := m.store
	c := m.client
	dir := m.cfg.DownloadDir
	return func() tea.Msg {
		ctx := context.Background()

		email, atts, err := fetchEmail(ctx, s, c, id)
		if err != nil {
			return emailExportedMsg{err: err}
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return emailExportedMsg{err: fmt.Errorf("creating %s: %w", dir, err)}
		}

		name := email.Subject
		if name == "" {
			name = email.ID
		}
		path := filepath.Join(dir, safeFilename(name, email.ID)+".eml")

		f, err := os.Create(path)
		if err != nil {
			return emailExportedMsg{err: fmt.Errorf("creating %s: %w", path, err)}
		}
		defer f.Close()

		err = eml.Build(ctx, f, *email, atts, func(ctx context.Context, attID string) ([]byte, error) {
			return c.DownloadAttachment(ctx, attID)
		})
		if err != nil {
			return emailExportedMsg{err: err}
		}
		return emailExportedMsg{path: path}
	}
}

// fetchUnreadCount returns a tea.Cmd that queries the cache for the
// number of unread notifications.
func (m Model) fetchUnreadCount() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		notifications, err := s.GetUnreadNotifications(context.Background())
		if err != nil {
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: len(notifications)}
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case "refresh", "sync":
		m.poller.Refresh()
		return m.inbox.LoadEmails()
	case "quit", "q":
		m.poller.Stop()
		return tea.Quit
	case "new", "new mailbox":
		return m.provisionMailbox(m.cfg.ServerURL, "")
	case "destroy":
		return m.destroyMailbox()
	case "address":
		var noticeCmd tea.Cmd
		m.notice, noticeCmd = m.notice.ShowSuccess(m.cfg.MailboxAddress)
		return noticeCmd
	case "unread":
		return m.markAllRead()
	case "clear":
		return m.markAllRead()
	default:
		return nil
	}
}

// markAllRead clears the unread notification counter.
func (m Model) markAllRead() tea.Cmd {
	s := m.store
	countCmd := m.fetchUnreadCount()
	return func() tea.Msg {
		_ = s.MarkAllNotificationsRead(context.Background())
		return countCmd()
	}
}

// safeFilename strips path separators and control characters from a
// filename, falling back to the given id when nothing survives.
func safeFilename(name, fallback string) string {
	name = filepath.Base(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20, r == '/', r == '\\', r == ':':
			// skip
		default:
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return fallback
	}
	return cleaned
}
