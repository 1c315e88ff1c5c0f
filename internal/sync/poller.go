package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Moole123/cf-tempmail/internal/api"
	"github.com/Moole123/cf-tempmail/internal/model"
	"github.com/Moole123/cf-tempmail/internal/store"
)

// SyncState represents the current state of the inbox poll loop.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// Status holds the poll state for the watched mailbox.
type Status struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// InboxSyncedMsg is a tea.Msg sent when a poll cycle completes. On
// success the emails have already been upserted into the cache and a
// notification created for each newly-seen one.
type InboxSyncedMsg struct {
	Mailbox  model.Mailbox
	Emails   []model.Email
	NewCount int
	Error    error
}

// MailboxGoneMsg is a tea.Msg sent when the backend returns 404 for the
// watched mailbox: it has expired and the app should recover by
// provisioning a fresh one.
type MailboxGoneMsg struct {
	Address string
}

// Fetcher is the slice of the API client the poller depends on.
type Fetcher interface {
	GetMailbox(ctx context.Context, address string) (*api.Inbox, error)
}

// fetchTimeout is the maximum time allowed for a single poll cycle.
const fetchTimeout = 30 * time.Second

// Poller watches one mailbox, polling the backend on a fixed interval
// and pushing results into the Bubble Tea runtime.
type Poller struct {
	store     store.Store
	fetcher   Fetcher
	address   string
	interval  time.Duration
	status    Status
	resultCh  chan tea.Msg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// New creates a Poller for the given mailbox address.
func New(s store.Store, f Fetcher, address string, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Poller{
		store:     s,
		fetcher:   f,
		address:   address,
		interval:  interval,
		resultCh:  make(chan tea.Msg, 16),
		triggerCh: make(chan struct{}, 16),
		stopCh:    make(chan struct{}),
	}
}

// SetMailbox switches the poller to a different mailbox address. Used
// after the recovery flow provisions a replacement.
func (p *Poller) SetMailbox(address string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.address = address
}

// Start returns a tea.Cmd that starts the polling goroutine and
// subscribes to results. The returned command waits on the result
// channel and delivers messages to the Bubble Tea runtime.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return p.waitForResult()
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()

	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate poll without waiting for the ticker.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A poll is already queued; skip to avoid blocking.
	}
}

// GetStatus returns the current poll status.
func (p *Poller) GetStatus() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// loop runs the polling cycle until stopped.
func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Do an initial fetch immediately.
	p.fetchAndCache()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.fetchAndCache()
		case <-p.triggerCh:
			p.fetchAndCache()
		}
	}
}

// fetchAndCache performs a single poll: fetch the inbox, upsert into
// the cache, create notifications for newly-seen emails, and send the
// outcome on the result channel.
func (p *Poller) fetchAndCache() {
	p.mu.Lock()
	address := p.address
	p.mu.Unlock()

	p.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	inbox, err := p.fetcher.GetMailbox(ctx, address)
	if err != nil {
		p.setStatus(SyncError, err)

		if api.IsNotFound(err) {
			p.sendResult(MailboxGoneMsg{Address: address})
			return
		}

		p.sendResult(InboxSyncedMsg{Error: err})
		return
	}

	emails := inbox.Emails

	// Detect new emails by checking which IDs are not cached yet.
	var newIDs map[string]bool
	if len(emails) > 0 {
		existing, _ := p.store.GetEmails(ctx, store.EmailFilter{
			Mailbox: &address,
			Limit:   1000,
		})
		existingIDs := make(map[string]bool, len(existing))
		for _, e := range existing {
			existingIDs[e.ID] = true
		}
		newIDs = make(map[string]bool)
		for _, e := range emails {
			if !existingIDs[e.ID] {
				newIDs[e.ID] = true
			}
		}
	}

	if len(emails) > 0 {
		if upsertErr := p.store.UpsertEmails(ctx, emails); upsertErr != nil {
			p.setStatus(SyncError, upsertErr)
			p.sendResult(InboxSyncedMsg{Error: upsertErr})
			return
		}
	}

	// Create notifications for new emails only.
	for _, e := range emails {
		if !newIDs[e.ID] {
			continue
		}
		notification := model.Notification{
			EmailID:        e.ID,
			MailboxAddress: address,
			Message:        fmt.Sprintf("New mail from %s: %s", e.Sender(), e.Subject),
			CreatedAt:      time.Now(),
		}
		_ = p.store.CreateNotification(ctx, notification)
	}

	p.setStatus(SyncIdle, nil)
	p.sendResult(InboxSyncedMsg{
		Mailbox:  inbox.Mailbox,
		Emails:   emails,
		NewCount: len(newIDs),
	})
}

// setStatus updates the poll status.
func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle && err == nil {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a message on the result channel without blocking.
func (p *Poller) sendResult(msg tea.Msg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if the channel is full to avoid blocking the poller.
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next poll
// result. Call this after processing a result message to keep
// listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
