package store

import (
	"context"

	"github.com/Moole123/cf-tempmail/internal/model"
)

// EmailFilter controls filtering, sorting, and pagination for cached
// email queries.
type EmailFilter struct {
	Mailbox  *string // owning mailbox address, or nil (all)
	Unread   *bool   // true = unread only, false = read only, nil = all
	Query    *string // search subject + sender
	SortBy   string  // "received_at", "subject", "from_addr"
	SortDesc bool
	Limit    int
	Offset   int
}

// Store defines the persistence interface for the local cache of
// emails, attachments, and arrival notifications.
type Store interface {
	// === Emails ===

	UpsertEmails(ctx context.Context, emails []model.Email) error
	GetEmails(ctx context.Context, filter EmailFilter) ([]model.Email, error)
	GetEmailByID(ctx context.Context, id string) (*model.Email, error)
	MarkEmailRead(ctx context.Context, id string) error
	DeleteEmail(ctx context.Context, id string) error

	// PurgeMailbox removes all cached emails for a mailbox together
	// with their attachments and notifications. Used when the backend
	// reports the mailbox gone.
	PurgeMailbox(ctx context.Context, address string) error

	// === Attachments ===

	UpsertAttachments(ctx context.Context, atts []model.Attachment) error
	GetAttachmentsForEmail(ctx context.Context, emailID string) ([]model.Attachment, error)

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) error
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
}
