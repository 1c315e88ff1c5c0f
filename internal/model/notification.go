package model

import "time"

// Notification records the arrival of a newly-seen email so the UI can
// surface an unread badge across sessions.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// EmailID links this notification to the email that triggered it.
	EmailID string `json:"email_id"`

	// MailboxAddress is the mailbox the email arrived in.
	MailboxAddress string `json:"mailbox"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}
