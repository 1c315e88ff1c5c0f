package model

import "time"

// Email is a single message in a temporary mailbox. The server owns it;
// the client treats it as immutable and caches it locally after the
// first fetch.
type Email struct {
	// ID is the server-assigned identifier.
	ID string `json:"id"`

	// MailboxAddress is the address of the owning mailbox.
	MailboxAddress string `json:"mailbox"`

	// Subject is the message subject line.
	Subject string `json:"subject"`

	// From is the sender address.
	From string `json:"from"`

	// FromName is the sender display name, when one was present.
	FromName string `json:"fromName,omitempty"`

	// To is the recipient address.
	To string `json:"to"`

	// ReceivedAt is when the backend accepted the message.
	ReceivedAt time.Time `json:"receivedAt"`

	// Read indicates whether the message has been opened.
	Read bool `json:"isRead"`

	// HTMLBody is the text/html body, when present.
	HTMLBody string `json:"html,omitempty"`

	// TextBody is the text/plain body, when present.
	TextBody string `json:"text,omitempty"`

	// HasAttachments indicates attachment records exist for this email.
	HasAttachments bool `json:"hasAttachments"`
}

// Sender returns the display name when present, the bare address otherwise.
func (e Email) Sender() string {
	if e.FromName != "" {
		return e.FromName
	}
	return e.From
}
