package model

import "time"

// Mailbox represents a temporary address provisioned by the backend.
type Mailbox struct {
	// Address is the full email address of the mailbox.
	Address string `json:"address"`

	// Token is the access token issued at provision time. It is required
	// to re-open the mailbox in a later session and is stored in the
	// system keyring, never in the config file or the local cache.
	Token string `json:"token,omitempty"`

	// CreatedAt is when the mailbox was provisioned.
	CreatedAt time.Time `json:"createdAt"`

	// ExpiresAt is when the backend will discard the mailbox, if known.
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the mailbox is past its expiry timestamp.
// Mailboxes without an expiry never report expired; the backend still
// owns the final decision and signals it with a 404.
func (m Mailbox) Expired() bool {
	return m.ExpiresAt != nil && m.ExpiresAt.Before(time.Now())
}
