package model

import (
	"strings"
	"time"
)

// Attachment is a binary file associated with an email, addressable by
// id. Immutable once fetched; EmailID always matches the parent
// Email.ID (the backend enforces this, the cache mirrors it).
type Attachment struct {
	// ID is the server-assigned identifier.
	ID string `json:"id"`

	// EmailID is the identifier of the owning email.
	EmailID string `json:"emailId"`

	// Filename is the original file name from the MIME part.
	Filename string `json:"filename"`

	// ContentType is the declared MIME type.
	ContentType string `json:"contentType"`

	// Size is the decoded size in bytes.
	Size int64 `json:"size"`

	// CreatedAt is when the backend stored the attachment.
	CreatedAt time.Time `json:"createdAt"`

	// Oversize marks attachments the backend stored in chunks because
	// they exceeded its single-object limit.
	Oversize bool `json:"oversize"`

	// ChunkCount is the number of stored chunks for oversize
	// attachments, zero otherwise.
	ChunkCount int `json:"chunkCount"`
}

// IsImage reports whether the attachment declares an image MIME type.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}
