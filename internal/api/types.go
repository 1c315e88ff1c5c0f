package api

import "github.com/Moole123/cf-tempmail/internal/model"

// envelope is the wrapper every JSON response from the backend carries:
// { "success": bool, ...payload } or { "success": false, "error": "..." }.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// apiStatus exposes the envelope fields to the generic response check.
func (e envelope) apiStatus() (bool, string) {
	return e.Success, e.Error
}

// Inbox is the payload of GET /api/mailboxes/{address}: the mailbox
// metadata plus its current email list (bodies omitted).
type Inbox struct {
	Mailbox model.Mailbox `json:"mailbox"`
	Emails  []model.Email `json:"emails"`
}

// mailboxResponse wraps provision and lookup responses.
type mailboxResponse struct {
	envelope
	Inbox
}

// emailResponse wraps a single-email fetch.
type emailResponse struct {
	envelope
	Email model.Email `json:"email"`
}

// attachmentsResponse wraps the attachment metadata list for an email.
type attachmentsResponse struct {
	envelope
	Attachments []model.Attachment `json:"attachments"`
}

// provisionRequest is the body of POST /api/mailboxes. An empty
// LocalPart asks the backend to generate one.
type provisionRequest struct {
	LocalPart string `json:"localPart,omitempty"`
}
