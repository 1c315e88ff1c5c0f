package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Moole123/cf-tempmail/internal/model"
)

// Client is a thin HTTP client for the temp-mail backend REST API.
// It handles the JSON success envelope, bearer token authentication
// for mailbox access, and typed 404 detection.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the backend at baseURL (e.g.
// https://mail.example.com). The mailbox access token is set later,
// once a mailbox has been provisioned or restored.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken installs the mailbox access token sent as a bearer header
// on subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// BaseURL returns the configured backend root URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetBaseURL points the client at a different backend. Used when setup
// changes the server URL after the client was constructed.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// ProvisionMailbox creates a new mailbox. localPart may be empty to let
// the backend pick one. The returned mailbox carries the access token.
func (c *Client) ProvisionMailbox(
	ctx context.Context,
	localPart string,
) (*model.Mailbox, error) {
	var resp mailboxResponse
	err := c.do(
		ctx, http.MethodPost, "/api/mailboxes",
		provisionRequest{LocalPart: localPart}, &resp,
		notFound{},
	)
	if err != nil {
		return nil, err
	}
	return &resp.Mailbox, nil
}

// GetMailbox fetches mailbox metadata and the current email list.
// A 404 returns a NotFoundError: the mailbox has expired.
func (c *Client) GetMailbox(
	ctx context.Context,
	address string,
) (*Inbox, error) {
	var resp mailboxResponse
	err := c.do(
		ctx, http.MethodGet,
		"/api/mailboxes/"+url.PathEscape(address), nil, &resp,
		notFound{Kind: "mailbox", ID: address},
	)
	if err != nil {
		return nil, err
	}
	return &resp.Inbox, nil
}

// DeleteMailbox discards the mailbox and everything in it.
func (c *Client) DeleteMailbox(ctx context.Context, address string) error {
	return c.do(
		ctx, http.MethodDelete,
		"/api/mailboxes/"+url.PathEscape(address), nil, nil,
		notFound{Kind: "mailbox", ID: address},
	)
}

// GetEmail fetches a single email including its bodies.
// A 404 returns a NotFoundError: the email (or its mailbox) is gone.
func (c *Client) GetEmail(
	ctx context.Context,
	id string,
) (*model.Email, error) {
	var resp emailResponse
	err := c.do(
		ctx, http.MethodGet,
		"/api/emails/"+url.PathEscape(id), nil, &resp,
		notFound{Kind: "email", ID: id},
	)
	if err != nil {
		return nil, err
	}
	return &resp.Email, nil
}

// DeleteEmail deletes a single email from its mailbox.
func (c *Client) DeleteEmail(ctx context.Context, id string) error {
	return c.do(
		ctx, http.MethodDelete,
		"/api/emails/"+url.PathEscape(id), nil, nil,
		notFound{Kind: "email", ID: id},
	)
}

// GetAttachments fetches the attachment metadata list for an email.
func (c *Client) GetAttachments(
	ctx context.Context,
	emailID string,
) ([]model.Attachment, error) {
	var resp attachmentsResponse
	err := c.do(
		ctx, http.MethodGet,
		"/api/emails/"+url.PathEscape(emailID)+"/attachments", nil, &resp,
		notFound{Kind: "email", ID: emailID},
	)
	if err != nil {
		return nil, err
	}
	return resp.Attachments, nil
}

// AttachmentURL constructs the fetchable URL for an attachment,
// suitable for inline display. Download mode is not forced here; use
// DownloadAttachment for explicit saves.
func (c *Client) AttachmentURL(id string) string {
	return c.baseURL + "/api/attachments/" + url.PathEscape(id)
}

// DownloadAttachment fetches the raw attachment bytes in download mode.
func (c *Client) DownloadAttachment(
	ctx context.Context,
	id string,
) ([]byte, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.AttachmentURL(id)+"?download=true", nil,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req, false)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading attachment %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{Kind: "attachment", ID: id}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf(
			"unexpected status %d downloading attachment %s",
			resp.StatusCode, id,
		)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading attachment %s: %w", id, err)
	}
	return data, nil
}

// notFound describes how a 404 on a request should be typed. A zero
// Kind means 404 is unexpected for the endpoint and is reported as a
// generic error instead.
type notFound struct {
	Kind string
	ID   string
}

// statuser is implemented by response types embedding envelope.
type statuser interface {
	apiStatus() (ok bool, message string)
}

// do is the core HTTP method that builds the request, sends the bearer
// token, decodes the JSON envelope, and types 404 responses.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
	nf notFound,
) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(
		ctx, method, c.baseURL+path, bodyReader,
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req, body != nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("reading response body: %w", readErr)
	}

	if resp.StatusCode == http.StatusNotFound && nf.Kind != "" {
		return &NotFoundError{Kind: nf.Kind, ID: nf.ID}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env envelope
		if json.Unmarshal(respBody, &env) == nil && env.Error != "" {
			return fmt.Errorf(
				"server error (%d) on %s %s: %s",
				resp.StatusCode, method, path, env.Error,
			)
		}
		return fmt.Errorf(
			"unexpected status %d on %s %s",
			resp.StatusCode, method, path,
		)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf(
			"unmarshaling response from %s %s: %w", method, path, err,
		)
	}

	if s, ok := result.(statuser); ok {
		if success, message := s.apiStatus(); !success {
			if message == "" {
				message = "request failed"
			}
			return fmt.Errorf(
				"server rejected %s %s: %s", method, path, message,
			)
		}
	}

	return nil
}

// setHeaders applies the standard headers to an outgoing request.
func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
