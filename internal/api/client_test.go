package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGetMailboxDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/mailboxes/abc@tmp.test" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing Accept header")
		}
		w.Write([]byte(`{
			"success": true,
			"mailbox": {"address": "abc@tmp.test"},
			"emails": [
				{"id": "e1", "subject": "Hi", "from": "a@b.test", "isRead": false},
				{"id": "e2", "subject": "Again", "from": "a@b.test", "isRead": true}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	inbox, err := c.GetMailbox(context.Background(), "abc@tmp.test")
	if err != nil {
		t.Fatalf("GetMailbox: %v", err)
	}
	if inbox.Mailbox.Address != "abc@tmp.test" {
		t.Errorf("mailbox address = %q", inbox.Mailbox.Address)
	}
	if len(inbox.Emails) != 2 {
		t.Fatalf("got %d emails, want 2", len(inbox.Emails))
	}
	if inbox.Emails[0].ID != "e1" || inbox.Emails[1].Read != true {
		t.Errorf("emails decoded wrong: %+v", inbox.Emails)
	}
}

func TestGetMailboxNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success": false, "error": "mailbox not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetMailbox(context.Background(), "gone@tmp.test")
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %T: %v", err, err)
	}
}

func TestGetEmailRejectedEnvelope(t *testing.T) {
	// 200 with success=false must still be an error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": "rate limited"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetEmail(context.Background(), "e1")
	if err == nil {
		t.Fatal("expected error for success=false envelope")
	}
	if IsNotFound(err) {
		t.Error("envelope rejection must not be a NotFoundError")
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("error should carry server message, got %v", err)
	}
}

func TestBearerTokenSent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success": true, "email": {"id": "e1"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("secret-token")
	if _, err := c.GetEmail(context.Background(), "e1"); err != nil {
		t.Fatalf("GetEmail: %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestProvisionMailbox(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/mailboxes" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		w.Write([]byte(`{
			"success": true,
			"mailbox": {"address": "fresh@tmp.test", "token": "tok-1"}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	mb, err := c.ProvisionMailbox(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("ProvisionMailbox: %v", err)
	}
	if mb.Address != "fresh@tmp.test" || mb.Token != "tok-1" {
		t.Errorf("mailbox = %+v", mb)
	}
}

func TestAttachmentURL(t *testing.T) {
	c := NewClient("https://mail.test")

	got := c.AttachmentURL("att-1")
	want := "https://mail.test/api/attachments/att-1"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// IDs with reserved characters must be escaped.
	got = c.AttachmentURL("a b/c")
	if strings.ContainsAny(got[len("https://mail.test/api/attachments/"):], " /") {
		t.Errorf("attachment id not escaped: %q", got)
	}
}

func TestDownloadAttachment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("download") != "true" {
			t.Errorf("download=true not set: %q", r.URL.RawQuery)
		}
		w.Write([]byte("raw-bytes"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	data, err := c.DownloadAttachment(context.Background(), "att-1")
	if err != nil {
		t.Fatalf("DownloadAttachment: %v", err)
	}
	if string(data) != "raw-bytes" {
		t.Errorf("got %q", data)
	}
}

func TestDownloadAttachmentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.DownloadAttachment(context.Background(), "gone")
	if !IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestDeleteEmailNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.DeleteEmail(context.Background(), "e1"); err != nil {
		t.Fatalf("DeleteEmail: %v", err)
	}
}
