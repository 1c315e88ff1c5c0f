package eml

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/Moole123/cf-tempmail/internal/model"
)

func sampleEmail() model.Email {
	return model.Email{
		ID:             "e1",
		MailboxAddress: "box@tmp.test",
		Subject:        "Your receipt",
		From:           "shop@example.test",
		FromName:       "Example Shop",
		To:             "box@tmp.test",
		ReceivedAt:     time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC),
		TextBody:       "Thanks for your order.",
		HTMLBody:       "<p>Thanks for your order.</p>",
	}
}

func TestBuildRoundTrip(t *testing.T) {
	atts := []model.Attachment{
		{ID: "a1", EmailID: "e1", Filename: "receipt.pdf", ContentType: "application/pdf"},
	}
	fetch := func(ctx context.Context, id string) ([]byte, error) {
		if id != "a1" {
			t.Errorf("fetched unexpected attachment %q", id)
		}
		return []byte("%PDF-fake"), nil
	}

	var buf bytes.Buffer
	if err := Build(context.Background(), &buf, sampleEmail(), atts, fetch); err != nil {
		t.Fatalf("Build: %v", err)
	}

	mr, err := mail.CreateReader(&buf)
	if err != nil {
		t.Fatalf("reading built message: %v", err)
	}

	subject, err := mr.Header.Subject()
	if err != nil || subject != "Your receipt" {
		t.Errorf("subject = %q, %v", subject, err)
	}
	from, err := mr.Header.AddressList("From")
	if err != nil || len(from) != 1 || from[0].Address != "shop@example.test" {
		t.Errorf("from = %+v, %v", from, err)
	}

	var sawText, sawHTML, sawAttachment bool
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading part: %v", err)
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			ct, _, _ := h.ContentType()
			body, _ := io.ReadAll(part.Body)
			switch ct {
			case "text/plain":
				sawText = true
				if string(body) != "Thanks for your order." {
					t.Errorf("text body = %q", body)
				}
			case "text/html":
				sawHTML = true
			}
		case *mail.AttachmentHeader:
			sawAttachment = true
			filename, _ := h.Filename()
			if filename != "receipt.pdf" {
				t.Errorf("attachment filename = %q", filename)
			}
			body, _ := io.ReadAll(part.Body)
			if string(body) != "%PDF-fake" {
				t.Errorf("attachment body = %q", body)
			}
		}
	}

	if !sawText || !sawHTML || !sawAttachment {
		t.Errorf("missing parts: text=%v html=%v attachment=%v",
			sawText, sawHTML, sawAttachment)
	}
}

func TestBuildNilFetchSkipsAttachments(t *testing.T) {
	atts := []model.Attachment{
		{ID: "a1", Filename: "big.bin", ContentType: "application/octet-stream"},
	}

	var buf bytes.Buffer
	if err := Build(context.Background(), &buf, sampleEmail(), atts, nil); err != nil {
		t.Fatalf("Build: %v", err)
	}

	mr, err := mail.CreateReader(&buf)
	if err != nil {
		t.Fatalf("reading built message: %v", err)
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading part: %v", err)
		}
		if _, ok := part.Header.(*mail.AttachmentHeader); ok {
			t.Error("attachment written despite nil fetch")
		}
	}
}

func TestSplitAddress(t *testing.T) {
	cases := []struct {
		in       string
		wantName string
		wantAddr string
	}{
		{"Example Shop <shop@example.test>", "Example Shop", "shop@example.test"},
		{"shop@example.test", "", "shop@example.test"},
		{"  not-an-address  ", "", "not-an-address"},
	}
	for _, c := range cases {
		name, addr := SplitAddress(c.in)
		if name != c.wantName || addr != c.wantAddr {
			t.Errorf("SplitAddress(%q) = %q, %q; want %q, %q",
				c.in, name, addr, c.wantName, c.wantAddr)
		}
	}
}

func TestFormatAddress(t *testing.T) {
	got := FormatAddress("Example Shop", "shop@example.test")
	want := `"Example Shop" <shop@example.test>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := FormatAddress("", "shop@example.test"); got != "shop@example.test" {
		t.Errorf("got %q", got)
	}
}
