package eml

import (
	"context"
	"fmt"
	"io"
	netmail "net/mail"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/Moole123/cf-tempmail/internal/model"
)

// FetchFunc retrieves the raw bytes of an attachment by id.
type FetchFunc func(ctx context.Context, id string) ([]byte, error)

// Build writes an RFC 5322 message for a cached email to w. Text and
// HTML bodies become a multipart/alternative section; attachments are
// fetched through fetch and appended as attachment parts. A nil fetch
// writes the message without attachment content.
func Build(
	ctx context.Context,
	w io.Writer,
	email model.Email,
	atts []model.Attachment,
	fetch FetchFunc,
) error {
	var h mail.Header
	h.SetDate(email.ReceivedAt)
	h.SetSubject(email.Subject)
	h.SetAddressList("From", []*mail.Address{
		{Name: email.FromName, Address: email.From},
	})
	h.SetAddressList("To", []*mail.Address{
		{Address: email.To},
	})

	mw, err := mail.CreateWriter(w, h)
	if err != nil {
		return fmt.Errorf("creating message writer: %w", err)
	}

	if err := writeBodies(mw, email); err != nil {
		return err
	}

	if fetch != nil {
		for _, a := range atts {
			if err := writeAttachment(ctx, mw, a, fetch); err != nil {
				return err
			}
		}
	}

	if err := mw.Close(); err != nil {
		return fmt.Errorf("closing message writer: %w", err)
	}
	return nil
}

// writeBodies writes the inline text and HTML parts.
func writeBodies(mw *mail.Writer, email model.Email) error {
	tw, err := mw.CreateInline()
	if err != nil {
		return fmt.Errorf("creating inline section: %w", err)
	}

	text := email.TextBody
	if text == "" && email.HTMLBody == "" {
		text = "\n"
	}

	if text != "" {
		var th mail.InlineHeader
		th.Set("Content-Type", "text/plain; charset=utf-8")
		pw, err := tw.CreatePart(th)
		if err != nil {
			return fmt.Errorf("creating text part: %w", err)
		}
		if _, err := io.WriteString(pw, text); err != nil {
			pw.Close()
			return fmt.Errorf("writing text part: %w", err)
		}
		pw.Close()
	}

	if email.HTMLBody != "" {
		var hh mail.InlineHeader
		hh.Set("Content-Type", "text/html; charset=utf-8")
		pw, err := tw.CreatePart(hh)
		if err != nil {
			return fmt.Errorf("creating html part: %w", err)
		}
		if _, err := io.WriteString(pw, email.HTMLBody); err != nil {
			pw.Close()
			return fmt.Errorf("writing html part: %w", err)
		}
		pw.Close()
	}

	return tw.Close()
}

// writeAttachment fetches one attachment and writes it as an
// attachment part.
func writeAttachment(
	ctx context.Context,
	mw *mail.Writer,
	a model.Attachment,
	fetch FetchFunc,
) error {
	data, err := fetch(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("fetching attachment %s: %w", a.ID, err)
	}

	var ah mail.AttachmentHeader
	ah.SetFilename(a.Filename)
	if a.ContentType != "" {
		ah.Set("Content-Type", a.ContentType)
	}

	aw, err := mw.CreateAttachment(ah)
	if err != nil {
		return fmt.Errorf("creating attachment part: %w", err)
	}
	if _, err := aw.Write(data); err != nil {
		aw.Close()
		return fmt.Errorf("writing attachment %s: %w", a.Filename, err)
	}
	return aw.Close()
}

// SplitAddress splits a raw RFC 5322 address ("Name <box@host>") into
// display name and bare address. Unparseable input comes back as the
// bare address with no name.
func SplitAddress(raw string) (name, address string) {
	parsed, err := netmail.ParseAddress(raw)
	if err != nil {
		return "", strings.TrimSpace(raw)
	}
	return parsed.Name, parsed.Address
}

// FormatAddress renders a display name and address in RFC 5322 form.
func FormatAddress(name, address string) string {
	if name == "" {
		return address
	}
	a := netmail.Address{Name: name, Address: address}
	return a.String()
}
