package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/Moole123/cf-tempmail/internal/model"
	"github.com/Moole123/cf-tempmail/internal/store"
	"github.com/Moole123/cf-tempmail/tests/testutil"
)

func sampleEmail(id, mailbox, subject string, received time.Time) model.Email {
	return model.Email{
		ID:             id,
		MailboxAddress: mailbox,
		Subject:        subject,
		From:           "sender@example.test",
		FromName:       "Sender",
		To:             mailbox,
		ReceivedAt:     received,
	}
}

func TestUpsertAndGetEmails(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	emails := []model.Email{
		sampleEmail("e1", "box@tmp.test", "First", now.Add(-2*time.Hour)),
		sampleEmail("e2", "box@tmp.test", "Second", now.Add(-1*time.Hour)),
		sampleEmail("e3", "other@tmp.test", "Elsewhere", now),
	}
	if err := s.UpsertEmails(ctx, emails); err != nil {
		t.Fatalf("UpsertEmails: %v", err)
	}

	mailbox := "box@tmp.test"
	got, err := s.GetEmails(ctx, store.EmailFilter{
		Mailbox:  &mailbox,
		SortBy:   "received_at",
		SortDesc: true,
	})
	if err != nil {
		t.Fatalf("GetEmails: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d emails, want 2", len(got))
	}
	if got[0].ID != "e2" || got[1].ID != "e1" {
		t.Errorf("wrong sort order: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestUpsertPreservesBodyAndReadFlag(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	e := sampleEmail("e1", "box@tmp.test", "Hello", time.Now().UTC())
	e.HTMLBody = "<p>full body</p>"
	e.Read = true
	if err := s.UpsertEmails(ctx, []model.Email{e}); err != nil {
		t.Fatalf("UpsertEmails: %v", err)
	}

	// A poll cycle delivers the same email without bodies and unread;
	// neither should clobber what we already have.
	meta := sampleEmail("e1", "box@tmp.test", "Hello (edited)", e.ReceivedAt)
	if err := s.UpsertEmails(ctx, []model.Email{meta}); err != nil {
		t.Fatalf("UpsertEmails metadata: %v", err)
	}

	got, err := s.GetEmailByID(ctx, "e1")
	if err != nil {
		t.Fatalf("GetEmailByID: %v", err)
	}
	if got == nil {
		t.Fatal("email missing after upsert")
	}
	if got.Subject != "Hello (edited)" {
		t.Errorf("subject not updated: %q", got.Subject)
	}
	if got.HTMLBody != "<p>full body</p>" {
		t.Errorf("body clobbered by metadata refresh: %q", got.HTMLBody)
	}
	if !got.Read {
		t.Error("read flag regressed to unread")
	}
}

func TestGetEmailByIDMissing(t *testing.T) {
	s := testutil.NewTestStore(t)

	got, err := s.GetEmailByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetEmailByID: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for uncached email, got %+v", got)
	}
}

func TestEmailFilters(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	read := sampleEmail("e1", "box@tmp.test", "Invoice attached", now)
	read.Read = true
	unread := sampleEmail("e2", "box@tmp.test", "Welcome aboard", now)
	if err := s.UpsertEmails(ctx, []model.Email{read, unread}); err != nil {
		t.Fatalf("UpsertEmails: %v", err)
	}

	unreadOnly := true
	got, err := s.GetEmails(ctx, store.EmailFilter{Unread: &unreadOnly})
	if err != nil {
		t.Fatalf("GetEmails unread: %v", err)
	}
	if len(got) != 1 || got[0].ID != "e2" {
		t.Errorf("unread filter: got %+v", got)
	}

	query := "invoice"
	got, err = s.GetEmails(ctx, store.EmailFilter{Query: &query})
	if err != nil {
		t.Fatalf("GetEmails query: %v", err)
	}
	if len(got) != 1 || got[0].ID != "e1" {
		t.Errorf("query filter: got %+v", got)
	}
}

func TestMarkEmailRead(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	e := sampleEmail("e1", "box@tmp.test", "Hi", time.Now().UTC())
	if err := s.UpsertEmails(ctx, []model.Email{e}); err != nil {
		t.Fatalf("UpsertEmails: %v", err)
	}

	if err := s.MarkEmailRead(ctx, "e1"); err != nil {
		t.Fatalf("MarkEmailRead: %v", err)
	}

	got, err := s.GetEmailByID(ctx, "e1")
	if err != nil || got == nil {
		t.Fatalf("GetEmailByID: %v, %v", got, err)
	}
	if !got.Read {
		t.Error("email still unread")
	}
}

func TestDeleteEmailCascadesAttachments(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	e := sampleEmail("e1", "box@tmp.test", "Hi", time.Now().UTC())
	e.HasAttachments = true
	if err := s.UpsertEmails(ctx, []model.Email{e}); err != nil {
		t.Fatalf("UpsertEmails: %v", err)
	}
	atts := []model.Attachment{
		{ID: "a1", EmailID: "e1", Filename: "logo.png", ContentType: "image/png", Size: 10},
	}
	if err := s.UpsertAttachments(ctx, atts); err != nil {
		t.Fatalf("UpsertAttachments: %v", err)
	}

	if err := s.DeleteEmail(ctx, "e1"); err != nil {
		t.Fatalf("DeleteEmail: %v", err)
	}

	left, err := s.GetAttachmentsForEmail(ctx, "e1")
	if err != nil {
		t.Fatalf("GetAttachmentsForEmail: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("attachments survived email delete: %+v", left)
	}
}

func TestAttachmentsSortedByFilename(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	e := sampleEmail("e1", "box@tmp.test", "Hi", time.Now().UTC())
	if err := s.UpsertEmails(ctx, []model.Email{e}); err != nil {
		t.Fatalf("UpsertEmails: %v", err)
	}
	atts := []model.Attachment{
		{ID: "a2", EmailID: "e1", Filename: "zebra.png", ContentType: "image/png"},
		{ID: "a1", EmailID: "e1", Filename: "apple.png", ContentType: "image/png"},
	}
	if err := s.UpsertAttachments(ctx, atts); err != nil {
		t.Fatalf("UpsertAttachments: %v", err)
	}

	got, err := s.GetAttachmentsForEmail(ctx, "e1")
	if err != nil {
		t.Fatalf("GetAttachmentsForEmail: %v", err)
	}
	if len(got) != 2 || got[0].Filename != "apple.png" {
		t.Errorf("attachments not sorted by filename: %+v", got)
	}
}

func TestNotificationLifecycle(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	e := sampleEmail("e1", "box@tmp.test", "Hi", time.Now().UTC())
	if err := s.UpsertEmails(ctx, []model.Email{e}); err != nil {
		t.Fatalf("UpsertEmails: %v", err)
	}

	n := model.Notification{
		EmailID:        "e1",
		MailboxAddress: "box@tmp.test",
		Message:        "New mail from Sender: Hi",
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}

	unread, err := s.GetUnreadNotifications(ctx)
	if err != nil {
		t.Fatalf("GetUnreadNotifications: %v", err)
	}
	if len(unread) != 1 {
		t.Fatalf("got %d unread notifications, want 1", len(unread))
	}

	if err := s.MarkNotificationRead(ctx, unread[0].ID); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}

	unread, err = s.GetUnreadNotifications(ctx)
	if err != nil {
		t.Fatalf("GetUnreadNotifications: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("notification still unread: %+v", unread)
	}
}

func TestPurgeMailbox(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	emails := []model.Email{
		sampleEmail("e1", "old@tmp.test", "One", now),
		sampleEmail("e2", "old@tmp.test", "Two", now),
		sampleEmail("e3", "keep@tmp.test", "Stays", now),
	}
	if err := s.UpsertEmails(ctx, emails); err != nil {
		t.Fatalf("UpsertEmails: %v", err)
	}
	n := model.Notification{
		EmailID:        "e1",
		MailboxAddress: "old@tmp.test",
		Message:        "New mail",
		CreatedAt:      now,
	}
	if err := s.CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}

	if err := s.PurgeMailbox(ctx, "old@tmp.test"); err != nil {
		t.Fatalf("PurgeMailbox: %v", err)
	}

	old := "old@tmp.test"
	got, err := s.GetEmails(ctx, store.EmailFilter{Mailbox: &old})
	if err != nil {
		t.Fatalf("GetEmails: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("purged mailbox still has %d emails", len(got))
	}

	keep := "keep@tmp.test"
	got, err = s.GetEmails(ctx, store.EmailFilter{Mailbox: &keep})
	if err != nil {
		t.Fatalf("GetEmails: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("other mailbox affected by purge: %d emails", len(got))
	}

	unread, err := s.GetUnreadNotifications(ctx)
	if err != nil {
		t.Fatalf("GetUnreadNotifications: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("notifications survived purge: %+v", unread)
	}
}
