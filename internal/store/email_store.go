package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Moole123/cf-tempmail/internal/model"
)

// UpsertEmails inserts or replaces a batch of cached emails. Bodies are
// only overwritten when the incoming email carries them, so a metadata
// refresh does not wipe a previously fetched body.
func (s *SQLiteStore) UpsertEmails(ctx context.Context, emails []model.Email) error {
	if len(emails) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO emails (
			id, mailbox_address, subject, from_addr, from_name, to_addr,
			received_at, read, html_body, text_body, has_attachments, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject         = excluded.subject,
			from_addr       = excluded.from_addr,
			from_name       = excluded.from_name,
			to_addr         = excluded.to_addr,
			received_at     = excluded.received_at,
			read            = MAX(emails.read, excluded.read),
			html_body       = CASE WHEN excluded.html_body != '' THEN excluded.html_body ELSE emails.html_body END,
			text_body       = CASE WHEN excluded.text_body != '' THEN excluded.text_body ELSE emails.text_body END,
			has_attachments = excluded.has_attachments,
			fetched_at      = excluded.fetched_at`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, e := range emails {
		_, err = stmt.ExecContext(ctx,
			e.ID, e.MailboxAddress, e.Subject, e.From, e.FromName, e.To,
			e.ReceivedAt.UTC(), boolToInt(e.Read),
			e.HTMLBody, e.TextBody, boolToInt(e.HasAttachments), now,
		)
		if err != nil {
			return fmt.Errorf("upserting email %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// GetEmails retrieves cached emails matching the provided filter.
func (s *SQLiteStore) GetEmails(
	ctx context.Context,
	filter EmailFilter,
) ([]model.Email, error) {
	var conditions []string
	var args []interface{}

	if filter.Mailbox != nil {
		conditions = append(conditions, "mailbox_address = ?")
		args = append(args, *filter.Mailbox)
	}
	if filter.Unread != nil {
		conditions = append(conditions, "read = ?")
		args = append(args, boolToInt(!*filter.Unread))
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions,
			"(subject LIKE ? OR from_addr LIKE ? OR from_name LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q, q)
	}

	query := "SELECT * FROM emails"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sortBy := "received_at"
	if filter.SortBy != "" {
		allowedSorts := map[string]bool{
			"received_at": true,
			"subject":     true,
			"from_addr":   true,
		}
		if allowedSorts[filter.SortBy] {
			sortBy = filter.SortBy
		}
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying emails: %w", err)
	}
	defer rows.Close()

	var emails []model.Email
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}

	return emails, rows.Err()
}

// GetEmailByID retrieves a single cached email by its ID. Returns
// (nil, nil) when the email is not cached.
func (s *SQLiteStore) GetEmailByID(
	ctx context.Context,
	id string,
) (*model.Email, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM emails WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("querying email %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("getting email %s: %w", id, err)
		}
		return nil, nil
	}

	e, err := scanEmail(rows)
	if err != nil {
		return nil, fmt.Errorf("getting email %s: %w", id, err)
	}
	return &e, nil
}

// MarkEmailRead flags a cached email as read.
func (s *SQLiteStore) MarkEmailRead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE emails SET read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking email %s read: %w", id, err)
	}
	return nil
}

// DeleteEmail removes a cached email. Its attachment rows cascade.
func (s *SQLiteStore) DeleteEmail(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM emails WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting email %s: %w", id, err)
	}
	return nil
}

// PurgeMailbox removes every cached email for a mailbox together with
// its attachments (cascade) and notifications.
func (s *SQLiteStore) PurgeMailbox(ctx context.Context, address string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM emails WHERE mailbox_address = ?", address,
	); err != nil {
		return fmt.Errorf("purging emails for %s: %w", address, err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM notifications WHERE mailbox_address = ?", address,
	); err != nil {
		return fmt.Errorf("purging notifications for %s: %w", address, err)
	}

	return tx.Commit()
}

// scanEmail scans an email row from a sqlx.Rows result set.
func scanEmail(rows *sqlx.Rows) (model.Email, error) {
	var (
		e           model.Email
		readInt     int
		hasAttsInt  int
		receivedAt  time.Time
		fetchedAt   time.Time
	)

	err := rows.Scan(
		&e.ID, &e.MailboxAddress, &e.Subject, &e.From, &e.FromName, &e.To,
		&receivedAt, &readInt, &e.HTMLBody, &e.TextBody, &hasAttsInt,
		&fetchedAt,
	)
	if err != nil {
		return model.Email{}, fmt.Errorf("scanning email row: %w", err)
	}

	e.ReceivedAt = receivedAt
	e.Read = readInt != 0
	e.HasAttachments = hasAttsInt != 0

	return e, nil
}
