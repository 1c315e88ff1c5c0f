package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Moole123/cf-tempmail/internal/model"
)

// UpsertAttachments inserts or replaces attachment metadata records.
// The owning email must already be cached; the foreign key rejects
// orphan rows.
func (s *SQLiteStore) UpsertAttachments(
	ctx context.Context,
	atts []model.Attachment,
) error {
	if len(atts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT OR REPLACE INTO attachments (
			id, email_id, filename, content_type, size,
			created_at, oversize, chunk_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, a := range atts {
		_, err = stmt.ExecContext(ctx,
			a.ID, a.EmailID, a.Filename, a.ContentType, a.Size,
			a.CreatedAt.UTC(), boolToInt(a.Oversize), a.ChunkCount,
		)
		if err != nil {
			return fmt.Errorf("upserting attachment %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// GetAttachmentsForEmail retrieves the cached attachment metadata for
// an email, ordered by filename.
func (s *SQLiteStore) GetAttachmentsForEmail(
	ctx context.Context,
	emailID string,
) ([]model.Attachment, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM attachments WHERE email_id = ? ORDER BY filename",
		emailID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying attachments for %s: %w", emailID, err)
	}
	defer rows.Close()

	var atts []model.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		atts = append(atts, a)
	}

	return atts, rows.Err()
}

// scanAttachment scans an attachment row from a sqlx.Rows result set.
func scanAttachment(rows *sqlx.Rows) (model.Attachment, error) {
	var (
		a           model.Attachment
		oversizeInt int
		createdAt   time.Time
	)

	err := rows.Scan(
		&a.ID, &a.EmailID, &a.Filename, &a.ContentType, &a.Size,
		&createdAt, &oversizeInt, &a.ChunkCount,
	)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("scanning attachment row: %w", err)
	}

	a.CreatedAt = createdAt
	a.Oversize = oversizeInt != 0

	return a, nil
}
