package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS emails (
	id              TEXT PRIMARY KEY,
	mailbox_address TEXT NOT NULL,
	subject         TEXT NOT NULL DEFAULT '',
	from_addr       TEXT NOT NULL DEFAULT '',
	from_name       TEXT NOT NULL DEFAULT '',
	to_addr         TEXT NOT NULL DEFAULT '',
	received_at     DATETIME NOT NULL,
	read            INTEGER NOT NULL DEFAULT 0 CHECK(read IN (0, 1)),
	html_body       TEXT NOT NULL DEFAULT '',
	text_body       TEXT NOT NULL DEFAULT '',
	has_attachments INTEGER NOT NULL DEFAULT 0 CHECK(has_attachments IN (0, 1)),
	fetched_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS attachments (
	id           TEXT PRIMARY KEY,
	email_id     TEXT NOT NULL REFERENCES emails(id) ON DELETE CASCADE,
	filename     TEXT NOT NULL DEFAULT '',
	content_type TEXT NOT NULL DEFAULT 'application/octet-stream',
	size         INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL,
	oversize     INTEGER NOT NULL DEFAULT 0 CHECK(oversize IN (0, 1)),
	chunk_count  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS notifications (
	id              TEXT PRIMARY KEY,
	email_id        TEXT NOT NULL,
	mailbox_address TEXT NOT NULL,
	message         TEXT NOT NULL,
	read            INTEGER NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_emails_mailbox ON emails(mailbox_address);
CREATE INDEX IF NOT EXISTS idx_emails_received_at ON emails(received_at);
CREATE INDEX IF NOT EXISTS idx_emails_read ON emails(read);
CREATE INDEX IF NOT EXISTS idx_attachments_email_id ON attachments(email_id);
CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_emails_mailbox_received
	ON emails(mailbox_address, received_at);

CREATE INDEX IF NOT EXISTS idx_notifications_email_id
	ON notifications(email_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
