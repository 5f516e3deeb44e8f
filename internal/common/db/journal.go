package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ckan-publisher/internal/common/logger"
)

const createJournalTable = `
	CREATE TABLE IF NOT EXISTS ckan_publication_log (
		id          BIGSERIAL PRIMARY KEY,
		operation   TEXT        NOT NULL,
		resource_id TEXT        NOT NULL DEFAULT '',
		dataset_id  TEXT        NOT NULL DEFAULT '',
		target      TEXT        NOT NULL DEFAULT '',
		success     BOOLEAN     NOT NULL,
		error       TEXT        NOT NULL DEFAULT '',
		recorded_at TIMESTAMPTZ NOT NULL
	)
`

const insertJournalEntry = `
	INSERT INTO ckan_publication_log
		(operation, resource_id, dataset_id, target, success, error, recorded_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// JournalEntry is one CKAN operation or file write performed by a publication.
type JournalEntry struct {
	Operation  string
	ResourceID string
	DatasetID  string
	// Target is a file path or URL the operation produced, if any.
	Target     string
	Success    bool
	Error      string
	RecordedAt time.Time
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Journal appends publication outcomes to ckan_publication_log.
// It is an audit trail only; nothing is read back from it.
type Journal struct {
	conn   execer
	logger logger.Logger
	now    func() time.Time
}

func NewJournal(db *DB) *Journal {
	return newJournal(db.conn, db.logger)
}

func newJournal(conn execer, log logger.Logger) *Journal {
	return &Journal{conn: conn, logger: log, now: time.Now}
}

// EnsureSchema creates the journal table when it does not exist yet.
func (j *Journal) EnsureSchema(ctx context.Context) error {
	if _, err := j.conn.ExecContext(ctx, createJournalTable); err != nil {
		return fmt.Errorf("creating journal table: %w", err)
	}
	return nil
}

func (j *Journal) Record(ctx context.Context, entry JournalEntry) error {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = j.now()
	}

	_, err := j.conn.ExecContext(ctx, insertJournalEntry,
		entry.Operation,
		entry.ResourceID,
		entry.DatasetID,
		entry.Target,
		entry.Success,
		entry.Error,
		entry.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", entry.Operation, err)
	}

	j.logger.Debug("Journal entry recorded",
		"operation", entry.Operation,
		"resource_id", entry.ResourceID,
		"success", entry.Success)
	return nil
}

// NopJournal discards entries. It is used when no database is configured.
type NopJournal struct{}

func (NopJournal) Record(context.Context, JournalEntry) error {
	return nil
}
