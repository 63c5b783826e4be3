// Package journal is the client's local, append-only record of upload
// attempts. It keeps every state an attempt entered and every upload that
// reached the permanent store, so an upload whose backend record save failed
// can still be found.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/permavault/internal/client/journal/migrations"
	"github.com/dmitrijs2005/permavault/internal/client/models"
	"github.com/dmitrijs2005/permavault/internal/cryptox"
	"github.com/dmitrijs2005/permavault/internal/dbx"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"
)

// Event is one state an attempt entered.
type Event struct {
	AttemptID string
	State     string
	Detail    string
	CreatedAt time.Time
}

type Journal struct {
	db  dbx.DBTX
	now func() time.Time
}

func New(db dbx.DBTX) *Journal {
	return &Journal{db: db, now: time.Now}
}

var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite journal at dsn and brings its schema up to
// date.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := dbx.Open(ctx, "sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal migrations: %w", err)
	}
	return db, nil
}

func (j *Journal) AppendEvent(ctx context.Context, attemptID, state, detail string) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO attempts (attempt_id, state, detail, created_at) VALUES (?, ?, ?, ?)`,
		attemptID, state, detail, j.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to append event for %s: %w", attemptID, err)
	}
	return nil
}

// SaveRecord stores a successful upload. Saving the same transaction twice
// keeps the first row.
func (j *Journal) SaveRecord(ctx context.Context, rec *models.UploadRecord) error {
	var env []byte
	if rec.Envelope != nil {
		var err error
		if env, err = rec.Envelope.Marshal(); err != nil {
			return fmt.Errorf("failed to encode envelope: %w", err)
		}
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO uploads (transaction_id, url, file_name, size, mime_type, cost, envelope, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(transaction_id) DO NOTHING
	`, rec.TransactionID, rec.URL, rec.FileName, rec.Size, rec.MimeType, rec.Cost.String(), env, rec.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", rec.TransactionID, err)
	}
	return nil
}

// ListEvents returns the events of one attempt, or of all attempts when
// attemptID is empty, oldest first.
func (j *Journal) ListEvents(ctx context.Context, attemptID string) ([]Event, error) {
	q := `SELECT attempt_id, state, detail, created_at FROM attempts`
	var args []any
	if attemptID != "" {
		q += ` WHERE attempt_id = ?`
		args = append(args, attemptID)
	}
	q += ` ORDER BY id`

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var ts int64
		if err := rows.Scan(&e.AttemptID, &e.State, &e.Detail, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		e.CreatedAt = time.UnixMilli(ts).UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}
	return events, nil
}

// ListRecords returns stored uploads, newest first.
func (j *Journal) ListRecords(ctx context.Context) ([]*models.UploadRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT transaction_id, url, file_name, size, mime_type, cost, envelope, created_at
		FROM uploads ORDER BY created_at DESC, transaction_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var out []*models.UploadRecord
	for rows.Next() {
		var (
			r    models.UploadRecord
			cost string
			env  []byte
			ts   int64
		)
		if err := rows.Scan(&r.TransactionID, &r.URL, &r.FileName, &r.Size, &r.MimeType, &cost, &env, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		if r.Cost, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("bad cost for %s: %w", r.TransactionID, err)
		}
		if len(env) > 0 {
			if r.Envelope, err = cryptox.ParseEnvelope(env); err != nil {
				return nil, fmt.Errorf("bad envelope for %s: %w", r.TransactionID, err)
			}
		}
		r.CreatedAt = time.UnixMilli(ts).UTC()
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate record rows: %w", err)
	}
	return out, nil
}
