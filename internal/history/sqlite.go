package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteTimeLayout is fixed width so that text comparison matches time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS load_history (
	id           TEXT PRIMARY KEY,
	session_id   TEXT    NOT NULL,
	file_name    TEXT    NOT NULL DEFAULT '',
	size_bytes   INTEGER NOT NULL DEFAULT 0,
	record_count INTEGER NOT NULL DEFAULT 0,
	column_count INTEGER NOT NULL DEFAULT 0,
	status       TEXT    NOT NULL,
	error        TEXT    NOT NULL DEFAULT '',
	ip_address   TEXT    NOT NULL DEFAULT '',
	user_agent   TEXT    NOT NULL DEFAULT '',
	loaded_at    TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS load_history_loaded_at_idx ON load_history (loaded_at);
`

// SQLiteStore keeps entries in a SQLite database file.
//
// SQLite has no timestamp type; loaded_at is stored as UTC text in
// sqliteTimeLayout.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dsn and ensures the table exists.
func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite: %w", err)
	}
	// One writer keeps "database is locked" out of concurrent loads.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: create load_history: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	id, err := entryUUID(e.ID)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO load_history
			(id, session_id, file_name, size_bytes, record_count, column_count, status, error, ip_address, user_agent, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), e.SessionID, e.FileName, e.SizeBytes, e.Records, e.Columns,
		string(e.Status), e.Error, e.IPAddress, e.UserAgent, formatSQLiteTime(e.LoadedAt),
	)
	if err != nil {
		return fmt.Errorf("history: insert entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, file_name, size_bytes, record_count, column_count, status, error, ip_address, user_agent, loaded_at
		FROM load_history
		ORDER BY loaded_at DESC
		LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			status   string
			loadedAt string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.FileName, &e.SizeBytes, &e.Records, &e.Columns,
			&status, &e.Error, &e.IPAddress, &e.UserAgent, &loadedAt); err != nil {
			return nil, fmt.Errorf("history: scan entry: %w", err)
		}
		e.Status = Status(status)
		t, err := time.Parse(sqliteTimeLayout, loadedAt)
		if err != nil {
			return nil, fmt.Errorf("history: parse loaded_at %q: %w", loadedAt, err)
		}
		e.LoadedAt = t
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: read recent: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM load_history WHERE loaded_at < ?`, formatSQLiteTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("history: purge: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() {
	_ = s.db.Close()
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}
