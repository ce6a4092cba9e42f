package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS load_history (
	id          UUID PRIMARY KEY,
	session_id  TEXT        NOT NULL,
	file_name   TEXT        NOT NULL DEFAULT '',
	size_bytes  BIGINT      NOT NULL DEFAULT 0,
	record_count INTEGER    NOT NULL DEFAULT 0,
	column_count INTEGER    NOT NULL DEFAULT 0,
	status      TEXT        NOT NULL,
	error       TEXT        NOT NULL DEFAULT '',
	ip_address  TEXT        NOT NULL DEFAULT '',
	user_agent  TEXT        NOT NULL DEFAULT '',
	loaded_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS load_history_loaded_at_idx ON load_history (loaded_at DESC);
`

// PostgresStore keeps entries in a PostgreSQL table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings and ensures the load_history table exists.
func NewPostgresStore(ctx context.Context, cfg Config) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("history: parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("history: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history: ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history: create load_history: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Record(ctx context.Context, e Entry) error {
	id, err := entryUUID(e.ID)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO load_history
			(id, session_id, file_name, size_bytes, record_count, column_count, status, error, ip_address, user_agent, loaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, e.SessionID, e.FileName, e.SizeBytes, e.Records, e.Columns,
		string(e.Status), e.Error, e.IPAddress, e.UserAgent, e.LoadedAt,
	)
	if err != nil {
		return fmt.Errorf("history: insert entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, file_name, size_bytes, record_count, column_count, status, error, ip_address, user_agent, loaded_at
		FROM load_history
		ORDER BY loaded_at DESC
		LIMIT $1`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanPostgresEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: read recent: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM load_history WHERE loaded_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("history: purge: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func scanPostgresEntry(rows pgx.Rows) (Entry, error) {
	var (
		e      Entry
		id     pgtype.UUID
		status string
	)
	if err := rows.Scan(&id, &e.SessionID, &e.FileName, &e.SizeBytes, &e.Records, &e.Columns,
		&status, &e.Error, &e.IPAddress, &e.UserAgent, &e.LoadedAt); err != nil {
		return Entry{}, fmt.Errorf("history: scan entry: %w", err)
	}
	if id.Valid {
		e.ID = uuid.UUID(id.Bytes).String()
	}
	e.Status = Status(status)
	return e, nil
}

// entryUUID parses e.ID, generating a fresh id when it is empty.
func entryUUID(id string) (uuid.UUID, error) {
	if id == "" {
		return uuid.New(), nil
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("history: invalid entry id %q: %w", id, err)
	}
	return u, nil
}
