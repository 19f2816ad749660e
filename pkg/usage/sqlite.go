package usage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// schema is the usage table schema. The (user_id, timestamp) index serves
// both the stats query and retention pruning.
const schema = `
CREATE TABLE IF NOT EXISTS usage_records (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL,
	timestamp        INTEGER NOT NULL,
	request_type     TEXT NOT NULL,
	input_tokens     INTEGER NOT NULL,
	output_tokens    INTEGER NOT NULL,
	response_time_ms INTEGER NOT NULL,
	filtered         INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_usage_user_time
	ON usage_records (user_id, timestamp);

CREATE INDEX IF NOT EXISTS idx_usage_time
	ON usage_records (timestamp);
`

// SQLiteConfig configures the SQLite usage store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLiteStore implements Store using SQLite. WAL mode is enabled for
// better concurrency between the recorder's writes and stats reads.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (creating if necessary) the usage database at
// cfg.Path and initializes the schema.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage database %q: %w", cfg.Path, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	s := &SQLiteStore{
		db:     db,
		logger: slog.Default().With("component", "usage.sqlite"),
	}

	if err := s.initialize(cfg.BusyTimeout); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("usage store initialized", "path", cfg.Path)
	return s, nil
}

// initialize enables WAL mode, sets the busy timeout, and creates the
// schema.
func (s *SQLiteStore) initialize(busyTimeout time.Duration) error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save persists a single usage record.
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if rec.ID == "" {
		return fmt.Errorf("record ID cannot be empty")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_records
			(id, user_id, timestamp, request_type, input_tokens, output_tokens, response_time_ms, filtered)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.UserID,
		rec.Timestamp.Unix(),
		rec.RequestType,
		rec.InputTokens,
		rec.OutputTokens,
		rec.ResponseTimeMS,
		boolToInt(rec.Filtered),
	)
	if err != nil {
		return fmt.Errorf("failed to save usage record: %w", err)
	}
	return nil
}

// Stats aggregates usage for userID over the last days days. Unknown
// users return zeroed stats with Status "inactive"; this endpoint never
// mutates state.
func (s *SQLiteStore) Stats(ctx context.Context, userID string, days int) (*Stats, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days).Unix()

	stats := &Stats{
		UserID:     userID,
		PeriodDays: days,
		Status:     "inactive",
	}

	var (
		avgResponse sql.NullFloat64
		lastRequest sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0),
			COALESCE(SUM(filtered), 0),
			AVG(response_time_ms),
			MAX(timestamp)
		FROM usage_records
		WHERE user_id = ? AND timestamp >= ?`,
		userID, since,
	).Scan(
		&stats.TotalRequests,
		&stats.TotalInputTokens,
		&stats.TotalOutputTokens,
		&stats.ContentFilterEvents,
		&avgResponse,
		&lastRequest,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage stats: %w", err)
	}

	if avgResponse.Valid {
		stats.AverageResponseTimeMS = int64(avgResponse.Float64)
	}
	if lastRequest.Valid {
		stats.LastRequest = time.Unix(lastRequest.Int64, 0).UTC().Format(time.RFC3339)
	}
	if stats.TotalRequests > 0 {
		stats.Status = "active"
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			date(timestamp, 'unixepoch'),
			COUNT(*),
			COALESCE(SUM(input_tokens + output_tokens), 0)
		FROM usage_records
		WHERE user_id = ? AND timestamp >= ?
		GROUP BY date(timestamp, 'unixepoch')
		ORDER BY date(timestamp, 'unixepoch') DESC`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bucket DayBucket
		if err := rows.Scan(&bucket.Date, &bucket.Requests, &bucket.Tokens); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		stats.RequestsByDay = append(stats.RequestsByDay, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read daily usage: %w", err)
	}

	return stats, nil
}

// Prune deletes records older than cutoff and returns the number deleted.
func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM usage_records WHERE timestamp < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune usage records: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned records: %w", err)
	}
	return deleted, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
