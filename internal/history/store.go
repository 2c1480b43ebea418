package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"jobsniper/internal/errors"
	"jobsniper/internal/types"

	_ "modernc.org/sqlite"
)

// Entry is one stored analysis run.
type Entry struct {
	ID        int64                `json:"id"`
	Report    types.AnalysisReport `json:"report"`
	CreatedAt time.Time            `json:"created_at"`
}

// Store persists analysis reports in a SQLite database.
type Store struct {
	db     *sql.DB
	logger *errors.Logger
}

// NewStore opens (or creates) the database at dbPath and ensures the
// analyses table exists.
func NewStore(dbPath string, logger *errors.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeHistoryWriteFailed,
			fmt.Sprintf("Cannot open history database: %s", dbPath), err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.NewStorageError(errors.ErrCodeHistoryWriteFailed,
			fmt.Sprintf("Cannot reach history database: %s", dbPath), err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS analyses (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		report     TEXT NOT NULL,
		degraded   INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, errors.NewStorageError(errors.ErrCodeHistoryWriteFailed,
			"Cannot create analyses table", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Save records one analysis report and returns its row ID
func (s *Store) Save(ctx context.Context, report types.AnalysisReport) (int64, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return 0, errors.NewStorageError(errors.ErrCodeHistoryWriteFailed,
			"Cannot encode analysis report", err)
	}

	degraded := 0
	if report.Degraded {
		degraded = 1
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO analyses (report, degraded, created_at) VALUES (?, ?, ?)",
		string(data), degraded, report.CreatedAt.UTC())
	if err != nil {
		return 0, errors.NewStorageError(errors.ErrCodeHistoryWriteFailed,
			"Cannot store analysis report", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.NewStorageError(errors.ErrCodeHistoryWriteFailed,
			"Cannot read inserted row ID", err)
	}
	return id, nil
}

// Recent returns up to limit entries, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, report, created_at FROM analyses ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeHistoryReadFailed,
			"Cannot query analysis history", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			entry Entry
			raw   string
		)
		if err := rows.Scan(&entry.ID, &raw, &entry.CreatedAt); err != nil {
			return nil, errors.NewStorageError(errors.ErrCodeHistoryReadFailed,
				"Cannot scan history row", err)
		}
		if err := json.Unmarshal([]byte(raw), &entry.Report); err != nil {
			// A corrupt row should not hide the rest of the history
			if s.logger != nil {
				s.logger.Warn("Skipping undecodable history row", "id", entry.ID, "error", err.Error())
			}
			continue
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeHistoryReadFailed,
			"Cannot iterate analysis history", err)
	}

	return entries, nil
}

// Get returns one entry by ID
func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	var (
		entry Entry
		raw   string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, report, created_at FROM analyses WHERE id = ?", id).
		Scan(&entry.ID, &raw, &entry.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeHistoryReadFailed,
			fmt.Sprintf("Cannot load history entry %d", id), err)
	}
	if err := json.Unmarshal([]byte(raw), &entry.Report); err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeHistoryReadFailed,
			fmt.Sprintf("Cannot decode history entry %d", id), err)
	}
	return &entry, nil
}

// Count returns the total number of stored analyses
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analyses").Scan(&count); err != nil {
		return 0, errors.NewStorageError(errors.ErrCodeHistoryReadFailed,
			"Cannot count analysis history", err)
	}
	return count, nil
}

// Cleanup deletes entries older than the given duration
func (s *Store) Cleanup(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().UTC().Add(-olderThan)
	if _, err := s.db.ExecContext(ctx, "DELETE FROM analyses WHERE created_at < ?", cutoff); err != nil {
		return errors.NewStorageError(errors.ErrCodeHistoryWriteFailed,
			"Cannot clean up analysis history", err)
	}
	return nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	return s.db.Close()
}
