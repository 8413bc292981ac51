package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists views and settings in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (creating if needed) the analytics database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create analytics dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema creates the tables if they don't exist. A visitor counts once
// per slug per day.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS views (
			kind TEXT NOT NULL,
			slug TEXT NOT NULL,
			visitor_hash TEXT NOT NULL,
			day TEXT NOT NULL,
			UNIQUE(kind, slug, visitor_hash, day)
		);

		CREATE INDEX IF NOT EXISTS idx_views_kind_day ON views(kind, day);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// GetSetting returns the value stored for key, or "" when there is none.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var val string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return val, err
}

// SetSetting upserts a setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

const dayLayout = "2006-01-02"

// RecordView stores v. It reports false when the visitor was already
// counted for that slug on that day.
func (s *Store) RecordView(ctx context.Context, v View) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO views (kind, slug, visitor_hash, day) VALUES (?, ?, ?, ?)`,
		v.Kind, v.Slug, v.VisitorHash, Day(v.Day).Format(dayLayout))
	if err != nil {
		return false, fmt.Errorf("record view: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record view: %w", err)
	}
	return n > 0, nil
}

// Popular returns the most viewed slugs of kind since the given day, most
// viewed first. Ties sort by slug.
func (s *Store) Popular(ctx context.Context, kind string, since time.Time, limit int) ([]PageViews, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slug, COUNT(*) AS n FROM views
		 WHERE kind = ? AND day >= ?
		 GROUP BY slug
		 ORDER BY n DESC, slug ASC
		 LIMIT ?`, kind, Day(since).Format(dayLayout), limit)
	if err != nil {
		return nil, fmt.Errorf("popular %s: %w", kind, err)
	}
	defer rows.Close()

	out := []PageViews{}
	for rows.Next() {
		var pv PageViews
		if err := rows.Scan(&pv.Slug, &pv.Views); err != nil {
			return nil, fmt.Errorf("popular %s: %w", kind, err)
		}
		out = append(out, pv)
	}
	return out, rows.Err()
}

// CleanupOldViews removes views older than the retention period.
func (s *Store) CleanupOldViews(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := Day(s.now().AddDate(0, 0, -retentionDays)).Format(dayLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM views WHERE day < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup views: %w", err)
	}
	return res.RowsAffected()
}

// StartCleanupScheduler runs CleanupOldViews every interval. Returns a stop
// function.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration, logger *slog.Logger) func() {
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				n, err := s.CleanupOldViews(context.Background(), retentionDays)
				if err != nil {
					logger.Error("analytics cleanup", slog.Any("err", err))
					continue
				}
				if n > 0 {
					logger.Info("analytics cleanup", slog.Int64("removed", n))
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
