package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"MarketScreener/internal/logger"
	"MarketScreener/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore caches fetched market data in a local SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logger.Logger
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string, log *logger.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Scan workers write concurrently; one connection plus WAL avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: log, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("sqlite cache opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bar_fetches (
			symbol     TEXT PRIMARY KEY,
			fetched_at INTEGER NOT NULL,
			days       INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS price_bars (
			symbol TEXT    NOT NULL,
			date   INTEGER NOT NULL,
			open   REAL,
			high   REAL,
			low    REAL,
			close  REAL NOT NULL,
			volume REAL,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE TABLE IF NOT EXISTS fundamentals (
			symbol     TEXT PRIMARY KEY,
			payload    TEXT    NOT NULL,
			fetched_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fundamentals_ts ON fundamentals(fetched_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return s.ensureColumn("bar_fetches", "days", "INTEGER NOT NULL DEFAULT 0")
}

// ensureColumn adds a column to tables created before it existed.
func (s *SQLiteStore) ensureColumn(table, column, decl string) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("scan table info: %w", err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate table info: %w", err)
	}
	rows.Close()

	if _, err := s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl)); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	s.log.WithField("table", table).WithField("column", column).Info("sqlite column added")
	return nil
}

func (s *SQLiteStore) fresh(fetchedAt int64, maxAge time.Duration) bool {
	return s.now().Sub(time.Unix(fetchedAt, 0)) <= maxAge
}

func (s *SQLiteStore) LoadBars(ctx context.Context, symbol string, days int, maxAge time.Duration) ([]model.OHLCV, bool, error) {
	var (
		fetchedAt int64
		covered   int
	)
	err := s.db.QueryRowContext(ctx, `SELECT fetched_at, days FROM bar_fetches WHERE symbol = ?`, symbol).Scan(&fetchedAt, &covered)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load bar fetch time: %w", err)
	}
	if !s.fresh(fetchedAt, maxAge) || covered < days {
		return nil, false, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT date, open, high, low, close, volume
		FROM price_bars WHERE symbol = ? ORDER BY date`, symbol)
	if err != nil {
		return nil, false, fmt.Errorf("load bars: %w", err)
	}
	defer rows.Close()

	var bars []model.OHLCV
	for rows.Next() {
		var (
			ts int64
			b  model.OHLCV
		)
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, false, fmt.Errorf("scan bar: %w", err)
		}
		b.Time = time.Unix(ts, 0).UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate bars: %w", err)
	}
	return bars, len(bars) > 0, nil
}

func (s *SQLiteStore) SaveBars(ctx context.Context, symbol string, days int, bars []model.OHLCV) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM price_bars WHERE symbol = ?`, symbol); err != nil {
		return fmt.Errorf("clear bars: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO price_bars
		(symbol, date, open, high, low, close, volume) VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, b.Time.Unix(), b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return fmt.Errorf("insert bar: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO bar_fetches (symbol, fetched_at, days) VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET fetched_at = excluded.fetched_at, days = excluded.days`,
		symbol, s.now().Unix(), days); err != nil {
		return fmt.Errorf("record fetch time: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadFundamentals(ctx context.Context, symbol string, maxAge time.Duration) (*model.Fundamentals, bool, error) {
	var (
		payload   string
		fetchedAt int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT payload, fetched_at FROM fundamentals WHERE symbol = ?`, symbol).
		Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load fundamentals: %w", err)
	}
	if !s.fresh(fetchedAt, maxAge) {
		return nil, false, nil
	}

	var f model.Fundamentals
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		return nil, false, fmt.Errorf("decode fundamentals: %w", err)
	}
	return &f, true, nil
}

func (s *SQLiteStore) SaveFundamentals(ctx context.Context, f *model.Fundamentals) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode fundamentals: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO fundamentals (symbol, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		f.Symbol, string(payload), s.now().Unix())
	return err
}

func (s *SQLiteStore) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-olderThan).Unix()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM price_bars WHERE symbol IN
		(SELECT symbol FROM bar_fetches WHERE fetched_at < ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("purge bars: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM bar_fetches WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge bar fetches: %w", err)
	}
	n, _ := res.RowsAffected()
	res, err = tx.ExecContext(ctx, `DELETE FROM fundamentals WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge fundamentals: %w", err)
	}
	m, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n + m, nil
}

func (s *SQLiteStore) Close() error {
	s.log.Info("closing sqlite cache")
	return s.db.Close()
}
