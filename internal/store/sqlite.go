package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Table names are fixed here; they are never built from user input.
var sqliteTables = map[Collection]string{
	CollectionSettings: "settings",
	CollectionMemories: "memories",
	CollectionPlans:    "plans",
}

// SQLiteStore is the SQLite backend. Each collection is a table of JSON
// bodies keyed by id; seq keeps insertion order across replaces.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(ctx context.Context, dbPath string, busyTimeout time.Duration) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(wal)&_pragma=busy_timeout(%d)", dbPath, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	for _, c := range Collections {
		schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			id         TEXT NOT NULL UNIQUE,
			body       TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`, sqliteTables[c])
		if _, err := s.db.ExecContext(ctx, schema); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) name() string { return DriverSQLite }

func (s *SQLiteStore) get(ctx context.Context, c Collection, id string) ([]byte, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT body FROM %s WHERE id = ?`, sqliteTables[c]), id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func (s *SQLiteStore) all(ctx context.Context, c Collection) ([]record, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, body FROM %s ORDER BY seq`, sqliteTables[c]))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []record
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		out = append(out, record{ID: id, Body: []byte(body)})
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// upsert keeps the row's seq on replace, so a full-record update does not
// move it in the listing order.
func upsert(ctx context.Context, e execer, c Collection, id string, body []byte) error {
	_, err := e.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`, sqliteTables[c]),
		id, string(body), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *SQLiteStore) put(ctx context.Context, c Collection, id string, body []byte) error {
	return upsert(ctx, s.db, c, id, body)
}

func (s *SQLiteStore) del(ctx context.Context, c Collection, id string) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, sqliteTables[c]), id)
	return err
}

func (s *SQLiteStore) replace(ctx context.Context, data map[Collection][]record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range Collections {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, sqliteTables[c])); err != nil {
			return fmt.Errorf("clear %s: %w", c, err)
		}
	}
	for _, c := range Collections {
		for _, r := range data[c] {
			if err := upsert(ctx, tx, c, r.ID, r.Body); err != nil {
				return fmt.Errorf("insert %s %s: %w", c, r.ID, err)
			}
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) close() error {
	return s.db.Close()
}
