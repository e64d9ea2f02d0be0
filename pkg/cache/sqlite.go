package cache

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	iconerrors "github.com/go-drift/icons/pkg/errors"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS entries (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER
)`

// SQLiteCache implements Cache on a single SQLite database file. Each write
// is one statement, so readers see either the previous or the new row.
type SQLiteCache struct {
	db *sql.DB
	options
}

var _ Cache = (*SQLiteCache)(nil)

// OpenSQLite opens (or creates) the database at path. Parent directories are
// created as needed.
func OpenSQLite(path string, opts ...Option) (*SQLiteCache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, iconerrors.Newf("cache.OpenSQLite", iconerrors.KindStorage, path, "database path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, iconerrors.New("cache.OpenSQLite", iconerrors.KindStorage, path, err)
	}

	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, iconerrors.New("cache.OpenSQLite", iconerrors.KindStorage, path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, iconerrors.New("cache.OpenSQLite", iconerrors.KindStorage, path, err)
	}
	return &SQLiteCache{db: db, options: buildOptions(opts)}, nil
}

// Close closes the database handle.
func (c *SQLiteCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

// Get implements Cache.
func (c *SQLiteCache) Get(key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}
	var (
		value     []byte
		expiresAt sql.NullInt64
	)
	err := c.db.QueryRow(`SELECT value, expires_at FROM entries WHERE key = ?`, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, iconerrors.New("cache.Get", iconerrors.KindStorage, key, err)
	}
	if expiresAt.Valid && toMillis(c.now()) >= expiresAt.Int64 {
		if _, err := c.db.Exec(`DELETE FROM entries WHERE key = ?`, key); err != nil {
			return nil, false, iconerrors.New("cache.Get", iconerrors.KindStorage, key, err)
		}
		return nil, false, nil
	}
	return value, true, nil
}

// Set implements Cache.
func (c *SQLiteCache) Set(key string, value []byte) error {
	return c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL implements Cache.
func (c *SQLiteCache) SetWithTTL(key string, value []byte, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if ttl < 0 {
		return c.Delete(key)
	}
	e := newEntry(key, value, ttl, c.now())
	var expiresAt sql.NullInt64
	if e.ExpiresAt != nil {
		expiresAt = sql.NullInt64{Int64: toMillis(*e.ExpiresAt), Valid: true}
	}
	if value == nil {
		value = []byte{}
	}
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO entries (key, value, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		key, value, toMillis(e.CreatedAt), expiresAt,
	)
	if err != nil {
		return iconerrors.New("cache.Set", iconerrors.KindStorage, key, err)
	}
	return nil
}

// Delete implements Cache.
func (c *SQLiteCache) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if _, err := c.db.Exec(`DELETE FROM entries WHERE key = ?`, key); err != nil {
		return iconerrors.New("cache.Delete", iconerrors.KindStorage, key, err)
	}
	return nil
}

// Has implements Cache.
func (c *SQLiteCache) Has(key string) bool {
	_, ok, err := c.Get(key)
	return err == nil && ok
}

// Clear implements Cache.
func (c *SQLiteCache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM entries`); err != nil {
		return iconerrors.New("cache.Clear", iconerrors.KindStorage, "", err)
	}
	return nil
}

// Prune deletes expired rows and returns how many were removed.
func (c *SQLiteCache) Prune() (int, error) {
	res, err := c.db.Exec(`DELETE FROM entries WHERE expires_at IS NOT NULL AND expires_at <= ?`, toMillis(c.now()))
	if err != nil {
		return 0, iconerrors.New("cache.Prune", iconerrors.KindStorage, "", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
