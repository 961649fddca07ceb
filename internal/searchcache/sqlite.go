package searchcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/transcript-geo/pkg/placesearch"
)

// SQLiteStore implements Store using modernc.org/sqlite. Timestamps are
// unix seconds.
type SQLiteStore struct {
	db    *sql.DB
	table string
	index string
	now   func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
// The cache lives in table, DefaultTable when empty. A dotted name is taken
// as one literal identifier.
func NewSQLite(dsn, table string) (*SQLiteStore, error) {
	if table == "" {
		table = DefaultTable
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{
		db:    db,
		table: quoteSQLite(table),
		index: quoteSQLite("idx_" + table + "_expires_at"),
		now:   time.Now,
	}, nil
}

func quoteSQLite(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS %[1]s (
	key        TEXT PRIMARY KEY,
	results    TEXT NOT NULL,
	cached_at  INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s(expires_at);
`

// Migrate creates the cache table.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(sqliteMigration, s.table, s.index))
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]placesearch.Result, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT results FROM %s WHERE key = ? AND expires_at > ?`, s.table),
		key, s.now().Unix(),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "sqlite: get cached search")
	}
	return decodeResults([]byte(raw), "sqlite")
}

// Set implements Store.
func (s *SQLiteStore) Set(ctx context.Context, key string, results []placesearch.Result, ttl time.Duration) error {
	data, err := encodeResults(results)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal results")
	}
	now := s.now()
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (key, results, cached_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET results = excluded.results, cached_at = excluded.cached_at, expires_at = excluded.expires_at`, s.table),
		key, string(data), now.Unix(), now.Add(ttl).Unix(),
	)
	return eris.Wrap(err, "sqlite: set cached search")
}

// Prune implements Store.
func (s *SQLiteStore) Prune(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE expires_at <= ?`, s.table),
		s.now().Unix(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prune search cache")
	}
	n, err := res.RowsAffected()
	return n, eris.Wrap(err, "sqlite: rows affected")
}

// encodeResults stores nil as an empty list so a cached "no match" is
// distinguishable from a miss.
func encodeResults(results []placesearch.Result) ([]byte, error) {
	if results == nil {
		results = []placesearch.Result{}
	}
	return json.Marshal(results)
}

func decodeResults(data []byte, backend string) ([]placesearch.Result, bool, error) {
	results := []placesearch.Result{}
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, false, eris.Wrapf(err, "%s: unmarshal cached results", backend)
	}
	return results, true, nil
}
