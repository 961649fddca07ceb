package searchcache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/transcript-geo/internal/db"
	"github.com/sells-group/transcript-geo/pkg/placesearch"
)

// DefaultTable is the cache table used when none is configured.
const DefaultTable = "search_cache"

// PostgresStore implements Store on a pgx pool.
type PostgresStore struct {
	pool  db.Pool
	table string
	index string
}

// NewPostgres connects to dsn and returns a store writing to table, which
// may be schema-qualified.
func NewPostgres(ctx context.Context, dsn, table string) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, dsn, nil)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return NewPostgresWithPool(pool, table), nil
}

// NewPostgresWithPool builds a store on an existing pool.
func NewPostgresWithPool(pool db.Pool, table string) *PostgresStore {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresStore{
		pool:  pool,
		table: db.SanitizeTable(table),
		index: expiresIndexName(table),
	}
}

// expiresIndexName derives the expiry index name from the table so stores
// on different tables in one schema each get their own index.
func expiresIndexName(table string) string {
	return pgx.Identifier{strings.ReplaceAll(table, ".", "_") + "_expires_at_idx"}.Sanitize()
}

// Migrate creates the cache table.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	id         TEXT NOT NULL,
	key        TEXT PRIMARY KEY,
	results    JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s (expires_at);
`, s.table, s.index))
	return eris.Wrap(err, "postgres: migrate")
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]placesearch.Result, bool, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT results FROM %s WHERE key = $1 AND expires_at > now()`, s.table),
		key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "postgres: get cached search")
	}
	return decodeResults(data, "postgres")
}

// Set implements Store.
func (s *PostgresStore) Set(ctx context.Context, key string, results []placesearch.Result, ttl time.Duration) error {
	data, err := encodeResults(results)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal results")
	}
	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, key, results, cached_at, expires_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (key) DO UPDATE SET results = $3, cached_at = $4, expires_at = $5`, s.table),
		uuid.New().String(), key, data, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached search")
}

// Prune implements Store.
func (s *PostgresStore) Prune(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE expires_at <= now()`, s.table),
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: prune search cache")
	}
	return tag.RowsAffected(), nil
}
