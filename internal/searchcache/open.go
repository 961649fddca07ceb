package searchcache

import (
	"context"

	"github.com/rotisserie/eris"
)

// Supported Store drivers.
const (
	DriverNone     = ""
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open returns a migrated Store for driver, or nil when driver is
// DriverNone. table names the cache table for both backends.
func Open(ctx context.Context, driver, dsn, table string) (Store, error) {
	var (
		st  Store
		err error
	)
	switch driver {
	case DriverNone:
		return nil, nil
	case DriverSQLite:
		if dsn == "" {
			dsn = "transcript-geo-cache.db"
		}
		st, err = NewSQLite(dsn, table)
	case DriverPostgres:
		if dsn == "" {
			return nil, eris.New("searchcache: postgres driver requires a dsn")
		}
		st, err = NewPostgres(ctx, dsn, table)
	default:
		return nil, eris.Errorf("searchcache: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
