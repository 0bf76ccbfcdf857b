// Package db implements the read-only market repository over a relational
// backing store, plus a small local store for saved run results.
//
// Two drivers are supported and picked from the URL: postgres:// (or
// postgresql://) connects to a live mirror via lib/pq, anything else is a
// local SQLite snapshot.
package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"database/sql"

	"tradewind/internal/logger"

	_ "github.com/lib/pq"
	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"
)

// MaxConns is the retrieval connection budget. Market resolution fan-out is
// bounded by it so the store never sees unbounded simultaneous connections.
const MaxConns = 32

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// Store is the market repository. All queries are read-only.
type Store struct {
	sql    *sql.DB
	driver string
	flight singleflight.Group // dedupes concurrent system-by-name lookups
}

// Open connects to the backing store and verifies connectivity. A failure
// here (or later, mid-run) is fatal to the whole run.
func Open(ctx context.Context, url string) (*Store, error) {
	driver, dsn := dialect(url)
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	sqlDB.SetMaxOpenConns(MaxConns)
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping %s store: %w", driver, err)
	}
	logger.Success("DB", fmt.Sprintf("Connected (%s, %d connections max)", driver, MaxConns))
	return &Store{sql: sqlDB, driver: driver}, nil
}

func dialect(url string) (driver, dsn string) {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return driverPostgres, url
	}
	dsn = strings.TrimPrefix(url, "sqlite://")
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)"
	}
	return driverSQLite, dsn
}

// Close closes the store.
func (s *Store) Close() error {
	return s.sql.Close()
}

// ConnBudget returns the number of simultaneous retrievals the store accepts.
func (s *Store) ConnBudget() int {
	return MaxConns
}

// rebind rewrites ? placeholders to the $n form lib/pq expects. SQLite takes
// the query unchanged.
func (s *Store) rebind(query string) string {
	if s.driver != driverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
