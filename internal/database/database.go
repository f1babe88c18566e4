package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// DB is a connection pool that knows which SQL dialect it speaks.
// Queries are written with ? placeholders and passed through Rebind.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// New opens a pool for driver ("postgres" or "sqlite") and pings it.
func New(driver, dsn string) (*DB, error) {
	switch driver {
	case "postgres":
		return open("pgx", dsn, Postgres)
	case "sqlite":
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}

		return open("sqlite", dsn, SQLite)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

func open(driverName, dsn string, dialect Dialect) (*DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if dialect == SQLite {
		// One connection: SQLite serializes writers anyway, and an in-memory database
		// only lives as long as its connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

func ensureDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	if path == "" || strings.Contains(path, ":memory:") {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	return nil
}

// Rebind rewrites ? placeholders to $1, $2, ... for Postgres.
func (d *DB) Rebind(query string) string {
	return Rebind(d.Dialect, query)
}

func Rebind(dialect Dialect, query string) string {
	if dialect != Postgres {
		return query
	}

	var (
		b strings.Builder
		n int
	)

	b.Grow(len(query) + 8)

	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}

		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}

	return b.String()
}
