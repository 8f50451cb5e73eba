package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

var ErrUnsupportedURL = errors.New("unsupported database url")

type Dialect string

const (
	DialectPostgres = Dialect("postgres")
	DialectSQLite   = Dialect("sqlite")
)

type DB struct {
	conn    *sql.DB
	dialect Dialect
}

// Connect opens the history database named by url. postgres:// and
// postgresql:// urls use lib/pq; sqlite://path and file: urls use the
// embedded SQLite driver.
func Connect(url string) (*DB, error) {
	dialect, dsn, err := parseURL(url)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if dialect == DialectSQLite {
		// One writer at a time; the batch writer and round inserts share it.
		conn.SetMaxOpenConns(1)
		if _, err := conn.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
			conn.Close()
			return nil, fmt.Errorf("setting sqlite pragmas: %w", err)
		}
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	log.Info().Str("component", "db").Str("dialect", string(dialect)).Msg("connected")
	return &DB{conn: conn, dialect: dialect}, nil
}

func parseURL(url string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DialectPostgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("%w: empty sqlite path", ErrUnsupportedURL)
		}
		return DialectSQLite, path, nil
	case strings.HasPrefix(url, "file:"):
		return DialectSQLite, url, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedURL, url)
	}
}

func (d *DB) Dialect() Dialect {
	return d.dialect
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) Ping() error {
	return d.conn.Ping()
}

// Queries are written with ? placeholders and rebound per dialect.
func (d *DB) QueryRow(query string, args ...any) *sql.Row {
	return d.conn.QueryRow(d.rebind(query), args...)
}

func (d *DB) Query(query string, args ...any) (*sql.Rows, error) {
	return d.conn.Query(d.rebind(query), args...)
}

func (d *DB) Exec(query string, args ...any) (sql.Result, error) {
	return d.conn.Exec(d.rebind(query), args...)
}

func (d *DB) rebind(query string) string {
	if d.dialect != DialectPostgres || !strings.Contains(query, "?") {
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

func (d *DB) Migrate() error {
	dir := "migrations/" + string(d.dialect)
	entries, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}

	for _, entry := range entries {
		content, err := migrationsFS.ReadFile(dir + "/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if _, err := d.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", entry.Name(), err)
		}
		log.Debug().Str("component", "db").Str("migration", entry.Name()).Msg("applied migration")
	}
	return nil
}
