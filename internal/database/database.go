package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

var (
	db   *sql.DB
	once sync.Once
)

// Config holds database connection settings.
type Config struct {
	Driver string
	DSN    string
}

// Open opens a database handle and verifies the connection. Callers that
// manage their own handle (tests, tools) use this directly; the server uses
// Init.
func Open(cfg Config) (*sql.DB, error) {
	d, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	d.SetMaxOpenConns(10)
	d.SetMaxIdleConns(5)

	if cfg.Driver == DriverSQLite {
		// WAL mode for better concurrency under parallel requests
		if _, err := d.Exec("PRAGMA journal_mode=WAL"); err != nil {
			d.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := d.Ping(); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return d, nil
}

// Init initializes the shared database connection.
func Init(cfg Config) error {
	var err error
	once.Do(func() {
		db, err = Open(cfg)
		if err != nil {
			return
		}
		log.Printf("Database initialized successfully (%s)", cfg.Driver)
	})
	return err
}

// GetDB returns the shared database instance.
func GetDB() *sql.DB {
	if db == nil {
		log.Fatal("Database not initialized. Call Init() first.")
	}
	return db
}

// Close closes the shared database connection.
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// Transaction executes a function within a database transaction.
func Transaction(db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Rebind rewrites ? placeholders to the $n form used by postgres. SQLite
// accepts ? natively, so the query is returned unchanged for it.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
