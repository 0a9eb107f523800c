// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

// Package storage persists the scraped feed and the scrape run history.
// SQLite is the default; postgres and mysql can be selected by driver name
// for deployments that already run one.
package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const defaultQueryTimeout = 5 * time.Second

// DB wraps the connection pool together with the driver name, which decides
// placeholder style.
type DB struct {
	pool   *sql.DB
	driver string
}

// NewPool opens a connection pool for the given driver ("sqlite",
// "postgres" or "mysql") and source string.
func NewPool(driverName, dataSourceName string, maxOpenConns, maxIdleConns int) (DB, error) {
	var db DB
	db.driver = driverName

	sqlDriver, err := sqlDriverName(driverName)
	if err != nil {
		return db, err
	}

	db.pool, err = sql.Open(sqlDriver, dataSourceName)
	if err != nil {
		return db, errors.Wrap(err, "open database")
	}

	db.pool.SetMaxOpenConns(maxOpenConns)
	db.pool.SetMaxIdleConns(maxIdleConns)
	db.pool.SetConnMaxLifetime(time.Hour)
	db.pool.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}

func sqlDriverName(driverName string) (string, error) {
	switch driverName {
	case "sqlite", "sqlite3", "":
		return "sqlite", nil
	case "postgres":
		return "pgx", nil
	case "mysql", "mariadb":
		return "mysql", nil
	}
	return "", errors.Errorf("storage: unknown driver %q", driverName)
}

// Close closes the pool.
func (db DB) Close() error {
	return db.pool.Close()
}

// Ping verifies the connection.
func (db DB) Ping() error {
	return db.pool.Ping()
}

// Init creates the schema if it does not exist yet.
func (db DB) Init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS items (
			id       TEXT PRIMARY KEY,
			start_at TEXT NOT NULL,
			end_at   TEXT NOT NULL,
			doc      TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scrape_runs (
			id          TEXT PRIMARY KEY,
			started_at  BIGINT NOT NULL,
			finished_at BIGINT NOT NULL,
			item_count  INTEGER NOT NULL,
			sources     TEXT NOT NULL,
			error       TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.pool.Exec(stmt); err != nil {
			return errors.Wrap(err, "create schema")
		}
	}
	return nil
}

// rebind converts ?-style placeholders to the driver's dialect.
func (db DB) rebind(query string) string {
	if db.driver != "postgres" {
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
