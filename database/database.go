package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// go-sqlite3 applies these to every connection it opens.
var connParams = map[string]string{
	"_busy_timeout": "5000",
	"_journal_mode": "WAL",
	"_foreign_keys": "on",
}

// DSN adds the connection parameters to dbUrl, keeping any the caller set.
func DSN(dbUrl string) string {
	base, rawQuery, _ := strings.Cut(dbUrl, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	for key, value := range connParams {
		if !query.Has(key) {
			query.Set(key, value)
		}
	}
	return base + "?" + query.Encode()
}

// Open opens the sqlite file at dbUrl and migrates it to the latest schema.
func Open(dbUrl string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", DSN(dbUrl))
	if err != nil {
		return nil, fmt.Errorf("db.open: %w", err)
	}

	// concurrent writers wait on _busy_timeout
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	if err = migrateDB(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
