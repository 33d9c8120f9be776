//go:build cgo_sqlite

package store

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3"

func openDB(dataSource string) (*sql.DB, error) {
	return sql.Open(driverName, dataSource)
}
