// Package store keeps templates in a SQLite database.
//
// A [Store] implements [lang.Loader], so a database of templates can back an
// engine directly or be chained ahead of a directory loader:
//
//	s, err := store.Open(ctx, "templates.db")
//	...
//	e := lang.NewEngine(lang.ChainLoader{s, lang.NewDirLoader(nil, "tmpl")})
//
// The pure-Go modernc.org/sqlite driver is used by default. Build with the
// cgo_sqlite tag to use github.com/mattn/go-sqlite3 instead.
package store
