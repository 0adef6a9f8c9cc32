package data

import (
	"database/sql"
	"embed"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// DataFileName is the default database file name under the app home dir.
const DataFileName string = "regwatch.db"

var (
	//go:embed sql/*
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")
)

// Init ensures the database file and schema exist. The DDL is idempotent,
// so running it against an existing database is a no-op.
func Init(dbFilePath string) error {
	if dbFilePath == "" {
		return errors.New("dbFilePath not specified")
	}

	db, err := GetDB(dbFilePath)
	if err != nil {
		return errors.Wrapf(err, "error opening database: %s", dbFilePath)
	}
	defer db.Close()

	b, err := f.ReadFile("sql/ddl.sql")
	if err != nil {
		return errors.Wrap(err, "failed to read the schema creation file")
	}
	if _, err := db.Exec(string(b)); err != nil {
		return errors.Wrapf(err, "failed to create database schema in: %s", dbFilePath)
	}

	return nil
}

// GetDB opens the SQLite database at the given path.
func GetDB(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", path)
	}
	return conn, nil
}

func rollbackTransaction(tx *sql.Tx) {
	_ = tx.Rollback()
}

// ImportSummary reports record counts after an import run.
type ImportSummary struct {
	Facilities int `json:"facilities" yaml:"facilities"`
	Businesses int `json:"businesses" yaml:"businesses"`
	Providers  int `json:"providers" yaml:"providers"`
}

// GetImportSummary returns current record counts, optionally scoped to a
// state code.
func GetImportSummary(db *sql.DB, state string) (*ImportSummary, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	s := &ImportSummary{}
	for _, c := range []struct {
		table string
		dest  *int
	}{
		{"facility", &s.Facilities},
		{"business", &s.Businesses},
		{"provider", &s.Providers},
	} {
		q := "SELECT COUNT(*) FROM " + c.table + " WHERE state = COALESCE(NULLIF(?, ''), state)"
		if err := db.QueryRow(q, state).Scan(c.dest); err != nil {
			return nil, errors.Wrapf(err, "failed to count rows in %s", c.table)
		}
	}

	return s, nil
}
