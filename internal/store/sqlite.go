package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/tally-ledger/tally/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	insertTransaction = `INSERT INTO transactions (seq, id, amount, kind, category, description, timestamp)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	selectTransactions = `SELECT id, amount, kind, category, description, timestamp
FROM transactions ORDER BY seq`
)

// SQLiteBackend stores a ledger in a single-table SQLite database.
type SQLiteBackend struct{}

// Format returns FormatSQLite.
func (SQLiteBackend) Format() Format { return FormatSQLite }

// Save builds a fresh database in a temporary file and renames it over
// path.
func (SQLiteBackend) Save(path string, txns []model.Transaction) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	_ = tmp.Close()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if err := writeSQLite(tmpName, txns); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return commitTemp(tmpName, path)
}

// Load reads the transactions table in insertion order.
func (SQLiteBackend) Load(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	_ = f.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer db.Close()

	rows, err := db.Query(selectTransactions)
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("querying transactions: %w", err)}
	}
	defer rows.Close()

	var txns []model.Transaction
	for n := 1; rows.Next(); n++ {
		var r record
		if err := rows.Scan(&r.ID, &r.Amount, &r.Kind, &r.Category, &r.Description, &r.Timestamp); err != nil {
			return nil, &ParseError{Path: path, Line: n, Err: fmt.Errorf("scanning row: %w", err)}
		}
		t, err := r.transaction()
		if err != nil {
			return nil, withPath(atLine(err, n), path)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("reading rows: %w", err)}
	}
	return txns, nil
}

func writeSQLite(path string, txns []model.Transaction) error {
	if err := runMigrations(path); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite database: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(insertTransaction)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	for i, t := range txns {
		r := toRecord(t)
		if _, err := stmt.Exec(i+1, r.ID, r.Amount, r.Kind, r.Category, r.Description, r.Timestamp); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("close statement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return db.Close()
}

// runMigrations uses its own connection; closing the migrate instance
// closes the database it was given.
func runMigrations(dbPath string) error {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := migratesqlite.WithInstance(migrateDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
