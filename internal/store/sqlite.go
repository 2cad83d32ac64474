package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore writes the master table into a SQLite database file
type SQLiteStore struct {
	db    *sql.DB
	path  string
	table string
}

// OpenSQLite opens (creating if needed) the database at path
func OpenSQLite(ctx context.Context, path, table string) (*SQLiteStore, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, createTableSQL(table)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db, path: path, table: table}, nil
}

// Location returns the database path and table
func (s *SQLiteStore) Location() string {
	return s.path + "#" + s.table
}

// Write replaces the table content inside one transaction
func (s *SQLiteStore) Write(ctx context.Context, rows []Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+s.table); err != nil {
		return fmt.Errorf("clear table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(s.table, func(int) string { return "?" }))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.args()...); err != nil {
			return fmt.Errorf("insert row %d: %w", r.MasterID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
