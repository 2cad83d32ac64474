package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore writes the master table into PostgreSQL
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
	host  string
}

// OpenPostgres connects to dsn and ensures the table exists
func OpenPostgres(ctx context.Context, dsn, table string) (*PostgresStore, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = 4
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createTableSQL(table)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &PostgresStore{pool: pool, table: table, host: poolConfig.ConnConfig.Host}, nil
}

// Location returns the host and table, without credentials
func (s *PostgresStore) Location() string {
	return "postgres://" + s.host + "/" + s.table
}

// Write replaces the table content inside one transaction using COPY
func (s *PostgresStore) Write(ctx context.Context, rows []Row) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM "+s.table); err != nil {
		return fmt.Errorf("clear table: %w", err)
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{s.table}, Columns, pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		return rows[i].args(), nil
	}))
	if err != nil {
		return fmt.Errorf("copy rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
