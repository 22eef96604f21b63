package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Querier is the transaction handle every repository call receives.
// Both *sql.DB and *sql.Tx implement it.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func New(addr, database, user, password string) (db *sql.DB, close func() error, err error) {
	db, err = sql.Open("pgx", URL("postgres", addr, database, user, password))
	if err != nil {
		return nil, nil, err
	}

	// these params are set assuming that max_connections are set to 200-250
	db.SetMaxOpenConns(150)
	db.SetMaxIdleConns(75)
	db.SetConnMaxLifetime(15 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, nil, err
	}

	return db, db.Close, nil
}

func URL(scheme, addr, database, user, password string) string {
	return fmt.Sprintf("%s://%s:%s@%s/%s", scheme, user, password, addr, database)
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func expectAffected(res sql.Result, want int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	}

	if affected != want {
		return fmt.Errorf("expected %d rows to be affected, got %d: %w", want, affected, ErrNotFound)
	}

	return nil
}
