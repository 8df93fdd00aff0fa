// Package store is the MySQL persistence layer behind the API.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/yourqueen-golang/internal/orders"
	"github.com/go-sql-driver/mysql"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrEmailTaken        = errors.New("email is already registered")
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")
	ErrProductInactive   = errors.New("product is not available")
	ErrAlreadyWishlisted = errors.New("product is already in the wishlist")
)

const mysqlDuplicateEntry = 1062

// MySQL implements orders.Store and the catalog, cart, user and address
// repositories on one connection pool.
type MySQL struct {
	db *sql.DB
}

var _ orders.Store = (*MySQL)(nil)

func New(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

// InTx opens a serializable transaction, the isolation level checkout has
// always used, and commits it when fn returns nil.
func (s *MySQL) InTx(ctx context.Context, fn func(tx orders.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	if err := fn(&mysqlTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
