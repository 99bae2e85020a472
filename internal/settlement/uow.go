// Package settlement closes orders atomically: status flip, till postings
// and stock decrements either all commit or none do.
package settlement

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comanda-pos/comanda/internal/cashregister"
	"github.com/comanda-pos/comanda/internal/orders"
	"github.com/comanda-pos/comanda/internal/payments"
	"github.com/comanda-pos/comanda/internal/platform/db"
	"github.com/comanda-pos/comanda/internal/stock"
)

// Unit exposes the transaction-scoped repositories of every module touched
// by an order close. All of them share one database transaction.
type Unit interface {
	Orders() orders.TxRepository
	Payments() payments.TxRepository
	Register() cashregister.TxRepository
	Stock() stock.TxRepository
}

// UnitOfWork runs a callback against a Unit with all-or-nothing commit.
type UnitOfWork interface {
	WithUnit(ctx context.Context, fn func(context.Context, Unit) error) error
}

// PgUnitOfWork implements UnitOfWork on a pgx pool.
type PgUnitOfWork struct {
	pool *pgxpool.Pool
}

// NewPgUnitOfWork constructs PgUnitOfWork.
func NewPgUnitOfWork(pool *pgxpool.Pool) *PgUnitOfWork {
	return &PgUnitOfWork{pool: pool}
}

type pgUnit struct {
	tx pgx.Tx
}

func (u *pgUnit) Orders() orders.TxRepository         { return orders.NewTxRepository(u.tx) }
func (u *pgUnit) Payments() payments.TxRepository     { return payments.NewTxRepository(u.tx) }
func (u *pgUnit) Register() cashregister.TxRepository { return cashregister.NewTxRepository(u.tx) }
func (u *pgUnit) Stock() stock.TxRepository           { return stock.NewTxRepository(u.tx) }

// WithUnit executes the callback inside one repeatable-read transaction.
func (w *PgUnitOfWork) WithUnit(ctx context.Context, fn func(context.Context, Unit) error) error {
	if w == nil {
		return errors.New("settlement unit of work not initialised")
	}
	return db.WithTx(ctx, w.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgUnit{tx: tx})
	})
}
