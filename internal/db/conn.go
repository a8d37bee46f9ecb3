package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier é o que repositórios usam; pool e transação satisfazem.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = (pgx.Tx)(nil)
)

type txKey struct{}

// Conn devolve a transação aberta por Atomic.Run, se houver, ou fallback.
func Conn(ctx context.Context, fallback Querier) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return fallback
}

// Atomic roda blocos numa transação carregada pelo contexto, para que
// repositórios diferentes participem da mesma unidade de trabalho.
type Atomic struct {
	begin Beginner
}

// NewAtomic cria Atomic sobre o pool.
func NewAtomic(b Beginner) *Atomic {
	return &Atomic{begin: b}
}

// Run executa fn numa transação. Dentro de outra Run, reaproveita a
// transação corrente.
func (a *Atomic) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}
	return WithTx(ctx, a.begin, func(ctx context.Context, tx pgx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
