package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

type fakeTx struct {
	pgx.Tx
	commits   int
	rollbacks int
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.commits++
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rollbacks++
	return nil
}

type fakeBeginner struct {
	tx    *fakeTx
	begun int
}

func (b *fakeBeginner) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	b.begun++
	return b.tx, nil
}

func TestConnFallsBackOutsideTx(t *testing.T) {
	var fallback Querier = &fakeTx{}
	if got := Conn(context.Background(), fallback); got != fallback {
		t.Fatal("sem transação deveria usar o fallback")
	}
}

func TestAtomicRunSharesTx(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	atomic := NewAtomic(b)

	err := atomic.Run(context.Background(), func(ctx context.Context) error {
		if Conn(ctx, nil) != Querier(b.tx) {
			t.Fatal("dentro de Run deveria usar a transação")
		}
		return atomic.Run(ctx, func(ctx context.Context) error {
			if Conn(ctx, nil) != Querier(b.tx) {
				t.Fatal("Run aninhado deveria reaproveitar a transação")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.begun != 1 || b.tx.commits != 1 {
		t.Fatalf("expected uma transação confirmada: begun=%d commits=%d", b.begun, b.tx.commits)
	}
}

func TestAtomicRunRollsBackOnError(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	boom := errors.New("boom")

	if err := NewAtomic(b).Run(context.Background(), func(ctx context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom got %v", err)
	}
	if b.tx.commits != 0 || b.tx.rollbacks != 1 {
		t.Fatalf("expected rollback: commits=%d rollbacks=%d", b.tx.commits, b.tx.rollbacks)
	}
}
