package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Querier 是 *pgxpool.Pool 与 pgx.Tx 共有的查询方法
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

// WithTx returns a context carrying tx; repositories that resolve their
// connection with Conn then run inside it.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFrom returns the transaction carried by ctx, or nil.
func TxFrom(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// Conn returns the transaction of ctx if there is one, otherwise pool.
func Conn(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx := TxFrom(ctx); tx != nil {
		return tx
	}
	return pool
}

// EndFunc finishes a transaction started by Begin: it commits when err is nil
// and rolls back otherwise. The returned error is err or the commit failure.
type EndFunc func(err error) error

// Begin starts a transaction and returns a context carrying it. When ctx
// already carries one, the caller joins it and the outer owner ends it.
func Begin(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) (context.Context, EndFunc, error) {
	if TxFrom(ctx) != nil {
		return ctx, func(err error) error { return err }, nil
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction", zap.Error(err))
		return ctx, nil, fmt.Errorf("begin transaction: %w", err)
	}
	return WithTx(ctx, tx), endTx(ctx, tx, logger), nil
}

func endTx(ctx context.Context, tx pgx.Tx, logger *zap.Logger) EndFunc {
	return func(err error) error {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				logger.Error("Failed to rollback transaction", zap.Error(rbErr))
			}
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			logger.Error("Failed to commit transaction", zap.Error(err))
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	}
}
