package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTx struct {
	pgx.Tx
	id int
}

func TestConn_PrefersContextTx(t *testing.T) {
	var pool *pgxpool.Pool
	assert.Nil(t, TxFrom(context.Background()))
	assert.Equal(t, Querier(pool), Conn(context.Background(), pool))

	tx := fakeTx{id: 1}
	ctx := WithTx(context.Background(), tx)
	assert.Equal(t, tx, TxFrom(ctx))
	assert.Equal(t, Querier(tx), Conn(ctx, pool))
}

func TestBegin_JoinsOuterTx(t *testing.T) {
	outer := WithTx(context.Background(), fakeTx{id: 7})

	ctx, end, err := Begin(outer, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, outer, ctx)

	// 内层不提交也不回滚，错误原样返回给外层
	boom := errors.New("boom")
	assert.Equal(t, boom, end(boom))
	assert.NoError(t, end(nil))
}
