package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"budgetledger/internal/model"
	"budgetledger/internal/repository"
	"budgetledger/internal/repository/memory"
	"budgetledger/internal/service/ledger"
)

// txStore 是支持事务的内存存储：事务内的客户端写入先缓存，提交时才落库
type txStore struct {
	*memory.Store
	commits, rollbacks int
}

var _ repository.Transactor = (*txStore)(nil)

type pendingKey struct{}

type pendingWrites struct{ clients []model.Client }

func (s *txStore) Begin(ctx context.Context) (context.Context, func(error) error, error) {
	w := &pendingWrites{}
	end := func(err error) error {
		if err != nil {
			s.rollbacks++
			return err
		}
		for i := range w.clients {
			if err := s.Store.Clients().Insert(ctx, &w.clients[i]); err != nil {
				return err
			}
		}
		s.commits++
		return nil
	}
	return context.WithValue(ctx, pendingKey{}, w), end, nil
}

func (s *txStore) Clients() repository.ClientRepository {
	return txClients{s.Store.Clients()}
}

type txClients struct{ repository.ClientRepository }

func (r txClients) Insert(ctx context.Context, c *model.Client) error {
	if w, ok := ctx.Value(pendingKey{}).(*pendingWrites); ok {
		w.clients = append(w.clients, *c)
		return nil
	}
	return r.ClientRepository.Insert(ctx, c)
}

func TestOutbox_FailedRecordRollsBackWrite(t *testing.T) {
	store := &txStore{Store: memory.New()}
	pub := &recordingPublisher{fail: errors.New("outbox insert failed")}
	l := ledger.New(store, zap.NewNop(), ledger.WithOutbox(pub))
	ctx := context.Background()
	in := model.ClientInput{Company: ptr("Acme Corp"), ClientName: ptr("Alex Doe")}

	_, err := l.CreateClient(ctx, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outbox insert failed")
	assert.Equal(t, 1, store.rollbacks)
	assert.Zero(t, store.commits)

	clients, err := l.ListClients(ctx)
	require.NoError(t, err)
	assert.Empty(t, clients, "client must not outlive its lost event")

	pub.fail = nil
	c, err := l.CreateClient(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 1, store.commits)
	assert.Equal(t, []string{"ledger.client.created"}, pub.keys)

	got, err := l.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Company)
}

func TestPublisher_NoTransactionWithoutOutbox(t *testing.T) {
	store := &txStore{Store: memory.New()}
	pub := &recordingPublisher{fail: errors.New("broker down")}
	l := ledger.New(store, zap.NewNop(), ledger.WithPublisher(pub))

	// 直接发布是尽力而为：写操作成功，且不开启事务
	c, err := l.CreateClient(context.Background(), model.ClientInput{
		Company:    ptr("Acme Corp"),
		ClientName: ptr("Alex Doe"),
	})
	require.NoError(t, err)
	assert.Zero(t, store.commits+store.rollbacks)

	_, err = l.GetClient(context.Background(), c.ID)
	assert.NoError(t, err)
}
