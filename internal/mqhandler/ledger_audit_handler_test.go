package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "budgetledger/contracts/mq"
	"budgetledger/pkg/mq"
)

type fakeAuditStore struct {
	rows map[string]mqcontracts.LedgerEvent
	keys map[string]string
	errs []error
}

func newFakeAuditStore() *fakeAuditStore {
	return &fakeAuditStore{rows: map[string]mqcontracts.LedgerEvent{}, keys: map[string]string{}}
}

func (s *fakeAuditStore) Insert(_ context.Context, routingKey string, evt *mqcontracts.LedgerEvent) (bool, error) {
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return false, err
	}
	if _, ok := s.rows[evt.EventID]; ok {
		return false, nil
	}
	s.rows[evt.EventID] = *evt
	s.keys[evt.EventID] = routingKey
	return true, nil
}

type fakeDeduper struct{ seen map[string]bool }

func (d *fakeDeduper) AcquireOnce(_ context.Context, handler, eventID string) bool {
	key := handler + ":" + eventID
	if d.seen[key] {
		return false
	}
	d.seen[key] = true
	return true
}

func (d *fakeDeduper) Forget(_ context.Context, handler, eventID string) {
	delete(d.seen, handler+":"+eventID)
}

type fakeRetries struct{ counts map[string]int64 }

func (r *fakeRetries) IncrementAndGet(_ context.Context, key string) (int64, error) {
	r.counts[key]++
	return r.counts[key], nil
}

func (r *fakeRetries) Reset(_ context.Context, key string) error {
	delete(r.counts, key)
	return nil
}

func event(t *testing.T, id string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(mqcontracts.LedgerEvent{
		EventID:    id,
		Entity:     "request",
		Action:     "approved",
		EntityID:   "req-1",
		ProjectID:  "prj-1",
		Actor:      "mia",
		TraceID:    "trace-1",
		OccurredAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Data:       json.RawMessage(`{"status":"Approved"}`),
	})
	require.NoError(t, err)
	return raw
}

type harness struct {
	store   *fakeAuditStore
	dedup   *fakeDeduper
	retries *fakeRetries
	h       *LedgerAuditHandler
}

func newHarness() *harness {
	store := newFakeAuditStore()
	dedup := &fakeDeduper{seen: map[string]bool{}}
	retries := &fakeRetries{counts: map[string]int64{}}
	return &harness{
		store:   store,
		dedup:   dedup,
		retries: retries,
		h:       NewLedgerAuditHandler(store, dedup, retries, 2, zap.NewNop()),
	}
}

func TestAuditHandlerRecordsEvent(t *testing.T) {
	x := newHarness()
	ctx := context.Background()
	key := mqcontracts.RoutingKey("request", "approved")

	require.NoError(t, x.h.Handle(ctx, key, event(t, "evt-1")))
	require.Contains(t, x.store.rows, "evt-1")
	assert.Equal(t, "ledger.request.approved", x.store.keys["evt-1"])
	assert.Equal(t, "mia", x.store.rows["evt-1"].Actor)

	// 重复投递被 dedup 跳过
	require.NoError(t, x.h.Handle(ctx, key, event(t, "evt-1")))
	assert.Len(t, x.store.rows, 1)
}

func TestAuditHandlerRejectsMalformedEvents(t *testing.T) {
	x := newHarness()
	ctx := context.Background()

	err := x.h.Handle(ctx, "ledger.client.created", json.RawMessage(`{`))
	assert.ErrorIs(t, err, mq.ErrPermanent)

	err = x.h.Handle(ctx, "ledger.client.created", json.RawMessage(`{"entity":"client"}`))
	assert.ErrorIs(t, err, mq.ErrPermanent)
	assert.Empty(t, x.store.rows)
}

func TestAuditHandlerRetriesTransientFailures(t *testing.T) {
	x := newHarness()
	ctx := context.Background()
	transient := &pgconn.PgError{Code: "08006"}
	x.store.errs = []error{transient, transient}

	for i := 0; i < 2; i++ {
		err := x.h.Handle(ctx, "ledger.hold.released", event(t, "evt-2"))
		require.Error(t, err)
		assert.False(t, errors.Is(err, mq.ErrPermanent), "attempt %d should requeue", i+1)
	}

	require.NoError(t, x.h.Handle(ctx, "ledger.hold.released", event(t, "evt-2")))
	assert.Contains(t, x.store.rows, "evt-2")
	assert.Empty(t, x.retries.counts)
}

func TestAuditHandlerDeadLettersAfterMaxRetries(t *testing.T) {
	x := newHarness()
	ctx := context.Background()
	transient := &pgconn.PgError{Code: "08006"}
	x.store.errs = []error{transient, transient, transient}

	for i := 0; i < 2; i++ {
		require.Error(t, x.h.Handle(ctx, "ledger.hold.released", event(t, "evt-3")))
	}
	err := x.h.Handle(ctx, "ledger.hold.released", event(t, "evt-3"))
	assert.ErrorIs(t, err, mq.ErrPermanent)
}

func TestAuditHandlerDeadLettersPermanentFailures(t *testing.T) {
	x := newHarness()
	x.store.errs = []error{&pgconn.PgError{Code: "23502"}}

	err := x.h.Handle(context.Background(), "ledger.payment.created", event(t, "evt-4"))
	assert.ErrorIs(t, err, mq.ErrPermanent)
}

func TestAuditHandlerWithoutRedis(t *testing.T) {
	store := newFakeAuditStore()
	h := NewLedgerAuditHandler(store, nil, nil, 3, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, "ledger.client.created", event(t, "evt-5")))
	require.NoError(t, h.Handle(ctx, "ledger.client.created", event(t, "evt-5")))
	assert.Len(t, store.rows, 1)
}
