package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"budgetledger/pkg/trace"
)

// memStore 是测试用的内存 Store
type memStore struct {
	events map[int64]*Event
	nextID int64
}

func newMemStore() *memStore { return &memStore{events: map[int64]*Event{}} }

func (s *memStore) Insert(_ context.Context, e *Event) error {
	s.nextID++
	e.ID = s.nextID
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *memStore) byStatus(status string) []*Event {
	var out []*Event
	for _, e := range s.events {
		if e.Status == status {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) Pending(_ context.Context, limit int) ([]*Event, error) {
	out := s.byStatus(StatusPending)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) Failed(_ context.Context, limit int) ([]*Event, error) {
	out := s.byStatus(StatusFailed)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) Get(_ context.Context, id int64) (*Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) MarkSent(_ context.Context, id int64) error {
	s.events[id].Status = StatusSent
	return nil
}

func (s *memStore) MarkFailed(_ context.Context, id int64, maxRetries int) error {
	e := s.events[id]
	e.RetryCount++
	e.Status, _ = NextAttempt(e.RetryCount, maxRetries, time.Now())
	return nil
}

func (s *memStore) Reset(_ context.Context, id int64) error {
	e, ok := s.events[id]
	if !ok {
		return ErrNotFound
	}
	e.Status, e.RetryCount = StatusPending, 0
	return nil
}

type published struct {
	key     string
	body    string
	traceID string
}

type fakePublisher struct {
	sent []published
	fail error
}

func (p *fakePublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	if p.fail != nil {
		return p.fail
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	p.sent = append(p.sent, published{key: routingKey, body: string(body), traceID: trace.FromContext(ctx)})
	return nil
}

func TestRecorderThenDispatch(t *testing.T) {
	store := newMemStore()
	ctx := trace.WithContext(context.Background(), "trace-9")

	rec := NewRecorder(store)
	require.NoError(t, rec.Publish(ctx, "ledger.client.created", map[string]string{"id": "c1"}))
	require.NoError(t, rec.Publish(context.Background(), "ledger.client.updated", map[string]string{"id": "c1"}))

	pub := &fakePublisher{}
	d := NewDispatcher(store, pub, zap.NewNop())
	assert.Equal(t, 2, d.ProcessPending(context.Background()))

	require.Len(t, pub.sent, 2)
	assert.Equal(t, "ledger.client.created", pub.sent[0].key)
	assert.JSONEq(t, `{"id":"c1"}`, pub.sent[0].body)
	assert.Equal(t, "trace-9", pub.sent[0].traceID)
	assert.Empty(t, pub.sent[1].traceID)

	assert.Zero(t, d.ProcessPending(context.Background()), "sent events are not republished")
}

func TestDispatcherRetriesThenFails(t *testing.T) {
	store := newMemStore()
	require.NoError(t, NewRecorder(store).Publish(context.Background(), "ledger.hold.released", map[string]int{"n": 1}))

	pub := &fakePublisher{fail: errors.New("broker down")}
	d := NewDispatcher(store, pub, zap.NewNop()).WithMaxRetries(2)

	d.ProcessPending(context.Background())
	assert.Equal(t, StatusPending, store.events[1].Status)
	d.ProcessPending(context.Background())
	assert.Equal(t, StatusFailed, store.events[1].Status)

	// 失败事件可以重放
	pub.fail = nil
	n, err := NewReplayService(store, pub).ReplayFailedEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, StatusSent, store.events[1].Status)
}

func TestReplayUnknownEvent(t *testing.T) {
	err := NewReplayService(newMemStore(), &fakePublisher{}).ReplayEvent(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNextAttempt(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	status, at := NextAttempt(1, 5, now)
	assert.Equal(t, StatusPending, status)
	require.NotNil(t, at)
	assert.Equal(t, now.Add(5*time.Second), *at)

	status, at = NextAttempt(3, 5, now)
	assert.Equal(t, StatusPending, status)
	assert.Equal(t, now.Add(15*time.Second), *at)

	status, at = NextAttempt(5, 5, now)
	assert.Equal(t, StatusFailed, status)
	assert.Nil(t, at)
}

func TestDispatcherStopsWithContext(t *testing.T) {
	d := NewDispatcher(newMemStore(), &fakePublisher{}, zap.NewNop()).WithInterval(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Start(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
}
