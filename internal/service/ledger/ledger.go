// Package ledger is the budget ledger facade: it validates input, resolves
// references between records, applies the derived fields and persists through
// a repository.Store.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontract "budgetledger/contracts/mq"
	"budgetledger/internal/repository"
	"budgetledger/pkg/logger"
	"budgetledger/pkg/metrics"
	"budgetledger/pkg/trace"
)

// 实体名称，用于错误信息、事件 routing key 和指标标签
const (
	entityClient     = "client"
	entityPOC        = "poc"
	entityProject    = "project"
	entityEstimation = "estimation"
	entityPayment    = "payment"
	entityMilestone  = "milestone"
	entityRequest    = "request"
	entityHold       = "hold"
)

// EventPublisher publishes ledger events after a successful write.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type Ledger struct {
	store    repository.Store
	resolver resolver
	events   EventPublisher
	// outbox 模式：事件与写操作同一事务，记录失败则回滚
	outbox bool
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	// 单写者：所有写操作（含级联删除）串行执行
	mu sync.Mutex
}

type Option func(*Ledger)

// WithClock replaces the time source used for created_at, updated_at and
// decision timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// WithPublisher enables best-effort event publishing after each write.
func WithPublisher(p EventPublisher) Option {
	return func(l *Ledger) { l.events, l.outbox = p, false }
}

// WithOutbox records events through p inside the write's transaction (when
// the store is a repository.Transactor). A failure to record the event fails
// the write and nothing is persisted.
func WithOutbox(p EventPublisher) Option {
	return func(l *Ledger) { l.events, l.outbox = p, true }
}

func New(store repository.Store, logger *zap.Logger, opts ...Option) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		store:    store,
		resolver: resolver{store: store},
		logger:   logger,
		now:      defaultNow,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// 存储层（PostgreSQL）精度为微秒
func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Ping reports whether the backing store is reachable.
func (l *Ledger) Ping(ctx context.Context) error {
	return l.store.Ping(ctx)
}

// begin 在 outbox 模式下开启事务，end(err) 为 nil 时提交，否则回滚
func (l *Ledger) begin(ctx context.Context) (context.Context, func(error) error, error) {
	t, ok := l.store.(repository.Transactor)
	if !l.outbox || !ok {
		return ctx, func(err error) error { return err }, nil
	}
	return t.Begin(ctx)
}

// emit 发布账本事件。直接发布时失败只记录日志和指标；outbox 模式下返回错误，
// 由调用方回滚写操作
func (l *Ledger) emit(ctx context.Context, entity, action, id, projectID string, data any) error {
	if l.events == nil {
		return nil
	}
	log := logger.WithTrace(ctx, l.logger)
	routingKey := mqcontract.RoutingKey(entity, action)

	raw, err := json.Marshal(data)
	if err != nil {
		log.Warn("Failed to marshal ledger event", zap.String("routing_key", routingKey), zap.Error(err))
		metrics.IncrementEventPublishFailure(routingKey)
		if l.outbox {
			return fmt.Errorf("marshal %s event: %w", routingKey, err)
		}
		return nil
	}
	evt := mqcontract.LedgerEvent{
		EventID:    l.newID(),
		Entity:     entity,
		Action:     action,
		EntityID:   id,
		ProjectID:  projectID,
		Actor:      ActorFrom(ctx),
		TraceID:    trace.FromContext(ctx),
		OccurredAt: l.now(),
		Data:       raw,
	}
	if err := l.events.Publish(ctx, routingKey, evt); err != nil {
		metrics.IncrementEventPublishFailure(routingKey)
		if l.outbox {
			log.Error("Failed to record ledger event in outbox",
				zap.String("routing_key", routingKey),
				zap.String("entity_id", id),
				zap.Error(err),
			)
			return fmt.Errorf("record %s event: %w", routingKey, err)
		}
		log.Warn("Failed to publish ledger event",
			zap.String("routing_key", routingKey),
			zap.String("entity_id", id),
			zap.Error(err),
		)
	}
	return nil
}

func (l *Ledger) observe(entity, action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = Code(err)
	}
	metrics.IncrementLedgerOperation(entity, action, outcome)
}
