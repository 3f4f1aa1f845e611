package outbox

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"budgetledger/pkg/trace"
)

// NewEvent 构造一个 pending 事件，trace_id 取自 ctx
func NewEvent(ctx context.Context, routingKey string, payload any) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		RoutingKey: routingKey,
		Payload:    raw,
		TraceID:    trace.FromContext(ctx),
		Status:     StatusPending,
	}, nil
}

// InsertEventInTx 在业务写操作所在的事务中插入 outbox 事件
func InsertEventInTx(ctx context.Context, tx pgx.Tx, repo *Repository, e *Event) error {
	return repo.insert(ctx, tx, e)
}
