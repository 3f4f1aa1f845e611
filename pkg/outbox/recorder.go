package outbox

import (
	"context"
)

// Recorder 把事件写入 outbox 而不是直接发到 MQ，由 Dispatcher 异步投递
type Recorder struct {
	store Store
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Publish stores payload as a pending event; it satisfies the same
// publisher interface as the MQ publisher. Called with a context from
// db.Begin, the row is part of that transaction.
func (r *Recorder) Publish(ctx context.Context, routingKey string, payload any) error {
	e, err := NewEvent(ctx, routingKey, payload)
	if err != nil {
		return err
	}
	return r.store.Insert(ctx, e)
}
