package mq

import (
	"context"

	"budgetledger/pkg/circuitbreaker"
)

// EventPublisher is anything that can publish a payload under a routing key.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// GuardedPublisher stops calling the broker while the breaker is open so a
// broker outage does not slow every write down to the publish timeout.
type GuardedPublisher struct {
	next EventPublisher
	cb   *circuitbreaker.CircuitBreaker
}

func NewGuardedPublisher(next EventPublisher, cb *circuitbreaker.CircuitBreaker) *GuardedPublisher {
	return &GuardedPublisher{next: next, cb: cb}
}

func (g *GuardedPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	return g.cb.Execute(func() error {
		return g.next.Publish(ctx, routingKey, payload)
	})
}
