package mq

import (
	"encoding/json"
	"time"
)

// RoutingPrefix prefixes every ledger routing key: ledger.<entity>.<action>.
const RoutingPrefix = "ledger"

// AllLedgerEvents is the binding pattern matching every ledger event.
const AllLedgerEvents = RoutingPrefix + ".#"

// LedgerEvent is published after every successful ledger write.
type LedgerEvent struct {
	EventID    string          `json:"event_id"`
	Entity     string          `json:"entity"` // client / poc / project / estimation / payment / milestone / request / hold
	Action     string          `json:"action"` // created / updated / deleted / approved / rejected / released
	EntityID   string          `json:"entity_id"`
	ProjectID  string          `json:"project_id,omitempty"`
	Actor      string          `json:"actor,omitempty"`
	TraceID    string          `json:"trace_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// RoutingKey returns the routing key of an entity action.
func RoutingKey(entity, action string) string {
	return RoutingPrefix + "." + entity + "." + action
}
