package model

import "time"

// Hold reserves part of a project's budget until released.
type Hold struct {
	ID         string     `json:"id"`
	Project    string     `json:"project"`
	Reason     string     `json:"reason"`
	Amount     Amount     `json:"amount"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
}

type HoldInput struct {
	Reason *string `json:"reason"`
	Amount *Amount `json:"amount"`
}
