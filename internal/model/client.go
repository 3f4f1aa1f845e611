package model

import "time"

type Client struct {
	ID         string    `json:"id"`
	Company    string    `json:"company"`
	ClientName string    `json:"client_name"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Address    string    `json:"address,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ClientInput carries the caller-settable fields of a Client. Nil fields are
// left untouched on update.
type ClientInput struct {
	Company    *string `json:"company"`
	ClientName *string `json:"client_name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	Active     *bool   `json:"active"`
}
