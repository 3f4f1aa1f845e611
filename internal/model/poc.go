package model

import "time"

// POC is a point of contact at a client.
type POC struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Designation string `json:"designation"`
	Client      string `json:"client"`
	// ClientName is resolved from the owning client on every read.
	ClientName string    `json:"client_name,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type POCInput struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Designation *string `json:"designation"`
	Client      *string `json:"client"`
	Active      *bool   `json:"active"`
}
