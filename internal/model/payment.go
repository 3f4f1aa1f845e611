package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentDevelopment       PaymentType = "Development"
	PaymentTesting           PaymentType = "Testing"
	PaymentProjectManagement PaymentType = "Project Management"
	PaymentOther             PaymentType = "Other"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentDevelopment, PaymentTesting, PaymentProjectManagement, PaymentOther:
		return true
	}
	return false
}

// SupportedCurrencies lists the currencies a payment may be recorded in.
var SupportedCurrencies = []string{"USD", "EUR", "INR"}

type Payment struct {
	ID                    string          `json:"id"`
	Project               string          `json:"project"`
	PaymentType           PaymentType     `json:"payment_type"`
	Resource              string          `json:"resource"`
	Currency              string          `json:"currency"`
	ApprovedBudget        Amount          `json:"approved_budget"`
	AdditionalAmount      Amount          `json:"additional_amount"`
	Payout                Amount          `json:"payout"`
	Retention             Amount          `json:"retention"`
	Penalty               Amount          `json:"penalty"`
	UtilizationPercentage decimal.Decimal `json:"utilization_percentage"`
	IsExceeded            bool            `json:"is_exceeded"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// PaymentInput has no is_exceeded: the flag is always derived.
type PaymentInput struct {
	Project               *string          `json:"project"`
	PaymentType           *PaymentType     `json:"payment_type"`
	Resource              *string          `json:"resource"`
	Currency              *string          `json:"currency"`
	ApprovedBudget        *Amount          `json:"approved_budget"`
	AdditionalAmount      *Amount          `json:"additional_amount"`
	Payout                *Amount          `json:"payout"`
	Retention             *Amount          `json:"retention"`
	Penalty               *Amount          `json:"penalty"`
	UtilizationPercentage *decimal.Decimal `json:"utilization_percentage"`
}
