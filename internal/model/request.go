package model

import "time"

// AdditionalRequest asks for budget on top of a project's approved budget.
type AdditionalRequest struct {
	ID              string         `json:"id"`
	Project         string         `json:"project"`
	RequestedAmount Amount         `json:"requested_amount"`
	Reason          string         `json:"reason"`
	Status          ApprovalStatus `json:"status"`
	ApprovedBy      string         `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// AdditionalRequestInput omits the workflow fields; those only change through
// approve and reject.
type AdditionalRequestInput struct {
	Project         *string `json:"project"`
	RequestedAmount *Amount `json:"requested_amount"`
	Reason          *string `json:"reason"`
}
