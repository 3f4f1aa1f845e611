package model

import "time"

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s ApprovalStatus) Terminal() bool {
	return s == ApprovalApproved || s == ApprovalRejected
}

type POStatus string

const (
	PONotReceived POStatus = "Not Received"
	POReceived    POStatus = "Received"
	POPartial     POStatus = "Partial"
)

func (s POStatus) Valid() bool {
	switch s {
	case PONotReceived, POReceived, POPartial:
		return true
	}
	return false
}

type Estimation struct {
	ID                      string         `json:"id"`
	Project                 string         `json:"project"`
	Version                 string         `json:"version"`
	Date                    Date           `json:"date"`
	Provider                string         `json:"provider"`
	ReviewDate              *Date          `json:"review_date,omitempty"`
	ClientReviewDate        *Date          `json:"client_review_date,omitempty"`
	DevelopmentAmount       Amount         `json:"development_amount"`
	TestingAmount           Amount         `json:"testing_amount"`
	ProjectManagementAmount Amount         `json:"project_management_amount"`
	TotalAmount             Amount         `json:"total_amount"`
	ApprovalStatus          ApprovalStatus `json:"approval_status"`
	POStatus                POStatus       `json:"po_status"`
	Notes                   string         `json:"notes,omitempty"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
}

// EstimationInput has no total_amount: the total is always derived.
type EstimationInput struct {
	Project                 *string         `json:"project"`
	Version                 *string         `json:"version"`
	Date                    *Date           `json:"date"`
	Provider                *string         `json:"provider"`
	ReviewDate              OptionalDate    `json:"review_date"`
	ClientReviewDate        OptionalDate    `json:"client_review_date"`
	DevelopmentAmount       *Amount         `json:"development_amount"`
	TestingAmount           *Amount         `json:"testing_amount"`
	ProjectManagementAmount *Amount         `json:"project_management_amount"`
	ApprovalStatus          *ApprovalStatus `json:"approval_status"`
	POStatus                *POStatus       `json:"po_status"`
	Notes                   *string         `json:"notes"`
}
