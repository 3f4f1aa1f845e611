package model

import "time"

type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "Pending"
	MilestoneInProgress MilestoneStatus = "In Progress"
	MilestoneCompleted  MilestoneStatus = "Completed"
	MilestoneOverdue    MilestoneStatus = "Overdue"
)

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestonePending, MilestoneInProgress, MilestoneCompleted, MilestoneOverdue:
		return true
	}
	return false
}

type Milestone struct {
	ID             string          `json:"id"`
	Payment        string          `json:"payment"`
	Name           string          `json:"name"`
	Amount         Amount          `json:"amount"`
	DueDate        Date            `json:"due_date"`
	Status         MilestoneStatus `json:"status"`
	CompletionDate *Date           `json:"completion_date,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type MilestoneInput struct {
	Payment        *string          `json:"payment"`
	Name           *string          `json:"name"`
	Amount         *Amount          `json:"amount"`
	DueDate        *Date            `json:"due_date"`
	Status         *MilestoneStatus `json:"status"`
	CompletionDate OptionalDate     `json:"completion_date"`
	Notes          *string          `json:"notes"`
}

// MilestoneSummary is the rollup of a payment's milestones.
type MilestoneSummary struct {
	Count          int    `json:"count"`
	TotalValue     Amount `json:"total_value"`
	CompletedValue Amount `json:"completed_value"`
}
