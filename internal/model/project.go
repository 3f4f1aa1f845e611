package model

import "time"

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type ProjectType string

const (
	ProjectTypeFixedPrice      ProjectType = "Fixed Price"
	ProjectTypeTimeAndMaterial ProjectType = "Time & Material"
	ProjectTypeRetainer        ProjectType = "Retainer"
)

func (t ProjectType) Valid() bool {
	switch t {
	case ProjectTypeFixedPrice, ProjectTypeTimeAndMaterial, ProjectTypeRetainer:
		return true
	}
	return false
}

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "Planning"
	ProjectActive    ProjectStatus = "Active"
	ProjectOnHold    ProjectStatus = "On Hold"
	ProjectCompleted ProjectStatus = "Completed"
	ProjectCancelled ProjectStatus = "Cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

type Project struct {
	ID          string        `json:"id"`
	ProjectName string        `json:"project_name"`
	Code        string        `json:"code"`
	Client      string        `json:"client"`
	ClientName  string        `json:"client_name,omitempty"`
	POC         string        `json:"poc"`
	POCName     string        `json:"poc_name,omitempty"`
	Priority    Priority      `json:"priority"`
	Type        ProjectType   `json:"type"`
	StartDate   Date          `json:"start_date"`
	EndDate     *Date         `json:"end_date,omitempty"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type ProjectInput struct {
	ProjectName *string        `json:"project_name"`
	Code        *string        `json:"code"`
	Client      *string        `json:"client"`
	POC         *string        `json:"poc"`
	Priority    *Priority      `json:"priority"`
	Type        *ProjectType   `json:"type"`
	StartDate   *Date          `json:"start_date"`
	EndDate     OptionalDate   `json:"end_date"`
	Description *string        `json:"description"`
	Status      *ProjectStatus `json:"status"`
}
