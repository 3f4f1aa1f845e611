// Package repository defines the entity store used by the ledger. Every list
// method returns records in insertion order.
package repository

import (
	"context"
	"errors"
	"time"

	"budgetledger/internal/model"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrStale is returned by Update when the stored updated_at no longer
	// matches the one the caller read.
	ErrStale = errors.New("record modified concurrently")
)

type ClientRepository interface {
	Get(ctx context.Context, id string) (*model.Client, error)
	List(ctx context.Context) ([]model.Client, error)
	Insert(ctx context.Context, c *model.Client) error
	Update(ctx context.Context, c *model.Client, prev time.Time) error
	Delete(ctx context.Context, id string) error
}

type POCRepository interface {
	Get(ctx context.Context, id string) (*model.POC, error)
	List(ctx context.Context) ([]model.POC, error)
	ListByClient(ctx context.Context, clientID string) ([]model.POC, error)
	Insert(ctx context.Context, p *model.POC) error
	Update(ctx context.Context, p *model.POC, prev time.Time) error
	Delete(ctx context.Context, id string) error
}

type ProjectRepository interface {
	Get(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context) ([]model.Project, error)
	ListByClient(ctx context.Context, clientID string) ([]model.Project, error)
	ListByPOC(ctx context.Context, pocID string) ([]model.Project, error)
	Insert(ctx context.Context, p *model.Project) error
	Update(ctx context.Context, p *model.Project, prev time.Time) error
	// Delete removes the project together with the estimations, payments
	// (and their milestones), additional requests and holds it owns.
	Delete(ctx context.Context, id string) error
}

type EstimationRepository interface {
	Get(ctx context.Context, id string) (*model.Estimation, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Estimation, error)
	Insert(ctx context.Context, e *model.Estimation) error
	Update(ctx context.Context, e *model.Estimation, prev time.Time) error
	Delete(ctx context.Context, id string) error
}

type PaymentRepository interface {
	Get(ctx context.Context, id string) (*model.Payment, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Payment, error)
	Insert(ctx context.Context, p *model.Payment) error
	Update(ctx context.Context, p *model.Payment, prev time.Time) error
	// Delete removes the payment and its milestones.
	Delete(ctx context.Context, id string) error
}

type MilestoneRepository interface {
	Get(ctx context.Context, id string) (*model.Milestone, error)
	List(ctx context.Context) ([]model.Milestone, error)
	ListByPayment(ctx context.Context, paymentID string) ([]model.Milestone, error)
	Insert(ctx context.Context, m *model.Milestone) error
	Update(ctx context.Context, m *model.Milestone, prev time.Time) error
	Delete(ctx context.Context, id string) error
}

type RequestRepository interface {
	Get(ctx context.Context, id string) (*model.AdditionalRequest, error)
	List(ctx context.Context) ([]model.AdditionalRequest, error)
	ListByProject(ctx context.Context, projectID string) ([]model.AdditionalRequest, error)
	Insert(ctx context.Context, r *model.AdditionalRequest) error
	Update(ctx context.Context, r *model.AdditionalRequest, prev time.Time) error
	Delete(ctx context.Context, id string) error
}

type HoldRepository interface {
	Get(ctx context.Context, id string) (*model.Hold, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Hold, error)
	Insert(ctx context.Context, h *model.Hold) error
	// Release marks an active hold released. It returns ErrStale when the
	// hold is no longer active.
	Release(ctx context.Context, id string, at time.Time) error
}

// Transactor is implemented by stores that can group several writes into one
// transaction. Begin returns a context bound to the transaction and an end
// function that commits when given a nil error and rolls back otherwise.
type Transactor interface {
	Begin(ctx context.Context) (context.Context, func(err error) error, error)
}

// Store bundles the per-entity repositories behind one backend.
type Store interface {
	Clients() ClientRepository
	POCs() POCRepository
	Projects() ProjectRepository
	Estimations() EstimationRepository
	Payments() PaymentRepository
	Milestones() MilestoneRepository
	Requests() RequestRepository
	Holds() HoldRepository
	Ping(ctx context.Context) error
	Close()
}
