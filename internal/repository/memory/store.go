// Package memory is an in-process implementation of repository.Store. It is
// the default backend and the one the tests run against.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"budgetledger/internal/model"
	"budgetledger/internal/repository"
)

type Store struct {
	mu sync.RWMutex

	clients     *table[model.Client]
	pocs        *table[model.POC]
	projects    *table[model.Project]
	estimations *table[model.Estimation]
	payments    *table[model.Payment]
	milestones  *table[model.Milestone]
	requests    *table[model.AdditionalRequest]
	holds       *table[model.Hold]
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		clients:     newTable[model.Client](),
		pocs:        newTable[model.POC](),
		projects:    newTable[model.Project](),
		estimations: newTable[model.Estimation](),
		payments:    newTable[model.Payment](),
		milestones:  newTable[model.Milestone](),
		requests:    newTable[model.AdditionalRequest](),
		holds:       newTable[model.Hold](),
	}
}

func (s *Store) Clients() repository.ClientRepository         { return clientRepo{s} }
func (s *Store) POCs() repository.POCRepository               { return pocRepo{s} }
func (s *Store) Projects() repository.ProjectRepository       { return projectRepo{s} }
func (s *Store) Estimations() repository.EstimationRepository { return estimationRepo{s} }
func (s *Store) Payments() repository.PaymentRepository       { return paymentRepo{s} }
func (s *Store) Milestones() repository.MilestoneRepository   { return milestoneRepo{s} }
func (s *Store) Requests() repository.RequestRepository       { return requestRepo{s} }
func (s *Store) Holds() repository.HoldRepository             { return holdRepo{s} }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close()                         {}

// getRow, insertRow, updateRow and deleteRow are the shared bodies of the
// per-entity repositories.

func getRow[T any](s *Store, t *table[T], id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := t.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func listRows[T any](s *Store, t *table[T], keep func(*T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return t.filter(keep)
}

func insertRow[T any](s *Store, t *table[T], id string, v *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.insert(id, *v)
	return nil
}

func updateRow[T any](s *Store, t *table[T], id string, v *T, prev time.Time, updatedAt func(*T) time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := t.get(id)
	if !ok {
		return repository.ErrNotFound
	}
	if !updatedAt(&cur).Equal(prev) {
		return repository.ErrStale
	}
	t.set(id, *v)
	return nil
}

func deleteRow[T any](s *Store, t *table[T], id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !t.has(id) {
		return repository.ErrNotFound
	}
	t.remove(id)
	return nil
}

type clientRepo struct{ s *Store }

func (r clientRepo) Get(_ context.Context, id string) (*model.Client, error) {
	return getRow(r.s, r.s.clients, id)
}

func (r clientRepo) List(_ context.Context) ([]model.Client, error) {
	return listRows(r.s, r.s.clients, nil), nil
}

func (r clientRepo) Insert(_ context.Context, c *model.Client) error {
	return insertRow(r.s, r.s.clients, c.ID, c)
}

func (r clientRepo) Update(_ context.Context, c *model.Client, prev time.Time) error {
	return updateRow(r.s, r.s.clients, c.ID, c, prev, func(v *model.Client) time.Time { return v.UpdatedAt })
}

func (r clientRepo) Delete(_ context.Context, id string) error {
	return deleteRow(r.s, r.s.clients, id)
}

type pocRepo struct{ s *Store }

func (r pocRepo) Get(_ context.Context, id string) (*model.POC, error) {
	return getRow(r.s, r.s.pocs, id)
}

func (r pocRepo) List(_ context.Context) ([]model.POC, error) {
	return listRows(r.s, r.s.pocs, nil), nil
}

func (r pocRepo) ListByClient(_ context.Context, clientID string) ([]model.POC, error) {
	return listRows(r.s, r.s.pocs, func(p *model.POC) bool { return p.Client == clientID }), nil
}

func (r pocRepo) Insert(_ context.Context, p *model.POC) error {
	return insertRow(r.s, r.s.pocs, p.ID, p)
}

func (r pocRepo) Update(_ context.Context, p *model.POC, prev time.Time) error {
	return updateRow(r.s, r.s.pocs, p.ID, p, prev, func(v *model.POC) time.Time { return v.UpdatedAt })
}

func (r pocRepo) Delete(_ context.Context, id string) error {
	return deleteRow(r.s, r.s.pocs, id)
}

type projectRepo struct{ s *Store }

func (r projectRepo) Get(_ context.Context, id string) (*model.Project, error) {
	return getRow(r.s, r.s.projects, id)
}

func (r projectRepo) List(_ context.Context) ([]model.Project, error) {
	return listRows(r.s, r.s.projects, nil), nil
}

func (r projectRepo) ListByClient(_ context.Context, clientID string) ([]model.Project, error) {
	return listRows(r.s, r.s.projects, func(p *model.Project) bool { return p.Client == clientID }), nil
}

func (r projectRepo) ListByPOC(_ context.Context, pocID string) ([]model.Project, error) {
	return listRows(r.s, r.s.projects, func(p *model.Project) bool { return p.POC == pocID }), nil
}

func (r projectRepo) Insert(_ context.Context, p *model.Project) error {
	return insertRow(r.s, r.s.projects, p.ID, p)
}

func (r projectRepo) Update(_ context.Context, p *model.Project, prev time.Time) error {
	return updateRow(r.s, r.s.projects, p.ID, p, prev, func(v *model.Project) time.Time { return v.UpdatedAt })
}

func (r projectRepo) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.projects.has(id) {
		return repository.ErrNotFound
	}
	owned := func(project string) bool { return project == id }
	payments := s.payments.removeWhere(func(p *model.Payment) bool { return owned(p.Project) })
	s.milestones.removeWhere(func(m *model.Milestone) bool { return slices.Contains(payments, m.Payment) })
	s.estimations.removeWhere(func(e *model.Estimation) bool { return owned(e.Project) })
	s.requests.removeWhere(func(a *model.AdditionalRequest) bool { return owned(a.Project) })
	s.holds.removeWhere(func(h *model.Hold) bool { return owned(h.Project) })
	s.projects.remove(id)
	return nil
}

type estimationRepo struct{ s *Store }

func (r estimationRepo) Get(_ context.Context, id string) (*model.Estimation, error) {
	return getRow(r.s, r.s.estimations, id)
}

func (r estimationRepo) ListByProject(_ context.Context, projectID string) ([]model.Estimation, error) {
	return listRows(r.s, r.s.estimations, func(e *model.Estimation) bool { return e.Project == projectID }), nil
}

func (r estimationRepo) Insert(_ context.Context, e *model.Estimation) error {
	return insertRow(r.s, r.s.estimations, e.ID, e)
}

func (r estimationRepo) Update(_ context.Context, e *model.Estimation, prev time.Time) error {
	return updateRow(r.s, r.s.estimations, e.ID, e, prev, func(v *model.Estimation) time.Time { return v.UpdatedAt })
}

func (r estimationRepo) Delete(_ context.Context, id string) error {
	return deleteRow(r.s, r.s.estimations, id)
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) Get(_ context.Context, id string) (*model.Payment, error) {
	return getRow(r.s, r.s.payments, id)
}

func (r paymentRepo) ListByProject(_ context.Context, projectID string) ([]model.Payment, error) {
	return listRows(r.s, r.s.payments, func(p *model.Payment) bool { return p.Project == projectID }), nil
}

func (r paymentRepo) Insert(_ context.Context, p *model.Payment) error {
	return insertRow(r.s, r.s.payments, p.ID, p)
}

func (r paymentRepo) Update(_ context.Context, p *model.Payment, prev time.Time) error {
	return updateRow(r.s, r.s.payments, p.ID, p, prev, func(v *model.Payment) time.Time { return v.UpdatedAt })
}

func (r paymentRepo) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.payments.has(id) {
		return repository.ErrNotFound
	}
	s.milestones.removeWhere(func(m *model.Milestone) bool { return m.Payment == id })
	s.payments.remove(id)
	return nil
}

type milestoneRepo struct{ s *Store }

func (r milestoneRepo) Get(_ context.Context, id string) (*model.Milestone, error) {
	return getRow(r.s, r.s.milestones, id)
}

func (r milestoneRepo) List(_ context.Context) ([]model.Milestone, error) {
	return listRows(r.s, r.s.milestones, nil), nil
}

func (r milestoneRepo) ListByPayment(_ context.Context, paymentID string) ([]model.Milestone, error) {
	return listRows(r.s, r.s.milestones, func(m *model.Milestone) bool { return m.Payment == paymentID }), nil
}

func (r milestoneRepo) Insert(_ context.Context, m *model.Milestone) error {
	return insertRow(r.s, r.s.milestones, m.ID, m)
}

func (r milestoneRepo) Update(_ context.Context, m *model.Milestone, prev time.Time) error {
	return updateRow(r.s, r.s.milestones, m.ID, m, prev, func(v *model.Milestone) time.Time { return v.UpdatedAt })
}

func (r milestoneRepo) Delete(_ context.Context, id string) error {
	return deleteRow(r.s, r.s.milestones, id)
}

type requestRepo struct{ s *Store }

func (r requestRepo) Get(_ context.Context, id string) (*model.AdditionalRequest, error) {
	return getRow(r.s, r.s.requests, id)
}

func (r requestRepo) List(_ context.Context) ([]model.AdditionalRequest, error) {
	return listRows(r.s, r.s.requests, nil), nil
}

func (r requestRepo) ListByProject(_ context.Context, projectID string) ([]model.AdditionalRequest, error) {
	return listRows(r.s, r.s.requests, func(a *model.AdditionalRequest) bool { return a.Project == projectID }), nil
}

func (r requestRepo) Insert(_ context.Context, a *model.AdditionalRequest) error {
	return insertRow(r.s, r.s.requests, a.ID, a)
}

func (r requestRepo) Update(_ context.Context, a *model.AdditionalRequest, prev time.Time) error {
	return updateRow(r.s, r.s.requests, a.ID, a, prev, func(v *model.AdditionalRequest) time.Time { return v.UpdatedAt })
}

func (r requestRepo) Delete(_ context.Context, id string) error {
	return deleteRow(r.s, r.s.requests, id)
}

type holdRepo struct{ s *Store }

func (r holdRepo) Get(_ context.Context, id string) (*model.Hold, error) {
	return getRow(r.s, r.s.holds, id)
}

func (r holdRepo) ListByProject(_ context.Context, projectID string) ([]model.Hold, error) {
	return listRows(r.s, r.s.holds, func(h *model.Hold) bool { return h.Project == projectID }), nil
}

func (r holdRepo) Insert(_ context.Context, h *model.Hold) error {
	return insertRow(r.s, r.s.holds, h.ID, h)
}

func (r holdRepo) Release(_ context.Context, id string, at time.Time) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds.get(id)
	if !ok {
		return repository.ErrNotFound
	}
	if !h.IsActive {
		return repository.ErrStale
	}
	h.IsActive = false
	h.ReleasedAt = &at
	s.holds.set(id, h)
	return nil
}
