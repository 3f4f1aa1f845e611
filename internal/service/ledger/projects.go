package ledger

import (
	"context"
	"fmt"

	"budgetledger/internal/model"
)

func applyProject(p *model.Project, in model.ProjectInput) {
	if in.ProjectName != nil {
		p.ProjectName = *in.ProjectName
	}
	if in.Code != nil {
		p.Code = *in.Code
	}
	if in.Client != nil {
		p.Client = *in.Client
	}
	if in.POC != nil {
		p.POC = *in.POC
	}
	if in.Priority != nil {
		p.Priority = *in.Priority
	}
	if in.Type != nil {
		p.Type = *in.Type
	}
	if in.StartDate != nil {
		p.StartDate = *in.StartDate
	}
	in.EndDate.Apply(&p.EndDate)
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
}

func (l *Ledger) CreateProject(ctx context.Context, in model.ProjectInput) (_ *model.Project, err error) {
	defer func() { l.observe(entityProject, "create", err) }()

	p := &model.Project{
		Priority: model.PriorityMedium,
		Type:     model.ProjectTypeFixedPrice,
		Status:   model.ProjectPlanning,
	}
	applyProject(p, in)
	if err := validateProject(p); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	if err := l.resolver.projectRefs(ctx, p); err != nil {
		return nil, err
	}
	now := l.now()
	p.ID, p.CreatedAt, p.UpdatedAt = l.newID(), now, now
	if err := l.store.Projects().Insert(ctx, p); err != nil {
		return nil, storeErr(entityProject, p.ID, err)
	}
	if err := l.resolver.names().decorateProject(ctx, p); err != nil {
		return nil, err
	}
	if err := l.emit(ctx, entityProject, "created", p.ID, p.ID, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (l *Ledger) GetProject(ctx context.Context, id string) (*model.Project, error) {
	p, err := l.resolver.project(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.resolver.names().decorateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (l *Ledger) ListProjects(ctx context.Context) ([]model.Project, error) {
	projects, err := l.store.Projects().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if err := l.resolver.names().decorateProjects(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (l *Ledger) ProjectsByClient(ctx context.Context, clientID string) ([]model.Project, error) {
	if _, err := l.resolver.client(ctx, clientID); err != nil {
		return nil, err
	}
	projects, err := l.store.Projects().ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list projects of client %s: %w", clientID, err)
	}
	if err := l.resolver.names().decorateProjects(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (l *Ledger) UpdateProject(ctx context.Context, id string, in model.ProjectInput) (_ *model.Project, err error) {
	defer func() { l.observe(entityProject, "update", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	p, err := l.resolver.project(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := p.UpdatedAt
	applyProject(p, in)
	if err := validateProject(p); err != nil {
		return nil, err
	}
	if err := l.resolver.projectRefs(ctx, p); err != nil {
		return nil, err
	}
	p.UpdatedAt = l.now()
	if err := l.store.Projects().Update(ctx, p, prev); err != nil {
		return nil, storeErr(entityProject, id, err)
	}
	if err := l.resolver.names().decorateProject(ctx, p); err != nil {
		return nil, err
	}
	if err := l.emit(ctx, entityProject, "updated", p.ID, p.ID, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProject removes the project and every estimation, payment, milestone,
// additional request and hold it owns.
func (l *Ledger) DeleteProject(ctx context.Context, id string) (err error) {
	defer func() { l.observe(entityProject, "delete", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { err = end(err) }()

	if err := l.store.Projects().Delete(ctx, id); err != nil {
		return storeErr(entityProject, id, err)
	}
	if err := l.emit(ctx, entityProject, "deleted", id, id, map[string]string{"id": id}); err != nil {
		return err
	}
	return nil
}
