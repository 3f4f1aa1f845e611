package ledger

import (
	"context"
	"fmt"

	"budgetledger/internal/model"
)

func applyPOC(p *model.POC, in model.POCInput) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Email != nil {
		p.Email = *in.Email
	}
	if in.Phone != nil {
		p.Phone = *in.Phone
	}
	if in.Designation != nil {
		p.Designation = *in.Designation
	}
	if in.Client != nil {
		p.Client = *in.Client
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
}

func (l *Ledger) CreatePOC(ctx context.Context, in model.POCInput) (_ *model.POC, err error) {
	defer func() { l.observe(entityPOC, "create", err) }()

	p := &model.POC{Active: true}
	applyPOC(p, in)
	if err := validatePOC(p); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	client, err := l.resolver.client(ctx, p.Client)
	if err != nil {
		return nil, err
	}
	now := l.now()
	p.ID, p.CreatedAt, p.UpdatedAt = l.newID(), now, now
	if err := l.store.POCs().Insert(ctx, p); err != nil {
		return nil, storeErr(entityPOC, p.ID, err)
	}
	p.ClientName = client.Company
	if err := l.emit(ctx, entityPOC, "created", p.ID, "", p); err != nil {
		return nil, err
	}
	return p, nil
}

func (l *Ledger) GetPOC(ctx context.Context, id string) (*model.POC, error) {
	p, err := l.resolver.poc(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.resolver.names().decoratePOC(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (l *Ledger) ListPOCs(ctx context.Context) ([]model.POC, error) {
	pocs, err := l.store.POCs().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pocs: %w", err)
	}
	if err := l.resolver.names().decoratePOCs(ctx, pocs); err != nil {
		return nil, err
	}
	return pocs, nil
}

// POCsByClient returns the client's POCs in insertion order, optionally only
// the active ones.
func (l *Ledger) POCsByClient(ctx context.Context, clientID string, activeOnly bool) ([]model.POC, error) {
	client, err := l.resolver.client(ctx, clientID)
	if err != nil {
		return nil, err
	}
	pocs, err := l.store.POCs().ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list pocs of client %s: %w", clientID, err)
	}
	out := pocs[:0]
	for _, p := range pocs {
		if activeOnly && !p.Active {
			continue
		}
		p.ClientName = client.Company
		out = append(out, p)
	}
	return out, nil
}

func (l *Ledger) UpdatePOC(ctx context.Context, id string, in model.POCInput) (_ *model.POC, err error) {
	defer func() { l.observe(entityPOC, "update", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	p, err := l.resolver.poc(ctx, id)
	if err != nil {
		return nil, err
	}
	prev, prevClient := p.UpdatedAt, p.Client
	applyPOC(p, in)
	if err := validatePOC(p); err != nil {
		return nil, err
	}
	client, err := l.resolver.client(ctx, p.Client)
	if err != nil {
		return nil, err
	}
	if p.Client != prevClient {
		// 仍被原客户的项目引用的联系人不能转移到其他客户
		projects, err := l.store.Projects().ListByPOC(ctx, id)
		if err != nil {
			return nil, storeErr(entityPOC, id, err)
		}
		for _, pr := range projects {
			if pr.Client != p.Client {
				return nil, fmt.Errorf("%w: poc %s is the contact of project %s of client %s",
					ErrInconsistentReference, id, pr.ID, pr.Client)
			}
		}
	}
	p.UpdatedAt = l.now()
	if err := l.store.POCs().Update(ctx, p, prev); err != nil {
		return nil, storeErr(entityPOC, id, err)
	}
	p.ClientName = client.Company
	if err := l.emit(ctx, entityPOC, "updated", p.ID, "", p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePOC removes a POC that no project references.
func (l *Ledger) DeletePOC(ctx context.Context, id string) (err error) {
	defer func() { l.observe(entityPOC, "delete", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { err = end(err) }()

	if _, err := l.resolver.poc(ctx, id); err != nil {
		return err
	}
	projects, err := l.store.Projects().ListByPOC(ctx, id)
	if err != nil {
		return storeErr(entityPOC, id, err)
	}
	if len(projects) > 0 {
		return fmt.Errorf("%w: poc %s is the contact of %d projects", ErrReferenced, id, len(projects))
	}
	if err := l.store.POCs().Delete(ctx, id); err != nil {
		return storeErr(entityPOC, id, err)
	}
	if err := l.emit(ctx, entityPOC, "deleted", id, "", map[string]string{"id": id}); err != nil {
		return err
	}
	return nil
}
