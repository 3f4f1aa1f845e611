package ledger

import (
	"context"
	"fmt"

	"budgetledger/internal/model"
)

func applyClient(c *model.Client, in model.ClientInput) {
	if in.Company != nil {
		c.Company = *in.Company
	}
	if in.ClientName != nil {
		c.ClientName = *in.ClientName
	}
	if in.Email != nil {
		c.Email = *in.Email
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Address != nil {
		c.Address = *in.Address
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
}

func (l *Ledger) CreateClient(ctx context.Context, in model.ClientInput) (_ *model.Client, err error) {
	defer func() { l.observe(entityClient, "create", err) }()

	c := &model.Client{Active: true}
	applyClient(c, in)
	if err := validateClient(c); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	now := l.now()
	c.ID, c.CreatedAt, c.UpdatedAt = l.newID(), now, now
	if err := l.store.Clients().Insert(ctx, c); err != nil {
		return nil, storeErr(entityClient, c.ID, err)
	}
	if err := l.emit(ctx, entityClient, "created", c.ID, "", c); err != nil {
		return nil, err
	}
	return c, nil
}

func (l *Ledger) GetClient(ctx context.Context, id string) (*model.Client, error) {
	return l.resolver.client(ctx, id)
}

func (l *Ledger) ListClients(ctx context.Context) ([]model.Client, error) {
	clients, err := l.store.Clients().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func (l *Ledger) UpdateClient(ctx context.Context, id string, in model.ClientInput) (_ *model.Client, err error) {
	defer func() { l.observe(entityClient, "update", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	c, err := l.resolver.client(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := c.UpdatedAt
	applyClient(c, in)
	if err := validateClient(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = l.now()
	if err := l.store.Clients().Update(ctx, c, prev); err != nil {
		return nil, storeErr(entityClient, id, err)
	}
	if err := l.emit(ctx, entityClient, "updated", c.ID, "", c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteClient removes a client that no POC or project references.
// Referenced clients should be deactivated instead.
func (l *Ledger) DeleteClient(ctx context.Context, id string) (err error) {
	defer func() { l.observe(entityClient, "delete", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { err = end(err) }()

	if _, err := l.resolver.client(ctx, id); err != nil {
		return err
	}
	pocs, err := l.store.POCs().ListByClient(ctx, id)
	if err != nil {
		return storeErr(entityClient, id, err)
	}
	projects, err := l.store.Projects().ListByClient(ctx, id)
	if err != nil {
		return storeErr(entityClient, id, err)
	}
	if len(pocs) > 0 || len(projects) > 0 {
		return fmt.Errorf("%w: client %s has %d pocs and %d projects",
			ErrReferenced, id, len(pocs), len(projects))
	}
	if err := l.store.Clients().Delete(ctx, id); err != nil {
		return storeErr(entityClient, id, err)
	}
	if err := l.emit(ctx, entityClient, "deleted", id, "", map[string]string{"id": id}); err != nil {
		return err
	}
	return nil
}
