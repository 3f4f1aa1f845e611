package ledger

import (
	"context"
	"fmt"

	"budgetledger/internal/model"
)

func applyRequest(r *model.AdditionalRequest, in model.AdditionalRequestInput) {
	if in.Project != nil {
		r.Project = *in.Project
	}
	if in.RequestedAmount != nil {
		r.RequestedAmount = *in.RequestedAmount
	}
	if in.Reason != nil {
		r.Reason = *in.Reason
	}
}

// CreateRequest files a new additional budget request. It always starts
// Pending.
func (l *Ledger) CreateRequest(ctx context.Context, in model.AdditionalRequestInput) (_ *model.AdditionalRequest, err error) {
	defer func() { l.observe(entityRequest, "create", err) }()

	r := &model.AdditionalRequest{Status: model.ApprovalPending}
	applyRequest(r, in)
	if err := validateRequest(r); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	if _, err := l.resolver.project(ctx, r.Project); err != nil {
		return nil, err
	}
	now := l.now()
	r.ID, r.CreatedAt, r.UpdatedAt = l.newID(), now, now
	if err := l.store.Requests().Insert(ctx, r); err != nil {
		return nil, storeErr(entityRequest, r.ID, err)
	}
	if err := l.emit(ctx, entityRequest, "created", r.ID, r.Project, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (l *Ledger) GetRequest(ctx context.Context, id string) (*model.AdditionalRequest, error) {
	r, err := l.store.Requests().Get(ctx, id)
	if err != nil {
		return nil, storeErr(entityRequest, id, err)
	}
	return r, nil
}

// ListRequests returns every request, or only those of projectID when it is
// not empty.
func (l *Ledger) ListRequests(ctx context.Context, projectID string) ([]model.AdditionalRequest, error) {
	if projectID != "" {
		return l.RequestsByProject(ctx, projectID)
	}
	requests, err := l.store.Requests().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list additional requests: %w", err)
	}
	return requests, nil
}

func (l *Ledger) RequestsByProject(ctx context.Context, projectID string) ([]model.AdditionalRequest, error) {
	if _, err := l.resolver.project(ctx, projectID); err != nil {
		return nil, err
	}
	requests, err := l.store.Requests().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list additional requests of project %s: %w", projectID, err)
	}
	return requests, nil
}

// UpdateRequest edits a pending request. Decided requests are immutable.
func (l *Ledger) UpdateRequest(ctx context.Context, id string, in model.AdditionalRequestInput) (_ *model.AdditionalRequest, err error) {
	defer func() { l.observe(entityRequest, "update", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	r, err := l.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requirePending(r, "update"); err != nil {
		return nil, err
	}
	prev, prevProject := r.UpdatedAt, r.Project
	applyRequest(r, in)
	if err := validateRequest(r); err != nil {
		return nil, err
	}
	if r.Project != prevProject {
		if _, err := l.resolver.project(ctx, r.Project); err != nil {
			return nil, err
		}
	}
	r.UpdatedAt = l.now()
	if err := l.store.Requests().Update(ctx, r, prev); err != nil {
		return nil, storeErr(entityRequest, id, err)
	}
	if err := l.emit(ctx, entityRequest, "updated", r.ID, r.Project, r); err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteRequest removes a pending request. Decided requests are kept.
func (l *Ledger) DeleteRequest(ctx context.Context, id string) (err error) {
	defer func() { l.observe(entityRequest, "delete", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { err = end(err) }()

	r, err := l.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if err := requirePending(r, "delete"); err != nil {
		return err
	}
	if err := l.store.Requests().Delete(ctx, id); err != nil {
		return storeErr(entityRequest, id, err)
	}
	if err := l.emit(ctx, entityRequest, "deleted", id, r.Project, map[string]string{"id": id}); err != nil {
		return err
	}
	return nil
}
