package ledger

import (
	"context"
	"errors"
	"fmt"

	"budgetledger/internal/model"
	"budgetledger/internal/repository"
)

// AddHold reserves amount of the project's budget until the hold is released.
func (l *Ledger) AddHold(ctx context.Context, projectID string, in model.HoldInput) (_ *model.Hold, err error) {
	defer func() { l.observe(entityHold, "create", err) }()

	h := &model.Hold{Project: projectID, IsActive: true}
	if in.Reason != nil {
		h.Reason = *in.Reason
	}
	if in.Amount != nil {
		h.Amount = *in.Amount
	}
	if err := validateHold(h); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	if _, err := l.resolver.project(ctx, projectID); err != nil {
		return nil, err
	}
	h.ID, h.CreatedAt = l.newID(), l.now()
	if err := l.store.Holds().Insert(ctx, h); err != nil {
		return nil, storeErr(entityHold, h.ID, err)
	}
	if err := l.emit(ctx, entityHold, "created", h.ID, h.Project, h); err != nil {
		return nil, err
	}
	return h, nil
}

// ReleaseHold deactivates an active hold. Releasing it twice fails with
// ErrInvalidTransition.
func (l *Ledger) ReleaseHold(ctx context.Context, id string) (_ *model.Hold, err error) {
	defer func() { l.observe(entityHold, "release", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	h, err := l.store.Holds().Get(ctx, id)
	if err != nil {
		return nil, storeErr(entityHold, id, err)
	}
	released := fmt.Errorf("%w: hold %s is already released", ErrInvalidTransition, id)
	if !h.IsActive {
		return nil, released
	}
	at := l.now()
	if err := l.store.Holds().Release(ctx, id, at); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, released
		}
		return nil, storeErr(entityHold, id, err)
	}
	h.IsActive, h.ReleasedAt = false, &at
	if err := l.emit(ctx, entityHold, "released", h.ID, h.Project, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (l *Ledger) GetHold(ctx context.Context, id string) (*model.Hold, error) {
	h, err := l.store.Holds().Get(ctx, id)
	if err != nil {
		return nil, storeErr(entityHold, id, err)
	}
	return h, nil
}

func (l *Ledger) HoldsByProject(ctx context.Context, projectID string) ([]model.Hold, error) {
	if _, err := l.resolver.project(ctx, projectID); err != nil {
		return nil, err
	}
	holds, err := l.store.Holds().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list holds of project %s: %w", projectID, err)
	}
	return holds, nil
}
