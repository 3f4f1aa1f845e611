package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"budgetledger/internal/model"
)

func applyEstimation(e *model.Estimation, in model.EstimationInput) {
	if in.Project != nil {
		e.Project = *in.Project
	}
	if in.Version != nil {
		e.Version = *in.Version
	}
	if in.Date != nil {
		e.Date = *in.Date
	}
	if in.Provider != nil {
		e.Provider = *in.Provider
	}
	in.ReviewDate.Apply(&e.ReviewDate)
	in.ClientReviewDate.Apply(&e.ClientReviewDate)
	if in.DevelopmentAmount != nil {
		e.DevelopmentAmount = *in.DevelopmentAmount
	}
	if in.TestingAmount != nil {
		e.TestingAmount = *in.TestingAmount
	}
	if in.ProjectManagementAmount != nil {
		e.ProjectManagementAmount = *in.ProjectManagementAmount
	}
	if in.ApprovalStatus != nil {
		e.ApprovalStatus = *in.ApprovalStatus
	}
	if in.POStatus != nil {
		e.POStatus = *in.POStatus
	}
	if in.Notes != nil {
		e.Notes = *in.Notes
	}
}

// prepareEstimation validates e and recomputes total_amount.
func prepareEstimation(e *model.Estimation) error {
	if err := validateEstimation(e); err != nil {
		return err
	}
	return deriveEstimation(e)
}

func (l *Ledger) CreateEstimation(ctx context.Context, in model.EstimationInput) (_ *model.Estimation, err error) {
	defer func() { l.observe(entityEstimation, "create", err) }()

	e := &model.Estimation{
		DevelopmentAmount:       decimal.Zero,
		TestingAmount:           decimal.Zero,
		ProjectManagementAmount: decimal.Zero,
		ApprovalStatus:          model.ApprovalPending,
		POStatus:                model.PONotReceived,
	}
	applyEstimation(e, in)
	if err := prepareEstimation(e); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	if _, err := l.resolver.project(ctx, e.Project); err != nil {
		return nil, err
	}
	now := l.now()
	e.ID, e.CreatedAt, e.UpdatedAt = l.newID(), now, now
	if err := l.store.Estimations().Insert(ctx, e); err != nil {
		return nil, storeErr(entityEstimation, e.ID, err)
	}
	if err := l.emit(ctx, entityEstimation, "created", e.ID, e.Project, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (l *Ledger) GetEstimation(ctx context.Context, id string) (*model.Estimation, error) {
	e, err := l.store.Estimations().Get(ctx, id)
	if err != nil {
		return nil, storeErr(entityEstimation, id, err)
	}
	return e, nil
}

func (l *Ledger) EstimationsByProject(ctx context.Context, projectID string) ([]model.Estimation, error) {
	if _, err := l.resolver.project(ctx, projectID); err != nil {
		return nil, err
	}
	estimations, err := l.store.Estimations().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list estimations of project %s: %w", projectID, err)
	}
	return estimations, nil
}

func (l *Ledger) UpdateEstimation(ctx context.Context, id string, in model.EstimationInput) (_ *model.Estimation, err error) {
	defer func() { l.observe(entityEstimation, "update", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	e, err := l.GetEstimation(ctx, id)
	if err != nil {
		return nil, err
	}
	prev, prevProject := e.UpdatedAt, e.Project
	applyEstimation(e, in)
	if err := prepareEstimation(e); err != nil {
		return nil, err
	}
	if e.Project != prevProject {
		if _, err := l.resolver.project(ctx, e.Project); err != nil {
			return nil, err
		}
	}
	e.UpdatedAt = l.now()
	if err := l.store.Estimations().Update(ctx, e, prev); err != nil {
		return nil, storeErr(entityEstimation, id, err)
	}
	if err := l.emit(ctx, entityEstimation, "updated", e.ID, e.Project, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (l *Ledger) DeleteEstimation(ctx context.Context, id string) (err error) {
	defer func() { l.observe(entityEstimation, "delete", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { err = end(err) }()

	e, err := l.GetEstimation(ctx, id)
	if err != nil {
		return err
	}
	if err := l.store.Estimations().Delete(ctx, id); err != nil {
		return storeErr(entityEstimation, id, err)
	}
	if err := l.emit(ctx, entityEstimation, "deleted", id, e.Project, map[string]string{"id": id}); err != nil {
		return err
	}
	return nil
}
