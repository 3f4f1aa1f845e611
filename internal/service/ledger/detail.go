package ledger

import (
	"context"

	"budgetledger/internal/model"
)

// GetProjectDetail returns the project with everything it owns and its budget
// summary.
func (l *Ledger) GetProjectDetail(ctx context.Context, projectID string) (*model.ProjectDetail, error) {
	project, err := l.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	estimations, err := l.EstimationsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	payments, err := l.PaymentsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	requests, err := l.RequestsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	holds, err := l.HoldsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &model.ProjectDetail{
		Project:     *project,
		Estimations: estimations,
		Payments:    payments,
		Requests:    requests,
		Holds:       holds,
		Summary:     BudgetRollup(estimations, payments, requests, holds),
	}, nil
}

// PaymentMilestones returns a payment's milestones with their rollup.
func (l *Ledger) PaymentMilestones(ctx context.Context, paymentID string) (*model.PaymentMilestones, error) {
	payment, err := l.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	milestones, err := l.store.Milestones().ListByPayment(ctx, paymentID)
	if err != nil {
		return nil, storeErr(entityPayment, paymentID, err)
	}
	return &model.PaymentMilestones{
		Payment:    *payment,
		Milestones: milestones,
		Summary:    MilestoneRollup(milestones),
	}, nil
}
