package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"budgetledger/internal/model"
)

func applyPayment(p *model.Payment, in model.PaymentInput) {
	if in.Project != nil {
		p.Project = *in.Project
	}
	if in.PaymentType != nil {
		p.PaymentType = *in.PaymentType
	}
	if in.Resource != nil {
		p.Resource = *in.Resource
	}
	if in.Currency != nil {
		p.Currency = *in.Currency
	}
	if in.ApprovedBudget != nil {
		p.ApprovedBudget = *in.ApprovedBudget
	}
	if in.AdditionalAmount != nil {
		p.AdditionalAmount = *in.AdditionalAmount
	}
	if in.Payout != nil {
		p.Payout = *in.Payout
	}
	if in.Retention != nil {
		p.Retention = *in.Retention
	}
	if in.Penalty != nil {
		p.Penalty = *in.Penalty
	}
	if in.UtilizationPercentage != nil {
		p.UtilizationPercentage = *in.UtilizationPercentage
	}
}

func (l *Ledger) CreatePayment(ctx context.Context, in model.PaymentInput) (_ *model.Payment, err error) {
	defer func() { l.observe(entityPayment, "create", err) }()

	// approved_budget 与 payout 必须显式给出
	switch {
	case in.ApprovedBudget == nil:
		return nil, invalid("approved_budget", "is required")
	case in.Payout == nil:
		return nil, invalid("payout", "is required")
	}
	p := &model.Payment{
		PaymentType:           model.PaymentDevelopment,
		Currency:              "USD",
		AdditionalAmount:      decimal.Zero,
		Retention:             decimal.Zero,
		Penalty:               decimal.Zero,
		UtilizationPercentage: decimal.Zero,
	}
	applyPayment(p, in)
	if err := validatePayment(p); err != nil {
		return nil, err
	}
	derivePayment(p)

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	if _, err := l.resolver.project(ctx, p.Project); err != nil {
		return nil, err
	}
	now := l.now()
	p.ID, p.CreatedAt, p.UpdatedAt = l.newID(), now, now
	if err := l.store.Payments().Insert(ctx, p); err != nil {
		return nil, storeErr(entityPayment, p.ID, err)
	}
	if err := l.emit(ctx, entityPayment, "created", p.ID, p.Project, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (l *Ledger) GetPayment(ctx context.Context, id string) (*model.Payment, error) {
	return l.resolver.payment(ctx, id)
}

func (l *Ledger) PaymentsByProject(ctx context.Context, projectID string) ([]model.Payment, error) {
	if _, err := l.resolver.project(ctx, projectID); err != nil {
		return nil, err
	}
	payments, err := l.store.Payments().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list payments of project %s: %w", projectID, err)
	}
	return payments, nil
}

func (l *Ledger) UpdatePayment(ctx context.Context, id string, in model.PaymentInput) (_ *model.Payment, err error) {
	defer func() { l.observe(entityPayment, "update", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	p, err := l.resolver.payment(ctx, id)
	if err != nil {
		return nil, err
	}
	prev, prevProject := p.UpdatedAt, p.Project
	applyPayment(p, in)
	if err := validatePayment(p); err != nil {
		return nil, err
	}
	derivePayment(p)
	if p.Project != prevProject {
		if _, err := l.resolver.project(ctx, p.Project); err != nil {
			return nil, err
		}
	}
	p.UpdatedAt = l.now()
	if err := l.store.Payments().Update(ctx, p, prev); err != nil {
		return nil, storeErr(entityPayment, id, err)
	}
	if err := l.emit(ctx, entityPayment, "updated", p.ID, p.Project, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePayment removes the payment together with its milestones.
func (l *Ledger) DeletePayment(ctx context.Context, id string) (err error) {
	defer func() { l.observe(entityPayment, "delete", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { err = end(err) }()

	p, err := l.resolver.payment(ctx, id)
	if err != nil {
		return err
	}
	if err := l.store.Payments().Delete(ctx, id); err != nil {
		return storeErr(entityPayment, id, err)
	}
	if err := l.emit(ctx, entityPayment, "deleted", id, p.Project, map[string]string{"id": id}); err != nil {
		return err
	}
	return nil
}
