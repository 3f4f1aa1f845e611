package ledger

import (
	"context"
	"fmt"

	"budgetledger/internal/model"
)

func applyMilestone(m *model.Milestone, in model.MilestoneInput) {
	if in.Payment != nil {
		m.Payment = *in.Payment
	}
	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.Amount != nil {
		m.Amount = *in.Amount
	}
	if in.DueDate != nil {
		m.DueDate = *in.DueDate
	}
	if in.Status != nil {
		m.Status = *in.Status
	}
	in.CompletionDate.Apply(&m.CompletionDate)
	if in.Notes != nil {
		m.Notes = *in.Notes
	}
}

func (l *Ledger) CreateMilestone(ctx context.Context, in model.MilestoneInput) (_ *model.Milestone, err error) {
	defer func() { l.observe(entityMilestone, "create", err) }()

	if in.Amount == nil {
		return nil, invalid("amount", "is required")
	}
	m := &model.Milestone{Status: model.MilestonePending}
	applyMilestone(m, in)
	if err := validateMilestone(m); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	payment, err := l.resolver.payment(ctx, m.Payment)
	if err != nil {
		return nil, err
	}
	now := l.now()
	m.ID, m.CreatedAt, m.UpdatedAt = l.newID(), now, now
	if err := l.store.Milestones().Insert(ctx, m); err != nil {
		return nil, storeErr(entityMilestone, m.ID, err)
	}
	if err := l.emit(ctx, entityMilestone, "created", m.ID, payment.Project, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (l *Ledger) GetMilestone(ctx context.Context, id string) (*model.Milestone, error) {
	m, err := l.store.Milestones().Get(ctx, id)
	if err != nil {
		return nil, storeErr(entityMilestone, id, err)
	}
	return m, nil
}

// ListMilestones returns every milestone, or only those of paymentID when it
// is not empty.
func (l *Ledger) ListMilestones(ctx context.Context, paymentID string) ([]model.Milestone, error) {
	if paymentID != "" {
		return l.MilestonesByPayment(ctx, paymentID)
	}
	milestones, err := l.store.Milestones().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	return milestones, nil
}

func (l *Ledger) MilestonesByPayment(ctx context.Context, paymentID string) ([]model.Milestone, error) {
	if _, err := l.resolver.payment(ctx, paymentID); err != nil {
		return nil, err
	}
	milestones, err := l.store.Milestones().ListByPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("list milestones of payment %s: %w", paymentID, err)
	}
	return milestones, nil
}

func (l *Ledger) UpdateMilestone(ctx context.Context, id string, in model.MilestoneInput) (_ *model.Milestone, err error) {
	defer func() { l.observe(entityMilestone, "update", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	m, err := l.GetMilestone(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := m.UpdatedAt
	applyMilestone(m, in)
	if err := validateMilestone(m); err != nil {
		return nil, err
	}
	payment, err := l.resolver.payment(ctx, m.Payment)
	if err != nil {
		return nil, err
	}
	m.UpdatedAt = l.now()
	if err := l.store.Milestones().Update(ctx, m, prev); err != nil {
		return nil, storeErr(entityMilestone, id, err)
	}
	if err := l.emit(ctx, entityMilestone, "updated", m.ID, payment.Project, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (l *Ledger) DeleteMilestone(ctx context.Context, id string) (err error) {
	defer func() { l.observe(entityMilestone, "delete", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { err = end(err) }()

	if _, err := l.GetMilestone(ctx, id); err != nil {
		return err
	}
	if err := l.store.Milestones().Delete(ctx, id); err != nil {
		return storeErr(entityMilestone, id, err)
	}
	if err := l.emit(ctx, entityMilestone, "deleted", id, "", map[string]string{"id": id}); err != nil {
		return err
	}
	return nil
}
