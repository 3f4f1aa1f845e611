package ledger

import (
	"github.com/shopspring/decimal"

	"budgetledger/internal/model"
)

// EstimationTotal returns development + testing + project management. Any
// negative component, or one with more than two decimal places, is rejected
// before the sum is taken.
func EstimationTotal(development, testing, management model.Amount) (model.Amount, error) {
	if err := firstErr(
		nonNegative("development_amount", development),
		nonNegative("testing_amount", testing),
		nonNegative("project_management_amount", management),
	); err != nil {
		return decimal.Zero, err
	}
	total := model.SumAmounts(development, testing, management)
	if err := storable("total_amount", total, amountScale); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// PaymentExceeded reports whether payout is strictly above the approved budget.
func PaymentExceeded(payout, approvedBudget model.Amount) bool {
	return payout.GreaterThan(approvedBudget)
}

func deriveEstimation(e *model.Estimation) error {
	total, err := EstimationTotal(e.DevelopmentAmount, e.TestingAmount, e.ProjectManagementAmount)
	if err != nil {
		return err
	}
	e.TotalAmount = total
	return nil
}

func derivePayment(p *model.Payment) {
	p.IsExceeded = PaymentExceeded(p.Payout, p.ApprovedBudget)
}

// MilestoneRollup sums milestone amounts, overall and for completed ones.
func MilestoneRollup(milestones []model.Milestone) model.MilestoneSummary {
	sum := model.MilestoneSummary{
		Count:          len(milestones),
		TotalValue:     decimal.Zero,
		CompletedValue: decimal.Zero,
	}
	for _, m := range milestones {
		sum.TotalValue = sum.TotalValue.Add(m.Amount)
		if m.Status == model.MilestoneCompleted {
			sum.CompletedValue = sum.CompletedValue.Add(m.Amount)
		}
	}
	return sum
}

// BudgetRollup aggregates the money figures of a project's records.
func BudgetRollup(
	estimations []model.Estimation,
	payments []model.Payment,
	requests []model.AdditionalRequest,
	holds []model.Hold,
) model.BudgetSummary {
	s := model.BudgetSummary{
		EstimatedTotal:        decimal.Zero,
		ApprovedBudget:        decimal.Zero,
		AdditionalAmount:      decimal.Zero,
		Payout:                decimal.Zero,
		Retention:             decimal.Zero,
		Penalty:               decimal.Zero,
		RequestedTotal:        decimal.Zero,
		ApprovedRequestsTotal: decimal.Zero,
		ActiveHoldsTotal:      decimal.Zero,
	}
	for _, e := range estimations {
		if e.ApprovalStatus == model.ApprovalApproved {
			s.EstimatedTotal = s.EstimatedTotal.Add(e.TotalAmount)
		}
	}
	for _, p := range payments {
		s.ApprovedBudget = s.ApprovedBudget.Add(p.ApprovedBudget)
		s.AdditionalAmount = s.AdditionalAmount.Add(p.AdditionalAmount)
		s.Payout = s.Payout.Add(p.Payout)
		s.Retention = s.Retention.Add(p.Retention)
		s.Penalty = s.Penalty.Add(p.Penalty)
		if p.IsExceeded {
			s.ExceededPayments++
		}
	}
	for _, r := range requests {
		s.RequestedTotal = s.RequestedTotal.Add(r.RequestedAmount)
		switch r.Status {
		case model.ApprovalApproved:
			s.ApprovedRequestsTotal = s.ApprovedRequestsTotal.Add(r.RequestedAmount)
		case model.ApprovalPending:
			s.PendingRequests++
		}
	}
	for _, h := range holds {
		if h.IsActive {
			s.ActiveHoldsTotal = s.ActiveHoldsTotal.Add(h.Amount)
		}
	}
	return s
}
