package model

// BudgetSummary aggregates the money figures of one project.
type BudgetSummary struct {
	EstimatedTotal        Amount `json:"estimated_total"`
	ApprovedBudget        Amount `json:"approved_budget"`
	AdditionalAmount      Amount `json:"additional_amount"`
	Payout                Amount `json:"payout"`
	Retention             Amount `json:"retention"`
	Penalty               Amount `json:"penalty"`
	ExceededPayments      int    `json:"exceeded_payments"`
	RequestedTotal        Amount `json:"requested_total"`
	ApprovedRequestsTotal Amount `json:"approved_requests_total"`
	PendingRequests       int    `json:"pending_requests"`
	ActiveHoldsTotal      Amount `json:"active_holds_total"`
}

// ProjectDetail is a project joined with everything it owns.
type ProjectDetail struct {
	Project     Project             `json:"project"`
	Estimations []Estimation        `json:"estimations"`
	Payments    []Payment           `json:"payments"`
	Requests    []AdditionalRequest `json:"requests"`
	Holds       []Hold              `json:"holds"`
	Summary     BudgetSummary       `json:"summary"`
}

// PaymentMilestones is a payment's milestone list with its rollup.
type PaymentMilestones struct {
	Payment    Payment          `json:"payment"`
	Milestones []Milestone      `json:"milestones"`
	Summary    MilestoneSummary `json:"summary"`
}
