package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetledger/internal/model"
)

func TestEstimationTotal(t *testing.T) {
	total, err := EstimationTotal(model.Amt(80000), model.Amt(15000), model.Amt(10000))
	require.NoError(t, err)
	assert.Equal(t, "105000", total.String())

	_, err = EstimationTotal(model.Amt(1), model.Amt(-5), model.Amt(0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidAmount))
	assert.True(t, errors.Is(err, ErrValidation))

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "testing_amount", fe.Field)
}

func TestEstimationTotal_NoRounding(t *testing.T) {
	half := decimal.RequireFromString("0.005")
	_, err := EstimationTotal(half, half, half)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "development_amount", fe.Field)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// 多余的零不算精度损失
	total, err := EstimationTotal(decimal.RequireFromString("0.100"), model.Amt(1), model.Amt(2))
	require.NoError(t, err)
	assert.Equal(t, "3.1", total.String())

	big := decimal.RequireFromString("4000000000000000")
	_, err = EstimationTotal(big, big, big)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "total_amount", fe.Field)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAmountBounds(t *testing.T) {
	cases := []struct {
		name  string
		check error
		ok    bool
	}{
		{"two decimals", nonNegative("amount", decimal.RequireFromString("10.25")), true},
		{"three decimals", nonNegative("amount", decimal.RequireFromString("10.255")), false},
		{"just below limit", nonNegative("amount", decimal.RequireFromString("9999999999999999.99")), true},
		{"limit", nonNegative("amount", decimal.New(1, 16)), false},
		{"huge positive", positive("amount", decimal.New(1, 17)), false},
		{"fractional percentage", percentage("utilization_percentage", decimal.RequireFromString("33.333")), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.ok {
				assert.NoError(t, c.check)
				return
			}
			assert.ErrorIs(t, c.check, ErrInvalidAmount)
		})
	}
}

func TestValidatePayment_AmountBounds(t *testing.T) {
	p := &model.Payment{
		Project:        "p",
		Resource:       "dev team",
		PaymentType:    model.PaymentDevelopment,
		Currency:       "USD",
		ApprovedBudget: decimal.New(1, 17),
	}
	err := validatePayment(p)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "approved_budget", fe.Field)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	p.ApprovedBudget = model.Amt(1000)
	p.Payout = decimal.RequireFromString("12.345")
	err = validatePayment(p)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "payout", fe.Field)
}

func TestPaymentExceeded(t *testing.T) {
	cases := []struct {
		payout, budget int64
		want           bool
	}{
		{45000, 50000, false},
		{50000, 50000, false},
		{55000, 50000, true},
		{0, 0, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, PaymentExceeded(model.Amt(c.payout), model.Amt(c.budget)),
			"payout=%d budget=%d", c.payout, c.budget)
	}
}

func TestMilestoneRollup(t *testing.T) {
	sum := MilestoneRollup([]model.Milestone{
		{Amount: model.Amt(1000), Status: model.MilestoneCompleted},
		{Amount: model.Amt(2500), Status: model.MilestonePending},
		{Amount: model.Amt(500), Status: model.MilestoneCompleted},
	})
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, "4000", sum.TotalValue.String())
	assert.Equal(t, "1500", sum.CompletedValue.String())

	empty := MilestoneRollup(nil)
	assert.Equal(t, 0, empty.Count)
	assert.True(t, empty.TotalValue.IsZero())
}

func TestBudgetRollup(t *testing.T) {
	s := BudgetRollup(
		[]model.Estimation{
			{TotalAmount: model.Amt(100), ApprovalStatus: model.ApprovalApproved},
			{TotalAmount: model.Amt(900), ApprovalStatus: model.ApprovalPending},
		},
		[]model.Payment{
			{ApprovedBudget: model.Amt(50), Payout: model.Amt(60), Retention: model.Amt(5), IsExceeded: true},
			{ApprovedBudget: model.Amt(40), Payout: model.Amt(10), Penalty: model.Amt(2)},
		},
		[]model.AdditionalRequest{
			{RequestedAmount: model.Amt(10), Status: model.ApprovalApproved},
			{RequestedAmount: model.Amt(20), Status: model.ApprovalPending},
			{RequestedAmount: model.Amt(30), Status: model.ApprovalRejected},
		},
		[]model.Hold{
			{Amount: model.Amt(7), IsActive: true},
			{Amount: model.Amt(3), IsActive: false},
		},
	)
	assert.Equal(t, "100", s.EstimatedTotal.String())
	assert.Equal(t, "90", s.ApprovedBudget.String())
	assert.Equal(t, "70", s.Payout.String())
	assert.Equal(t, "5", s.Retention.String())
	assert.Equal(t, "2", s.Penalty.String())
	assert.Equal(t, 1, s.ExceededPayments)
	assert.Equal(t, "60", s.RequestedTotal.String())
	assert.Equal(t, "10", s.ApprovedRequestsTotal.String())
	assert.Equal(t, 1, s.PendingRequests)
	assert.Equal(t, "7", s.ActiveHoldsTotal.String())
}

func TestValidatePaymentCurrency(t *testing.T) {
	p := &model.Payment{
		Project:     "p",
		Resource:    "dev team",
		PaymentType: model.PaymentDevelopment,
		Currency:    "XYZ",
	}
	err := validatePayment(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown currency")

	p.Currency = "GBP"
	err = validatePayment(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")

	p.Currency = "INR"
	assert.NoError(t, validatePayment(p))
}

func TestCode(t *testing.T) {
	assert.Equal(t, "invalid_amount", Code(invalidAmount("x", "bad")))
	assert.Equal(t, "validation_error", Code(invalid("x", "bad")))
	assert.Equal(t, "not_found", Code(notFound("client", "1")))
	assert.Equal(t, "conflict", Code(ErrConflict))
	assert.Equal(t, "internal", Code(errors.New("boom")))
}
