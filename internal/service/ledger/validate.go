package ledger

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"budgetledger/internal/model"
)

var hundred = decimal.NewFromInt(100)

// 金额列为 NUMERIC(18, 2)：最多两位小数，绝对值小于 10^16
const amountScale int32 = 2

var amountLimit = decimal.New(1, 16)

// firstErr returns the first non-nil error so each validator reports the
// earliest failing field.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return invalid(field, "is required")
	}
	return nil
}

func requiredDate(field string, d model.Date) error {
	if d.IsZero() {
		return invalid(field, "is required")
	}
	return nil
}

func email(field, v string, mandatory bool) error {
	if v == "" {
		if mandatory {
			return invalid(field, "is required")
		}
		return nil
	}
	if _, err := mail.ParseAddress(v); err != nil {
		return invalid(field, "must be a valid email address")
	}
	return nil
}

// storable rejects values the store would have to round or could not hold.
func storable(field string, v decimal.Decimal, scale int32) error {
	if !v.Equal(v.Round(scale)) {
		return invalidAmount(field, fmt.Sprintf("must have at most %d decimal places", scale))
	}
	if v.Abs().GreaterThanOrEqual(amountLimit) {
		return invalidAmount(field, "must be less than "+amountLimit.String())
	}
	return nil
}

func nonNegative(field string, v model.Amount) error {
	return nonNegativeIn(field, v, amountScale)
}

func nonNegativeIn(field string, v model.Amount, scale int32) error {
	if v.IsNegative() {
		return invalidAmount(field, "must not be negative")
	}
	return storable(field, v, scale)
}

func positive(field string, v model.Amount) error {
	if !v.IsPositive() {
		return invalidAmount(field, "must be greater than zero")
	}
	return storable(field, v, amountScale)
}

func percentage(field string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(hundred) {
		return invalidAmount(field, "must be between 0 and 100")
	}
	return storable(field, v, amountScale)
}

type enum interface{ Valid() bool }

func oneOf(field string, v enum, raw string) error {
	if !v.Valid() {
		return invalid(field, "unsupported value "+quote(raw))
	}
	return nil
}

func currency(field, code string) error {
	if money.GetCurrency(code) == nil {
		return invalid(field, "unknown currency "+quote(code))
	}
	if !slices.Contains(model.SupportedCurrencies, code) {
		return invalid(field, "currency "+quote(code)+" is not supported")
	}
	return nil
}

// currencyScale is the number of minor-unit digits of code, capped at what
// the store keeps.
func currencyScale(code string) int32 {
	if c := money.GetCurrency(code); c != nil && int32(c.Fraction) < amountScale {
		return int32(c.Fraction)
	}
	return amountScale
}

func notBefore(field string, d *model.Date, start model.Date, startField string) error {
	if d != nil && d.Before(start) {
		return invalid(field, "must not be before "+startField)
	}
	return nil
}

func quote(s string) string { return `"` + s + `"` }

func validateClient(c *model.Client) error {
	return firstErr(
		required("company", c.Company),
		required("client_name", c.ClientName),
		email("email", c.Email, false),
	)
}

func validatePOC(p *model.POC) error {
	return firstErr(
		required("name", p.Name),
		email("email", p.Email, true),
		required("phone", p.Phone),
		required("designation", p.Designation),
		required("client", p.Client),
	)
}

func validateProject(p *model.Project) error {
	return firstErr(
		required("project_name", p.ProjectName),
		required("code", p.Code),
		required("client", p.Client),
		required("poc", p.POC),
		oneOf("priority", p.Priority, string(p.Priority)),
		oneOf("type", p.Type, string(p.Type)),
		oneOf("status", p.Status, string(p.Status)),
		requiredDate("start_date", p.StartDate),
		notBefore("end_date", p.EndDate, p.StartDate, "start_date"),
	)
}

func validateEstimation(e *model.Estimation) error {
	return firstErr(
		required("project", e.Project),
		required("version", e.Version),
		requiredDate("date", e.Date),
		required("provider", e.Provider),
		oneOf("approval_status", e.ApprovalStatus, string(e.ApprovalStatus)),
		oneOf("po_status", e.POStatus, string(e.POStatus)),
	)
}

func validatePayment(p *model.Payment) error {
	scale := currencyScale(p.Currency)
	return firstErr(
		required("project", p.Project),
		required("resource", p.Resource),
		oneOf("payment_type", p.PaymentType, string(p.PaymentType)),
		currency("currency", p.Currency),
		nonNegativeIn("approved_budget", p.ApprovedBudget, scale),
		nonNegativeIn("additional_amount", p.AdditionalAmount, scale),
		nonNegativeIn("payout", p.Payout, scale),
		nonNegativeIn("retention", p.Retention, scale),
		nonNegativeIn("penalty", p.Penalty, scale),
		percentage("utilization_percentage", p.UtilizationPercentage),
	)
}

func validateMilestone(m *model.Milestone) error {
	err := firstErr(
		required("payment", m.Payment),
		required("name", m.Name),
		nonNegative("amount", m.Amount),
		requiredDate("due_date", m.DueDate),
		oneOf("status", m.Status, string(m.Status)),
	)
	if err != nil {
		return err
	}
	if m.CompletionDate != nil && m.Status != model.MilestoneCompleted {
		return invalid("completion_date", "may only be set when status is Completed")
	}
	return nil
}

func validateRequest(r *model.AdditionalRequest) error {
	return firstErr(
		required("project", r.Project),
		positive("requested_amount", r.RequestedAmount),
		required("reason", r.Reason),
	)
}

func validateHold(h *model.Hold) error {
	return firstErr(
		required("reason", h.Reason),
		positive("amount", h.Amount),
	)
}
