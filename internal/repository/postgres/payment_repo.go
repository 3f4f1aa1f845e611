package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"budgetledger/internal/model"
)

const paymentColumns = `id, project, payment_type, resource, currency, approved_budget,
    additional_amount, payout, retention, penalty, utilization_percentage, is_exceeded,
    created_at, updated_at`

func scanPayment(row pgx.Row, p *model.Payment) error {
	return row.Scan(
		&p.ID,
		&p.Project,
		&p.PaymentType,
		&p.Resource,
		&p.Currency,
		&p.ApprovedBudget,
		&p.AdditionalAmount,
		&p.Payout,
		&p.Retention,
		&p.Penalty,
		&p.UtilizationPercentage,
		&p.IsExceeded,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

type paymentRepo struct{ s *Store }

func (r *paymentRepo) Get(ctx context.Context, id string) (*model.Payment, error) {
	return queryOne(ctx, r.s, scanPayment, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

func (r *paymentRepo) ListByProject(ctx context.Context, projectID string) ([]model.Payment, error) {
	return queryList(ctx, r.s, scanPayment,
		`SELECT `+paymentColumns+` FROM payments WHERE project = $1 ORDER BY seq`, projectID)
}

func (r *paymentRepo) Insert(ctx context.Context, p *model.Payment) error {
	query := `
        INSERT INTO payments (` + paymentColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `
	_, err := r.s.exec(ctx, query,
		p.ID,
		p.Project,
		p.PaymentType,
		p.Resource,
		p.Currency,
		p.ApprovedBudget,
		p.AdditionalAmount,
		p.Payout,
		p.Retention,
		p.Penalty,
		p.UtilizationPercentage,
		p.IsExceeded,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	r.s.logger.Info("Payment inserted successfully",
		zap.String("id", p.ID),
		zap.String("project", p.Project),
		zap.Bool("is_exceeded", p.IsExceeded),
	)
	return nil
}

func (r *paymentRepo) Update(ctx context.Context, p *model.Payment, prev time.Time) error {
	query := `
        UPDATE payments
        SET project = $2, payment_type = $3, resource = $4, currency = $5, approved_budget = $6,
            additional_amount = $7, payout = $8, retention = $9, penalty = $10,
            utilization_percentage = $11, is_exceeded = $12, updated_at = $13
        WHERE id = $1 AND updated_at = $14
    `
	tag, err := r.s.exec(ctx, query,
		p.ID,
		p.Project,
		p.PaymentType,
		p.Resource,
		p.Currency,
		p.ApprovedBudget,
		p.AdditionalAmount,
		p.Payout,
		p.Retention,
		p.Penalty,
		p.UtilizationPercentage,
		p.IsExceeded,
		p.UpdatedAt,
		prev,
	)
	if err != nil {
		return err
	}
	return r.s.updated(ctx, "payments", p.ID, tag)
}

// Delete 依赖 ON DELETE CASCADE 删除里程碑
func (r *paymentRepo) Delete(ctx context.Context, id string) error {
	return r.s.deleteByID(ctx, "payments", id)
}
