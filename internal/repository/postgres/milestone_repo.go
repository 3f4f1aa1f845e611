package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"budgetledger/internal/model"
)

const milestoneColumns = `id, payment, name, amount, due_date, status, completion_date, notes,
    created_at, updated_at`

func scanMilestone(row pgx.Row, m *model.Milestone) error {
	return row.Scan(
		&m.ID,
		&m.Payment,
		&m.Name,
		&m.Amount,
		&m.DueDate,
		&m.Status,
		&m.CompletionDate,
		&m.Notes,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}

type milestoneRepo struct{ s *Store }

func (r *milestoneRepo) Get(ctx context.Context, id string) (*model.Milestone, error) {
	return queryOne(ctx, r.s, scanMilestone, `SELECT `+milestoneColumns+` FROM milestones WHERE id = $1`, id)
}

func (r *milestoneRepo) List(ctx context.Context) ([]model.Milestone, error) {
	return queryList(ctx, r.s, scanMilestone, `SELECT `+milestoneColumns+` FROM milestones ORDER BY seq`)
}

func (r *milestoneRepo) ListByPayment(ctx context.Context, paymentID string) ([]model.Milestone, error) {
	return queryList(ctx, r.s, scanMilestone,
		`SELECT `+milestoneColumns+` FROM milestones WHERE payment = $1 ORDER BY seq`, paymentID)
}

func (r *milestoneRepo) Insert(ctx context.Context, m *model.Milestone) error {
	query := `
        INSERT INTO milestones (` + milestoneColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.s.exec(ctx, query,
		m.ID,
		m.Payment,
		m.Name,
		m.Amount,
		m.DueDate,
		m.Status,
		m.CompletionDate,
		m.Notes,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	r.s.logger.Info("Milestone inserted successfully",
		zap.String("id", m.ID),
		zap.String("payment", m.Payment),
	)
	return nil
}

func (r *milestoneRepo) Update(ctx context.Context, m *model.Milestone, prev time.Time) error {
	query := `
        UPDATE milestones
        SET payment = $2, name = $3, amount = $4, due_date = $5, status = $6,
            completion_date = $7, notes = $8, updated_at = $9
        WHERE id = $1 AND updated_at = $10
    `
	tag, err := r.s.exec(ctx, query,
		m.ID,
		m.Payment,
		m.Name,
		m.Amount,
		m.DueDate,
		m.Status,
		m.CompletionDate,
		m.Notes,
		m.UpdatedAt,
		prev,
	)
	if err != nil {
		return err
	}
	return r.s.updated(ctx, "milestones", m.ID, tag)
}

func (r *milestoneRepo) Delete(ctx context.Context, id string) error {
	return r.s.deleteByID(ctx, "milestones", id)
}
