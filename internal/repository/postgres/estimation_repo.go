package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"budgetledger/internal/model"
)

const estimationColumns = `id, project, version, date, provider, review_date, client_review_date,
    development_amount, testing_amount, project_management_amount, total_amount,
    approval_status, po_status, notes, created_at, updated_at`

func scanEstimation(row pgx.Row, e *model.Estimation) error {
	return row.Scan(
		&e.ID,
		&e.Project,
		&e.Version,
		&e.Date,
		&e.Provider,
		&e.ReviewDate,
		&e.ClientReviewDate,
		&e.DevelopmentAmount,
		&e.TestingAmount,
		&e.ProjectManagementAmount,
		&e.TotalAmount,
		&e.ApprovalStatus,
		&e.POStatus,
		&e.Notes,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
}

type estimationRepo struct{ s *Store }

func (r *estimationRepo) Get(ctx context.Context, id string) (*model.Estimation, error) {
	return queryOne(ctx, r.s, scanEstimation, `SELECT `+estimationColumns+` FROM estimations WHERE id = $1`, id)
}

func (r *estimationRepo) ListByProject(ctx context.Context, projectID string) ([]model.Estimation, error) {
	return queryList(ctx, r.s, scanEstimation,
		`SELECT `+estimationColumns+` FROM estimations WHERE project = $1 ORDER BY seq`, projectID)
}

func (r *estimationRepo) Insert(ctx context.Context, e *model.Estimation) error {
	query := `
        INSERT INTO estimations (` + estimationColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
    `
	_, err := r.s.exec(ctx, query,
		e.ID,
		e.Project,
		e.Version,
		e.Date,
		e.Provider,
		e.ReviewDate,
		e.ClientReviewDate,
		e.DevelopmentAmount,
		e.TestingAmount,
		e.ProjectManagementAmount,
		e.TotalAmount,
		e.ApprovalStatus,
		e.POStatus,
		e.Notes,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	r.s.logger.Info("Estimation inserted successfully",
		zap.String("id", e.ID),
		zap.String("project", e.Project),
	)
	return nil
}

func (r *estimationRepo) Update(ctx context.Context, e *model.Estimation, prev time.Time) error {
	query := `
        UPDATE estimations
        SET project = $2, version = $3, date = $4, provider = $5, review_date = $6,
            client_review_date = $7, development_amount = $8, testing_amount = $9,
            project_management_amount = $10, total_amount = $11, approval_status = $12,
            po_status = $13, notes = $14, updated_at = $15
        WHERE id = $1 AND updated_at = $16
    `
	tag, err := r.s.exec(ctx, query,
		e.ID,
		e.Project,
		e.Version,
		e.Date,
		e.Provider,
		e.ReviewDate,
		e.ClientReviewDate,
		e.DevelopmentAmount,
		e.TestingAmount,
		e.ProjectManagementAmount,
		e.TotalAmount,
		e.ApprovalStatus,
		e.POStatus,
		e.Notes,
		e.UpdatedAt,
		prev,
	)
	if err != nil {
		return err
	}
	return r.s.updated(ctx, "estimations", e.ID, tag)
}

func (r *estimationRepo) Delete(ctx context.Context, id string) error {
	return r.s.deleteByID(ctx, "estimations", id)
}
