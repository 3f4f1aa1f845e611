package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"budgetledger/internal/model"
)

const requestColumns = `id, project, requested_amount, reason, status, approved_by, approved_at,
    rejection_reason, created_at, updated_at`

func scanRequest(row pgx.Row, a *model.AdditionalRequest) error {
	return row.Scan(
		&a.ID,
		&a.Project,
		&a.RequestedAmount,
		&a.Reason,
		&a.Status,
		&a.ApprovedBy,
		&a.ApprovedAt,
		&a.RejectionReason,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
}

type requestRepo struct{ s *Store }

func (r *requestRepo) Get(ctx context.Context, id string) (*model.AdditionalRequest, error) {
	return queryOne(ctx, r.s, scanRequest, `SELECT `+requestColumns+` FROM additional_requests WHERE id = $1`, id)
}

func (r *requestRepo) List(ctx context.Context) ([]model.AdditionalRequest, error) {
	return queryList(ctx, r.s, scanRequest, `SELECT `+requestColumns+` FROM additional_requests ORDER BY seq`)
}

func (r *requestRepo) ListByProject(ctx context.Context, projectID string) ([]model.AdditionalRequest, error) {
	return queryList(ctx, r.s, scanRequest,
		`SELECT `+requestColumns+` FROM additional_requests WHERE project = $1 ORDER BY seq`, projectID)
}

func (r *requestRepo) Insert(ctx context.Context, a *model.AdditionalRequest) error {
	query := `
        INSERT INTO additional_requests (` + requestColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.s.exec(ctx, query,
		a.ID,
		a.Project,
		a.RequestedAmount,
		a.Reason,
		a.Status,
		a.ApprovedBy,
		a.ApprovedAt,
		a.RejectionReason,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	r.s.logger.Info("Additional request inserted successfully",
		zap.String("id", a.ID),
		zap.String("project", a.Project),
	)
	return nil
}

func (r *requestRepo) Update(ctx context.Context, a *model.AdditionalRequest, prev time.Time) error {
	query := `
        UPDATE additional_requests
        SET project = $2, requested_amount = $3, reason = $4, status = $5, approved_by = $6,
            approved_at = $7, rejection_reason = $8, updated_at = $9
        WHERE id = $1 AND updated_at = $10
    `
	tag, err := r.s.exec(ctx, query,
		a.ID,
		a.Project,
		a.RequestedAmount,
		a.Reason,
		a.Status,
		a.ApprovedBy,
		a.ApprovedAt,
		a.RejectionReason,
		a.UpdatedAt,
		prev,
	)
	if err != nil {
		return err
	}
	return r.s.updated(ctx, "additional_requests", a.ID, tag)
}

func (r *requestRepo) Delete(ctx context.Context, id string) error {
	return r.s.deleteByID(ctx, "additional_requests", id)
}
