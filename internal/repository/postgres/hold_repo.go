package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"budgetledger/internal/model"
)

const holdColumns = `id, project, reason, amount, is_active, created_at, released_at`

func scanHold(row pgx.Row, h *model.Hold) error {
	return row.Scan(
		&h.ID,
		&h.Project,
		&h.Reason,
		&h.Amount,
		&h.IsActive,
		&h.CreatedAt,
		&h.ReleasedAt,
	)
}

type holdRepo struct{ s *Store }

func (r *holdRepo) Get(ctx context.Context, id string) (*model.Hold, error) {
	return queryOne(ctx, r.s, scanHold, `SELECT `+holdColumns+` FROM holds WHERE id = $1`, id)
}

func (r *holdRepo) ListByProject(ctx context.Context, projectID string) ([]model.Hold, error) {
	return queryList(ctx, r.s, scanHold,
		`SELECT `+holdColumns+` FROM holds WHERE project = $1 ORDER BY seq`, projectID)
}

func (r *holdRepo) Insert(ctx context.Context, h *model.Hold) error {
	query := `
        INSERT INTO holds (` + holdColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.s.exec(ctx, query,
		h.ID,
		h.Project,
		h.Reason,
		h.Amount,
		h.IsActive,
		h.CreatedAt,
		h.ReleasedAt,
	)
	if err != nil {
		return err
	}
	r.s.logger.Info("Hold inserted successfully",
		zap.String("id", h.ID),
		zap.String("project", h.Project),
	)
	return nil
}

func (r *holdRepo) Release(ctx context.Context, id string, at time.Time) error {
	tag, err := r.s.exec(ctx,
		`UPDATE holds SET is_active = FALSE, released_at = $2 WHERE id = $1 AND is_active`,
		id, at,
	)
	if err != nil {
		return err
	}
	return r.s.updated(ctx, "holds", id, tag)
}
