package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"budgetledger/internal/model"
)

const projectColumns = `id, project_name, code, client, poc, priority, type, start_date, end_date,
    description, status, created_at, updated_at`

func scanProject(row pgx.Row, p *model.Project) error {
	return row.Scan(
		&p.ID,
		&p.ProjectName,
		&p.Code,
		&p.Client,
		&p.POC,
		&p.Priority,
		&p.Type,
		&p.StartDate,
		&p.EndDate,
		&p.Description,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

type projectRepo struct{ s *Store }

func (r *projectRepo) Get(ctx context.Context, id string) (*model.Project, error) {
	return queryOne(ctx, r.s, scanProject, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
}

func (r *projectRepo) List(ctx context.Context) ([]model.Project, error) {
	return queryList(ctx, r.s, scanProject, `SELECT `+projectColumns+` FROM projects ORDER BY seq`)
}

func (r *projectRepo) ListByClient(ctx context.Context, clientID string) ([]model.Project, error) {
	return queryList(ctx, r.s, scanProject,
		`SELECT `+projectColumns+` FROM projects WHERE client = $1 ORDER BY seq`, clientID)
}

func (r *projectRepo) ListByPOC(ctx context.Context, pocID string) ([]model.Project, error) {
	return queryList(ctx, r.s, scanProject,
		`SELECT `+projectColumns+` FROM projects WHERE poc = $1 ORDER BY seq`, pocID)
}

func (r *projectRepo) Insert(ctx context.Context, p *model.Project) error {
	query := `
        INSERT INTO projects (` + projectColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `
	_, err := r.s.exec(ctx, query,
		p.ID,
		p.ProjectName,
		p.Code,
		p.Client,
		p.POC,
		p.Priority,
		p.Type,
		p.StartDate,
		p.EndDate,
		p.Description,
		p.Status,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	r.s.logger.Info("Project inserted successfully",
		zap.String("id", p.ID),
		zap.String("client", p.Client),
	)
	return nil
}

func (r *projectRepo) Update(ctx context.Context, p *model.Project, prev time.Time) error {
	query := `
        UPDATE projects
        SET project_name = $2, code = $3, client = $4, poc = $5, priority = $6, type = $7,
            start_date = $8, end_date = $9, description = $10, status = $11, updated_at = $12
        WHERE id = $1 AND updated_at = $13
    `
	tag, err := r.s.exec(ctx, query,
		p.ID,
		p.ProjectName,
		p.Code,
		p.Client,
		p.POC,
		p.Priority,
		p.Type,
		p.StartDate,
		p.EndDate,
		p.Description,
		p.Status,
		p.UpdatedAt,
		prev,
	)
	if err != nil {
		return err
	}
	return r.s.updated(ctx, "projects", p.ID, tag)
}

// Delete 依赖 ON DELETE CASCADE 删除估算、付款（及里程碑）、申请和冻结
func (r *projectRepo) Delete(ctx context.Context, id string) error {
	return r.s.deleteByID(ctx, "projects", id)
}
