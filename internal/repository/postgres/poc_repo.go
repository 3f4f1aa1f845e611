package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"budgetledger/internal/model"
)

const pocColumns = `id, name, email, phone, designation, client, active, created_at, updated_at`

func scanPOC(row pgx.Row, p *model.POC) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.Designation,
		&p.Client,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

type pocRepo struct{ s *Store }

func (r *pocRepo) Get(ctx context.Context, id string) (*model.POC, error) {
	return queryOne(ctx, r.s, scanPOC, `SELECT `+pocColumns+` FROM pocs WHERE id = $1`, id)
}

func (r *pocRepo) List(ctx context.Context) ([]model.POC, error) {
	return queryList(ctx, r.s, scanPOC, `SELECT `+pocColumns+` FROM pocs ORDER BY seq`)
}

func (r *pocRepo) ListByClient(ctx context.Context, clientID string) ([]model.POC, error) {
	return queryList(ctx, r.s, scanPOC, `SELECT `+pocColumns+` FROM pocs WHERE client = $1 ORDER BY seq`, clientID)
}

func (r *pocRepo) Insert(ctx context.Context, p *model.POC) error {
	query := `
        INSERT INTO pocs (` + pocColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.s.exec(ctx, query,
		p.ID,
		p.Name,
		p.Email,
		p.Phone,
		p.Designation,
		p.Client,
		p.Active,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	r.s.logger.Info("POC inserted successfully", zap.String("id", p.ID), zap.String("client", p.Client))
	return nil
}

func (r *pocRepo) Update(ctx context.Context, p *model.POC, prev time.Time) error {
	query := `
        UPDATE pocs
        SET name = $2, email = $3, phone = $4, designation = $5, client = $6,
            active = $7, updated_at = $8
        WHERE id = $1 AND updated_at = $9
    `
	tag, err := r.s.exec(ctx, query,
		p.ID,
		p.Name,
		p.Email,
		p.Phone,
		p.Designation,
		p.Client,
		p.Active,
		p.UpdatedAt,
		prev,
	)
	if err != nil {
		return err
	}
	return r.s.updated(ctx, "pocs", p.ID, tag)
}

func (r *pocRepo) Delete(ctx context.Context, id string) error {
	return r.s.deleteByID(ctx, "pocs", id)
}
