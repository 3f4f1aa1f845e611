package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"budgetledger/internal/model"
)

const clientColumns = `id, company, client_name, email, phone, address, active, created_at, updated_at`

func scanClient(row pgx.Row, c *model.Client) error {
	return row.Scan(
		&c.ID,
		&c.Company,
		&c.ClientName,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.Active,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

type clientRepo struct{ s *Store }

func (r *clientRepo) Get(ctx context.Context, id string) (*model.Client, error) {
	return queryOne(ctx, r.s, scanClient, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
}

func (r *clientRepo) List(ctx context.Context) ([]model.Client, error) {
	return queryList(ctx, r.s, scanClient, `SELECT `+clientColumns+` FROM clients ORDER BY seq`)
}

func (r *clientRepo) Insert(ctx context.Context, c *model.Client) error {
	query := `
        INSERT INTO clients (` + clientColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.s.exec(ctx, query,
		c.ID,
		c.Company,
		c.ClientName,
		c.Email,
		c.Phone,
		c.Address,
		c.Active,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	r.s.logger.Info("Client inserted successfully", zap.String("id", c.ID))
	return nil
}

func (r *clientRepo) Update(ctx context.Context, c *model.Client, prev time.Time) error {
	query := `
        UPDATE clients
        SET company = $2, client_name = $3, email = $4, phone = $5, address = $6,
            active = $7, updated_at = $8
        WHERE id = $1 AND updated_at = $9
    `
	tag, err := r.s.exec(ctx, query,
		c.ID,
		c.Company,
		c.ClientName,
		c.Email,
		c.Phone,
		c.Address,
		c.Active,
		c.UpdatedAt,
		prev,
	)
	if err != nil {
		return err
	}
	return r.s.updated(ctx, "clients", c.ID, tag)
}

func (r *clientRepo) Delete(ctx context.Context, id string) error {
	return r.s.deleteByID(ctx, "clients", id)
}
