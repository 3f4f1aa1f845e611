// Package postgres is the PostgreSQL implementation of repository.Store.
// Insertion order is kept by each table's seq column; cascades rely on the
// foreign keys declared in schema.sql.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"budgetledger/internal/repository"
	"budgetledger/pkg/db"
)

// Schema 是全部表结构，由 server migrate 执行
//
//go:embed schema.sql
var Schema string

type Store struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

var (
	_ repository.Store      = (*Store)(nil)
	_ repository.Transactor = (*Store)(nil)
)

func New(db *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) Clients() repository.ClientRepository         { return &clientRepo{s} }
func (s *Store) POCs() repository.POCRepository               { return &pocRepo{s} }
func (s *Store) Projects() repository.ProjectRepository       { return &projectRepo{s} }
func (s *Store) Estimations() repository.EstimationRepository { return &estimationRepo{s} }
func (s *Store) Payments() repository.PaymentRepository       { return &paymentRepo{s} }
func (s *Store) Milestones() repository.MilestoneRepository   { return &milestoneRepo{s} }
func (s *Store) Requests() repository.RequestRepository       { return &requestRepo{s} }
func (s *Store) Holds() repository.HoldRepository             { return &holdRepo{s} }

func (s *Store) Ping(ctx context.Context) error { return s.db.Ping(ctx) }
func (s *Store) Close()                         { s.db.Close() }

// Begin opens a transaction; every repository call made with the returned
// context, and any outbox insert sharing it, commits or rolls back together.
func (s *Store) Begin(ctx context.Context) (context.Context, func(error) error, error) {
	return db.Begin(ctx, s.db, s.logger)
}

// conn 优先使用 ctx 中的事务
func (s *Store) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, s.db)
}

type scanFunc[T any] func(row pgx.Row, v *T) error

func queryOne[T any](ctx context.Context, s *Store, scan scanFunc[T], query string, args ...any) (*T, error) {
	var v T
	if err := scan(s.conn(ctx).QueryRow(ctx, query, args...), &v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func queryList[T any](ctx context.Context, s *Store, scan scanFunc[T], query string, args ...any) ([]T, error) {
	rows, err := s.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		s.logger.Error("Failed to query rows", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var v T
		if err := scan(rows, &v); err != nil {
			s.logger.Error("Failed to scan row", zap.Error(err))
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	tag, err := s.conn(ctx).Exec(ctx, query, args...)
	if err != nil {
		s.logger.Error("Failed to execute statement", zap.Error(err))
	}
	return tag, err
}

// updated 区分 UPDATE 未命中的原因：记录不存在还是 updated_at 已变化
func (s *Store) updated(ctx context.Context, table, id string, tag pgconn.CommandTag) error {
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)", table)
	if err := s.conn(ctx).QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrStale
}

func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	tag, err := s.exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	s.logger.Info("Row deleted", zap.String("table", table), zap.String("id", id))
	return nil
}
