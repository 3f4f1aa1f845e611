package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"budgetledger/contracts/mq"
)

// AuditRepo 写入 audit_log，event_id 重复时忽略
type AuditRepo struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAuditRepo(db *pgxpool.Pool, logger *zap.Logger) *AuditRepo {
	return &AuditRepo{db: db, logger: logger}
}

// Insert reports whether a new row was written.
func (r *AuditRepo) Insert(ctx context.Context, routingKey string, evt *mq.LedgerEvent) (bool, error) {
	query := `
        INSERT INTO audit_log (event_id, routing_key, entity, action, entity_id, project_id,
            actor, trace_id, occurred_at, data)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (event_id) DO NOTHING
    `
	var data []byte
	if len(evt.Data) > 0 {
		data = evt.Data
	}
	tag, err := r.db.Exec(ctx, query,
		evt.EventID,
		routingKey,
		evt.Entity,
		evt.Action,
		evt.EntityID,
		evt.ProjectID,
		evt.Actor,
		evt.TraceID,
		evt.OccurredAt,
		data,
	)
	if err != nil {
		r.logger.Error("Failed to insert audit event",
			zap.String("event_id", evt.EventID),
			zap.Error(err),
		)
		return false, err
	}
	if tag.RowsAffected() == 0 {
		r.logger.Info("Audit event already recorded", zap.String("event_id", evt.EventID))
		return false, nil
	}
	r.logger.Info("Audit event inserted successfully",
		zap.String("event_id", evt.EventID),
		zap.String("routing_key", routingKey),
	)
	return true, nil
}
