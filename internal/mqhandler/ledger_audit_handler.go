package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "budgetledger/contracts/mq"
	"budgetledger/pkg/logger"
	"budgetledger/pkg/metrics"
	"budgetledger/pkg/mq"
	"budgetledger/pkg/trace"
	"budgetledger/pkg/util"
)

// AuditHandlerName 用于 dedup / retry 的 redis key
const AuditHandlerName = "ledger_audit"

// AuditStore 持久化审计事件；重复 event_id 返回 false
type AuditStore interface {
	Insert(ctx context.Context, routingKey string, evt *mqcontracts.LedgerEvent) (bool, error)
}

type Deduper interface {
	AcquireOnce(ctx context.Context, handler, eventID string) bool
	Forget(ctx context.Context, handler, eventID string)
}

type RetryCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// LedgerAuditHandler 把 ledger.# 事件写入 audit_log
type LedgerAuditHandler struct {
	store      AuditStore
	deduper    Deduper
	retries    RetryCounter
	maxRetries int64
	logger     *zap.Logger
}

// NewLedgerAuditHandler builds the handler. deduper and retries may be nil,
// in which case every delivery is processed and transient failures are
// retried without limit.
func NewLedgerAuditHandler(store AuditStore, deduper Deduper, retries RetryCounter, maxRetries int64, logger *zap.Logger) *LedgerAuditHandler {
	return &LedgerAuditHandler{
		store:      store,
		deduper:    deduper,
		retries:    retries,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Handle implements mq.MessageHandler.
func (h *LedgerAuditHandler) Handle(ctx context.Context, routingKey string, raw json.RawMessage) error {
	log := logger.WithTrace(ctx, h.logger)

	var evt mqcontracts.LedgerEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		log.Error("Failed to unmarshal ledger event", zap.String("routing_key", routingKey), zap.Error(err))
		metrics.IncrementAuditEvent("invalid")
		return fmt.Errorf("%w: decode ledger event: %v", mq.ErrPermanent, err)
	}
	if evt.EventID == "" {
		log.Error("Ledger event without event_id", zap.String("routing_key", routingKey))
		metrics.IncrementAuditEvent("invalid")
		return fmt.Errorf("%w: ledger event without event_id", mq.ErrPermanent)
	}
	if evt.TraceID != "" && trace.FromContext(ctx) == "" {
		ctx = trace.WithContext(ctx, evt.TraceID)
		log = logger.WithTrace(ctx, h.logger)
	}

	if h.deduper != nil && !h.deduper.AcquireOnce(ctx, AuditHandlerName, evt.EventID) {
		metrics.IncrementAuditEvent("duplicate")
		return nil
	}

	log.Info("Handling ledger event",
		zap.String("routing_key", routingKey),
		zap.String("event_id", evt.EventID),
		zap.String("entity", evt.Entity),
		zap.String("entity_id", evt.EntityID),
	)

	inserted, err := h.store.Insert(ctx, routingKey, &evt)
	if err != nil {
		return h.failed(ctx, log, &evt, err)
	}

	h.resetRetries(ctx, log, evt.EventID)
	if !inserted {
		metrics.IncrementAuditEvent("duplicate")
		return nil
	}
	metrics.IncrementAuditEvent("recorded")
	log.Info("Audit event recorded successfully", zap.String("event_id", evt.EventID))
	return nil
}

// failed 决定重试（返回原错误，消息 requeue）还是进入 DLQ（返回 ErrPermanent）
func (h *LedgerAuditHandler) failed(ctx context.Context, log *zap.Logger, evt *mqcontracts.LedgerEvent, err error) error {
	retryable, kind := util.IsRetryableError(err)

	var count int64
	if h.retries != nil {
		n, cerr := h.retries.IncrementAndGet(ctx, util.FormatRetryKey(AuditHandlerName, evt.EventID))
		if cerr != nil {
			log.Warn("Failed to increment retry counter", zap.Error(cerr))
		}
		count = n
	}

	if util.ShouldRetry(count, h.maxRetries, retryable) {
		log.Warn("Audit insert failed, will retry",
			zap.String("event_id", evt.EventID),
			zap.String("error_kind", kind),
			zap.Int64("retry_count", count),
			zap.Error(err),
		)
		if h.deduper != nil {
			h.deduper.Forget(ctx, AuditHandlerName, evt.EventID)
		}
		metrics.IncrementAuditEvent("retried")
		return err
	}

	log.Error("Audit insert failed permanently",
		zap.String("event_id", evt.EventID),
		zap.String("error_kind", kind),
		zap.Int64("retry_count", count),
		zap.Error(err),
	)
	h.resetRetries(ctx, log, evt.EventID)
	metrics.IncrementAuditEvent("dead_lettered")
	return fmt.Errorf("%w: %s: %v", mq.ErrPermanent, kind, err)
}

func (h *LedgerAuditHandler) resetRetries(ctx context.Context, log *zap.Logger, eventID string) {
	if h.retries == nil {
		return
	}
	if err := h.retries.Reset(ctx, util.FormatRetryKey(AuditHandlerName, eventID)); err != nil {
		log.Warn("Failed to reset retry counter", zap.String("event_id", eventID), zap.Error(err))
	}
}
