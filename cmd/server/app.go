package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"budgetledger/config"
	"budgetledger/internal/repository"
	"budgetledger/internal/repository/memory"
	"budgetledger/internal/repository/postgres"
	"budgetledger/internal/service/ledger"
	"budgetledger/pkg/circuitbreaker"
	"budgetledger/pkg/db"
	"budgetledger/pkg/logger"
	"budgetledger/pkg/mq"
	"budgetledger/pkg/outbox"
)

// app 持有进程级依赖，close 按创建的逆序释放
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
	store  repository.Store
	ledger *ledger.Ledger

	// publisher 是带熔断的 MQ 发布者，MQ 未配置或不可用时为 nil
	publisher mq.EventPublisher
	// outbox 仅在 postgres 存储且 mq.outbox 开启时非 nil
	outbox *outbox.Repository

	closers []func()
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(flagConfigDir)
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewLogger(cfg.Log)
	logger.Log = log
	return cfg, log, nil
}

// newApp 构建存储与 ledger；withEvents 为 false 时不发布账本事件
func newApp(ctx context.Context, withEvents bool) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: log}

	if err := a.openStore(ctx); err != nil {
		a.close()
		return nil, err
	}

	var opts []ledger.Option
	if withEvents {
		a.connectMQ()
		switch {
		case a.pool != nil && cfg.MQ.Outbox:
			a.outbox = outbox.NewRepository(a.pool)
			opts = append(opts, ledger.WithOutbox(outbox.NewRecorder(a.outbox)))
			log.Info("Ledger events recorded in outbox")
		case a.publisher != nil:
			opts = append(opts, ledger.WithPublisher(a.publisher))
			log.Info("Ledger events published directly", zap.String("exchange", cfg.MQ.Exchange))
		}
	}

	a.ledger = ledger.New(a.store, log, opts...)
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Store.Driver {
	case "postgres":
		pool, err := db.NewConnection(ctx, a.cfg.DB, a.logger)
		if err != nil {
			return fmt.Errorf("open postgres store: %w", err)
		}
		a.pool = pool
		store := postgres.New(pool, a.logger)
		a.closers = append(a.closers, store.Close)
		a.store = store
	default:
		a.logger.Info("Using in-memory store")
		a.store = memory.New()
	}
	return nil
}

// connectMQ 连接 RabbitMQ 并包上熔断器；事件为尽力而为，失败时服务照常启动
func (a *app) connectMQ() {
	cfg := a.cfg
	if cfg.MQ.URL == "" {
		return
	}
	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
	if err != nil {
		a.logger.Warn("RabbitMQ unavailable, ledger events not published", zap.Error(err))
		return
	}
	a.closers = append(a.closers, pub.Close)

	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{
		FailureThreshold:    cfg.Breaker.FailureThreshold,
		SuccessThreshold:    cfg.Breaker.SuccessThreshold,
		Timeout:             cfg.Breaker.Timeout(),
		HalfOpenMaxRequests: cfg.Breaker.HalfOpenMaxRequests,
	}, circuitbreaker.WithStateChange(func(from, to circuitbreaker.State) {
		a.logger.Warn("Event publisher circuit breaker state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}))
	a.publisher = mq.NewGuardedPublisher(pub, cb)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}
