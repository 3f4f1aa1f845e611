package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"budgetledger/config"
	mqcontracts "budgetledger/contracts/mq"
	"budgetledger/internal/mqhandler"
	"budgetledger/internal/repository/postgres"
	"budgetledger/pkg/db"
	"budgetledger/pkg/logger"
	"budgetledger/pkg/mq"
	redisclient "budgetledger/pkg/redis"
	"budgetledger/pkg/util"
)

var (
	flagConfigDir   string
	flagMetricsAddr string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume ledger events into the audit log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx)
		},
	}
	rootCmd.Flags().StringVarP(&flagConfigDir, "config", "c", "", "Config directory (default $CONFIG_DIR or ./config)")
	rootCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", ":9091", "Address for /metrics and /healthz, empty to disable")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(flagConfigDir)
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.Log)
	logger.Log = log
	defer func() { _ = log.Sync() }()

	log.Info("Starting audit worker...")

	// Init DB（审计日志只写 PostgreSQL）
	dbConn, err := db.NewConnection(ctx, cfg.DB, log)
	if err != nil {
		log.Error("DB initialization failed", zap.Error(err))
		return err
	}
	defer dbConn.Close()

	// Init Redis：不可用时关闭去重与重试计数，写入依赖 ON CONFLICT 幂等
	var (
		deduper mqhandler.Deduper
		retries mqhandler.RetryCounter
	)
	if cfg.Redis.Addr != "" {
		rdb, err := redisclient.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, dedup and retry counting disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			ttl := time.Duration(cfg.Redis.DedupTTLSeconds) * time.Second
			deduper = util.NewDeduper(rdb, ttl, log)
			retries = util.NewRetryCounter(rdb, ttl)
		}
	}

	auditRepo := postgres.NewAuditRepo(dbConn, log)
	auditHandler := mqhandler.NewLedgerAuditHandler(auditRepo, deduper, retries, int64(cfg.MQ.MaxRetries), log)

	log.Info("Initializing audit consumer", zap.String("queue", cfg.MQ.Queue))
	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.Queue, mqcontracts.AllLedgerEvents, cfg.MQ.Prefetch, log)
	if err != nil {
		log.Error("Failed to init audit consumer", zap.Error(err))
		return err
	}
	defer consumer.Close()
	consumer.SetHandler(auditHandler.Handle)

	if flagMetricsAddr != "" {
		srv := metricsServer(flagMetricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	log.Info("Audit consumer started, worker is ready to process messages")
	if err := consumer.StartConsuming(ctx); err != nil {
		log.Error("Audit consumer failed", zap.Error(err))
		return err
	}
	log.Info("Worker stopped")
	return nil
}

func metricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}
