package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"budgetledger/internal/handler"
	"budgetledger/internal/httpserver"
	"budgetledger/pkg/outbox"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger

	// outbox 中的事件由 dispatcher 投递；MQ 不可用时事件留在表中等待
	if a.outbox != nil {
		if a.publisher != nil {
			dispatcher := outbox.NewDispatcher(a.outbox, a.publisher, logger).
				WithMaxRetries(a.cfg.MQ.MaxRetries)
			go dispatcher.Start(ctx)
		} else {
			logger.Warn("Outbox dispatcher not started, events stay pending until a restart with MQ reachable")
		}
	}

	if !a.cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpserver.NewRouter(
		handler.New(a.ledger, logger),
		a.ledger,
		httpserver.Options{JWT: a.cfg.JWT, CORS: a.cfg.CORS},
		logger,
	)

	srv := &http.Server{
		Addr:              listenAddr(a.cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr), zap.String("store", a.cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(a.cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}

// listenAddr 接受 "8080" 或 ":8080" 两种写法
func listenAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
