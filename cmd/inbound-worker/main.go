package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/adapters/queue"
	"github.com/tjsasakifln/Inbound/internal/config"
	"github.com/tjsasakifln/Inbound/internal/core"
	"github.com/tjsasakifln/Inbound/internal/di"
	"github.com/tjsasakifln/Inbound/internal/worker"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	cfg *config.Config,
	pool *worker.Pool,
	consumer *queue.Consumer,
	scoringClient core.ScoringClient,
	scoreCache core.ScoreCache,
) error {
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Expose Prometheus metrics
	metricsAddr := cfg.GetString("server.metrics_address")
	metricsServer := &http.Server{
		Addr:    metricsAddr,
		Handler: promhttp.Handler(),
	}
	go func() {
		logger.Info("serving metrics", zap.String("addr", metricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	// Start the worker pool and the stream consumer
	pool.Start(ctx)

	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- consumer.Run(ctx)
	}()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-consumerErr:
		if err != nil && err != context.Canceled {
			logger.Error("consumer stopped", zap.Error(err))
		}
	}

	cancel()
	pool.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to stop metrics server", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := scoringClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("failed to close scoring client", zap.Error(err))
		}
	}
	if stopper, ok := scoreCache.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("shutdown complete")
	return nil
}
