package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/poke-report/internal/blobstore"
	"github.com/cuongbtq/poke-report/internal/bootstrap"
	"github.com/cuongbtq/poke-report/internal/catalog"
	"github.com/cuongbtq/poke-report/internal/config"
	"github.com/cuongbtq/poke-report/internal/report"
	"github.com/cuongbtq/poke-report/internal/statusstore"
	"github.com/cuongbtq/poke-report/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := bootstrap.LoadConfig("WORKER_SERVICE_CONFIG_PATH", "configs/worker-service/config.yaml")
	if err != nil {
		return err
	}

	if err := cfg.ValidateWorkerConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := bootstrap.InitLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipeline, err := initPipeline(ctx, cfg, appLogger.Logger)
	if err != nil {
		return err
	}

	rabbitClient, err := bootstrap.InitRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	workerInstance := worker.NewWorker(&worker.Config{
		Logger:           appLogger.Logger,
		Source:           rabbitClient,
		Processor:        pipeline,
		JobTimeout:       cfg.Worker.JobTimeout,
		RequeueTransient: cfg.Worker.RequeueTransient,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- workerInstance.Start(ctx)
	}()

	appLogger.Info("Worker service started successfully",
		slog.String("worker_id", workerInstance.ID()),
		slog.String("queue", cfg.RabbitMQ.Queue.Name),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case amqpErr := <-rabbitClient.NotifyClose():
		appLogger.Error("RabbitMQ channel closed",
			slog.Any("error", amqpErr),
		)
		return fmt.Errorf("rabbitmq channel closed: %v", amqpErr)
	case err := <-errChan:
		if err != nil {
			appLogger.Error("Worker error",
				slog.Any("error", err),
			)
		}
		return err
	}

	cancel()

	shutdownTimeout := cfg.Worker.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}

	done := make(chan struct{})
	go func() {
		workerInstance.Stop()
		close(done)
	}()

	select {
	case <-done:
		appLogger.Info("Worker stopped gracefully")
	case <-time.After(shutdownTimeout):
		appLogger.Warn("Worker shutdown timeout exceeded, forcing exit")
	}

	appLogger.Info("Worker service shutdown complete")
	return nil
}

// initPipeline wires the status store, catalog, object store and encoder into a report pipeline
func initPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*report.Pipeline, error) {
	statusClient, err := statusstore.NewClient(statusstore.Config{
		Domain:  cfg.StatusAPI.Domain,
		Timeout: cfg.StatusAPI.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize status client: %w", err)
	}

	catalogClient, err := catalog.NewClient(catalog.Config{
		BaseURL: cfg.Catalog.BaseURL,
		Timeout: cfg.Catalog.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog client: %w", err)
	}

	uploader, err := blobstore.New(ctx, blobstore.Config{
		Provider:         cfg.Storage.Provider,
		ConnectionString: cfg.Storage.ConnectionString,
		AccountName:      cfg.Storage.AccountName,
		Region:           cfg.Storage.Region,
		Endpoint:         cfg.Storage.Endpoint,
		Container:        cfg.Storage.Container,
		PublicBaseURL:    cfg.Storage.PublicBaseURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	encoder, err := report.NewEncoder(cfg.Report.Format)
	if err != nil {
		return nil, err
	}

	logger.Info("Report pipeline initialized",
		slog.String("status_api", cfg.StatusAPI.Domain),
		slog.String("catalog", cfg.Catalog.BaseURL),
		slog.String("storage_provider", cfg.Storage.Provider),
		slog.String("container", cfg.Storage.Container),
		slog.String("format", encoder.Extension()),
	)

	return report.NewPipeline(&report.Config{
		Logger:   logger,
		Status:   statusClient,
		Catalog:  catalogClient,
		Uploader: uploader,
		Encoder:  encoder,
	}), nil
}
