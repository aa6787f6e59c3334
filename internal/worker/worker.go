package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/poke-report/internal/report"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DeliverySource is the queue side of the worker
type DeliverySource interface {
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
	Cancel(consumerTag string) error
}

// Processor runs one job message to completion
type Processor interface {
	Process(ctx context.Context, body []byte) (*report.Result, error)
}

// Config holds worker configuration
type Config struct {
	Logger           *slog.Logger
	Source           DeliverySource
	Processor        Processor
	JobTimeout       time.Duration
	RequeueTransient bool
}

// Worker consumes job messages one at a time and acknowledges each after processing
type Worker struct {
	logger           *slog.Logger
	source           DeliverySource
	processor        Processor
	workerID         string
	jobTimeout       time.Duration
	requeueTransient bool
	wg               sync.WaitGroup
	stopOnce         sync.Once
	stopChan         chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workerID := "report-worker-" + uuid.NewString()

	return &Worker{
		logger:           logger.With(slog.String("worker_id", workerID)),
		source:           cfg.Source,
		processor:        cfg.Processor,
		workerID:         workerID,
		jobTimeout:       cfg.JobTimeout,
		requeueTransient: cfg.RequeueTransient,
		stopChan:         make(chan struct{}),
	}
}

// ID returns the worker's consumer tag
func (w *Worker) ID() string {
	return w.workerID
}

// Start consumes deliveries until ctx is canceled, Stop is called or the
// delivery channel closes. A job in flight is finished before Start returns.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.Duration("job_timeout", w.jobTimeout),
		slog.Bool("requeue_transient", w.requeueTransient),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}

	w.wg.Add(1)
	defer w.wg.Done()

	return w.consume(ctx, deliveries)
}

// Stop signals the worker to stop and waits for the job in flight
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker")
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
