package worker

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/poke-report/internal/report/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// handleDelivery runs one message through the processor and settles it.
// The job runs detached from ctx so shutdown does not cut a report in half;
// only the job timeout bounds it.
func (w *Worker) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	logger := w.logger.With(
		slog.Uint64("delivery_tag", delivery.DeliveryTag),
		slog.Bool("redelivered", delivery.Redelivered),
	)
	logger.Info("Received job message", slog.Int("body_size", len(delivery.Body)))

	jobCtx := context.WithoutCancel(ctx)
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(jobCtx, w.jobTimeout)
		defer cancel()
	}

	result, err := w.processor.Process(jobCtx, delivery.Body)
	if err != nil {
		requeue := w.shouldRequeueJob(err, delivery)

		if nackErr := delivery.Nack(false, requeue); nackErr != nil {
			logger.Error("Failed to NACK message",
				slog.Any("error", nackErr),
			)
			return
		}

		logger.Warn("Message NACKed",
			slog.Bool("requeue", requeue),
			slog.Any("error", err),
		)
		return
	}

	if ackErr := delivery.Ack(false); ackErr != nil {
		logger.Error("Failed to ACK message",
			slog.Int64("job_id", result.JobID),
			slog.Any("error", ackErr),
		)
		return
	}

	logger.Info("Message ACKed",
		slog.Int64("job_id", result.JobID),
		slog.String("url", result.URL),
	)
}

// shouldRequeueJob requeues a transient transport failure once.
// Validation, parse and not-found errors would fail the same way again.
func (w *Worker) shouldRequeueJob(err error, delivery amqp.Delivery) bool {
	if !w.requeueTransient || delivery.Redelivered {
		return false
	}
	return domain.IsRetryable(err)
}
