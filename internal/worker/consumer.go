package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrDeliveriesClosed is returned when the broker closes the delivery channel
var ErrDeliveriesClosed = errors.New("delivery channel closed")

// setupConsumer subscribes to the job queue using the worker id as consumer tag
func (w *Worker) setupConsumer() (<-chan amqp.Delivery, error) {
	deliveries, err := w.source.Consume(w.workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	w.logger.Info("RabbitMQ consumer started",
		slog.String("consumer_tag", w.workerID),
	)

	return deliveries, nil
}

// consume handles deliveries serially. The next delivery is not read until
// the previous one has been acknowledged.
func (w *Worker) consume(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Consumer stopped - context canceled")
			w.cancelConsumer()
			return nil

		case <-w.stopChan:
			w.logger.Info("Consumer stopped - stop requested")
			w.cancelConsumer()
			return nil

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return ErrDeliveriesClosed
			}

			w.handleDelivery(ctx, delivery)
		}
	}
}

func (w *Worker) cancelConsumer() {
	if err := w.source.Cancel(w.workerID); err != nil {
		w.logger.Warn("Failed to cancel consumer",
			slog.Any("error", err),
		)
	}
}
