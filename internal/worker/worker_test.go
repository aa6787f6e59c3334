package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cuongbtq/poke-report/internal/report"
	"github.com/cuongbtq/poke-report/internal/report/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ackCall struct {
	tag     uint64
	ack     bool
	requeue bool
}

type fakeAcknowledger struct {
	mu    sync.Mutex
	calls []ackCall
	err   error
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, ackCall{tag: tag, ack: true})
	return a.err
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, ackCall{tag: tag, requeue: requeue})
	return a.err
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *fakeAcknowledger) snapshot() []ackCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]ackCall(nil), a.calls...)
}

type fakeSource struct {
	deliveries chan amqp.Delivery
	consumeErr error
	canceled   []string
}

func (s *fakeSource) Consume(tag string) (<-chan amqp.Delivery, error) {
	if s.consumeErr != nil {
		return nil, s.consumeErr
	}
	return s.deliveries, nil
}

func (s *fakeSource) Cancel(tag string) error {
	s.canceled = append(s.canceled, tag)
	return nil
}

type fakeProcessor struct {
	mu     sync.Mutex
	bodies []string
	err    error
	ctxErr error
	hasDL  bool
}

func (p *fakeProcessor) Process(ctx context.Context, body []byte) (*report.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bodies = append(p.bodies, string(body))
	p.ctxErr = ctx.Err()
	_, p.hasDL = ctx.Deadline()
	if p.err != nil {
		return nil, p.err
	}
	return &report.Result{JobID: 7, URL: "https://acct.blob.core.windows.net/reports/poke_report_7.csv"}, nil
}

func newTestWorker(source DeliverySource, processor Processor, requeue bool) *Worker {
	return NewWorker(&Config{
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		Source:           source,
		Processor:        processor,
		JobTimeout:       time.Minute,
		RequeueTransient: requeue,
	})
}

func TestWorker_HandleDelivery(t *testing.T) {
	transient := domain.NewTransportError("get request", errors.New("connection reset"))

	tests := []struct {
		name             string
		processErr       error
		requeueTransient bool
		redelivered      bool
		wantAck          bool
		wantRequeue      bool
	}{
		{name: "success acks", wantAck: true},
		{name: "validation error is dropped", processErr: domain.NewValidationError("id_request", "missing"), requeueTransient: true},
		{name: "parse error is dropped", processErr: domain.NewParseError("get request", errors.New("EOF")), requeueTransient: true},
		{name: "job not found is dropped", processErr: domain.ErrJobNotFound, requeueTransient: true},
		{name: "transient error requeued once", processErr: transient, requeueTransient: true, wantRequeue: true},
		{name: "transient error not requeued when redelivered", processErr: transient, requeueTransient: true, redelivered: true},
		{name: "transient error not requeued when disabled", processErr: transient},
		{name: "joined transient error requeued", processErr: errors.Join(transient, errors.New("mark failed")), requeueTransient: true, wantRequeue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			processor := &fakeProcessor{err: tt.processErr}
			w := newTestWorker(&fakeSource{}, processor, tt.requeueTransient)

			w.handleDelivery(context.Background(), amqp.Delivery{
				Acknowledger: ack,
				DeliveryTag:  42,
				Redelivered:  tt.redelivered,
				Body:         []byte(`[{"id_request":7,"sample_size":2}]`),
			})

			calls := ack.snapshot()
			require.Len(t, calls, 1)
			assert.Equal(t, uint64(42), calls[0].tag)
			assert.Equal(t, tt.wantAck, calls[0].ack)
			assert.Equal(t, tt.wantRequeue, calls[0].requeue)
			assert.Equal(t, []string{`[{"id_request":7,"sample_size":2}]`}, processor.bodies)
		})
	}
}

func TestWorker_HandleDeliveryDetachesFromShutdown(t *testing.T) {
	ack := &fakeAcknowledger{}
	processor := &fakeProcessor{}
	w := newTestWorker(&fakeSource{}, processor, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w.handleDelivery(ctx, amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte("[]")})

	assert.NoError(t, processor.ctxErr)
	assert.True(t, processor.hasDL)
	require.Len(t, ack.snapshot(), 1)
	assert.True(t, ack.snapshot()[0].ack)
}

func TestWorker_HandleDeliveryAckFailure(t *testing.T) {
	ack := &fakeAcknowledger{err: amqp.ErrClosed}
	w := newTestWorker(&fakeSource{}, &fakeProcessor{}, false)

	assert.NotPanics(t, func() {
		w.handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 3})
	})
	assert.Len(t, ack.snapshot(), 1)
}

func TestWorker_StartProcessesSerially(t *testing.T) {
	source := &fakeSource{deliveries: make(chan amqp.Delivery, 3)}
	ack := &fakeAcknowledger{}
	processor := &fakeProcessor{}
	w := newTestWorker(source, processor, false)

	for i := 1; i <= 3; i++ {
		source.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: uint64(i), Body: []byte("msg")}
	}
	close(source.deliveries)

	err := w.Start(context.Background())
	require.ErrorIs(t, err, ErrDeliveriesClosed)

	calls := ack.snapshot()
	require.Len(t, calls, 3)
	for i, call := range calls {
		assert.Equal(t, uint64(i+1), call.tag)
		assert.True(t, call.ack)
	}
}

func TestWorker_StartStopsOnContextCancel(t *testing.T) {
	source := &fakeSource{deliveries: make(chan amqp.Delivery)}
	w := newTestWorker(source, &fakeProcessor{}, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	w.Stop()
	assert.Equal(t, []string{w.ID()}, source.canceled)
}

func TestWorker_StartConsumeError(t *testing.T) {
	source := &fakeSource{consumeErr: errors.New("channel closed")}
	w := newTestWorker(source, &fakeProcessor{}, false)

	err := w.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start consuming")
}

func TestNewWorker_UniqueIDs(t *testing.T) {
	a := newTestWorker(&fakeSource{}, &fakeProcessor{}, false)
	b := newTestWorker(&fakeSource{}, &fakeProcessor{}, false)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Contains(t, a.ID(), "report-worker-")
}
