package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/internflow/internal/app/metrics"
	"github.com/yigit/internflow/internal/pkg/logger"
)

const (
	DefaultWorkers         = 4
	DefaultQueueSize       = 256
	DefaultDeliveryTimeout = 10 * time.Second
)

// Dispatcher fans events out to sinks on a fixed pool of workers.
// Dispatch never blocks; a full queue drops the event.
type Dispatcher struct {
	sinks   []Sink
	workers int
	timeout time.Duration
	logger  zerolog.Logger

	queue chan Event

	// mu guards closed against concurrent Dispatch and Stop
	mu     sync.RWMutex
	closed bool

	once   sync.Once
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithWorkers sets the worker count
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithDeliveryTimeout bounds a single sink delivery
func WithDeliveryTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// NewDispatcher creates a Dispatcher with the given queue capacity
func NewDispatcher(queueSize int, sinks []Sink, opts ...Option) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		sinks:   sinks,
		workers: DefaultWorkers,
		timeout: DefaultDeliveryTimeout,
		logger:  logger.Component("notify"),
		queue:   make(chan Event, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the workers. Calling it again has no effect.
func (d *Dispatcher) Start() {
	d.once.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.run()
		}
		d.logger.Info().Int("workers", d.workers).Int("queueSize", cap(d.queue)).Msg("Notification dispatcher started")
	})
}

// Dispatch enqueues events and returns how many were accepted
func (d *Dispatcher) Dispatch(events ...Event) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn().Int("events", len(events)).Msg("Dispatcher stopped, notifications discarded")
		return 0
	}

	accepted := 0
	for _, e := range events {
		select {
		case d.queue <- e:
			accepted++
		default:
			metrics.RecordDroppedNotification()
			d.logger.Warn().
				Int64(logger.FieldRecipientID, e.RecipientID).
				Int64(logger.FieldInternshipID, e.InternshipID).
				Msg("Notification queue full, event dropped")
		}
	}
	metrics.SetQueueDepth(len(d.queue))
	return accepted
}

// Stop refuses new events and waits for queued ones to be delivered.
// When ctx ends first, in-flight deliveries are cancelled and ctx's error is returned.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	// workers that never started cannot drain
	d.Start()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		d.logger.Info().Msg("Notification dispatcher drained")
		return nil
	case <-ctx.Done():
		d.cancel()
		return fmt.Errorf("notification drain: %w", ctx.Err())
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for e := range d.queue {
		d.deliver(e)
		metrics.SetQueueDepth(len(d.queue))
	}
}

func (d *Dispatcher) deliver(e Event) {
	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
		err := sink.Deliver(ctx, e)
		cancel()

		metrics.RecordNotification(sink.Name(), err)
		if err != nil {
			d.logger.Error().Err(err).
				Str("sink", sink.Name()).
				Int64(logger.FieldRecipientID, e.RecipientID).
				Int64(logger.FieldInternshipID, e.InternshipID).
				Msg("Notification delivery failed")
		}
	}
}
