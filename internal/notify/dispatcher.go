package notify

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTimeout bounds one sink delivery when no timeout is configured.
const DefaultTimeout = 2 * time.Second

// Sink delivers envelopes to one backend (MQTT, Redis, ...).
// Deliver must honour ctx cancellation.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, env Envelope) error
}

// Logger defines the logging interface used by the Dispatcher.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Stats counts deliveries since the Dispatcher was created.
type Stats struct {
	Published uint64 `json:"published"`
	Delivered uint64 `json:"delivered"`
	Failed    uint64 `json:"failed"`
	Dropped   uint64 `json:"dropped"`
}

// Dispatcher fans events out to sinks without blocking the publisher.
//
// Each Publish spawns one goroutine per sink. Every delivery gets its own
// deadline detached from the caller's context, so a finished HTTP
// request does not cancel its notifications. Failures and panics are
// logged and counted, never propagated.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Dispatcher struct {
	logger  Logger
	timeout time.Duration
	now     func() time.Time

	mu     sync.RWMutex
	sinks  []Sink
	closed bool
	wg     sync.WaitGroup

	published atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
}

// NewDispatcher creates a Dispatcher. A non-positive timeout uses DefaultTimeout.
func NewDispatcher(logger Logger, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = noopLogger{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
		sinks:   append([]Sink(nil), sinks...),
	}
}

// AddSink registers another sink for subsequent events.
func (d *Dispatcher) AddSink(s Sink) {
	d.mu.Lock()
	d.sinks = append(d.sinks, s)
	d.mu.Unlock()
}

// Sinks returns the names of the registered sinks.
func (d *Dispatcher) Sinks() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, len(d.sinks))
	for i, s := range d.sinks {
		names[i] = s.Name()
	}
	return names
}

// Publish wraps payload in an Envelope and hands it to every sink.
// It returns immediately.
func (d *Dispatcher) Publish(ctx context.Context, topic string, payload any) {
	env, err := NewEnvelope(topic, payload, d.now())
	if err != nil {
		d.dropped.Add(1)
		d.logger.Error("encoding notification failed", "event", topic, "error", err)
		return
	}

	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		d.dropped.Add(1)
		d.logger.Debug("dispatcher closed, dropping notification", "event", topic)
		return
	}
	sinks := d.sinks
	d.wg.Add(len(sinks))
	d.mu.RUnlock()

	d.published.Add(1)

	base := context.WithoutCancel(ctx)
	for _, s := range sinks {
		go d.deliver(base, s, env)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, sink Sink, env Envelope) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			d.failed.Add(1)
			d.logger.Error("notification sink panic recovered",
				"sink", sink.Name(),
				"event", env.Event,
				"panic", r,
			)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := sink.Deliver(ctx, env); err != nil {
		d.failed.Add(1)
		err = fmt.Errorf("%w: %s: %w", ErrNotificationDeliveryFailed, sink.Name(), err)
		d.logger.Warn("notification delivery failed",
			"sink", sink.Name(),
			"event", env.Event,
			"event_id", env.ID,
			"error", err,
		)
		return
	}
	d.delivered.Add(1)
}

// Stats returns delivery counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Published: d.published.Load(),
		Delivered: d.delivered.Load(),
		Failed:    d.failed.Load(),
		Dropped:   d.dropped.Load(),
	}
}

// Close stops accepting events and waits for in-flight deliveries,
// or until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("draining notifications: %w", ctx.Err())
	}
}
