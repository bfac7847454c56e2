// internal/dispatcher/dispatcher.go

// Package dispatcher routes decoded sample-stream records to their handlers.
package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RecordKind names the three records a robot-side bridge emits.
type RecordKind string

const (
	// KindBegin opens a trajectory and optionally names its joints.
	KindBegin RecordKind = "begin"
	// KindSample carries one joint-state snapshot plus its time delta.
	KindSample RecordKind = "sample"
	// KindEnd closes a trajectory and triggers persistence.
	KindEnd RecordKind = "end"
)

// Record is one line of the sample stream: its kind plus the raw fields,
// still unparsed.
type Record struct {
	Kind       RecordKind
	Fields     []string
	ReceivedAt time.Time
}

// Handler consumes one record.
type Handler func(Record) error

// Dispatcher routes records to per-kind handlers. Handlers registered with
// Handle run synchronously on the dispatching goroutine, preserving record
// order; HandleBuffered trades that ordering for a bounded queue, which suits
// a live bridge where a slow flush must not stall the sample stream.
type Dispatcher struct {
	log      zerolog.Logger
	handlers map[RecordKind]Handler

	// OTel metrics on the global meter; no-ops without an SDK.
	buffered  metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter

	mu      sync.RWMutex
	buffers map[RecordKind]chan Record
}

// New creates a dispatcher logging through log.
func New(log zerolog.Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		log:      log,
		handlers: make(map[RecordKind]Handler),
		buffers:  make(map[RecordKind]chan Record),
	}

	m := meter()

	var err error

	d.buffered, err = m.Int64ObservableGauge(
		"trajrec.stream.buffered",
		metric.WithDescription("Records waiting in per-kind buffers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating buffered gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			for kind, buf := range d.buffers {
				o.ObserveInt64(d.buffered, int64(len(buf)),
					metric.WithAttributes(attribute.String("kind", string(kind))))
			}
			return nil
		},
		d.buffered,
	)
	if err != nil {
		return nil, fmt.Errorf("registering buffered callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"trajrec.stream.records.processed",
		metric.WithDescription("Stream records handled successfully"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"trajrec.stream.records.dropped",
		metric.WithDescription("Stream records dropped because a buffer was full"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return d, nil
}

// Handle registers a synchronous handler for kind.
func (d *Dispatcher) Handle(kind RecordKind, h Handler) {
	d.handlers[kind] = d.instrument(kind, h)
}

// HandleBuffered registers a handler behind a buffer of size records.
// Dispatch enqueues and returns immediately; a record arriving while the
// buffer is full is dropped, counted, and reported as an error.
func (d *Dispatcher) HandleBuffered(kind RecordKind, size int, h Handler) {
	buf := make(chan Record, size)

	d.mu.Lock()
	d.buffers[kind] = buf
	d.mu.Unlock()

	inner := d.instrument(kind, h)
	go func() {
		for r := range buf {
			inner(r)
		}
	}()

	kindAttr := attribute.String("kind", string(kind))
	d.handlers[kind] = func(r Record) error {
		select {
		case buf <- r:
			return nil
		default:
			d.dropped.Add(context.Background(), 1, metric.WithAttributes(kindAttr))
			return fmt.Errorf("dispatcher: %s buffer full, record dropped", kind)
		}
	}
}

// Dispatch routes one record. An unregistered kind is an error, so malformed
// stream lines surface instead of vanishing.
func (d *Dispatcher) Dispatch(r Record) error {
	h, ok := d.handlers[r.Kind]
	if !ok {
		return fmt.Errorf("dispatcher: no handler for record kind %q", r.Kind)
	}
	return h(r)
}

// CanHandle reports whether kind has a registered handler.
func (d *Dispatcher) CanHandle(kind RecordKind) bool {
	_, ok := d.handlers[kind]
	return ok
}

// instrument wraps a handler with the processed counter and debug logging.
func (d *Dispatcher) instrument(kind RecordKind, h Handler) Handler {
	kindAttr := metric.WithAttributes(attribute.String("kind", string(kind)))
	return func(r Record) error {
		start := time.Now()
		if err := h(r); err != nil {
			d.log.Error().Err(err).
				Str("kind", string(kind)).
				Dur("took", time.Since(start)).
				Msg("Record failed")
			return err
		}
		d.processed.Add(context.Background(), 1, kindAttr)
		d.log.Debug().
			Str("kind", string(kind)).
			Int("fields", len(r.Fields)).
			Dur("took", time.Since(start)).
			Msg("Record handled")
		return nil
	}
}
