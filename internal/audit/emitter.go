package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/trustverify/trustverify/internal/authz"
)

// Sink persists audit entries. Implementations may block; the emitter keeps
// them off the decision path.
type Sink interface {
	Write(ctx context.Context, e Entry) error
}

// Emitter buffers decision records on a bounded queue and drains them to a
// sink on a background goroutine. Record never blocks and never fails the
// caller: when the queue is full the oldest buffered entry is dropped to
// make room, so a slow or unavailable sink degrades the trail, not the
// authorization check.
type Emitter struct {
	queue   chan Entry
	sink    Sink
	logger  *slog.Logger
	onDrop  func()
	now     func() time.Time
	done    chan struct{}
	closing sync.Once
}

// EmitterOption customizes an Emitter.
type EmitterOption func(*Emitter)

// WithDropHook installs a callback fired once per dropped entry, used to
// feed the drop counter metric.
func WithDropHook(fn func()) EmitterOption {
	return func(e *Emitter) { e.onDrop = fn }
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) EmitterOption {
	return func(e *Emitter) { e.now = now }
}

// NewEmitter constructs an Emitter draining to sink and starts its drain
// goroutine. queueSize bounds the buffer; values below 1 fall back to 256.
func NewEmitter(sink Sink, queueSize int, logger *slog.Logger, opts ...EmitterOption) *Emitter {
	if queueSize < 1 {
		queueSize = 256
	}
	e := &Emitter{
		queue:  make(chan Entry, queueSize),
		sink:   sink,
		logger: logger,
		now:    time.Now,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	go e.drain()
	return e
}

// Record converts a decision into an audit entry and enqueues it. Safe to
// call from any goroutine; never blocks, never panics into the caller.
func (e *Emitter) Record(d authz.AccessDecision, principal *authz.Principal, endpoint string) {
	if e == nil {
		return
	}
	entry := Entry{
		At:          e.now().UTC(),
		Role:        RoleUnauthenticated,
		Endpoint:    endpoint,
		Requirement: d.Requirement,
		Outcome:     OutcomeDeny,
		Code:        string(d.Code),
		Required:    d.Required,
	}
	if d.Allowed {
		entry.Outcome = OutcomeAllow
	}
	if principal != nil {
		entry.PrincipalID = principal.ID
	}
	if d.Role != "" {
		entry.Role = string(d.Role)
	}
	e.enqueue(entry)
}

func (e *Emitter) enqueue(entry Entry) {
	select {
	case e.queue <- entry:
		return
	default:
	}
	// Queue full: shed the oldest entry, then try once more. A concurrent
	// enqueue can still win the freed slot, in which case this entry is
	// dropped instead.
	select {
	case <-e.queue:
		e.dropped()
	default:
	}
	select {
	case e.queue <- entry:
	default:
		e.dropped()
	}
}

func (e *Emitter) dropped() {
	if e.onDrop != nil {
		e.onDrop()
	}
	if e.logger != nil {
		e.logger.Warn("audit entry dropped, queue full")
	}
}

func (e *Emitter) drain() {
	defer close(e.done)
	for entry := range e.queue {
		e.write(entry)
	}
}

func (e *Emitter) write(entry Entry) {
	if e.sink == nil {
		return
	}
	if err := e.sink.Write(context.Background(), entry); err != nil && e.logger != nil {
		e.logger.Warn("audit sink write failed", slog.Any("error", err))
	}
}

// Close stops accepting entries and waits for the queue to flush, or for ctx
// to expire. Record calls after Close panic; close only during shutdown,
// after the HTTP server has stopped.
func (e *Emitter) Close(ctx context.Context) error {
	e.closing.Do(func() { close(e.queue) })
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
