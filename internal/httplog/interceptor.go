// Package httplog decides, per phase of an HTTP exchange, whether to emit
// a structured log record, assembles the record from the host's view of
// the exchange, redacts sensitive parameters, and writes it as one JSON
// line through a level-aware sink.
package httplog

import (
	"sync"
	"time"
)

// Interceptor holds the resolved configuration and the sink. It carries no
// per-exchange state; everything mutable lives in the PhaseContext the
// host threads from request start to response completion, so concurrent
// exchanges need no locking.
type Interceptor struct {
	opts     Options
	sink     Sink
	nowFunc  func() time.Time
	warnOnce sync.Once
	unitOnce sync.Once
}

func New(opts Options, sink Sink) *Interceptor {
	if opts.DurationUnit == "" {
		opts.DurationUnit = UnitMilliseconds
	}
	return &Interceptor{opts: opts, sink: sink, nowFunc: time.Now}
}

func (i *Interceptor) now() time.Time { return i.nowFunc() }

// PhaseContext is the per-exchange state created at request start. The
// configuration is resolved into it once and reused identically for both
// phases; both phases share the one start timestamp, so response duration
// always includes request-phase work.
type PhaseContext struct {
	start    time.Time
	opts     Options
	filtered map[string]struct{}
	done     bool
}

// OnRequestStart records the start timestamp and, when the request-phase
// gate allows it, runs the extract/filter/emit pipeline immediately. The
// returned context must be handed back at response time. A serialization
// or sink failure propagates; the context is still returned so response
// logging can proceed.
func (i *Interceptor) OnRequestStart(snap *Snapshot) (*PhaseContext, error) {
	pc := &PhaseContext{
		start:    i.now(),
		opts:     i.opts,
		filtered: KeySet(i.opts.FilteredKeys),
	}
	if !i.shouldLogRequest(snap) {
		i.observeSuppressed(PhaseRequest)
		return pc, nil
	}
	emitStart := i.now()
	if err := i.emit(i.buildRecord(snap, pc, PhaseRequest), pc.opts.Level); err != nil {
		return pc, err
	}
	i.observeEmitted("http", PhaseRequest, emitStart)
	return pc, nil
}

// OnResponseReady evaluates the response-phase gate against the completed
// snapshot and emits at most one record. Repeat calls and calls without a
// phase context are no-ops.
func (i *Interceptor) OnResponseReady(snap *Snapshot, pc *PhaseContext) error {
	if pc == nil || pc.done {
		return nil
	}
	pc.done = true
	if !i.shouldLogResponse(snap) {
		i.observeSuppressed(PhaseResponse)
		return nil
	}
	emitStart := i.now()
	if err := i.emit(i.buildRecord(snap, pc, PhaseResponse), pc.opts.Level); err != nil {
		return err
	}
	i.observeEmitted("http", PhaseResponse, emitStart)
	return nil
}

// LogNow replays the response-phase logic for hosts whose normal
// completion hook was bypassed, typically a global exception handler.
// Idempotent: once the exchange is done this does nothing.
func (i *Interceptor) LogNow(snap *Snapshot, pc *PhaseContext) error {
	return i.OnResponseReady(snap, pc)
}

func (i *Interceptor) observeEmitted(logType, phase string, start time.Time) {
	if i.opts.Observer != nil {
		i.opts.Observer.RecordEmitted(logType, phase, i.now().Sub(start))
	}
}

func (i *Interceptor) observeSuppressed(phase string) {
	if i.opts.Observer != nil {
		i.opts.Observer.RecordSuppressed(phase)
	}
}

func (i *Interceptor) shouldLogRequest(snap *Snapshot) bool {
	if i.opts.ShouldLogRequest != nil {
		return i.opts.ShouldLogRequest(snap)
	}
	return false
}

func (i *Interceptor) shouldLogResponse(snap *Snapshot) bool {
	if i.opts.ShouldLogResponse != nil {
		return i.opts.ShouldLogResponse(snap)
	}
	if i.opts.ShouldLog != nil {
		return i.opts.ShouldLog(snap)
	}
	return true
}
