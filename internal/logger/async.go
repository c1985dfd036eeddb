package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Closer flushes and stops a handler on shutdown.
type Closer interface {
	Close()
}

// nopCloser is the Closer for synchronous mode.
type nopCloser struct{}

func (nopCloser) Close() {}

// entry pairs a record with the handler that should format it, so records
// from WithAttrs/WithGroup derivatives keep their attributes.
type entry struct {
	sink slog.Handler
	rec  slog.Record
}

// asyncCore is the queue and worker pool shared by an AsyncHandler and all
// handlers derived from it.
type asyncCore struct {
	queue   chan entry
	workers sync.WaitGroup
	dropped atomic.Int64
}

// AsyncHandler decouples log emission from formatting and output. Handle
// never blocks: when the queue is full the record is counted as dropped
// instead of stalling the request path.
type AsyncHandler struct {
	sink slog.Handler
	core *asyncCore
}

// NewAsyncHandler starts workers goroutines draining a queue of the given
// capacity into sink.
func NewAsyncHandler(sink slog.Handler, capacity, workers int) *AsyncHandler {
	core := &asyncCore{queue: make(chan entry, capacity)}
	for range workers {
		core.workers.Add(1)
		go core.drain()
	}
	return &AsyncHandler{sink: sink, core: core}
}

func (c *asyncCore) drain() {
	defer c.workers.Done()
	for e := range c.queue {
		_ = e.sink.Handle(context.Background(), e.rec)
	}
}

// Enabled delegates to the wrapped handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.sink.Enabled(ctx, level)
}

// Handle enqueues the record, dropping it when the queue is full.
func (h *AsyncHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	select {
	case h.core.queue <- entry{sink: h.sink, rec: rec}:
	default:
		h.core.dropped.Add(1)
	}
	return nil
}

// WithAttrs derives a handler sharing this one's queue and workers.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{sink: h.sink.WithAttrs(attrs), core: h.core}
}

// WithGroup derives a handler sharing this one's queue and workers.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{sink: h.sink.WithGroup(name), core: h.core}
}

// DroppedCount returns how many records were discarded on a full queue.
func (h *AsyncHandler) DroppedCount() int64 {
	return h.core.dropped.Load()
}

// Close stops accepting records and blocks until the queue is drained.
func (h *AsyncHandler) Close() {
	close(h.core.queue)
	h.core.workers.Wait()
}
