package logging

import (
	"context"
	"log/slog"
	"sync"
)

// Record is the view of a log event that suppression filters see: the
// fully-qualified logger name, the severity, and the rendered message.
type Record struct {
	Logger  string
	Level   slog.Level
	Message string
}

// Filter decides whether a single log record should be dropped before it
// reaches any output handler.
type Filter interface {
	// Suppressed reports whether the record should be dropped.
	Suppressed(rec Record) bool
}

// SuppressCallback is called for each record dropped by a filter.
type SuppressCallback func(rec Record)

// filterSet holds the filters attached to one module's logger. All loggers
// created for the module share the same set, so attaching a filter takes
// effect on loggers handed out earlier. Filters are never removed.
type filterSet struct {
	mu      sync.RWMutex
	filters []Filter
}

// add appends a filter unless the same filter (by identity) is already
// present. Reports whether the filter was added.
func (s *filterSet) add(f Filter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.filters {
		if existing == f {
			return false
		}
	}
	s.filters = append(s.filters, f)
	return true
}

func (s *filterSet) snapshot() []Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Filter, len(s.filters))
	copy(out, s.filters)
	return out
}

// suppressed reports whether any attached filter drops the record.
func (s *filterSet) suppressed(rec Record) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.filters {
		if f.Suppressed(rec) {
			return true
		}
	}
	return false
}

// filterHandler is a slog.Handler that consults a module's filter set before
// delegating to the real handler chain. Suppressed records are dropped and
// reported to the suppress callback.
type filterHandler struct {
	name    string // fully-qualified logger name
	filters *filterSet
	inner   slog.Handler
}

func newFilterHandler(name string, filters *filterSet, inner slog.Handler) *filterHandler {
	return &filterHandler{
		name:    name,
		filters: filters,
		inner:   inner,
	}
}

// Enabled implements slog.Handler.
func (h *filterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *filterHandler) Handle(ctx context.Context, r slog.Record) error {
	rec := Record{
		Logger:  h.name,
		Level:   r.Level,
		Message: r.Message,
	}

	if h.filters.suppressed(rec) {
		mutex.RLock()
		cb := suppressCallback
		mutex.RUnlock()
		if cb != nil {
			cb(rec)
		}
		return nil
	}

	return h.inner.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *filterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &filterHandler{
		name:    h.name,
		filters: h.filters,
		inner:   h.inner.WithAttrs(attrs),
	}
}

// WithGroup implements slog.Handler.
func (h *filterHandler) WithGroup(name string) slog.Handler {
	return &filterHandler{
		name:    h.name,
		filters: h.filters,
		inner:   h.inner.WithGroup(name),
	}
}
